package dummyfetch

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// URLResolver picks the reference URL for an operating system. *config.Conf
// satisfies it through SystemsURL.
type URLResolver interface {
	SystemsURL(goos string) (string, error)
}

// Reference caches ES-DE's upstream es_systems.xml at Path. It is fetched the
// first time it is needed and only replaced by an explicit Refresh.
type Reference struct {
	Fetcher *Fetcher
	Fs      afero.Fs
	Path    string
	URLs    URLResolver
	GOOS    string
	Logger  zerolog.Logger
}

// Ensure returns the path of the cached reference document, downloading it
// first if it is not present yet.
func (r *Reference) Ensure(ctx context.Context) (string, error) {
	exists, err := afero.Exists(r.Fs, r.Path)
	if err != nil {
		return "", fmt.Errorf("dummyfetch: stat %s: %w", r.Path, err)
	}
	if exists {
		r.Logger.Debug().Str("path", r.Path).Msg("using cached reference systems file")
		return r.Path, nil
	}
	if err := r.pull(ctx); err != nil {
		return "", err
	}
	return r.Path, nil
}

// Refresh deletes the cached document and downloads the latest version.
func (r *Reference) Refresh(ctx context.Context) error {
	exists, err := afero.Exists(r.Fs, r.Path)
	if err != nil {
		return fmt.Errorf("dummyfetch: stat %s: %w", r.Path, err)
	}
	if exists {
		if err := r.Fs.Remove(r.Path); err != nil {
			return fmt.Errorf("dummyfetch: remove %s: %w", r.Path, err)
		}
		r.Logger.Info().Str("path", r.Path).Msg("deleted cached reference systems file")
	}
	return r.pull(ctx)
}

func (r *Reference) pull(ctx context.Context) error {
	url, err := r.URLs.SystemsURL(r.GOOS)
	if err != nil {
		r.Logger.Error().Err(err).Str("os", r.GOOS).Msg("cannot fetch reference systems file")
		return err
	}
	r.Logger.Info().Str("url", url).Msg("downloading reference systems file")
	data, err := r.Fetcher.Fetch(ctx, url)
	if err != nil {
		r.Logger.Error().Err(err).Msg("failed to download reference systems file")
		return err
	}
	if err := r.Fs.MkdirAll(filepath.Dir(r.Path), 0o750); err != nil {
		return fmt.Errorf("dummyfetch: create %s: %w", filepath.Dir(r.Path), err)
	}
	if err := afero.WriteFile(r.Fs, r.Path, data, 0o644); err != nil {
		return fmt.Errorf("dummyfetch: write %s: %w", r.Path, err)
	}
	r.Logger.Info().Str("path", r.Path).Int("bytes", len(data)).Msg("downloaded reference systems file")
	return nil
}
