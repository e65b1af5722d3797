// Package dummylisting enumerates candidate ROM titles, either from a web
// directory listing or from an Internet Archive item.
package dummylisting

import (
	"context"
	"strings"

	"github.com/anaskhan96/soup"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	dummyfetch "github.com/go-i2p/esdummy/fetch"
)

var validate = validator.New()

// IsURL reports whether target should be treated as a web directory listing
// rather than an archive identifier.
func IsURL(target string) bool {
	return validate.Var(target, "required,http_url") == nil
}

// Lister resolves a target (URL or archive identifier) to candidate titles.
type Lister struct {
	Fetcher *dummyfetch.Fetcher
	Archive *ArchiveClient
	Logger  zerolog.Logger
}

// List returns the titles published at target that match filters. Fetch
// failures are logged and yield an empty list; the order of the source is
// preserved and nothing is deduplicated.
func (l *Lister) List(ctx context.Context, target string, filters []string) []string {
	if IsURL(target) {
		return l.listHTML(ctx, target, filters)
	}
	l.Logger.Info().Str("identifier", target).Msg("obtaining file list from archive item")
	names, err := l.Archive.Files(ctx, target, filters)
	if err != nil {
		l.Logger.Error().Err(err).Str("identifier", target).Msg("archive listing failed")
		return nil
	}
	return names
}

func (l *Lister) listHTML(ctx context.Context, url string, filters []string) []string {
	l.Logger.Info().Str("url", url).Msg("obtaining file list from URL")
	body, err := l.Fetcher.Fetch(ctx, url)
	if err != nil {
		l.Logger.Error().Err(err).Msg("request error")
		return nil
	}
	return Links(string(body), filters)
}

// Links returns the text of every anchor in doc whose href ends with one of
// the filter suffixes.
func Links(doc string, filters []string) []string {
	suffixes := Suffixes(filters)
	var titles []string
	for _, a := range soup.HTMLParse(doc).FindAll("a") {
		href, ok := a.Attrs()["href"]
		if !ok {
			continue
		}
		for _, s := range suffixes {
			if strings.HasSuffix(href, s) {
				titles = append(titles, a.FullText())
				break
			}
		}
	}
	return titles
}

// Suffixes turns glob filters into plain suffixes: only the part after the
// last wildcard matters, and "*7z" and "*.7z" both become ".7z".
func Suffixes(filters []string) []string {
	out := make([]string, 0, len(filters))
	for _, f := range filters {
		s := f[strings.LastIndex(f, "*")+1:]
		if s == "" {
			continue
		}
		if !strings.HasPrefix(s, ".") {
			s = "." + s
		}
		out = append(out, s)
	}
	return out
}
