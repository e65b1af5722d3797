package dummylisting

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/bmatcuk/doublestar"

	dummyfetch "github.com/go-i2p/esdummy/fetch"
)

// ArchiveClient reads item file lists from the Internet Archive metadata API.
type ArchiveClient struct {
	Fetcher *dummyfetch.Fetcher
	// BaseURL is normally https://archive.org.
	BaseURL string
}

type archiveFile struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Format string `json:"format"`
}

type archiveMetadata struct {
	Files []archiveFile `json:"files"`
	// The API answers unknown identifiers with 200 and an empty object.
	Error string `json:"error"`
}

// Files returns the names of the files in item identifier matching any of
// globs, in the order the archive lists them.
func (a *ArchiveClient) Files(ctx context.Context, identifier string, globs []string) ([]string, error) {
	endpoint := strings.TrimRight(a.BaseURL, "/") + "/metadata/" + url.PathEscape(identifier)
	body, err := a.Fetcher.Fetch(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	var md archiveMetadata
	if err := json.Unmarshal(body, &md); err != nil {
		return nil, fmt.Errorf("dummylisting: decode metadata for %s: %w", identifier, err)
	}
	if md.Error != "" {
		return nil, fmt.Errorf("dummylisting: archive item %s: %s", identifier, md.Error)
	}
	var names []string
	for _, f := range md.Files {
		ok, err := MatchAny(globs, f.Name)
		if err != nil {
			return nil, err
		}
		if ok {
			names = append(names, f.Name)
		}
	}
	return names, nil
}

// MatchAny reports whether name matches one of globs. Like fnmatch, a
// wildcard also matches across sub-directories.
func MatchAny(globs []string, name string) (bool, error) {
	for _, g := range globs {
		for _, p := range []string{g, "**/" + g} {
			ok, err := doublestar.Match(p, name)
			if err != nil {
				return false, fmt.Errorf("dummylisting: bad glob %q: %w", g, err)
			}
			if ok {
				return true, nil
			}
		}
	}
	return false, nil
}
