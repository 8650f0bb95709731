// Package links rewrites known third-party sharing URLs into direct-download URLs.
package links

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// ErrUnrecognized is returned when no matcher knows the URL shape.
var ErrUnrecognized = errors.New("links: unrecognized external link")

// Matcher rewrites one provider's sharing URLs. ok is false when the URL is not its shape.
type Matcher interface {
	Name() string
	Match(raw string) (direct string, ok bool)
}

// Resolver tries its matchers in order; the first match wins.
type Resolver struct {
	matchers []Matcher
}

func New(matchers ...Matcher) *Resolver {
	return &Resolver{matchers: matchers}
}

// Default returns a resolver for every provider this package knows.
func Default() *Resolver {
	return New(GoogleDrive{}, Dropbox{})
}

// Resolve returns the direct-download URL for raw, or ErrUnrecognized.
// It never touches the network.
func (r *Resolver) Resolve(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, m := range r.matchers {
		if direct, ok := m.Match(raw); ok {
			return direct, nil
		}
	}
	return "", ErrUnrecognized
}

var (
	gdriveFilePath = regexp.MustCompile(`^https?://drive\.google\.com/file/d/([A-Za-z0-9_-]+)`)
	gdriveHosts    = regexp.MustCompile(`^https?://(drive|docs)\.google\.com/(open|uc)\?`)
	gdriveID       = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

const gdriveDirect = "https://docs.google.com/uc?export=download&id="

// GoogleDrive handles drive.google.com/file/d/<id>/..., drive.google.com/open?id=<id>
// and docs.google.com/uc?id=<id> links.
type GoogleDrive struct{}

func (GoogleDrive) Name() string { return "google-drive" }

func (GoogleDrive) Match(raw string) (string, bool) {
	if m := gdriveFilePath.FindStringSubmatch(raw); m != nil {
		return gdriveDirect + m[1], true
	}
	if !gdriveHosts.MatchString(raw) {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	id := u.Query().Get("id")
	if !gdriveID.MatchString(id) {
		return "", false
	}
	return gdriveDirect + id, true
}

var dropboxShare = regexp.MustCompile(`^https?://(www\.)?dropbox\.com/(s|scl/fi)/`)

// Dropbox forces dl=1 on shared links so the server answers with the file itself.
type Dropbox struct{}

func (Dropbox) Name() string { return "dropbox" }

func (Dropbox) Match(raw string) (string, bool) {
	if !dropboxShare.MatchString(raw) {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	q := u.Query()
	q.Set("dl", "1")
	u.RawQuery = q.Encode()
	return u.String(), true
}
