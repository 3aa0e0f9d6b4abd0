// Package version describes the running build and checks for newer releases.
package version

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

const (
	// DefaultReleasesURL is the GitHub endpoint for the latest ethtx release.
	DefaultReleasesURL = "https://api.github.com/repos/mrz1836/ethtx/releases/latest"
	// DefaultTimeout bounds a release check.
	DefaultTimeout = 10 * time.Second

	devVersion          = "dev"
	maxErrorBodySize    = 1024
	maxResponseBodySize = 64 * 1024
)

// Info identifies a build. Fields are set with -ldflags at release time.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// String renders "1.2.0 (commit: abc1234, built: 2026-01-02)".
func (i Info) String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", orDefault(i.Version, devVersion),
		orDefault(i.Commit, "unknown"), orDefault(i.Date, "unknown"))
}

// IsDev reports whether the build has no release version.
func (i Info) IsDev() bool {
	v := strings.TrimPrefix(i.Version, "v")
	return v == "" || v == devVersion || isCommitHash(v)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Release is the subset of a GitHub release used by the update check.
type Release struct {
	TagName     string    `json:"tag_name"`
	HTMLURL     string    `json:"html_url"`
	Prerelease  bool      `json:"prerelease"`
	PublishedAt time.Time `json:"published_at"`
}

// Checker fetches the latest published release.
type Checker struct {
	url        string
	httpClient *http.Client
	userAgent  string
}

// NewChecker creates a Checker for url. An empty url uses DefaultReleasesURL.
func NewChecker(url string, current Info) *Checker {
	if url == "" {
		url = DefaultReleasesURL
	}
	return &Checker{
		url:        url,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  fmt.Sprintf("ethtx/%s (%s/%s)", orDefault(current.Version, devVersion), runtime.GOOS, runtime.GOARCH),
	}
}

// Latest fetches the latest release.
func (c *Checker) Latest(ctx context.Context) (*Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.httpClient.Do(req) //nolint:gosec // URL is fixed or supplied by the caller
	if err != nil {
		return nil, txerr.WithCause(txerr.ErrNetworkError, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, txerr.WithDetails(txerr.ErrNetworkError, map[string]string{
			"status": strconv.Itoa(resp.StatusCode),
			"body":   strings.TrimSpace(string(body)),
		})
	}

	var release Release
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBodySize)).Decode(&release); err != nil {
		return nil, fmt.Errorf("decoding release: %w", err)
	}
	return &release, nil
}

// Compare returns 1 if a is newer than b, -1 if older and 0 if equal.
// Development builds sort before every release.
func Compare(a, b string) int {
	aDev := Info{Version: a}.IsDev()
	bDev := Info{Version: b}.IsDev()
	switch {
	case aDev && bDev:
		return 0
	case aDev:
		return -1
	case bDev:
		return 1
	}

	pa, pb := parse(a), parse(b)
	for i := range 3 {
		if pa[i] != pb[i] {
			if pa[i] > pb[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

// IsNewer reports whether latest is a newer release than current.
func IsNewer(current, latest string) bool {
	return Compare(latest, current) > 0
}

// parse reads major, minor and patch, ignoring a v prefix and any
// pre-release or build suffix. Missing or malformed parts are zero.
func parse(v string) [3]int {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if idx := strings.IndexAny(v, "-+"); idx != -1 {
		v = v[:idx]
	}

	var parts [3]int
	for i, field := range strings.SplitN(v, ".", 3) {
		if n, err := strconv.Atoi(field); err == nil {
			parts[i] = n
		}
	}
	return parts
}

// isCommitHash matches 7 to 40 hex characters with at least one letter,
// optionally followed by -dirty.
func isCommitHash(s string) bool {
	s = strings.TrimSuffix(s, "-dirty")
	if len(s) < 7 || len(s) > 40 {
		return false
	}

	hasLetter := false
	for _, c := range strings.ToLower(s) {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
			hasLetter = true
		default:
			return false
		}
	}
	return hasLetter
}
