package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

func TestInfo_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "dev (commit: unknown, built: unknown)", Info{}.String())
	assert.Equal(t, "1.2.0 (commit: abc1234, built: 2026-01-02)",
		Info{Version: "1.2.0", Commit: "abc1234", Date: "2026-01-02"}.String())
}

func TestInfo_IsDev(t *testing.T) {
	t.Parallel()

	tests := []struct {
		version string
		want    bool
	}{
		{"", true},
		{"dev", true},
		{"abc1234", true},
		{"abc1234-dirty", true},
		{"1.2.0", false},
		{"v1.2.0", false},
		{"1234567", false},
	}

	for _, tc := range tests {
		t.Run(tc.version, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Info{Version: tc.version}.IsDev())
		})
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"equal", "1.2.0", "1.2.0", 0},
		{"v prefix ignored", "v1.2.0", "1.2.0", 0},
		{"patch newer", "1.2.1", "1.2.0", 1},
		{"minor older", "1.1.9", "1.2.0", -1},
		{"major newer", "2.0.0", "1.9.9", 1},
		{"numeric not lexical", "1.10.0", "1.9.0", 1},
		{"missing patch is zero", "1.2", "1.2.0", 0},
		{"suffix ignored", "1.2.0-rc1", "1.2.0", 0},
		{"dev older than release", "dev", "0.0.1", -1},
		{"release newer than commit", "0.1.0", "abc1234", 1},
		{"two dev builds equal", "dev", "", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Compare(tc.a, tc.b))
		})
	}
}

func TestIsNewer(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNewer("1.0.0", "v1.1.0"))
	assert.False(t, IsNewer("1.1.0", "1.0.0"))
	assert.False(t, IsNewer("1.1.0", "1.1.0"))
	assert.True(t, IsNewer("dev", "0.1.0"))
}

func TestChecker_Latest(t *testing.T) {
	t.Parallel()

	t.Run("decodes release", func(t *testing.T) {
		t.Parallel()
		var userAgent string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userAgent = r.Header.Get("User-Agent")
			_, _ = w.Write([]byte(`{"tag_name":"v0.3.0","html_url":"https://github.com/mrz1836/ethtx/releases/tag/v0.3.0","prerelease":false}`))
		}))
		defer srv.Close()

		release, err := NewChecker(srv.URL, Info{Version: "0.2.0"}).Latest(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "v0.3.0", release.TagName)
		assert.False(t, release.Prerelease)
		assert.True(t, strings.HasPrefix(userAgent, "ethtx/0.2.0 "))
	})

	t.Run("status error", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(strings.Repeat("x", 4096)))
		}))
		defer srv.Close()

		_, err := NewChecker(srv.URL, Info{}).Latest(context.Background())
		require.ErrorIs(t, err, txerr.ErrNetworkError)

		var te *txerr.TxError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, "403", te.Details["status"])
		assert.Len(t, te.Details["body"], maxErrorBodySize)
	})

	t.Run("bad body", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		_, err := NewChecker(srv.URL, Info{}).Latest(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decoding release")
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewChecker(srv.URL, Info{}).Latest(ctx)
		require.ErrorIs(t, err, txerr.ErrNetworkError)
	})
}

func TestNewChecker_DefaultURL(t *testing.T) {
	t.Parallel()

	c := NewChecker("", Info{})
	assert.Equal(t, DefaultReleasesURL, c.url)
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
	assert.Contains(t, c.userAgent, "ethtx/dev")
}
