package bridge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListing(t *testing.T) {
	versions, err := parseListing(listingHTML("0.1.114", "0.1.72", "0.1.67", "0.1.61"))
	require.NoError(t, err)
	assert.Equal(t, []string{"0.1.114", "0.1.72", "0.1.67", "0.1.61"}, versions)

	versions, err = parseListing(`<a href="0.1/">0.1/</a><a href="latest/">latest/</a><a href="1.2.3">1.2.3</a>`)
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestLatestVersion(t *testing.T) {
	tests := []struct {
		name     string
		versions []string
		want     string
	}{
		{name: "patch version", versions: []string{"0.1.114", "0.1.72", "0.1.67", "0.1.61"}, want: "0.1.114"},
		{name: "minor version", versions: []string{"0.1.61", "0.1.67", "0.1.72", "0.2.1"}, want: "0.2.1"},
		{name: "major version", versions: []string{"0.1.61", "0.1.67", "0.1.72", "0.2.1", "1.0.0"}, want: "1.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fa := newFakeArtifactory(t, tt.versions, nil)
			r := NewResolver(fa.URL, PlatformLinux)

			v, err := r.LatestVersion(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestLatestVersionEmptyListing(t *testing.T) {
	fa := newFakeArtifactory(t, nil, nil)
	r := NewResolver(fa.URL, PlatformLinux)

	_, err := r.LatestVersion(context.Background())
	assert.ErrorIs(t, err, ErrParseVersion)
}

func TestLatestVersionNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	r := NewResolver(server.URL, PlatformLinux)
	_, err := r.LatestVersion(context.Background())

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Contains(t, err.Error(), "403")
}

func TestLatestVersionServerErrorNotRetried(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	r := NewResolver(server.URL, PlatformLinux)
	_, err := r.LatestVersion(context.Background())

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, int32(1), hits.Load())
}

func TestValidateBridgeVersion(t *testing.T) {
	fa := newFakeArtifactory(t, []string{"0.1.61", "0.1.67", "0.1.72"}, nil)
	r := NewResolver(fa.URL+"/", PlatformLinux)

	ok, err := r.ValidateBridgeVersion(context.Background(), "0.1.67")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.ValidateBridgeVersion(context.Background(), "0.1.68")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.ValidateBridgeVersion(context.Background(), "0.1.6")
	require.NoError(t, err)
	assert.False(t, ok, "match must be verbatim")
}

func TestVersionURL(t *testing.T) {
	tests := []struct {
		goos string
		want string
	}{
		{goos: "darwin", want: "https://repo.example.com/bridge/0.1.67/bridge-mac.zip"},
		{goos: "windows", want: "https://repo.example.com/bridge/0.1.67/bridge-win.zip"},
		{goos: "linux", want: "https://repo.example.com/bridge/0.1.67/bridge-linux.zip"},
		{goos: "plan9", want: "https://repo.example.com/bridge/0.1.67/bridge-linux.zip"},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			r := NewResolver("https://repo.example.com/bridge/", DetectPlatform(tt.goos))
			assert.Equal(t, tt.want, r.VersionURL("0.1.67"))
		})
	}
}

func TestNewResolverDefaultBaseURL(t *testing.T) {
	r := NewResolver("", PlatformMac)
	assert.Equal(t, DefaultBaseURL, r.BaseURL)
	assert.Contains(t, r.VersionURL("0.1.67"), "/0.1.67/")
	assert.Contains(t, r.VersionURL("0.1.67"), "mac")
}
