package resolve

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listingServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<pre><a href="../">../</a>
<a href="0.1.61/">0.1.61/</a>
<a href="0.1.67/">0.1.67/</a>
<a href="0.1.114/">0.1.114/</a>
</pre>`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewResolveCmd(t *testing.T) {
	cmd := NewResolveCmd()
	require.NotNil(t, cmd)
	assert.Equal(t, "resolve", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Example)
	assert.NotNil(t, cmd.Flags().Lookup("os"))
	assert.NotNil(t, cmd.Flags().Lookup("bridge-base-url"))
}

func TestResolveLatest(t *testing.T) {
	t.Setenv("INPUT_BRIDGE_DOWNLOAD_URL", "")
	t.Setenv("INPUT_BRIDGE_DOWNLOAD_VERSION", "")
	server := listingServer(t)

	var out bytes.Buffer
	cmd := NewResolveCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--bridge-base-url", server.URL, "--os", "darwin"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "0.1.114 "+server.URL+"/0.1.114/bridge-mac.zip\n", out.String())
}

func TestResolveMissingVersion(t *testing.T) {
	t.Setenv("INPUT_BRIDGE_DOWNLOAD_URL", "")
	server := listingServer(t)

	cmd := NewResolveCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--bridge-base-url", server.URL, "--bridge-download-version", "0.1.70"})

	err := cmd.Execute()
	assert.EqualError(t, err, "bridge version not found in artifactory")
}
