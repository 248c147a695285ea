package bridge

import (
	"archive/zip"
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func listingHTML(versions ...string) string {
	var b strings.Builder
	b.WriteString("<html><head><title>Index of synopsys-bridge</title></head><body>\n")
	b.WriteString(`<pre><a href="../">../</a>` + "\n")
	for _, v := range versions {
		fmt.Fprintf(&b, `<a href="%s/">%s/</a>  17-Oct-2022 19:46    -`+"\n", v, v)
	}
	b.WriteString(`<a href="maven-metadata.xml">maven-metadata.xml</a>` + "\n")
	b.WriteString("</pre></body></html>")
	return b.String()
}

func bridgeZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		header := &zip.FileHeader{Name: name, Method: zip.Deflate}
		header.SetMode(0o755)
		w, err := zw.CreateHeader(header)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// fakeArtifactory serves a version listing at / and archives below /<version>/.
type fakeArtifactory struct {
	*httptest.Server
	listingHits  atomic.Int32
	downloadHits atomic.Int32
}

func newFakeArtifactory(t *testing.T, versions []string, archive []byte) *fakeArtifactory {
	t.Helper()
	fa := &fakeArtifactory{}
	fa.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			fa.listingHits.Add(1)
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(listingHTML(versions...)))
			return
		}
		for _, v := range versions {
			if strings.HasPrefix(r.URL.Path, "/"+v+"/bridge-") && strings.HasSuffix(r.URL.Path, ".zip") {
				fa.downloadHits.Add(1)
				w.Header().Set("Content-Type", "application/zip")
				_, _ = w.Write(archive)
				return
			}
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(fa.Close)
	return fa
}
