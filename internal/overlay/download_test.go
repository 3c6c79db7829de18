package overlay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadSucceeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("archive-bytes"))
	}))
	defer srv.Close()

	rel := ResolvedRelease{Source: Source{Owner: "o", Repo: "r"}, Tag: "v1.0.0", AssetURL: srv.URL, AssetExt: ".zip"}
	path, digest, err := Download(context.Background(), rel)
	require.NoError(t, err)
	assert.NotEmpty(t, path)
	assert.NotEmpty(t, digest)
}

func TestDownloadFollowsUpToFiveRedirects(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/hop0", func(w http.ResponseWriter, r *http.Request) { http.Redirect(w, r, "/hop1", http.StatusFound) })
	mux.HandleFunc("/hop1", func(w http.ResponseWriter, r *http.Request) { http.Redirect(w, r, "/hop2", http.StatusFound) })
	mux.HandleFunc("/hop2", func(w http.ResponseWriter, r *http.Request) { http.Redirect(w, r, "/hop3", http.StatusFound) })
	mux.HandleFunc("/hop3", func(w http.ResponseWriter, r *http.Request) { http.Redirect(w, r, "/hop4", http.StatusFound) })
	mux.HandleFunc("/hop4", func(w http.ResponseWriter, r *http.Request) { http.Redirect(w, r, "/final", http.StatusFound) })
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })

	rel := ResolvedRelease{Source: Source{Owner: "o", Repo: "r"}, Tag: "v1.0.0", AssetURL: srv.URL + "/hop0", AssetExt: ".zip"}
	_, _, err := Download(context.Background(), rel)
	require.NoError(t, err, "a chain of 5 redirects must be followed")
}

func TestDownloadFailsOnSixthRedirect(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	for i := 0; i < 6; i++ {
		next := i + 1
		mux.HandleFunc("/hop"+strconv.Itoa(i), func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/hop"+strconv.Itoa(next), http.StatusFound)
		})
	}
	mux.HandleFunc("/hop6", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })

	rel := ResolvedRelease{Source: Source{Owner: "o", Repo: "r"}, Tag: "v1.0.0", AssetURL: srv.URL + "/hop0", AssetExt: ".zip"}
	_, _, err := Download(context.Background(), rel)
	assert.Error(t, err, "a 6th redirect must fail the download")
}
