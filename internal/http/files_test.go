package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"ely.by/textures/internal/storage"
	"ely.by/textures/internal/textures"
)

func TestFilesApi(t *testing.T) {
	backend, err := storage.NewLocalBackend(t.TempDir(), "http://localhost/files")
	require.NoError(t, err)

	digest := textures.ComputeDigest(pngPayload)
	url, err := backend.StoreFile(context.Background(), pngPayload, digest, "png")
	require.NoError(t, err)
	require.Equal(t, "http://localhost/files/"+digest, url)

	handler := (&FilesApi{FilesStorage: backend}).Handler()
	serve := func(target string) (*http.Response, []byte) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", target, nil))
		result := w.Result()
		body, _ := io.ReadAll(result.Body)

		return result, body
	}

	t.Run("without extension", func(t *testing.T) {
		result, body := serve("http://textures/" + digest)
		require.Equal(t, http.StatusOK, result.StatusCode)
		require.Equal(t, "image/png", result.Header.Get("Content-Type"))
		require.Equal(t, pngPayload, body)
	})

	t.Run("with extension", func(t *testing.T) {
		result, body := serve("http://textures/" + digest + ".png")
		require.Equal(t, http.StatusOK, result.StatusCode)
		require.Equal(t, pngPayload, body)
	})

	t.Run("unknown digest", func(t *testing.T) {
		result, _ := serve("http://textures/" + textures.ComputeDigest([]byte("unknown")))
		require.Equal(t, http.StatusNotFound, result.StatusCode)
	})

	t.Run("not a digest", func(t *testing.T) {
		result, _ := serve("http://textures/not-a-digest")
		require.Equal(t, http.StatusNotFound, result.StatusCode)
	})
}
