package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"ely.by/textures/internal/textures"
)

type FilesStorage interface {
	GetFile(ctx context.Context, digest string, extension string) ([]byte, error)
}

// FilesApi serves the raw stored files, so the urls generated by the local backend are resolvable
type FilesApi struct {
	FilesStorage
	CacheMaxAge int
}

func (f *FilesApi) Handler() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/{digest:[0-9a-fA-F]{64}}", f.fileHandler).Methods(http.MethodGet)
	router.HandleFunc("/{digest:[0-9a-fA-F]{64}}.{ext:[a-z]+}", f.fileHandler).Methods(http.MethodGet)

	return router
}

func (f *FilesApi) fileHandler(resp http.ResponseWriter, req *http.Request) {
	digest := strings.ToLower(mux.Vars(req)["digest"])
	ext := mux.Vars(req)["ext"]
	if ext == "" {
		ext = textures.Skin.Extension()
	}

	data, err := f.GetFile(req.Context(), digest, ext)
	if errors.Is(err, textures.NotFoundError) {
		NotFoundHandler(resp, req)
		return
	}

	if err != nil {
		apiServerError(resp, req, fmt.Errorf("unable to read the file: %w", err))
		return
	}

	writeImage(resp, req, digest, data, f.CacheMaxAge)
}
