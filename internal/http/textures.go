package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"

	"ely.by/textures/internal/otel"
	"ely.by/textures/internal/textures"
)

type TexturesRetriever interface {
	GetTexture(ctx context.Context, user uuid.UUID, kind textures.Kind) (*textures.RetrievedTexture, error)
	GetTextureBytes(ctx context.Context, user uuid.UUID, kind textures.Kind) (*textures.RetrievedTextureBytes, error)
	GetTextureBytesByDigest(ctx context.Context, digest string) (*textures.RetrievedTextureBytes, error)
	GetTextureBytesByUsername(ctx context.Context, username string, kind textures.Kind) (*textures.RetrievedTextureBytes, error)
}

type TextureResponse struct {
	Url      string             `json:"url"`
	Digest   string             `json:"digest"`
	Metadata *textures.Metadata `json:"metadata,omitempty"`
}

func NewTexturesApi(retriever TexturesRetriever, cacheMaxAge int) (*TexturesApi, error) {
	metrics, err := newTexturesApiMetrics(otel.GetMeter())
	if err != nil {
		return nil, err
	}

	return &TexturesApi{
		TexturesRetriever: retriever,
		CacheMaxAge:       cacheMaxAge,
		metrics:           metrics,
	}, nil
}

type TexturesApi struct {
	TexturesRetriever
	// Seconds, the Cache-Control header is omitted when zero
	CacheMaxAge int

	metrics *texturesApiMetrics
}

func (t *TexturesApi) Handler() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/get/{uuid}", t.texturesHandler).Methods(http.MethodGet)
	router.HandleFunc("/get/{uuid}/{kind}", t.textureHandler).Methods(http.MethodGet)
	router.HandleFunc("/download/{kind}/{uuid}", t.downloadHandler).Methods(http.MethodGet)
	router.HandleFunc("/download/{digest}", t.downloadByDigestHandler).Methods(http.MethodGet)
	router.HandleFunc("/skins/{username}", t.usernameHandler(textures.Skin)).Methods(http.MethodGet)
	router.HandleFunc("/cloaks/{username}", t.usernameHandler(textures.Cape)).Methods(http.MethodGet)

	return router
}

func (t *TexturesApi) texturesHandler(resp http.ResponseWriter, req *http.Request) {
	t.metrics.Request(req.Context(), "textures")

	userUuid, ok := parseUuid(resp, mux.Vars(req)["uuid"])
	if !ok {
		return
	}

	result := make(map[string]*TextureResponse)
	for _, kind := range textures.AllKinds() {
		texture, err := t.GetTexture(req.Context(), userUuid, kind)
		if err != nil {
			apiServerError(resp, req, fmt.Errorf("unable to retrieve %s: %w", kind, err))
			return
		}

		if texture != nil {
			result[kind.String()] = textureResponse(texture)
		}
	}

	apiJson(resp, http.StatusOK, result)
}

func (t *TexturesApi) textureHandler(resp http.ResponseWriter, req *http.Request) {
	t.metrics.Request(req.Context(), "texture")

	userUuid, ok := parseUuid(resp, mux.Vars(req)["uuid"])
	if !ok {
		return
	}

	kind, ok := parseKind(resp, mux.Vars(req)["kind"])
	if !ok {
		return
	}

	texture, err := t.GetTexture(req.Context(), userUuid, kind)
	if err != nil {
		apiServerError(resp, req, fmt.Errorf("unable to retrieve %s: %w", kind, err))
		return
	}

	if texture == nil {
		NotFoundHandler(resp, req)
		return
	}

	apiJson(resp, http.StatusOK, textureResponse(texture))
}

func (t *TexturesApi) downloadHandler(resp http.ResponseWriter, req *http.Request) {
	t.metrics.Request(req.Context(), "download")

	kind, ok := parseKind(resp, mux.Vars(req)["kind"])
	if !ok {
		return
	}

	userUuid, ok := parseUuid(resp, mux.Vars(req)["uuid"])
	if !ok {
		return
	}

	texture, err := t.GetTextureBytes(req.Context(), userUuid, kind)
	if err != nil {
		apiServerError(resp, req, fmt.Errorf("unable to retrieve %s bytes: %w", kind, err))
		return
	}

	t.writeImage(resp, req, texture)
}

func (t *TexturesApi) downloadByDigestHandler(resp http.ResponseWriter, req *http.Request) {
	t.metrics.Request(req.Context(), "download_by_digest")

	texture, err := t.GetTextureBytesByDigest(req.Context(), strings.ToLower(mux.Vars(req)["digest"]))
	if err != nil {
		apiServerError(resp, req, fmt.Errorf("unable to retrieve texture by digest: %w", err))
		return
	}

	t.writeImage(resp, req, texture)
}

func (t *TexturesApi) usernameHandler(kind textures.Kind) http.HandlerFunc {
	return func(resp http.ResponseWriter, req *http.Request) {
		t.metrics.Request(req.Context(), "username")

		username := parseUsername(mux.Vars(req)["username"])
		texture, err := t.GetTextureBytesByUsername(req.Context(), username, kind)
		if err != nil {
			apiServerError(resp, req, fmt.Errorf("unable to retrieve %s for username: %w", kind, err))
			return
		}

		t.writeImage(resp, req, texture)
	}
}

func (t *TexturesApi) writeImage(resp http.ResponseWriter, req *http.Request, texture *textures.RetrievedTextureBytes) {
	if texture == nil {
		NotFoundHandler(resp, req)
		return
	}

	if !writeImage(resp, req, texture.Digest, texture.Data, t.CacheMaxAge) {
		t.metrics.NotModified.Add(req.Context(), 1)
	}
}

// writeImage responds with 304 and returns false when the client already has the same digest
func writeImage(resp http.ResponseWriter, req *http.Request, digest string, data []byte, cacheMaxAge int) bool {
	etag := `"` + digest + `"`
	resp.Header().Set("ETag", etag)
	if cacheMaxAge > 0 {
		resp.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(cacheMaxAge))
	}

	if req.Header.Get("If-None-Match") == etag {
		resp.WriteHeader(http.StatusNotModified)
		return false
	}

	resp.Header().Set("Content-Type", "image/png")
	resp.Header().Set("Content-Length", strconv.Itoa(len(data)))
	resp.WriteHeader(http.StatusOK)
	_, _ = resp.Write(data)

	return true
}

func textureResponse(texture *textures.RetrievedTexture) *TextureResponse {
	return &TextureResponse{
		Url:      texture.Url,
		Digest:   texture.Digest,
		Metadata: texture.Metadata,
	}
}

func parseUuid(resp http.ResponseWriter, value string) (uuid.UUID, bool) {
	result, err := uuid.Parse(value)
	if err != nil {
		apiBadRequest(resp, map[string][]string{
			"uuid": {"uuid must be a valid UUID"},
		})

		return uuid.Nil, false
	}

	return result, true
}

func parseKind(resp http.ResponseWriter, value string) (textures.Kind, bool) {
	kind, err := textures.ParseKind(value)
	if err != nil {
		apiBadRequest(resp, map[string][]string{
			"kind": {err.Error()},
		})

		return 0, false
	}

	return kind, true
}

func parseUsername(username string) string {
	return strings.TrimSuffix(username, ".png")
}

func newTexturesApiMetrics(meter metric.Meter) (*texturesApiMetrics, error) {
	m := &texturesApiMetrics{}
	var errors, err error

	m.Requests, err = meter.Int64Counter("textures.app.textures.request", metric.WithUnit("{request}"))
	errors = multierr.Append(errors, err)

	m.NotModified, err = meter.Int64Counter(
		"textures.app.textures.not_modified",
		metric.WithDescription("Number of images served with 304 Not Modified"),
		metric.WithUnit("{request}"),
	)
	errors = multierr.Append(errors, err)

	return m, errors
}

type texturesApiMetrics struct {
	Requests    metric.Int64Counter
	NotModified metric.Int64Counter
}

func (m *texturesApiMetrics) Request(ctx context.Context, handler string) {
	m.Requests.Add(ctx, 1, metric.WithAttributes(attribute.String("handler", handler)))
}
