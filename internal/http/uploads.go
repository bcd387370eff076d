package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"

	"ely.by/textures/internal/db"
	"ely.by/textures/internal/otel"
	"ely.by/textures/internal/security"
	"ely.by/textures/internal/uploads"
)

type UploadsManager interface {
	Upload(ctx context.Context, upload *uploads.Upload) (*db.Texture, error)
}

type UserAuthenticator interface {
	Authenticate(req *http.Request) (*security.User, error)
}

func NewUploadsApi(manager UploadsManager, authenticator UserAuthenticator, maxSize int64) (*UploadsApi, error) {
	metrics, err := newUploadsApiMetrics(otel.GetMeter())
	if err != nil {
		return nil, err
	}

	if maxSize <= 0 {
		maxSize = uploads.DefaultMaxSize
	}

	return &UploadsApi{
		UploadsManager:    manager,
		UserAuthenticator: authenticator,
		MaxSize:           maxSize,
		metrics:           metrics,
	}, nil
}

type UploadsApi struct {
	UploadsManager
	UserAuthenticator
	MaxSize int64

	metrics *uploadsApiMetrics
}

// Handler accepts uploads authorized by the user's own token
func (u *UploadsApi) Handler() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/{kind}", u.userUploadHandler).Methods(http.MethodPost)

	return router
}

// AdminHandler accepts uploads on behalf of any user. The authentication must be applied by the caller
func (u *UploadsApi) AdminHandler() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/upload/{kind}", u.adminUploadHandler).Methods(http.MethodPost)

	return router
}

func (u *UploadsApi) userUploadHandler(resp http.ResponseWriter, req *http.Request) {
	u.metrics.Request(req.Context(), "user")

	user, err := u.Authenticate(req)
	if err != nil {
		apiUnauthorized(resp, err.Error())
		return
	}

	upload, ok := u.parseUpload(resp, req)
	if !ok {
		return
	}

	upload.Uuid = user.Uuid.String()
	upload.Username = user.Username

	u.upload(resp, req, upload)
}

func (u *UploadsApi) adminUploadHandler(resp http.ResponseWriter, req *http.Request) {
	u.metrics.Request(req.Context(), "admin")

	upload, ok := u.parseUpload(resp, req)
	if !ok {
		return
	}

	upload.Uuid = req.FormValue("uuid")
	upload.Username = req.FormValue("username")

	u.upload(resp, req, upload)
}

func (u *UploadsApi) upload(resp http.ResponseWriter, req *http.Request, upload *uploads.Upload) {
	texture, err := u.Upload(req.Context(), upload)
	if err != nil {
		var v *uploads.ValidationError
		if errors.As(err, &v) {
			apiBadRequest(resp, v.Errors)
			return
		}

		apiServerError(resp, req, fmt.Errorf("unable to upload texture: %w", err))
		return
	}

	u.metrics.Uploaded.Add(req.Context(), 1, metric.WithAttributes(attribute.String("kind", texture.Kind.String())))

	apiJson(resp, http.StatusCreated, &TextureResponse{
		Url:      texture.Url,
		Digest:   texture.Digest,
		Metadata: texture.Metadata,
	})
}

// parseUpload reads everything except the owner's identity
func (u *UploadsApi) parseUpload(resp http.ResponseWriter, req *http.Request) (*uploads.Upload, bool) {
	kind, ok := parseKind(resp, mux.Vars(req)["kind"])
	if !ok {
		return nil, false
	}

	// Leave some room for the multipart envelope, the exact size is checked by the manager
	req.Body = http.MaxBytesReader(resp, req.Body, u.MaxSize+1<<16)
	err := req.ParseMultipartForm(u.MaxSize)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			apiBadRequest(resp, map[string][]string{
				"file": {fmt.Sprintf("file must be a maximum of %d bytes in size", u.MaxSize)},
			})
			return nil, false
		}

		apiBadRequest(resp, map[string][]string{
			"body": {"The body of the request must be a valid multipart form"},
		})
		return nil, false
	}

	upload := &uploads.Upload{Kind: kind}

	file, _, err := req.FormFile("file")
	if err == nil {
		defer file.Close()
		upload.File, err = io.ReadAll(io.LimitReader(file, u.MaxSize+1))
		if err != nil {
			apiBadRequest(resp, map[string][]string{
				"file": {"Unable to read the file"},
			})
			return nil, false
		}
	} else if !errors.Is(err, http.ErrMissingFile) {
		apiBadRequest(resp, map[string][]string{
			"file": {"Unable to read the file"},
		})
		return nil, false
	}

	if options := req.FormValue("options"); options != "" {
		err = json.Unmarshal([]byte(options), &upload.Options)
		if err != nil {
			apiBadRequest(resp, map[string][]string{
				"options": {"options must be a valid JSON object"},
			})
			return nil, false
		}
	}

	return upload, true
}

func newUploadsApiMetrics(meter metric.Meter) (*uploadsApiMetrics, error) {
	m := &uploadsApiMetrics{}
	var errors, err error

	m.Requests, err = meter.Int64Counter("textures.app.uploads.request", metric.WithUnit("{request}"))
	errors = multierr.Append(errors, err)

	m.Uploaded, err = meter.Int64Counter(
		"textures.app.uploads.uploaded",
		metric.WithDescription("Number of successfully stored textures"),
		metric.WithUnit("{texture}"),
	)
	errors = multierr.Append(errors, err)

	return m, errors
}

type uploadsApiMetrics struct {
	Requests metric.Int64Counter
	Uploaded metric.Int64Counter
}

func (m *uploadsApiMetrics) Request(ctx context.Context, source string) {
	m.Requests.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}
