package uploads

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/huandu/xstrings"

	"ely.by/textures/internal/db"
	"ely.by/textures/internal/storage"
	"ely.by/textures/internal/textures"
)

const DefaultMaxSize = 1 << 20

type TexturesRepository interface {
	SaveTexture(ctx context.Context, texture *db.Texture) error
	StoreUsername(ctx context.Context, userUuid uuid.UUID, username string) error
}

// Options are the optional upload parameters sent by the client
type Options struct {
	ModelSlim bool `json:"modelSlim"`
}

type Upload struct {
	Uuid     string
	Username string
	Kind     textures.Kind
	File     []byte
	Options  Options
}

func NewManager(repository TexturesRepository, backend storage.Backend, maxSize int) *Manager {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	return &Manager{
		repository: repository,
		backend:    backend,
		validate:   createUploadValidator(maxSize),
		now:        time.Now,
	}
}

type Manager struct {
	repository TexturesRepository
	backend    storage.Backend
	validate   *validator.Validate
	now        func() time.Time
}

// Upload stores the file by its digest and points the user's texture record to it.
// The file is stored first, so a failed record update leaves an orphaned file at worst
func (m *Manager) Upload(ctx context.Context, upload *Upload) (*db.Texture, error) {
	validationErrors := m.validate.Struct(upload)
	if validationErrors != nil {
		return nil, mapValidationErrorsToCommonError(validationErrors.(validator.ValidationErrors))
	}

	userUuid, err := uuid.Parse(upload.Uuid)
	if err != nil {
		return nil, &ValidationError{Errors: map[string][]string{"uuid": {"uuid must be a valid UUID"}}}
	}

	digest := textures.ComputeDigest(upload.File)
	url, err := m.backend.StoreFile(ctx, upload.File, digest, upload.Kind.Extension())
	if err != nil {
		return nil, fmt.Errorf("unable to store texture file: %w", err)
	}

	now := m.now().UTC().Truncate(time.Second)
	texture := &db.Texture{
		UserUuid:  userUuid,
		Kind:      upload.Kind,
		Digest:    digest,
		Url:       url,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if upload.Kind == textures.Skin && upload.Options.ModelSlim {
		texture.Metadata = &textures.Metadata{Model: textures.SlimModel}
	}

	err = m.repository.SaveTexture(ctx, texture)
	if err != nil {
		return nil, fmt.Errorf("unable to save texture record: %w", err)
	}

	if upload.Username != "" {
		err = m.repository.StoreUsername(ctx, userUuid, upload.Username)
		if err != nil {
			slog.WarnContext(ctx, "Unable to store username mapping",
				slog.String("uuid", userUuid.String()),
				slog.String("username", upload.Username),
				slog.Any("error", err),
			)
		}
	}

	return texture, nil
}

type ValidationError struct {
	Errors map[string][]string
}

func (e *ValidationError) Error() string {
	return "The texture is invalid and cannot be uploaded"
}

func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

func createUploadValidator(maxSize int) *validator.Validate {
	validate := validator.New()

	regexUuidAny := regexp.MustCompile("(?i)^[a-f0-9]{8}-?[a-f0-9]{4}-?[a-f0-9]{4}-?[a-f0-9]{4}-?[a-f0-9]{12}$")
	_ = validate.RegisterValidation("uuid_any", func(fl validator.FieldLevel) bool {
		return regexUuidAny.MatchString(fl.Field().String())
	})

	regexUsername := regexp.MustCompile(`^[-\w.!$%^&*()\[\]:;]+$`)
	_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return regexUsername.MatchString(fl.Field().String())
	})

	_ = validate.RegisterValidation("png", func(fl validator.FieldLevel) bool {
		return textures.IsPng(fl.Field().Bytes())
	})

	_ = validate.RegisterValidation("texture_kind", func(fl validator.FieldLevel) bool {
		return textures.Kind(fl.Field().Int()).Extension() != ""
	})

	validate.RegisterStructValidationMapRules(map[string]string{
		"Uuid":     "required,uuid_any",
		"Username": "omitempty,username,max=21",
		"Kind":     "texture_kind",
		"File":     fmt.Sprintf("required,max=%d,png", maxSize),
	}, Upload{})

	return validate
}

func mapValidationErrorsToCommonError(err validator.ValidationErrors) *ValidationError {
	resultErr := &ValidationError{make(map[string][]string)}
	for _, e := range err {
		field := xstrings.FirstRuneToLower(e.Field())
		resultErr.Errors[field] = append(resultErr.Errors[field], formatValidationErr(e))
	}

	return resultErr
}

func formatValidationErr(err validator.FieldError) string {
	field := xstrings.FirstRuneToLower(err.Field())
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is a required field", field)
	case "username":
		return fmt.Sprintf("%s must be a valid username", field)
	case "max":
		if err.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must be a maximum of %s bytes in size", field, err.Param())
		}

		return fmt.Sprintf("%s must be a maximum of %s in length", field, err.Param())
	case "uuid_any":
		return fmt.Sprintf("%s must be a valid UUID", field)
	case "png":
		return fmt.Sprintf("%s must be a PNG image", field)
	case "texture_kind":
		return fmt.Sprintf("%s must be one of: SKIN, CAPE", field)
	default:
		return fmt.Sprintf(`Field validation for "%s" failed on the "%s" tag`, field, err.Tag())
	}
}
