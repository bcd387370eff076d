package mojang

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"ely.by/textures/internal/textures"
)

const DefaultUuidUrl = "https://api.mojang.com/users/profiles/minecraft/"
const DefaultProfileUrl = "https://sessionserver.mojang.com/session/minecraft/profile/"
const DefaultTexturesUrl = "http://textures.minecraft.net/texture/"

type MojangApi struct {
	http        *http.Client
	uuidUrl     string
	profileUrl  string
	texturesUrl string
}

func NewMojangApi(
	http *http.Client,
	uuidUrl string,
	profileUrl string,
	texturesUrl string,
) *MojangApi {
	if uuidUrl == "" {
		uuidUrl = DefaultUuidUrl
	}

	if profileUrl == "" {
		profileUrl = DefaultProfileUrl
	}

	if texturesUrl == "" {
		texturesUrl = DefaultTexturesUrl
	}

	return &MojangApi{
		http,
		withTrailingSlash(uuidUrl),
		withTrailingSlash(profileUrl),
		withTrailingSlash(texturesUrl),
	}
}

// Exchanges username to its uuid
// See https://wiki.vg/Mojang_API#Username_to_UUID
func (c *MojangApi) UsernameToUuid(ctx context.Context, username string) (*ProfileInfo, error) {
	response, err := c.get(ctx, c.uuidUrl+url.PathEscape(username))
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNoContent || response.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	if response.StatusCode != http.StatusOK {
		return nil, errorFromResponse(response)
	}

	var result *ProfileInfo
	err = decodeBody(response, &result)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Obtains textures information for provided uuid
// See https://wiki.vg/Mojang_API#UUID_-.3E_Profile_.2B_Skin.2FCape
func (c *MojangApi) UuidToTextures(ctx context.Context, uuid string) (*ProfileResponse, error) {
	normalizedUuid := strings.ReplaceAll(uuid, "-", "")
	response, err := c.get(ctx, c.profileUrl+normalizedUuid)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNoContent || response.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	if response.StatusCode != http.StatusOK {
		return nil, errorFromResponse(response)
	}

	var result *ProfileResponse
	err = decodeBody(response, &result)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// DownloadTexture returns nil without an error when there is no file at the url
func (c *MojangApi) DownloadTexture(ctx context.Context, textureUrl string) ([]byte, error) {
	response, err := c.get(ctx, textureUrl)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	if response.StatusCode != http.StatusOK {
		return nil, errorFromResponse(response)
	}

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, errors.Join(textures.BackendUnavailableError, err)
	}

	return data, nil
}

// TextureUrl builds the address of the texture file on Mojang's textures server
func (c *MojangApi) TextureUrl(digest string) string {
	return c.texturesUrl + digest
}

func (c *MojangApi) get(ctx context.Context, requestUrl string) (*http.Response, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestUrl, nil)
	if err != nil {
		return nil, err
	}

	response, err := c.http.Do(request)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		return nil, errors.Join(textures.BackendUnavailableError, err)
	}

	return response, nil
}

func decodeBody(response *http.Response, result any) error {
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return errors.Join(textures.BackendUnavailableError, err)
	}

	err = json.Unmarshal(body, result)
	if err != nil {
		return errors.Join(textures.MalformedError, err)
	}

	return nil
}

func withTrailingSlash(value string) string {
	if !strings.HasSuffix(value, "/") {
		return value + "/"
	}

	return value
}

type ProfileResponse struct {
	Id    string      `json:"id"`
	Name  string      `json:"name"`
	Props []*Property `json:"properties"`

	once            sync.Once
	decodedTextures *TexturesProp
	decodedErr      error
}

type TexturesProp struct {
	Timestamp   int64             `json:"timestamp"`
	ProfileID   string            `json:"profileId"`
	ProfileName string            `json:"profileName"`
	Textures    *TexturesResponse `json:"textures"`
}

type TexturesResponse struct {
	Skin *SkinTexturesResponse `json:"SKIN,omitempty"`
	Cape *CapeTexturesResponse `json:"CAPE,omitempty"`
}

type SkinTexturesResponse struct {
	Url      string                `json:"url"`
	Metadata *SkinTexturesMetadata `json:"metadata,omitempty"`
}

type SkinTexturesMetadata struct {
	Model string `json:"model"`
}

type CapeTexturesResponse struct {
	Url string `json:"url"`
}

// DecodeTextures returns nil without an error when the profile has no textures property
func (t *ProfileResponse) DecodeTextures() (*TexturesProp, error) {
	t.once.Do(func() {
		var texturesProp string
		for _, prop := range t.Props {
			if prop.Name == "textures" {
				texturesProp = prop.Value
				break
			}
		}

		if texturesProp == "" {
			return
		}

		decodedTextures, err := DecodeTextures(texturesProp)
		if err != nil {
			t.decodedErr = err
		} else {
			t.decodedTextures = decodedTextures
		}
	})

	return t.decodedTextures, t.decodedErr
}

type Property struct {
	Name      string `json:"name"`
	Signature string `json:"signature,omitempty"`
	Value     string `json:"value"`
}

type ProfileInfo struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

func errorFromResponse(response *http.Response) error {
	switch {
	case response.StatusCode == 400:
		type errorResponse struct {
			Error   string `json:"error"`
			Message string `json:"errorMessage"`
		}

		decodedError := &errorResponse{}
		body, _ := io.ReadAll(response.Body)
		_ = json.Unmarshal(body, decodedError)

		return &BadRequestError{ErrorType: decodedError.Error, Message: decodedError.Message}
	case response.StatusCode == 403:
		return &ForbiddenError{}
	case response.StatusCode == 429:
		return &TooManyRequestsError{}
	case response.StatusCode >= 500:
		return &ServerError{Status: response.StatusCode}
	}

	return fmt.Errorf("%w: unexpected response status code: %d", textures.BackendUnavailableError, response.StatusCode)
}

// When passed request params are invalid, Mojang returns 400 Bad Request error
type BadRequestError struct {
	ErrorType string
	Message   string
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("400 %s: %s", e.ErrorType, e.Message)
}

func (*BadRequestError) Is(target error) bool {
	return target == textures.BackendUnavailableError
}

// When Mojang decides you're such a bad guy, this error appears (even if the request has no authorization)
type ForbiddenError struct {
}

func (*ForbiddenError) Error() string {
	return "403: Forbidden"
}

func (*ForbiddenError) Is(target error) bool {
	return target == textures.BackendUnavailableError
}

// When you exceed the set limit of requests, this error will be returned
type TooManyRequestsError struct {
}

func (*TooManyRequestsError) Error() string {
	return "429: Too Many Requests"
}

func (*TooManyRequestsError) Is(target error) bool {
	return target == textures.BackendUnavailableError
}

// ServerError happens when Mojang's API returns any response with 50* status
type ServerError struct {
	Status int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, "Server error")
}

func (*ServerError) Is(target error) bool {
	return target == textures.BackendUnavailableError
}

func DecodeTextures(encodedTextures string) (*TexturesProp, error) {
	jsonStr, err := base64.StdEncoding.DecodeString(encodedTextures)
	if err != nil {
		return nil, errors.Join(textures.MalformedError, err)
	}

	var result *TexturesProp
	err = json.Unmarshal(jsonStr, &result)
	if err != nil {
		return nil, errors.Join(textures.MalformedError, err)
	}

	return result, nil
}

func EncodeTextures(textures *TexturesProp) string {
	jsonSerialized, _ := json.Marshal(textures)
	return base64.StdEncoding.EncodeToString(jsonSerialized)
}
