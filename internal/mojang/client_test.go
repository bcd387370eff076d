package mojang

import (
	"context"
	"net/http"
	"testing"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"ely.by/textures/internal/textures"
)

type MojangApiSuite struct {
	suite.Suite
	api *MojangApi
}

func (s *MojangApiSuite) SetupTest() {
	httpClient := &http.Client{}
	gock.InterceptClient(httpClient)
	s.api = NewMojangApi(httpClient, "", "", "")
}

func (s *MojangApiSuite) TearDownTest() {
	gock.Off()
}

func (s *MojangApiSuite) TestUsernameToUuidSuccessfully() {
	gock.New("https://api.mojang.com").
		Get("/users/profiles/minecraft/Thinkofdeath").
		Reply(200).
		JSON(map[string]any{
			"id":   "4566e69fc90748ee8d71d7ba5aa00d20",
			"name": "Thinkofdeath",
		})

	result, err := s.api.UsernameToUuid(context.Background(), "Thinkofdeath")
	s.Require().NoError(err)
	s.Require().Equal("4566e69fc90748ee8d71d7ba5aa00d20", result.Id)
	s.Require().Equal("Thinkofdeath", result.Name)
}

func (s *MojangApiSuite) TestUsernameToUuidNotFound() {
	for _, status := range []int{204, 404} {
		gock.New("https://api.mojang.com").
			Get("/users/profiles/minecraft/Thinkofdeath").
			Reply(status)

		result, err := s.api.UsernameToUuid(context.Background(), "Thinkofdeath")
		s.Require().NoError(err)
		s.Require().Nil(result)
	}
}

func (s *MojangApiSuite) TestUsernameToUuidBadRequest() {
	gock.New("https://api.mojang.com").
		Get("/users/profiles/minecraft/Thinkofdeath").
		Reply(400).
		JSON(map[string]any{
			"error":        "IllegalArgumentException",
			"errorMessage": "Invalid timestamp.",
		})

	result, err := s.api.UsernameToUuid(context.Background(), "Thinkofdeath")
	s.Require().Nil(result)
	s.Require().IsType(&BadRequestError{}, err)
	s.Require().EqualError(err, "400 IllegalArgumentException: Invalid timestamp.")
	s.Require().ErrorIs(err, textures.BackendUnavailableError)
}

func (s *MojangApiSuite) TestUsernameToUuidForbidden() {
	gock.New("https://api.mojang.com").
		Get("/users/profiles/minecraft/Thinkofdeath").
		Reply(403).
		BodyString("just because")

	result, err := s.api.UsernameToUuid(context.Background(), "Thinkofdeath")
	s.Require().Nil(result)
	s.Require().IsType(&ForbiddenError{}, err)
	s.Require().EqualError(err, "403: Forbidden")
}

func (s *MojangApiSuite) TestUsernameToUuidInvalidJson() {
	gock.New("https://api.mojang.com").
		Get("/users/profiles/minecraft/Thinkofdeath").
		Reply(200).
		BodyString("this is not json")

	result, err := s.api.UsernameToUuid(context.Background(), "Thinkofdeath")
	s.Require().Nil(result)
	s.Require().ErrorIs(err, textures.MalformedError)
}

func (s *MojangApiSuite) TestUuidToTexturesSuccessfulResponse() {
	gock.New("https://sessionserver.mojang.com").
		Get("/session/minecraft/profile/4566e69fc90748ee8d71d7ba5aa00d20").
		Reply(200).
		JSON(map[string]any{
			"id":   "4566e69fc90748ee8d71d7ba5aa00d20",
			"name": "Thinkofdeath",
			"properties": []any{
				map[string]any{
					"name":  "textures",
					"value": "eyJ0aW1lc3RhbXAiOjE1NDMxMDczMDExODUsInByb2ZpbGVJZCI6IjQ1NjZlNjlmYzkwNzQ4ZWU4ZDcxZDdiYTVhYTAwZDIwIiwicHJvZmlsZU5hbWUiOiJUaGlua29mZGVhdGgiLCJ0ZXh0dXJlcyI6eyJTS0lOIjp7InVybCI6Imh0dHA6Ly90ZXh0dXJlcy5taW5lY3JhZnQubmV0L3RleHR1cmUvNzRkMWUwOGIwYmI3ZTlmNTkwYWYyNzc1ODEyNWJiZWQxNzc4YWM2Y2VmNzI5YWVkZmNiOTYxM2U5OTExYWU3NSJ9LCJDQVBFIjp7InVybCI6Imh0dHA6Ly90ZXh0dXJlcy5taW5lY3JhZnQubmV0L3RleHR1cmUvYjBjYzA4ODQwNzAwNDQ3MzIyZDk1M2EwMmI5NjVmMWQ2NWExM2E2MDNiZjY0YjE3YzgwM2MyMTQ0NmZlMTYzNSJ9fX0=",
				},
			},
		})

	result, err := s.api.UuidToTextures(context.Background(), "4566e69f-c907-48ee-8d71-d7ba5aa00d20")
	s.Require().NoError(err)
	s.Require().Equal("4566e69fc90748ee8d71d7ba5aa00d20", result.Id)
	s.Require().Equal("Thinkofdeath", result.Name)
	s.Require().Equal(1, len(result.Props))
	s.Require().Equal("textures", result.Props[0].Name)
	s.Require().Equal(476, len(result.Props[0].Value))
	s.Require().Equal("", result.Props[0].Signature)

	decoded, err := result.DecodeTextures()
	s.Require().NoError(err)
	s.Require().Equal("http://textures.minecraft.net/texture/74d1e08b0bb7e9f590af27758125bbed1778ac6cef729aedfcb9613e9911ae75", decoded.Textures.Skin.Url)
	s.Require().Equal("http://textures.minecraft.net/texture/b0cc08840700447322d953a02b965f1d65a13a603bf64b17c803c21446fe1635", decoded.Textures.Cape.Url)
}

func (s *MojangApiSuite) TestUuidToTexturesEmptyResponse() {
	gock.New("https://sessionserver.mojang.com").
		Get("/session/minecraft/profile/4566e69fc90748ee8d71d7ba5aa00d20").
		Reply(204).
		BodyString("")

	result, err := s.api.UuidToTextures(context.Background(), "4566e69fc90748ee8d71d7ba5aa00d20")
	s.Require().Nil(result)
	s.Require().NoError(err)
}

func (s *MojangApiSuite) TestUuidToTexturesTooManyRequests() {
	gock.New("https://sessionserver.mojang.com").
		Get("/session/minecraft/profile/4566e69fc90748ee8d71d7ba5aa00d20").
		Reply(429).
		JSON(map[string]any{
			"error":        "TooManyRequestsException",
			"errorMessage": "The client has sent too many requests within a certain amount of time",
		})

	result, err := s.api.UuidToTextures(context.Background(), "4566e69fc90748ee8d71d7ba5aa00d20")
	s.Require().Nil(result)
	s.Require().IsType(&TooManyRequestsError{}, err)
	s.Require().EqualError(err, "429: Too Many Requests")
}

func (s *MojangApiSuite) TestUuidToTexturesServerError() {
	gock.New("https://sessionserver.mojang.com").
		Get("/session/minecraft/profile/4566e69fc90748ee8d71d7ba5aa00d20").
		Reply(500).
		BodyString("500 Internal Server Error")

	result, err := s.api.UuidToTextures(context.Background(), "4566e69fc90748ee8d71d7ba5aa00d20")
	s.Require().Nil(result)
	s.Require().IsType(&ServerError{}, err)
	s.Require().EqualError(err, "500: Server error")
	s.Require().Equal(500, err.(*ServerError).Status)
	s.Require().ErrorIs(err, textures.BackendUnavailableError)
}

func (s *MojangApiSuite) TestDownloadTexture() {
	s.Run("successfully", func() {
		gock.New("http://textures.minecraft.net").
			Get("/texture/74d1e08b0bb7e9f590af27758125bbed1778ac6cef729aedfcb9613e9911ae75").
			Reply(200).
			BodyString("png bytes")

		result, err := s.api.DownloadTexture(context.Background(), s.api.TextureUrl("74d1e08b0bb7e9f590af27758125bbed1778ac6cef729aedfcb9613e9911ae75"))
		s.Require().NoError(err)
		s.Require().Equal([]byte("png bytes"), result)
	})

	s.Run("not found", func() {
		gock.New("http://textures.minecraft.net").
			Get("/texture/74d1e08b0bb7e9f590af27758125bbed1778ac6cef729aedfcb9613e9911ae75").
			Reply(404)

		result, err := s.api.DownloadTexture(context.Background(), "http://textures.minecraft.net/texture/74d1e08b0bb7e9f590af27758125bbed1778ac6cef729aedfcb9613e9911ae75")
		s.Require().NoError(err)
		s.Require().Nil(result)
	})

	s.Run("server error", func() {
		gock.New("http://textures.minecraft.net").
			Get("/texture/74d1e08b0bb7e9f590af27758125bbed1778ac6cef729aedfcb9613e9911ae75").
			Reply(502)

		result, err := s.api.DownloadTexture(context.Background(), "http://textures.minecraft.net/texture/74d1e08b0bb7e9f590af27758125bbed1778ac6cef729aedfcb9613e9911ae75")
		s.Require().ErrorIs(err, textures.BackendUnavailableError)
		s.Require().Nil(result)
	})

	s.Run("unexpected status", func() {
		gock.New("http://textures.minecraft.net").
			Get("/texture/74d1e08b0bb7e9f590af27758125bbed1778ac6cef729aedfcb9613e9911ae75").
			Reply(301)

		result, err := s.api.DownloadTexture(context.Background(), "http://textures.minecraft.net/texture/74d1e08b0bb7e9f590af27758125bbed1778ac6cef729aedfcb9613e9911ae75")
		s.Require().ErrorIs(err, textures.BackendUnavailableError)
		s.Require().Nil(result)
	})
}

func (s *MojangApiSuite) TestTextureUrl() {
	api := NewMojangApi(&http.Client{}, "", "", "https://textures.example.com/texture")
	s.Require().Equal("https://textures.example.com/texture/mock", api.TextureUrl("mock"))
}

func TestMojangApi(t *testing.T) {
	suite.Run(t, new(MojangApiSuite))
}

func TestProfileResponse_DecodeTextures(t *testing.T) {
	t.Run("DecodeTextures", func(t *testing.T) {
		obj := &ProfileResponse{
			Id:   "00000000000000000000000000000000",
			Name: "mock",
			Props: []*Property{
				{
					Name:  "textures",
					Value: "eyJ0aW1lc3RhbXAiOjE1NTU4NTYzMDc0MTIsInByb2ZpbGVJZCI6IjNlM2VlNmMzNWFmYTQ4YWJiNjFlOGNkOGM0MmZjMGQ5IiwicHJvZmlsZU5hbWUiOiJFcmlja1NrcmF1Y2giLCJ0ZXh0dXJlcyI6eyJTS0lOIjp7InVybCI6Imh0dHA6Ly90ZXh0dXJlcy5taW5lY3JhZnQubmV0L3RleHR1cmUvZmMxNzU3NjMzN2ExMDZkOWMyMmFjNzgyZTM2MmMxNmM0ZTBlNDliZTUzZmFhNDE4NTdiZmYzMzJiNzc5MjgxZSJ9fX0=",
				},
			},
		}
		decoded, err := obj.DecodeTextures()
		require.NoError(t, err)
		require.Equal(t, "3e3ee6c35afa48abb61e8cd8c42fc0d9", decoded.ProfileID)
	})

	t.Run("DecodedTextures without textures prop", func(t *testing.T) {
		obj := &ProfileResponse{
			Id:    "00000000000000000000000000000000",
			Name:  "mock",
			Props: []*Property{},
		}
		decoded, err := obj.DecodeTextures()
		require.NoError(t, err)
		require.Nil(t, decoded)
	})

	t.Run("DecodedTextures with broken textures prop", func(t *testing.T) {
		obj := &ProfileResponse{
			Props: []*Property{{Name: "textures", Value: "aW52YWxpZCBqc29u"}},
		}
		decoded, err := obj.DecodeTextures()
		require.ErrorIs(t, err, textures.MalformedError)
		require.Nil(t, decoded)
	})
}

type texturesTestCase struct {
	Name    string
	Encoded string
	Decoded *TexturesProp
}

var texturesTestCases = []*texturesTestCase{
	{
		Name:    "property without textures",
		Encoded: "eyJ0aW1lc3RhbXAiOjE1NTU4NTYwMTA0OTQsInByb2ZpbGVJZCI6IjNlM2VlNmMzNWFmYTQ4YWJiNjFlOGNkOGM0MmZjMGQ5IiwicHJvZmlsZU5hbWUiOiJFcmlja1NrcmF1Y2giLCJ0ZXh0dXJlcyI6e319",
		Decoded: &TexturesProp{
			ProfileID:   "3e3ee6c35afa48abb61e8cd8c42fc0d9",
			ProfileName: "ErickSkrauch",
			Timestamp:   int64(1555856010494),
			Textures:    &TexturesResponse{},
		},
	},
	{
		Name:    "property with classic skin textures",
		Encoded: "eyJ0aW1lc3RhbXAiOjE1NTU4NTYzMDc0MTIsInByb2ZpbGVJZCI6IjNlM2VlNmMzNWFmYTQ4YWJiNjFlOGNkOGM0MmZjMGQ5IiwicHJvZmlsZU5hbWUiOiJFcmlja1NrcmF1Y2giLCJ0ZXh0dXJlcyI6eyJTS0lOIjp7InVybCI6Imh0dHA6Ly90ZXh0dXJlcy5taW5lY3JhZnQubmV0L3RleHR1cmUvZmMxNzU3NjMzN2ExMDZkOWMyMmFjNzgyZTM2MmMxNmM0ZTBlNDliZTUzZmFhNDE4NTdiZmYzMzJiNzc5MjgxZSJ9fX0=",
		Decoded: &TexturesProp{
			ProfileID:   "3e3ee6c35afa48abb61e8cd8c42fc0d9",
			ProfileName: "ErickSkrauch",
			Timestamp:   int64(1555856307412),
			Textures: &TexturesResponse{
				Skin: &SkinTexturesResponse{
					Url: "http://textures.minecraft.net/texture/fc17576337a106d9c22ac782e362c16c4e0e49be53faa41857bff332b779281e",
				},
			},
		},
	},
	{
		Name:    "property with alex skin textures",
		Encoded: "eyJ0aW1lc3RhbXAiOjE1NTU4NTY0OTQ3OTEsInByb2ZpbGVJZCI6IjNlM2VlNmMzNWFmYTQ4YWJiNjFlOGNkOGM0MmZjMGQ5IiwicHJvZmlsZU5hbWUiOiJFcmlja1NrcmF1Y2giLCJ0ZXh0dXJlcyI6eyJTS0lOIjp7InVybCI6Imh0dHA6Ly90ZXh0dXJlcy5taW5lY3JhZnQubmV0L3RleHR1cmUvNjlmNzUzNWY4YzNhMjE1ZDFkZTc3MmIyODdmMTc3M2IzNTg5OGVmNzUyZDI2YmRkZjRhMjVhZGFiNjVjMTg1OSIsIm1ldGFkYXRhIjp7Im1vZGVsIjoic2xpbSJ9fX19",
		Decoded: &TexturesProp{
			ProfileID:   "3e3ee6c35afa48abb61e8cd8c42fc0d9",
			ProfileName: "ErickSkrauch",
			Timestamp:   int64(1555856494791),
			Textures: &TexturesResponse{
				Skin: &SkinTexturesResponse{
					Url: "http://textures.minecraft.net/texture/69f7535f8c3a215d1de772b287f1773b35898ef752d26bddf4a25adab65c1859",
					Metadata: &SkinTexturesMetadata{
						Model: "slim",
					},
				},
			},
		},
	},
}

func TestDecodeTextures(t *testing.T) {
	for _, testCase := range texturesTestCases {
		t.Run("decode "+testCase.Name, func(t *testing.T) {
			result, err := DecodeTextures(testCase.Encoded)
			require.NoError(t, err)
			require.Equal(t, testCase.Decoded, result)
		})
	}

	t.Run("should return error if invalid base64 passed", func(t *testing.T) {
		result, err := DecodeTextures("invalid base64")
		require.ErrorIs(t, err, textures.MalformedError)
		require.Nil(t, result)
	})

	t.Run("should return error if invalid json found inside base64", func(t *testing.T) {
		result, err := DecodeTextures("aW52YWxpZCBqc29u") // encoded "invalid json"
		require.ErrorIs(t, err, textures.MalformedError)
		require.Nil(t, result)
	})
}

func TestEncodeTextures(t *testing.T) {
	for _, testCase := range texturesTestCases {
		t.Run("encode "+testCase.Name, func(t *testing.T) {
			result := EncodeTextures(testCase.Decoded)
			require.Equal(t, testCase.Encoded, result)
		})
	}
}
