package security

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestJwtAuth_NewToken(t *testing.T) {
	auth := NewJwt([]byte("secret"))
	now = func() time.Time {
		return time.Date(2024, 2, 1, 11, 26, 15, 0, time.UTC)
	}
	t.Cleanup(func() {
		now = time.Now
	})

	t.Run("with known scope", func(t *testing.T) {
		token, err := auth.NewToken(TexturesScope)
		require.NoError(t, err)

		parsed, err := jwt.ParseWithClaims(token, &claims{}, func(*jwt.Token) (interface{}, error) {
			return []byte("secret"), nil
		})
		require.NoError(t, err)
		require.Equal(t, float64(1), parsed.Header["v"])
		require.Equal(t, []Scope{TexturesScope}, parsed.Claims.(*claims).Scopes)
		require.Equal(t, "textures", parsed.Claims.(*claims).Issuer)
		require.Equal(t, int64(1706786775), parsed.Claims.(*claims).IssuedAt.Unix())
	})

	t.Run("with unknown scope", func(t *testing.T) {
		token, err := auth.NewToken("scope-123")
		require.ErrorContains(t, err, "unknown")
		require.Empty(t, token)
	})

	t.Run("no scopes", func(t *testing.T) {
		token, err := auth.NewToken()
		require.Error(t, err)
		require.Empty(t, token)
	})

	t.Run("no key", func(t *testing.T) {
		token, err := NewJwt(nil).NewToken(TexturesScope)
		require.Error(t, err)
		require.Empty(t, token)
	})
}

func TestJwtAuth_Authenticate(t *testing.T) {
	auth := NewJwt([]byte("secret"))
	validToken, err := auth.NewToken(TexturesScope)
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		req := httptest.NewRequest("POST", "http://localhost", nil)
		req.Header.Add("Authorization", "Bearer "+validToken)
		err := auth.Authenticate(req, TexturesScope)
		require.NoError(t, err)
	})

	t.Run("has no required scope", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{Scopes: []Scope{"profiles"}})
		token.Header["v"] = 1
		tokenStr, err := token.SignedString([]byte("secret"))
		require.NoError(t, err)

		req := httptest.NewRequest("POST", "http://localhost", nil)
		req.Header.Add("Authorization", "Bearer "+tokenStr)
		err = auth.Authenticate(req, TexturesScope)
		require.ErrorIs(t, err, InsufficientScopeError)
	})

	t.Run("request without auth header", func(t *testing.T) {
		req := httptest.NewRequest("POST", "http://localhost", nil)
		err := auth.Authenticate(req, TexturesScope)
		require.ErrorIs(t, err, MissingAuthenticationError)
	})

	t.Run("no bearer token prefix", func(t *testing.T) {
		req := httptest.NewRequest("POST", "http://localhost", nil)
		req.Header.Add("Authorization", "trash")
		err := auth.Authenticate(req, TexturesScope)
		require.ErrorIs(t, err, InvalidTokenError)
	})

	t.Run("bearer token but not jwt", func(t *testing.T) {
		req := httptest.NewRequest("POST", "http://localhost", nil)
		req.Header.Add("Authorization", "Bearer seems.like.jwt")
		err := auth.Authenticate(req, TexturesScope)
		require.ErrorIs(t, err, InvalidTokenError)
	})

	t.Run("invalid signature", func(t *testing.T) {
		req := httptest.NewRequest("POST", "http://localhost", nil)
		req.Header.Add("Authorization", "Bearer "+validToken+"123")
		err := auth.Authenticate(req, TexturesScope)
		require.ErrorIs(t, err, InvalidTokenError)
	})

	t.Run("signed with another key", func(t *testing.T) {
		tokenStr, err := NewJwt([]byte("another secret")).NewToken(TexturesScope)
		require.NoError(t, err)

		req := httptest.NewRequest("POST", "http://localhost", nil)
		req.Header.Add("Authorization", "Bearer "+tokenStr)
		err = auth.Authenticate(req, TexturesScope)
		require.ErrorIs(t, err, InvalidTokenError)
	})

	t.Run("missing v header", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{Scopes: []Scope{TexturesScope}})
		tokenStr, err := token.SignedString([]byte("secret"))
		require.NoError(t, err)

		req := httptest.NewRequest("POST", "http://localhost", nil)
		req.Header.Add("Authorization", "Bearer "+tokenStr)
		err = auth.Authenticate(req, TexturesScope)
		require.ErrorIs(t, err, InvalidTokenError)
		require.ErrorContains(t, err, "missing v header")
	})
}
