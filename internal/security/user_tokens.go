package security

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// User is the identity carried by a user's upload token
type User struct {
	Uuid     uuid.UUID
	Username string
}

type userClaims struct {
	jwt.RegisteredClaims
	Uuid     string `json:"uuid"`
	Username string `json:"username,omitempty"`
}

// UserTokens checks the ES256 tokens issued by the accounts service.
// Only the public key is known here, so the tokens can't be issued by this service
type UserTokens struct {
	Key *ecdsa.PublicKey
}

func NewUserTokens(key *ecdsa.PublicKey) *UserTokens {
	return &UserTokens{Key: key}
}

// ParseEcPublicKey accepts both a complete PEM document and its bare base64 body
func ParseEcPublicKey(value string) (*ecdsa.PublicKey, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, errors.New("public key must be set")
	}

	if !strings.HasPrefix(value, "-----BEGIN") {
		value = "-----BEGIN PUBLIC KEY-----\n" + value + "\n-----END PUBLIC KEY-----"
	}

	return jwt.ParseECPublicKeyFromPEM([]byte(value))
}

func (t *UserTokens) Authenticate(req *http.Request) (*User, error) {
	tokenStr, err := bearerToken(req)
	if err != nil {
		return nil, err
	}

	token, err := jwt.ParseWithClaims(
		tokenStr,
		&userClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return t.Key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		return nil, errors.Join(InvalidTokenError, err)
	}

	claims := token.Claims.(*userClaims)
	userUuid, err := uuid.Parse(claims.Uuid)
	if err != nil {
		return nil, errors.Join(InvalidTokenError, fmt.Errorf("invalid uuid claim: %w", err))
	}

	return &User{
		Uuid:     userUuid,
		Username: claims.Username,
	}, nil
}
