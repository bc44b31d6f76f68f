package auth

import (
	"errors"
	"fmt"
	"time"

	"OCLAdmin/internal/apperr"

	"github.com/golang-jwt/jwt/v5"
)

// SubjectType tells admin tokens and office-user tokens apart so neither can
// be replayed against the other's routes.
type SubjectType string

const (
	SubjectAdmin  SubjectType = "admin"
	SubjectOffice SubjectType = "office"
)

var (
	ErrTokenMissing          = errors.New("token missing")
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenInvalidSignature = errors.New("token signature invalid")
	ErrTokenWrongSubjectType = errors.New("token subject type not accepted")
)

// Stable reason codes sent to clients with 401 responses.
const (
	CodeTokenMissing          = "token_missing"
	CodeTokenExpired          = "token_expired"
	CodeTokenMalformed        = "token_malformed"
	CodeTokenInvalidSignature = "token_invalid_signature"
	CodeTokenWrongSubjectType = "token_wrong_type"
	CodeAccountNotFound       = "account_not_found"
	CodeAccountInactive       = "account_inactive"
	CodeInvalidCredentials    = "invalid_credentials"
)

type TokenClaims struct {
	UserID string      `json:"userId"`
	Type   SubjectType `json:"type"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewTokenIssuer requires a non-empty secret; there is no built-in fallback.
func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("token signing secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	return &TokenIssuer{key: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (i *TokenIssuer) TTL() time.Duration { return i.ttl }

func (i *TokenIssuer) Issue(subjectID string, subjectType SubjectType) (string, error) {
	now := i.now()
	claims := &TokenClaims{
		UserID: subjectID,
		Type:   subjectType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.key)
}

// Verify checks signature and expiry and that the token's subject type is one
// of accepted. Failures wrap exactly one of the ErrToken* sentinels.
func (i *TokenIssuer) Verify(tokenString string, accepted ...SubjectType) (*TokenClaims, error) {
	if tokenString == "" {
		return nil, ErrTokenMissing
	}

	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return i.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%w: %v", ErrTokenInvalidSignature, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		}
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: no subject", ErrTokenMalformed)
	}

	for _, t := range accepted {
		if claims.Type == t {
			return claims, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrTokenWrongSubjectType, claims.Type)
}

// TokenFailure turns a Verify error into the 401 the client sees.
func TokenFailure(err error) *apperr.Error {
	switch {
	case errors.Is(err, ErrTokenMissing):
		return apperr.Authentication(CodeTokenMissing, "Access denied. No token provided.")
	case errors.Is(err, ErrTokenExpired):
		return apperr.Authentication(CodeTokenExpired, "Token expired. Please login again.")
	case errors.Is(err, ErrTokenInvalidSignature):
		return apperr.Authentication(CodeTokenInvalidSignature, "Invalid token.")
	case errors.Is(err, ErrTokenWrongSubjectType):
		return apperr.Authentication(CodeTokenWrongSubjectType, "Invalid token type for this route.")
	}
	return apperr.Authentication(CodeTokenMalformed, "Invalid token.")
}
