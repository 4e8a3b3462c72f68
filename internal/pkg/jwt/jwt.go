package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess = "access"
	TokenTypeSSE    = "sse"

	sseTokenTTL = 5 * time.Minute
)

var ErrMissingUser = errors.New("authentication required")

// SSEClaims are carried by the short-lived stream token.
type SSEClaims struct {
	UserID      string
	WorkspaceID string
}

type Service interface {
	GenerateAccessToken(userID string, email string, ttl time.Duration) (token string, expiresAt int64, err error)
	GenerateSSEToken(userID string, workspaceID string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (SSEClaims, error)
	JWTAuth() *jwtauth.JWTAuth
}

// JWTService verifies tokens issued by the identity provider. Both sides
// share the HS256 secret.
type JWTService struct {
	tokenAuth *jwtauth.JWTAuth
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// GenerateAccessToken mints an access token. Production tokens come from the
// identity provider; this is used by tests and local tooling.
func (j *JWTService) GenerateAccessToken(userID string, email string, ttl time.Duration) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(ttl).Unix()
	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"email":   email,
		"type":    TokenTypeAccess,
		"exp":     expiresAt,
	})
	return tokenString, expiresAt, err
}

// GenerateSSEToken generates a short-lived token for one workspace stream.
func (j *JWTService) GenerateSSEToken(userID string, workspaceID string) (token string, expiresIn int, err error) {
	expiresAt := time.Now().Add(sseTokenTTL).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id":      userID,
		"workspace_id": workspaceID,
		"type":         TokenTypeSSE,
		"exp":          expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, int(sseTokenTTL.Seconds()), nil
}

// ValidateSSEToken checks signature, expiry and token type.
func (j *JWTService) ValidateSSEToken(tokenString string) (SSEClaims, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return SSEClaims{}, err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != TokenTypeSSE {
		return SSEClaims{}, jwt.ErrInvalidJWT()
	}

	userID, err := stringClaim(token, "user_id")
	if err != nil {
		return SSEClaims{}, err
	}
	workspaceID, err := stringClaim(token, "workspace_id")
	if err != nil {
		return SSEClaims{}, err
	}

	return SSEClaims{UserID: userID, WorkspaceID: workspaceID}, nil
}

func stringClaim(token jwt.Token, name string) (string, error) {
	v, ok := token.Get(name)
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", jwt.ErrInvalidJWT()
	}
	return s, nil
}

// UserIDFromContext reads the authenticated user from the verified token
// placed on the context by the auth middleware.
func UserIDFromContext(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMissingUser, err)
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", ErrMissingUser
	}
	return userID, nil
}

// ContextWithUser attaches a token carrying only user_id. Background jobs and
// tests use it to call services as a given user.
func ContextWithUser(ctx context.Context, userID string) context.Context {
	token := jwt.New()
	_ = token.Set("user_id", userID)
	return jwtauth.NewContext(ctx, token, nil)
}
