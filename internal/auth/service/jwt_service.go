package service

import (
	"time"

	"github.com/golang-jwt/jwt/v4"

	authDomain "github.com/coursekit/identity/internal/auth/domain"
	apperrors "github.com/coursekit/identity/internal/errors"
	userDomain "github.com/coursekit/identity/internal/user/domain"
)

// wireClaims is the JWT payload shape shared with the course and progress
// services. The JSON keys are part of the platform contract and must not
// change.
type wireClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"user_type"`
	jwt.RegisteredClaims
}

// jwtService implements TokenService using HS256-signed JWTs.
//
// The service is stateless apart from the signing secret, which is read-only
// after construction; instances are safe for concurrent use.
type jwtService struct {
	secret []byte
}

// NewJWTService creates a TokenService signing with the given shared secret.
// The secret must be non-empty; config validation enforces that at startup.
func NewJWTService(secret string) TokenService {
	return &jwtService{secret: []byte(secret)}
}

// Issue signs a claim set for the given identity. The email travels in
// plaintext inside the token for downstream convenience; the token itself is
// the only place plaintext email crosses a service boundary.
func (s *jwtService) Issue(
	userID int64,
	email string,
	role userDomain.Role,
	ttl time.Duration,
) (string, error) {
	now := time.Now().UTC()

	claims := &wireClaims{
		UserID: userID,
		Email:  email,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to sign token")
	}

	return token, nil
}

// Verify parses and validates a bare token string and decodes its claims.
//
// Classification order is strict: structural or signature failures report
// ErrTokenInvalid before expiry is ever considered, so an expired token with
// a bad signature is invalid, not expired. Only HS256 is accepted; a token
// signed with any other algorithm is invalid.
func (s *jwtService) Verify(token string) (*authDomain.Claims, error) {
	parsed, err := jwt.ParseWithClaims(
		token,
		&wireClaims{},
		func(t *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, classifyParseError(err)
	}

	if !parsed.Valid {
		return nil, authDomain.ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*wireClaims)
	if !ok || claims.ExpiresAt == nil {
		return nil, authDomain.ErrTokenProcessing
	}

	return &authDomain.Claims{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Role:      userDomain.Role(claims.Role),
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// classifyParseError maps jwt parse failures onto the auth error taxonomy.
// The signature and structure bits take precedence over the expiry bit: the
// parser accumulates all failures into one bitmask, and expiry must never be
// reported for a token whose signature did not check out.
func classifyParseError(err error) error {
	var vErr *jwt.ValidationError
	if !apperrors.As(err, &vErr) {
		return authDomain.ErrTokenProcessing
	}

	const invalidBits = jwt.ValidationErrorMalformed |
		jwt.ValidationErrorUnverifiable |
		jwt.ValidationErrorSignatureInvalid

	switch {
	case vErr.Errors&invalidBits != 0:
		return authDomain.ErrTokenInvalid
	case vErr.Errors&jwt.ValidationErrorExpired != 0:
		return authDomain.ErrTokenExpired
	default:
		return authDomain.ErrTokenProcessing
	}
}
