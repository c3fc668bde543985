package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/coursekit/identity/internal/auth/domain"
	authService "github.com/coursekit/identity/internal/auth/service"
	"github.com/coursekit/identity/internal/httputil"
	userDomain "github.com/coursekit/identity/internal/user/domain"
)

// bearerPrefix is stripped case-sensitively, matching the contract the
// sibling services implement.
const bearerPrefix = "Bearer "

// AuthenticationMiddleware guards routes behind a valid bearer token.
//
// The middleware:
//  1. Rejects with TOKEN_MISSING before any parsing when no Authorization
//     value is present
//  2. Strips the "Bearer " prefix when present and verifies the bare token
//  3. Maps verification failures to their stable codes (TOKEN_INVALID,
//     TOKEN_EXPIRED, TOKEN_PROCESSING_ERROR), all 401
//  4. Stores the verified claims in the request context for downstream
//     handlers via GetIdentity()
//
// The guard itself is stateless; it never invokes the wrapped handler on
// failure.
func AuthenticationMiddleware(
	tokenService authService.TokenService,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, authDomain.ErrTokenMissing, logger)
			c.Abort()
			return
		}

		token := strings.TrimPrefix(header, bearerPrefix)

		claims, err := tokenService.Verify(token)
		if err != nil {
			logger.Debug("authentication failed",
				slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		ctx := WithIdentity(c.Request.Context(), claims)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful",
			slog.Int64("user_id", claims.UserID),
			slog.String("role", string(claims.Role)))

		c.Next()
	}
}

// RequireRoleMiddleware gates a route on an exact role match.
//
// Must run after AuthenticationMiddleware: the role is read from the
// verified claims in the request context, so an invalid token is rejected by
// the authentication step and never learns whether its role would have
// sufficed. A mismatch responds 403 FORBIDDEN_ACCESS without invoking the
// handler; there is no role hierarchy.
func RequireRoleMiddleware(
	requiredRole userDomain.Role,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetIdentity(c.Request.Context())
		if !ok || claims == nil {
			// Authentication middleware did not run; treat as unauthenticated.
			logger.Debug("authorization failed: no identity in context")
			httputil.HandleErrorGin(c, authDomain.ErrTokenMissing, logger)
			c.Abort()
			return
		}

		if claims.Role != requiredRole {
			logger.Debug("authorization failed: insufficient role",
				slog.Int64("user_id", claims.UserID),
				slog.String("role", string(claims.Role)),
				slog.String("required_role", string(requiredRole)))
			httputil.HandleErrorGin(c, authDomain.ErrForbiddenAccess, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}
