package middleware

import (
	"errors"
	"net/http"
	"strings"

	"handyman-recruitment-backend/internal/delivery/http/response"
	"handyman-recruitment-backend/internal/domain"
	"handyman-recruitment-backend/pkg/auth"
	"handyman-recruitment-backend/pkg/logger"
	"handyman-recruitment-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

// AuthCookieName carries the access token for browser clients.
const AuthCookieName = "auth_token"

// TokenVerifier is the identity provider as seen by the HTTP layer.
type TokenVerifier interface {
	Verify(token string) (*auth.Identity, error)
}

// AuthMiddleware moves the request session from Unauthenticated through
// Authenticating to Authenticated. With required=false a request without a
// credential continues as an unauthenticated session; a credential that
// fails verification is always rejected.
func AuthMiddleware(verifier TokenVerifier, access domain.AccessUsecase, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := domain.NewSession()
		setSession(c, session)

		tokenString := bearerToken(c)
		if tokenString == "" {
			if required {
				response.Error(c, http.StatusUnauthorized, "Authorization header or auth_token cookie required", nil)
				c.Abort()
				return
			}
			c.Next()
			return
		}

		if err := session.BeginAuthentication(); err != nil {
			response.Error(c, http.StatusUnauthorized, "Invalid session state", nil)
			c.Abort()
			return
		}

		identity, err := verifier.Verify(tokenString)
		if err != nil {
			session.Fail()
			logInvalidToken(c, err)
			msg := "Invalid token"
			if errors.Is(err, auth.ErrNoProvider) {
				msg = "Authentication is not configured"
			}
			response.Error(c, http.StatusUnauthorized, msg, nil)
			c.Abort()
			return
		}

		principal := domain.Principal(identity.Subject)
		// The role stored on the session is informational; admin surfaces
		// resolve it again through the gate.
		role, err := access.ResolveRole(c, principal)
		if err != nil {
			logger.Log.Warn("Role lookup failed at login, continuing as guest", "error", err)
			role = domain.RoleGuest
		}

		if err := session.Complete(principal, identity.Email, role); err != nil {
			session.Fail()
			response.Error(c, http.StatusUnauthorized, "Invalid session state", nil)
			c.Abort()
			return
		}
		c.Set(string(domain.KeyEmail), identity.Email)

		c.Next()
	}
}

// RequireRole runs the access gate before the handler. The usecases check
// again; this keeps denied requests from reaching binding and parsing.
func RequireRole(access domain.AccessUsecase, required domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := access.AuthorizeCaller(c, required); err != nil {
			c.Error(err)
			c.Abort()
			return
		}
		c.Next()
	}
}

func setSession(c *gin.Context, s *domain.Session) {
	c.Set(string(domain.KeySession), s)
	c.Request = c.Request.WithContext(domain.WithSession(c.Request.Context(), s))
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
			return strings.TrimSpace(header[7:])
		}
		return ""
	}
	if cookie, err := c.Cookie(AuthCookieName); err == nil {
		return cookie
	}
	return ""
}

func logInvalidToken(c *gin.Context, err error) {
	security.DefaultLogger().Log(c.Request.Context(), security.SecurityEvent{
		Event:     security.EventInvalidToken,
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
		RequestID: c.GetString(RequestIDKey),
		Details:   map[string]interface{}{"path": c.FullPath(), "reason": err.Error()},
	})
}
