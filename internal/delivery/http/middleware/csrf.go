package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"time"

	"handyman-recruitment-backend/internal/delivery/http/response"

	"github.com/gin-gonic/gin"
)

const (
	CSRFTokenCookieName = "csrf_token"
	CSRFTokenHeaderName = "X-CSRF-Token"
	CSRFTokenLength     = 32
	CSRFTokenExpiry     = 24 * time.Hour
)

func generateCSRFToken() (string, error) {
	b := make([]byte, CSRFTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// CSRFMiddleware implements the double-submit cookie pattern for requests
// that authenticate with the auth_token cookie.
func CSRFMiddleware(secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		csrfCookie, err := c.Cookie(CSRFTokenCookieName)
		if err != nil || csrfCookie == "" {
			if csrfCookie, err = issueCSRFCookie(c, secureCookie); err != nil {
				response.Error(c, http.StatusInternalServerError, "Failed to generate security token", nil)
				c.Abort()
				return
			}
		}

		if !cookieAuthenticatedWrite(c) {
			c.Next()
			return
		}

		headerToken := c.GetHeader(CSRFTokenHeaderName)
		switch {
		case headerToken == "":
			response.Error(c, http.StatusForbidden, "Missing CSRF token", nil)
			c.Abort()
		case subtle.ConstantTimeCompare([]byte(headerToken), []byte(csrfCookie)) != 1:
			response.Error(c, http.StatusForbidden, "Invalid CSRF token", nil)
			c.Abort()
		default:
			c.Next()
		}
	}
}

// cookieAuthenticatedWrite reports whether the request mutates state on the
// strength of the auth cookie alone. Bearer requests cannot be forged
// cross-site and the public intake forms carry no credential at all.
func cookieAuthenticatedWrite(c *gin.Context) bool {
	switch c.Request.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	if c.GetHeader("Authorization") != "" {
		return false
	}
	authCookie, err := c.Cookie(AuthCookieName)
	return err == nil && authCookie != ""
}

func issueCSRFCookie(c *gin.Context, secure bool) (string, error) {
	token, err := generateCSRFToken()
	if err != nil {
		return "", err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	// HttpOnly is off so the admin frontend can echo the value back.
	c.SetCookie(CSRFTokenCookieName, token, int(CSRFTokenExpiry.Seconds()), "/", "", secure, false)
	return token, nil
}
