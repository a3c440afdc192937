package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"stockify/internal/apperr"
	"stockify/internal/models"
	"stockify/internal/security"
	"stockify/internal/service"
)

const (
	claimsKey  = "auth_claims"
	sessionKey = "auth_session"
)

type AccessTokenParser interface {
	ParseAccessToken(token string) (*security.AccessClaims, error)
}

type SessionAuthenticator interface {
	Authenticate(ctx context.Context, userID int64, refreshToken string) (models.Session, error)
}

// Auth admits a request only when its access token is valid and the
// refresh token cookie still maps to an active session of the same user.
func Auth(tokens AccessTokenParser, sessions SessionAuthenticator, cookies CookieSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken, err := c.Cookie(AccessTokenCookie)
		if err != nil || accessToken == "" {
			abortWith(c, apperr.Unauthorized("Access token is required"))
			return
		}

		claims, err := tokens.ParseAccessToken(accessToken)
		if err != nil {
			abortWith(c, apperr.Forbidden("Invalid or expired token"))
			return
		}

		refreshToken, err := c.Cookie(RefreshTokenCookie)
		if err != nil || refreshToken == "" {
			abortWith(c, apperr.Unauthorized("Refresh token is required"))
			return
		}

		session, err := sessions.Authenticate(c.Request.Context(), claims.UserID, refreshToken)
		if err != nil {
			if errors.Is(err, service.ErrSessionTerminated) {
				cookies.Clear(c)
				abortWith(c, apperr.Unauthorized("Session terminated, please login again"))
				return
			}
			abortWith(c, err)
			return
		}

		c.Set(claimsKey, claims)
		c.Set(sessionKey, session)
		c.Next()
	}
}

func abortWith(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ClaimsFrom returns the access claims stored by Auth.
func ClaimsFrom(c *gin.Context) (*security.AccessClaims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*security.AccessClaims)
	return claims, ok
}

func SessionFrom(c *gin.Context) (models.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return models.Session{}, false
	}
	session, ok := v.(models.Session)
	return session, ok
}
