package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// CookieSettings controls the attributes of the auth cookies. Both cookies
// are HttpOnly, SameSite=Strict and scoped to "/".
type CookieSettings struct {
	Domain        string
	Secure        bool
	AccessMaxAge  time.Duration
	RefreshMaxAge time.Duration
}

func (s CookieSettings) SetAccess(c *gin.Context, token string) {
	s.set(c, AccessTokenCookie, token, int(s.AccessMaxAge/time.Second))
}

func (s CookieSettings) SetRefresh(c *gin.Context, token string) {
	s.set(c, RefreshTokenCookie, token, int(s.RefreshMaxAge/time.Second))
}

func (s CookieSettings) Clear(c *gin.Context) {
	s.set(c, AccessTokenCookie, "", -1)
	s.set(c, RefreshTokenCookie, "", -1)
}

func (s CookieSettings) set(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(name, value, maxAge, "/", s.Domain, s.Secure, true)
}
