package handlers

import (
	"github.com/gin-gonic/gin"

	"stockify/internal/apperr"
	"stockify/internal/middleware"
	"stockify/internal/service"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

func (h HandlerSet) RegisterUser(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Mobile:   req.Mobile,
		Password: req.Password,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, "User register in successfully", gin.H{"user": newUserResponse(user)})
}

type loginRequest struct {
	EmailOrMobile string `json:"email_mobile"`
	Password      string `json:"password"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		EmailOrMobile: req.EmailOrMobile,
		Password:      req.Password,
		UserAgent:     c.GetHeader("User-Agent"),
		IPAddress:     c.ClientIP(),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.cookies.SetAccess(c, result.AccessToken)
	h.cookies.SetRefresh(c, result.RefreshToken)
	respond(c, "User login successfully", gin.H{"user": newUserResponse(result.User)})
}

// ManageToken exchanges the refresh cookie for a new access cookie.
func (h HandlerSet) ManageToken(c *gin.Context) {
	refreshToken, _ := c.Cookie(middleware.RefreshTokenCookie)
	accessToken, user, err := h.auth.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.cookies.SetAccess(c, accessToken)
	respond(c, "Token refreshed successfully", gin.H{"user": newUserResponse(user)})
}

func (h HandlerSet) Logout(c *gin.Context) {
	refreshToken, _ := c.Cookie(middleware.RefreshTokenCookie)
	if err := h.auth.Logout(c.Request.Context(), refreshToken); err != nil {
		_ = c.Error(err)
		return
	}

	h.cookies.Clear(c)
	respond(c, "Logged out successfully", nil)
}

func (h HandlerSet) LogoutAll(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	revoked, err := h.auth.LogoutAll(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.cookies.Clear(c)
	respond(c, "Logged out from all devices", gin.H{"revoked": revoked})
}

type otpRequest struct {
	EmailOrMobile string `json:"email_mobile"`
	OTP           string `json:"otp"`
}

func (h HandlerSet) VerifyOTP(c *gin.Context) {
	var req otpRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.EmailOrMobile == "" {
		_ = c.Error(apperr.Validation("Email or mobile is required"))
		return
	}

	user, err := h.otps.Verify(c.Request.Context(), req.EmailOrMobile, req.OTP)
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, "Account verified successfully", gin.H{"user": newUserResponse(user)})
}

func (h HandlerSet) ResendOTP(c *gin.Context) {
	var req otpRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.EmailOrMobile == "" {
		_ = c.Error(apperr.Validation("Email or mobile is required"))
		return
	}

	if err := h.otps.Resend(c.Request.Context(), req.EmailOrMobile); err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, "OTP sent successfully", nil)
}

func (h HandlerSet) ListSessions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	current, _ := middleware.SessionFrom(c)

	sessions, err := h.sessions.ListDevices(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	data := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		data = append(data, newSessionResponse(s, current.ID))
	}
	respond(c, "Sessions fetched successfully", gin.H{"data": data, "total": len(data)})
}

func (h HandlerSet) RevokeSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	current, _ := middleware.SessionFrom(c)

	if err := h.sessions.RevokeDevice(c.Request.Context(), userID, c.Param("id"), current.ID); err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, "Session revoked successfully", nil)
}
