package handlers

import (
	"github.com/gin-gonic/gin"

	"stockify/internal/apperr"
)

func (h HandlerSet) AdminListUsers(c *gin.Context) {
	page, err := h.users.List(c.Request.Context(), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	data := make([]userResponse, 0, len(page.Users))
	for _, u := range page.Users {
		data = append(data, newUserResponse(u))
	}
	respond(c, "Users fetched successfully", gin.H{
		"data":       data,
		"pagination": paginationBody(page.Pagination, "totalUsers"),
	})
}

type banRequest struct {
	Banned *bool `json:"banned"`
}

func (h HandlerSet) AdminSetBanned(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "id", "user")
	if !ok {
		return
	}
	var req banRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Banned == nil {
		_ = c.Error(apperr.Validation("Banned is required"))
		return
	}

	user, err := h.users.SetBanned(c.Request.Context(), actorID, userID, *req.Banned)
	if err != nil {
		_ = c.Error(err)
		return
	}

	message := "User unbanned successfully"
	if user.Banned {
		message = "User banned successfully"
	}
	respond(c, message, gin.H{"user": newUserResponse(user)})
}
