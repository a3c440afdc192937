package handlers

import (
	"github.com/gin-gonic/gin"

	"stockify/internal/service"
)

func (h HandlerSet) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, "User fetched successfully", gin.H{"user": newUserResponse(user)})
}

func (h HandlerSet) EditUser(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	fields, avatar, err := editForm(c, "name", "mobile")
	if err != nil {
		_ = c.Error(err)
		return
	}

	user, changed, err := h.users.Edit(c.Request.Context(), userID, service.EditUserInput{
		Name:   fields["name"],
		Mobile: fields["mobile"],
		Avatar: avatar,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !changed {
		respond(c, "No changes detected. User data is already up to date", gin.H{"user": newUserResponse(user)})
		return
	}

	respond(c, "User updated successfully", gin.H{"user": newUserResponse(user)})
}
