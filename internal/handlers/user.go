package handlers

import (
	"net/http"
	"socialnet/internal/models"
	"socialnet/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users  *services.UserService
	social *services.SocialService
}

func NewUserHandler(users *services.UserService, social *services.SocialService) *UserHandler {
	return &UserHandler{users: users, social: social}
}

// List - GET /users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]models.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, users[i].Serialize())
	}
	c.JSON(http.StatusOK, out)
}

// Get - GET /users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", services.ErrUserNotFound)
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Serialize())
}

// Create - POST /users
func (h *UserHandler) Create(c *gin.Context) {
	var in services.UserInput
	if err := bindBody(c, &in); err != nil {
		respondError(c, err)
		return
	}
	user, err := h.users.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user.Serialize())
}

// Update - PUT /users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id", services.ErrUserNotFound)
	if !ok {
		return
	}
	var in services.UserInput
	if err := bindBody(c, &in); err != nil {
		respondError(c, err)
		return
	}
	user, err := h.users.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Serialize())
}

// Delete - DELETE /users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", services.ErrUserNotFound)
	if !ok {
		return
	}
	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	Message(c, http.StatusOK, "User deleted")
}

// Follow - POST /users/:id/follow，:id 是被关注者
func (h *UserHandler) Follow(c *gin.Context) {
	id, ok := pathID(c, "id", services.ErrFollowedNotFound)
	if !ok {
		return
	}
	var in services.FollowInput
	if err := bindBody(c, &in); err != nil {
		respondError(c, err)
		return
	}
	followed, err := h.social.Follow(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, followed.Serialize())
}

// Unfollow - POST /users/:id/unfollow
func (h *UserHandler) Unfollow(c *gin.Context) {
	id, ok := pathID(c, "id", services.ErrUserNotFound)
	if !ok {
		return
	}
	var in services.FollowInput
	if err := bindBody(c, &in); err != nil {
		respondError(c, err)
		return
	}
	if err := h.social.Unfollow(c.Request.Context(), id, in); err != nil {
		respondError(c, err)
		return
	}
	Message(c, http.StatusOK, "Unfollowed user")
}

// Like - POST /users/:id/like
func (h *UserHandler) Like(c *gin.Context) {
	id, ok := pathID(c, "id", services.ErrUserNotFound)
	if !ok {
		return
	}
	var in services.LikeInput
	if err := bindBody(c, &in); err != nil {
		respondError(c, err)
		return
	}
	post, err := h.social.Like(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post.Serialize())
}

// Unlike - POST /users/:id/unlike
func (h *UserHandler) Unlike(c *gin.Context) {
	id, ok := pathID(c, "id", services.ErrUserNotFound)
	if !ok {
		return
	}
	var in services.LikeInput
	if err := bindBody(c, &in); err != nil {
		respondError(c, err)
		return
	}
	user, err := h.social.Unlike(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Serialize())
}
