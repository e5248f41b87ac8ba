package handlers

import (
	"net/http"
	"socialnet/internal/models"
	"socialnet/internal/services"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	posts *services.PostService
}

func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// List - GET /posts
func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.posts.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]models.PostResponse, 0, len(posts))
	for i := range posts {
		out = append(out, posts[i].Serialize())
	}
	c.JSON(http.StatusOK, out)
}

// Get - GET /posts/:id
func (h *PostHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", services.ErrPostNotFound)
	if !ok {
		return
	}
	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post.Serialize())
}

// Create - POST /posts
func (h *PostHandler) Create(c *gin.Context) {
	var in services.PostInput
	if err := bindBody(c, &in); err != nil {
		respondError(c, err)
		return
	}
	post, err := h.posts.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post.Serialize())
}

// Update - PUT /posts/:id
func (h *PostHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id", services.ErrPostNotFound)
	if !ok {
		return
	}
	var in services.PostInput
	if err := bindBody(c, &in); err != nil {
		respondError(c, err)
		return
	}
	post, err := h.posts.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post.Serialize())
}

// Delete - DELETE /posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", services.ErrPostNotFound)
	if !ok {
		return
	}
	if err := h.posts.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	Message(c, http.StatusOK, "Post deleted")
}
