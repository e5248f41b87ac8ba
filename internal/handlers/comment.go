package handlers

import (
	"net/http"
	"socialnet/internal/models"
	"socialnet/internal/services"

	"github.com/gin-gonic/gin"
)

// CommentHandler serves comments nested under a post. Update and delete only
// see comments that belong to the post in the path.
type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// List - GET /posts/:id/comments
func (h *CommentHandler) List(c *gin.Context) {
	postID, ok := pathID(c, "id", services.ErrPostNotFound)
	if !ok {
		return
	}
	comments, err := h.comments.ListByPost(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]models.CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, comments[i].Serialize())
	}
	c.JSON(http.StatusOK, out)
}

// Create - POST /posts/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	postID, ok := pathID(c, "id", services.ErrPostNotFound)
	if !ok {
		return
	}
	var in services.CommentInput
	if err := bindBody(c, &in); err != nil {
		respondError(c, err)
		return
	}
	comment, err := h.comments.Create(c.Request.Context(), postID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment.Serialize())
}

// Update - PUT /posts/:id/comments/:comment_id
func (h *CommentHandler) Update(c *gin.Context) {
	postID, ok := pathID(c, "id", services.ErrPostNotFound)
	if !ok {
		return
	}
	commentID, ok := pathID(c, "comment_id", services.ErrCommentNotFound)
	if !ok {
		return
	}
	var in services.CommentInput
	if err := bindBody(c, &in); err != nil {
		respondError(c, err)
		return
	}
	comment, err := h.comments.Update(c.Request.Context(), postID, commentID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment.Serialize())
}

// Delete - DELETE /posts/:id/comments/:comment_id
func (h *CommentHandler) Delete(c *gin.Context) {
	postID, ok := pathID(c, "id", services.ErrPostNotFound)
	if !ok {
		return
	}
	commentID, ok := pathID(c, "comment_id", services.ErrCommentNotFound)
	if !ok {
		return
	}
	if err := h.comments.Delete(c.Request.Context(), postID, commentID); err != nil {
		respondError(c, err)
		return
	}
	Message(c, http.StatusOK, "Comment deleted")
}
