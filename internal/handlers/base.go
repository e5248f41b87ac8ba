package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"socialnet/internal/logger"
	"socialnet/internal/services"
	"socialnet/internal/utils"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	errNoBody      = errors.New("no body provided")
	errInvalidJSON = errors.New("invalid JSON body")
)

// Message writes the {"message": ...} envelope.
func Message(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"message": message})
}

// respondError maps service errors onto status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errNoBody), errors.Is(err, errInvalidJSON):
		Message(c, http.StatusBadRequest, msg(err))
	case services.IsNotFound(err):
		Message(c, http.StatusNotFound, msg(err))
	case services.IsInvalid(err):
		Message(c, http.StatusBadRequest, msg(err))
	default:
		logger.Error.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		Message(c, http.StatusInternalServerError, "Internal server error")
	}
}

// bindBody decodes a JSON object into dst. An empty body, or an empty
// object, is errNoBody.
func bindBody(c *gin.Context, dst any) error {
	raw, err := c.GetRawData()
	if err != nil {
		return errInvalidJSON
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return errNoBody
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return errInvalidJSON
	}
	if len(fields) == 0 {
		return errNoBody
	}
	if err := binding.JSON.BindBody(raw, dst); err != nil {
		return errInvalidJSON
	}
	return nil
}

// pathID parses the named path param. A malformed id can never match a row,
// so callers answer with notFound.
func pathID(c *gin.Context, name string, notFound error) (uint, bool) {
	id, ok := utils.ParseID(c.Param(name))
	if !ok {
		respondError(c, notFound)
	}
	return id, ok
}

// msg capitalizes the first letter of an error for the client.
func msg(err error) string {
	if err == nil || err.Error() == "" {
		return ""
	}
	s := err.Error()
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
