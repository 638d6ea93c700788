package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	dom "taskmanager/internal/domain"
	"taskmanager/internal/dto"
	"taskmanager/internal/validation"

	"github.com/gin-gonic/gin"
)

// RequestIDKey is where the request-id middleware stores the id.
const RequestIDKey = "request_id"

// writeError maps an error to its status code. Anything unrecognized is
// logged with the request id and reported as a bare 500.
func writeError(c *gin.Context, err error) {
	var verr *dom.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, dom.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "email already registered"})
	case errors.Is(err, dom.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	case errors.Is(err, dom.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "not found"})
	default:
		log.Printf("request %s: %s %s: %v", c.GetString(RequestIDKey), c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
}

// writeBindError reports a failed ShouldBind*. Validator failures become
// per-field messages; malformed JSON or query values are a plain 400.
func writeBindError(c *gin.Context, err error) {
	err = validation.FromError(err)
	var verr *dom.ValidationError
	if errors.As(err, &verr) {
		writeError(c, verr)
		return
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		writeError(c, dom.NewValidationError(typeErr.Field, "has the wrong type"))
		return
	}
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed request"})
}
