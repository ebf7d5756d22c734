package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"pollsapi/internal/core"
)

// writeError translates a classified core error into the transport shape.
// Unexpected errors are logged with their cause and surfaced opaquely.
func writeError(c *gin.Context, err error) {
	var ce *core.Error
	if !errors.As(err, &ce) {
		ce = core.Internal(err)
	}

	if ce.Kind == core.KindInternal {
		log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, errors.Unwrap(ce))
	}

	body := gin.H{"error": ce.Message, "code": ce.Code}
	if ce.Field != "" {
		body["field"] = ce.Field
	}
	c.JSON(statusFor(ce), body)
}

func statusFor(e *core.Error) int {
	switch e.Kind {
	case core.KindValidation:
		return http.StatusBadRequest
	case core.KindAuthRequired:
		return http.StatusUnauthorized
	case core.KindForbidden:
		return http.StatusForbidden
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindConflict:
		return http.StatusConflict
	case core.KindRuleViolation:
		if e.Code == core.CodeAlreadyVoted {
			return http.StatusConflict
		}
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
