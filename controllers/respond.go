package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"task-reviewer-api/services"
)

// statusForKind maps the service error taxonomy onto HTTP status codes.
var statusForKind = map[services.ErrorKind]int{
	services.KindAuthentication: http.StatusUnauthorized,
	services.KindAuthorization:  http.StatusForbidden,
	services.KindNotFound:       http.StatusNotFound,
	services.KindConflict:       http.StatusConflict,
	services.KindValidation:     http.StatusUnprocessableEntity,
	services.KindUpstream:       http.StatusBadGateway,
}

// respondError writes a service error with its mapped status. Unclassified
// errors become opaque 500s; the detail stays in the server log.
func respondError(c *gin.Context, err error) {
	kind := services.KindOf(err)
	status, ok := statusForKind[kind]
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error(), "kind": string(kind)})
}
