package main

import (
	"errors"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/inout_backend/config"
	"github.com/mmdatafocus/inout_backend/utils"
)

// respondError maps the error taxonomy onto a status code. Anything
// unrecognised is logged and answered with a generic 500.
func respondError(c *gin.Context, funcName string, err error) {
	var validationErr *utils.ValidationError
	switch {
	case errors.As(err, &validationErr):
		body := gin.H{"error": validationErr.Error()}
		if len(validationErr.Fields) > 0 {
			body["details"] = validationErr.Fields
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, utils.ErrDuplicateKey):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrInsufficientInventory):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrPriceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrInUse):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		config.LogError(config.GetLogger(), "api", funcName, c.Request.Method+" "+c.FullPath(), gin.H{"correlation_id": cid}, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bindJSON binds the body into dest and answers 400 on failure.
func bindJSON(c *gin.Context, funcName string, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		respondError(c, funcName, utils.BindingError(err))
		return false
	}
	return true
}

// pathId parses the named path parameter as a positive id.
func pathId(c *gin.Context, funcName string, name string) (int, bool) {
	id, err := utils.ParseId(c.Param(name))
	if err != nil {
		respondError(c, funcName, err)
		return 0, false
	}
	return id, true
}

func attachmentDisposition(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}
