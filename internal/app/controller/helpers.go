package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/shhiivvaam/ecommerce-backend/internal/errors"
	"github.com/shhiivvaam/ecommerce-backend/internal/middleware"
)

// respondError logs err at a level matching its kind and writes the mapped response.
func respondError(c *gin.Context, err error, context string, fields map[string]interface{}) {
	log := middleware.GetLoggerFromContext(c)
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["error"] = err.Error()

	if apperrors.KindOf(err) == apperrors.KindInternal {
		log.Error("Failed to "+context, err, fields)
	} else {
		log.Warn("Rejected: "+context, fields)
	}
	apperrors.RespondWithAppError(c, err, context)
}

func respondBindError(c *gin.Context, err error) {
	middleware.GetLoggerFromContext(c).Warn("Invalid request body", map[string]interface{}{
		"path":  c.Request.URL.Path,
		"error": err.Error(),
	})
	apperrors.RespondWithValidationError(c, validationFields(err))
}

// parseIDParam reads a positive numeric path parameter, replying 400 otherwise.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		middleware.GetLoggerFromContext(c).Warn("Invalid ID parameter", map[string]interface{}{
			"param": name,
			"value": raw,
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// currentUserID replies 401 when the request carries no principal.
func currentUserID(c *gin.Context) (uint, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return 0, false
	}
	return userID, true
}

func parseIntQuery(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}
