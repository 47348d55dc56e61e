package response

import (
	"errors"

	"github.com/gin-gonic/gin"
	domainerrors "stablepay.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error maps the error to the {error, message, details?} body. Anything
// that is not an AppError is masked as an internal error.
func Error(c *gin.Context, err error) {
	var appErr *domainerrors.AppError
	if !errors.As(err, &appErr) {
		appErr = domainerrors.InternalError(err)
	}
	c.JSON(appErr.Status, appErr)
}
