package middleware

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/charlesng35/authflow/pkg/errors"
	"github.com/charlesng35/authflow/pkg/response"
)

// ErrorRenderer writes err to the client and aborts. Pages render HTML; the API renders JSON.
type ErrorRenderer func(c *gin.Context, err *apperrors.AppError)

// JSONError is the default renderer, writing the standard JSON envelope.
func JSONError(c *gin.Context, err *apperrors.AppError) {
	response.Error(c, err)
	c.Abort()
}

func renderOrJSON(render ErrorRenderer) ErrorRenderer {
	if render == nil {
		return JSONError
	}
	return render
}
