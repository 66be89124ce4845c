package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/authflow/pkg/errors"
	"github.com/charlesng35/authflow/pkg/logger"
	"github.com/charlesng35/authflow/pkg/response"
)

// Recovery converts panics into a 500 response and logs the error.
func Recovery(render ErrorRenderer) gin.HandlerFunc {
	render = renderOrJSON(render)
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithModule("http").Error("panic",
					zap.String("path", c.Request.URL.Path),
					zap.Any("error", r),
				)
				render(c, panicError(r))
			}
		}()
		c.Next()
	}
}

// panicError keeps an AppError panic value and hides anything else behind a 500.
func panicError(r any) *errors.AppError {
	err, ok := r.(error)
	if !ok {
		return errors.ErrInternalServer
	}
	appErr := errors.FromError(err)
	if appErr.Code != errors.ErrInternalServer.Code {
		return appErr
	}
	return errors.ErrInternalServer
}

// NotFoundJSON returns the JSON 404 envelope for unknown API routes.
func NotFoundJSON(c *gin.Context) {
	response.Error(c, errors.ErrNotFound.WithMessage("route "+c.Request.URL.Path+" not found"))
}
