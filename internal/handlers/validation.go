package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	appErrors "github.com/charlesng35/authflow/pkg/errors"
	"github.com/charlesng35/authflow/pkg/response"
)

// bindJSON decodes the JSON payload into dest. Field rules run later in the flow so their
// messages reach the client in the same shape as page errors.
// When decoding fails, an error response is written and false is returned.
func bindJSON[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindWith(dest, binding.JSON); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid JSON payload"))
		return false
	}
	return true
}

// bindForm decodes a url-encoded page submission into dest.
func bindForm[T any](c *gin.Context, dest *T) error {
	return c.ShouldBindWith(dest, binding.Form)
}
