package flows

import (
	"github.com/charlesng35/authflow/internal/backend"
	"github.com/charlesng35/authflow/internal/forms"
	"github.com/charlesng35/authflow/internal/storage"
	apperrors "github.com/charlesng35/authflow/pkg/errors"
)

// Route paths the flows navigate between.
const (
	PathHome           = "/"
	PathSignIn         = "/auth/sign-in"
	PathSignUp         = "/auth/sign-up"
	PathVerifyEmail    = "/auth/verify-email"
	PathForgotPassword = "/auth/forgot-password"
	PathResetPassword  = "/auth/reset-password"
)

// View variants a page can render besides its form.
const (
	ViewForm        = ""
	ViewSubmitted   = "submitted"
	ViewNoEmail     = "no_email"
	ViewInvalidLink = "invalid_link"
)

// Outcome describes what a submission produced. An empty Redirect means the form stays on screen.
type Outcome struct {
	Redirect  string
	Toast     *storage.Toast
	Fields    forms.FieldErrors
	View      string
	Result    *backend.Result
	Remember  bool
	ResetCode bool
	Err       *apperrors.AppError
}

// Succeeded reports whether the backend accepted the submission.
func (o *Outcome) Succeeded() bool {
	return o != nil && o.Err == nil && o.Result != nil && o.Result.Success
}

func toastError(message string) *storage.Toast {
	return &storage.Toast{Variant: storage.ToastError, Message: message}
}

func toastSuccess(message string) *storage.Toast {
	return &storage.Toast{Variant: storage.ToastSuccess, Message: message}
}
