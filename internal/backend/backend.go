package backend

import "context"

// UserProfile is the user data returned alongside a token.
type UserProfile struct {
	ID                   string `json:"id"`
	FirstName            string `json:"firstName"`
	LastName             string `json:"lastName"`
	Email                string `json:"email"`
	EmailVerified        bool   `json:"emailVerified"`
	ReceiveNotifications bool   `json:"receiveNotifications"`
}

// Result is the outcome of a backend call. A rejected request is a Result with Success=false,
// never an error.
type Result struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Token   string       `json:"token,omitempty"`
	Data    *UserProfile `json:"data,omitempty"`
}

// SignUpRequest carries the fields of a registration.
type SignUpRequest struct {
	FirstName            string
	LastName             string
	Email                string
	Password             string
	AcceptTerms          bool
	ReceiveNotifications bool
}

// Backend is the authentication API the flows talk to.
type Backend interface {
	SignIn(ctx context.Context, email, password string, remember bool) (*Result, error)
	SignUp(ctx context.Context, req SignUpRequest) (*Result, error)
	VerifyEmail(ctx context.Context, code, email string) (*Result, error)
	ResendVerification(ctx context.Context, email string) (*Result, error)
	ForgotPassword(ctx context.Context, email string) (*Result, error)
	ResetPassword(ctx context.Context, token, newPassword string) (*Result, error)
}

func success(message string) *Result {
	return &Result{Success: true, Message: message}
}

func failure(message string) *Result {
	return &Result{Success: false, Message: message}
}
