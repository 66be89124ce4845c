package forms

// SignIn is the sign-in form.
type SignIn struct {
	Email      string `json:"email" form:"email" validate:"email"`
	Password   string `json:"password" form:"password" validate:"min=8,strongpassword"`
	RememberMe bool   `json:"rememberMe" form:"rememberMe"`
}

// SignUp is the registration form.
type SignUp struct {
	FirstName            string `json:"firstName" form:"firstName" validate:"min=2,max=50,personname"`
	LastName             string `json:"lastName" form:"lastName" validate:"min=2,max=50,personname"`
	Email                string `json:"email" form:"email" validate:"required,email,max=100"`
	Password             string `json:"password" form:"password" validate:"min=8,max=128,strongpassword"`
	ConfirmPassword      string `json:"confirmPassword" form:"confirmPassword" validate:"required,eqfield=Password"`
	AcceptTerms          bool   `json:"acceptTerms" form:"acceptTerms" validate:"required"`
	ReceiveNotifications bool   `json:"receiveNotifications" form:"receiveNotifications"`
}

// VerifyEmail is the six-digit code form.
type VerifyEmail struct {
	VerificationCode string `json:"verificationCode" form:"verificationCode" validate:"min=6,max=6,digits"`
	Email            string `json:"email" form:"email" validate:"omitempty,email"`
}

// ResendVerification requests a fresh verification code.
type ResendVerification struct {
	Email string `json:"email" form:"email" validate:"required,email"`
}

// ForgotPassword requests a reset link.
type ForgotPassword struct {
	Email string `json:"email" form:"email" validate:"required,email,max=100"`
}

// ResetPassword sets a new password using the token from the reset link.
type ResetPassword struct {
	Token              string `json:"token" form:"token" validate:"required"`
	NewPassword        string `json:"newPassword" form:"newPassword" validate:"min=8,max=128,strongpassword"`
	ConfirmNewPassword string `json:"confirmNewPassword" form:"confirmNewPassword" validate:"required,eqfield=NewPassword"`
}

func (SignIn) messages() map[string]string             { return signInMessages }
func (SignUp) messages() map[string]string             { return signUpMessages }
func (VerifyEmail) messages() map[string]string        { return verifyEmailMessages }
func (ResendVerification) messages() map[string]string { return resendMessages }
func (ForgotPassword) messages() map[string]string     { return forgotPasswordMessages }
func (ResetPassword) messages() map[string]string      { return resetPasswordMessages }
