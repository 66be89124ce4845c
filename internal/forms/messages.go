package forms

// Field messages keyed by "<field>.<tag>".
const (
	msgEmailInvalid  = "يرجى إدخال عنوان بريد إلكتروني صالح"
	msgEmailRequired = "البريد الإلكتروني مطلوب"
	msgEmailTooLong  = "يجب ألا يزيد البريد الإلكتروني عن 100 حرف"

	msgPasswordTooShort = "يجب أن تتكون كلمة المرور من 8 أحرف على الأقل"
	msgPasswordTooLong  = "يجب ألا تزيد كلمة المرور عن 128 حرفًا"
	msgPasswordWeak     = "يجب أن تحتوي كلمة المرور على حرف كبير واحد على الأقل، وحرف صغير واحد، ورقم واحد، وحرف خاص واحد"
	msgPasswordMismatch = "كلمات المرور غير متطابقة"

	msgCodeLength = "يجب أن يتكون رمز التحقق من 6 أرقام"
	msgCodeDigits = "يجب أن يحتوي رمز التحقق على أرقام فقط"

	msgFallback = "قيمة غير صالحة"
)

var signInMessages = map[string]string{
	"email.email":             msgEmailInvalid,
	"password.min":            msgPasswordTooShort,
	"password.strongpassword": msgPasswordWeak,
}

var signUpMessages = map[string]string{
	"firstName.min":            "يجب أن يحتوي الاسم الأول على حرفين على الأقل",
	"firstName.max":            "يجب ألا يزيد الاسم الأول عن 50 حرفًا",
	"firstName.personname":     "يجب أن يحتوي الاسم الأول على أحرف فقط",
	"lastName.min":             "يجب أن يحتوي الاسم الأخير على حرفين على الأقل",
	"lastName.max":             "يجب ألا يزيد الاسم الأخير عن 50 حرفًا",
	"lastName.personname":      "يجب أن يحتوي الاسم الأخير على أحرف فقط",
	"email.required":           msgEmailRequired,
	"email.email":              msgEmailInvalid,
	"email.max":                msgEmailTooLong,
	"password.min":             msgPasswordTooShort,
	"password.max":             msgPasswordTooLong,
	"password.strongpassword":  msgPasswordWeak,
	"confirmPassword.required": "تأكيد كلمة المرور مطلوب",
	"confirmPassword.eqfield":  msgPasswordMismatch,
	"acceptTerms.required":     "يجب الموافقة على الشروط والأحكام",
}

var verifyEmailMessages = map[string]string{
	"verificationCode.min":    msgCodeLength,
	"verificationCode.max":    msgCodeLength,
	"verificationCode.digits": msgCodeDigits,
	"email.email":             msgEmailInvalid,
}

var resendMessages = map[string]string{
	"email.required": msgEmailRequired,
	"email.email":    msgEmailInvalid,
}

var forgotPasswordMessages = map[string]string{
	"email.required": msgEmailRequired,
	"email.email":    msgEmailInvalid,
	"email.max":      msgEmailTooLong,
}

var resetPasswordMessages = map[string]string{
	"token.required":              "رمز إعادة تعيين كلمة المرور مطلوب",
	"newPassword.min":             "يجب أن تتكون كلمة المرور الجديدة من 8 أحرف على الأقل",
	"newPassword.max":             "يجب ألا تزيد كلمة المرور الجديدة عن 128 حرفًا",
	"newPassword.strongpassword":  msgPasswordWeak,
	"confirmNewPassword.required": "تأكيد كلمة المرور الجديدة مطلوب",
	"confirmNewPassword.eqfield":  msgPasswordMismatch,
}
