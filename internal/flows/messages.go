package flows

const (
	msgSignInFailed = "البريد الإلكتروني أو كلمة المرور غير صحيحة"
	msgSignInError  = "حدث خطأ أثناء محاولة تسجيل الدخول"
	msgSignUpError  = "حدث خطأ أثناء محاولة إنشاء الحساب"

	msgCodeIncomplete   = "يرجى إدخال رمز التحقق كاملاً"
	msgVerifyError      = "حدث خطأ أثناء محاولة التحقق من البريد الإلكتروني"
	msgVerifiedWelcome  = "تم تفعيل بريدك الإلكتروني بنجاح! مرحباً بك."
	msgEmailUnavailable = "عنوان البريد الإلكتروني غير متوفر"
	msgResendError      = "حدث خطأ أثناء محاولة إعادة إرسال رمز التحقق"
	msgResendCooldown   = "يرجى الانتظار %d ثانية قبل إعادة الإرسال"

	msgForgotError = "حدث خطأ أثناء محاولة إرسال رابط إعادة التعيين"
	msgResetError  = "حدث خطأ أثناء محاولة تغيير كلمة المرور"
	msgResetDone   = "تم تغيير كلمة المرور بنجاح. يمكنك الآن تسجيل الدخول بكلمة المرور الجديدة."

	msgInvalidForm = "يرجى تصحيح الحقول المميزة"
	msgPending     = "جارٍ معالجة طلبك، يرجى الانتظار"
)
