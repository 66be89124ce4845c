package backend

const (
	msgSignInSuccess      = "تم تسجيل الدخول بنجاح"
	msgInvalidCredentials = "البريد الإلكتروني أو كلمة المرور غير صحيحة"

	msgSignUpSuccess  = "تم إنشاء الحساب بنجاح! تم إرسال رمز التحقق إلى بريدك الإلكتروني."
	msgEmailTaken     = "البريد الإلكتروني مستخدم بالفعل"
	msgTermsRequired  = "يجب الموافقة على الشروط والأحكام"
	msgUnknownAccount = "لا يوجد حساب مرتبط بهذا البريد الإلكتروني"

	msgVerifySuccess     = "تم التحقق من البريد الإلكتروني بنجاح"
	msgAlreadyVerified   = "تم التحقق من هذا البريد الإلكتروني مسبقًا"
	msgInvalidCode       = "رمز التحقق غير صحيح"
	msgCodeExpired       = "انتهت صلاحية رمز التحقق. يرجى طلب رمز جديد."
	msgTooManyAttempts   = "تم تجاوز عدد المحاولات المسموح بها. يرجى طلب رمز جديد."
	msgResendSuccess     = "تم إرسال رمز تحقق جديد إلى بريدك الإلكتروني"
	msgForgotSuccess     = "إذا كان البريد الإلكتروني مسجلاً لدينا، فستصلك رسالة تحتوي على رابط إعادة تعيين كلمة المرور"
	msgResetSuccess      = "تم تغيير كلمة المرور بنجاح"
	msgInvalidResetToken = "رابط إعادة التعيين غير صالح أو منتهي الصلاحية"

	subjectVerification = "رمز التحقق من البريد الإلكتروني"
	subjectReset        = "إعادة تعيين كلمة المرور"
)
