package handlers

// Page titles.
const (
	titleHome           = "الصفحة الرئيسية"
	titleSignIn         = "تسجيل الدخول"
	titleSignUp         = "إنشاء حساب جديد"
	titleVerifyEmail    = "تحقق من البريد الإلكتروني"
	titleForgotPassword = "استرداد كلمة المرور"
	titleResetPassword  = "تعيين كلمة مرور جديدة"
	titleNotFound       = "صفحة غير موجودة"
	titleError          = "خطأ"
)

// Closing quotes shown under each form.
const (
	quoteSignIn = "قال رسول الله ﷺ: من سلك طريقًا يلتمس فيه علمًا سهّل الله له به طريقًا إلى الجنة"
	quoteSignUp = "قال الله تعالى: وَقُل رَّبِّ زِدْنِي عِلْمًا"
	quoteVerify = "قال رسول الله ﷺ: إن الله يحب إذا عمل أحدكم عملاً أن يتقنه"
	quoteForgot = "قال رسول الله ﷺ: من يسر على مؤمن كربة من كرب الدنيا يسر الله عليه كربة من كرب يوم القيامة"
	quoteReset  = "قال الله تعالى: وَمَن يَتَّقِ اللَّهَ يَجْعَل لَّهُ مَخْرَجًا"
	quoteLost   = "قال الله تعالى: وَمَن يَتَوَكَّلْ عَلَى اللَّهِ فَهُوَ حَسْبُهُ"
)

const (
	msgBadSubmission = "تعذر قراءة البيانات المرسلة، يرجى المحاولة مرة أخرى"
	msgUnexpected    = "حدث خطأ غير متوقع، يرجى المحاولة لاحقاً"
)

// pageErrorMessages localises middleware errors rendered as pages.
var pageErrorMessages = map[string]string{
	"CSRF_TOKEN_INVALID":    "انتهت صلاحية النموذج، يرجى تحديث الصفحة والمحاولة مرة أخرى",
	"RATE_LIMIT_EXCEEDED":   "طلبات كثيرة، يرجى الانتظار قليلاً ثم المحاولة مرة أخرى",
	"UNAUTHORIZED":          "يرجى تسجيل الدخول للمتابعة",
	"INTERNAL_SERVER_ERROR": msgUnexpected,
}
