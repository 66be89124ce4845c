package handlers_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/authflow/internal/flows"
	"github.com/charlesng35/authflow/internal/handlers/testutil"
	"github.com/charlesng35/authflow/internal/middleware"
	"github.com/charlesng35/authflow/internal/models"
)

const (
	textPasswordMismatch = "كلمات المرور غير متطابقة"
	textNotFound         = "الصفحة غير موجودة"
	textInvalidLink      = "رابط غير صالح"
	textNoEmail          = "خطأ في عنوان البريد الإلكتروني"
	textLinkSent         = "تم إرسال الرابط"
	textWelcome          = "تم تفعيل بريدك الإلكتروني بنجاح! مرحباً بك."
	textSignInFailed     = "البريد الإلكتروني أو كلمة المرور غير صحيحة"
	textBackToSignIn     = "العودة إلى تسجيل الدخول"
	textCodeIncomplete   = "يرجى إدخال رمز التحقق كاملاً"
)

func signUpValues(email string) url.Values {
	return url.Values{
		"firstName":       {"Sara"},
		"lastName":        {"Ali"},
		"email":           {email},
		"password":        {"Str0ng@Pass"},
		"confirmPassword": {"Str0ng@Pass"},
		"acceptTerms":     {"true"},
	}
}

func codeValues(code string) url.Values {
	values := url.Values{}
	for i, r := range code {
		values.Set("digit"+string(rune('0'+i)), string(r))
	}
	return values
}

func TestSignUpStoresTokenAndNavigatesToVerification(t *testing.T) {
	env := testutil.NewEnv(t)

	form := env.Get("/auth/sign-up")
	require.Equal(t, http.StatusOK, form.Code)
	require.Contains(t, form.Body.String(), `name="`+middleware.CSRFFormField+`"`)

	w := env.PostForm("/auth/sign-up", signUpValues("sara@example.com"))
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	require.Equal(t, flows.PathVerifyEmail, w.Header().Get("Location"))

	token, err := env.Flows.Storage().Token(context.Background(), env.ClientID())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	profile, err := env.Flows.Storage().Profile(context.Background(), env.ClientID())
	require.NoError(t, err)
	require.NotNil(t, profile)
	require.Equal(t, "sara@example.com", profile.Email)
	require.False(t, profile.EmailVerified)

	page := env.Follow(w)
	require.Equal(t, http.StatusOK, page.Code)
	body := page.Body.String()
	require.Contains(t, body, "sara@example.com")
	require.NotContains(t, body, textBackToSignIn)
	require.Len(t, env.Mailer.Messages(), 1)
}

func TestSignUpPasswordMismatchReportsConfirmationField(t *testing.T) {
	env := testutil.NewEnv(t)

	values := signUpValues("mismatch@example.com")
	values.Set("confirmPassword", "Other@Pass1")

	w := env.PostForm("/auth/sign-up", values)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := w.Body.String()
	require.Contains(t, body, textPasswordMismatch)
	require.Contains(t, body, `value="mismatch@example.com"`)
	require.NotContains(t, body, "Str0ng@Pass")

	var count int64
	require.NoError(t, env.DB.Model(&models.User{}).Where("email = ?", "mismatch@example.com").Count(&count).Error)
	require.Zero(t, count)
}

func TestVerifyEmailMarksProfileVerified(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.PostForm("/auth/sign-up", signUpValues("verify@example.com"))
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())

	w = env.PostForm("/auth/verify-email", codeValues(testutil.FixedCode))
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	require.Equal(t, flows.PathHome, w.Header().Get("Location"))

	home := env.Follow(w)
	require.Equal(t, http.StatusOK, home.Code)
	require.Contains(t, home.Body.String(), textWelcome)

	profile, err := env.Flows.Storage().Profile(context.Background(), env.ClientID())
	require.NoError(t, err)
	require.True(t, profile.EmailVerified)
}

func TestVerifyEmailUsesClientAddressOnly(t *testing.T) {
	env := testutil.NewEnv(t)

	require.Equal(t, http.StatusSeeOther, env.PostForm("/auth/sign-up", signUpValues("other@example.com")).Code)
	require.Equal(t, http.StatusSeeOther, env.Get("/auth/sign-out").Code)
	require.Equal(t, http.StatusSeeOther, env.PostForm("/auth/sign-up", signUpValues("mine@example.com")).Code)

	values := codeValues(testutil.FixedCode)
	values.Set("email", "other@example.com")
	w := env.PostForm("/auth/verify-email", values)
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	require.Equal(t, flows.PathHome, w.Header().Get("Location"))

	profile, err := env.Flows.Storage().Profile(context.Background(), env.ClientID())
	require.NoError(t, err)
	require.Equal(t, "mine@example.com", profile.Email)
	require.True(t, profile.EmailVerified)

	var mine, other models.User
	require.NoError(t, env.DB.Where("email = ?", "mine@example.com").First(&mine).Error)
	require.NoError(t, env.DB.Where("email = ?", "other@example.com").First(&other).Error)
	require.True(t, mine.EmailVerified())
	require.False(t, other.EmailVerified())
}

func TestVerifyEmailPasteFillsCode(t *testing.T) {
	env := testutil.NewEnv(t)

	require.Equal(t, http.StatusSeeOther, env.PostForm("/auth/sign-up", signUpValues("paste@example.com")).Code)

	w := env.PostForm("/auth/verify-email", url.Values{"paste": {"12-34-56"}})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	require.Equal(t, flows.PathHome, w.Header().Get("Location"))
}

func TestVerifyEmailIncompleteCode(t *testing.T) {
	env := testutil.NewEnv(t)

	require.Equal(t, http.StatusSeeOther, env.PostForm("/auth/sign-up", signUpValues("partial@example.com")).Code)

	w := env.PostForm("/auth/verify-email", codeValues("123"))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Contains(t, w.Body.String(), textCodeIncomplete)
}

func TestVerifyEmailNonDigitsNeverFillSlots(t *testing.T) {
	env := testutil.NewEnv(t)

	require.Equal(t, http.StatusSeeOther, env.PostForm("/auth/sign-up", signUpValues("letters@example.com")).Code)

	w := env.PostForm("/auth/verify-email", url.Values{"paste": {"abcdef"}})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Contains(t, w.Body.String(), textCodeIncomplete)
	require.NotContains(t, w.Body.String(), `value="a"`)
}

func TestVerifyEmailWithoutEmailShowsErrorView(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Get("/auth/verify-email")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), textNoEmail)
	require.Contains(t, w.Body.String(), `href="/auth/sign-up"`)
}

func TestResendVerificationStartsCooldown(t *testing.T) {
	env := testutil.NewEnv(t)

	require.Equal(t, http.StatusSeeOther, env.PostForm("/auth/sign-up", signUpValues("resend@example.com")).Code)

	w := env.PostForm("/auth/verify-email/resend", url.Values{})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	require.Equal(t, flows.PathVerifyEmail, w.Header().Get("Location"))
	require.Len(t, env.Mailer.Messages(), 2)

	page := env.Follow(w)
	require.Equal(t, http.StatusOK, page.Code)
	require.Contains(t, page.Body.String(), "data-cooldown=")

	w = env.PostForm("/auth/verify-email/resend", url.Values{})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Len(t, env.Mailer.Messages(), 2)
}

func TestSignInRememberMePersistsClientCookie(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.PostForm("/auth/sign-in", url.Values{
		"email":      {testutil.DemoEmail},
		"password":   {testutil.DemoPassword},
		"rememberMe": {"true"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	require.Equal(t, flows.PathHome, w.Header().Get("Location"))

	cookie := env.Cookie(middleware.ClientCookieName)
	require.NotNil(t, cookie)
	require.Equal(t, int(env.Config.Server.RememberFor.Seconds()), cookie.MaxAge)

	home := env.Follow(w)
	require.Equal(t, http.StatusOK, home.Code)
	require.Contains(t, home.Body.String(), `href="/auth/sign-out"`)
}

func TestSignInWrongPasswordStaysOnForm(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.PostForm("/auth/sign-in", url.Values{
		"email":    {testutil.DemoEmail},
		"password": {"Wrong@Pass1"},
	})
	require.NotEqual(t, http.StatusSeeOther, w.Code)
	require.Contains(t, w.Body.String(), textSignInFailed)

	token, err := env.Flows.Storage().Token(context.Background(), env.ClientID())
	require.NoError(t, err)
	require.Empty(t, token)
}

func TestSignOutClearsToken(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.PostForm("/auth/sign-in", url.Values{
		"email":    {testutil.DemoEmail},
		"password": {testutil.DemoPassword},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = env.Get("/auth/sign-out")
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, flows.PathSignIn, w.Header().Get("Location"))

	token, err := env.Flows.Storage().Token(context.Background(), env.ClientID())
	require.NoError(t, err)
	require.Empty(t, token)
}

func TestForgotAndResetPassword(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.PostForm("/auth/forgot-password", url.Values{"email": {testutil.DemoEmail}})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())

	sent := env.Follow(w)
	require.Equal(t, http.StatusOK, sent.Code)
	require.Contains(t, sent.Body.String(), textLinkSent)

	again := env.Get("/auth/forgot-password?again=1")
	require.Equal(t, http.StatusSeeOther, again.Code)
	form := env.Follow(again)
	require.NotContains(t, form.Body.String(), textLinkSent)

	token := env.Mailer.LastResetToken(t, testutil.DemoEmail)

	page := env.Get("/auth/reset-password?token=" + url.QueryEscape(token))
	require.Equal(t, http.StatusOK, page.Code)
	require.NotContains(t, page.Body.String(), textInvalidLink)

	w = env.PostForm("/auth/reset-password", url.Values{
		"token":              {token},
		"newPassword":        {"N3w@Passw0rd"},
		"confirmNewPassword": {"N3w@Passw0rd"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	require.Equal(t, flows.PathSignIn, w.Header().Get("Location"))

	w = env.PostForm("/auth/sign-in", url.Values{
		"email":    {testutil.DemoEmail},
		"password": {"N3w@Passw0rd"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
}

func TestForgotPasswordUnknownEmailLooksTheSame(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.PostForm("/auth/forgot-password", url.Values{"email": {"nobody@example.com"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Empty(t, env.Mailer.Messages())
}

func TestResetPasswordWithoutTokenShowsInvalidLink(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Get("/auth/reset-password")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), textInvalidLink)
}

func TestResetPasswordMismatch(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.PostForm("/auth/reset-password", url.Values{
		"token":              {"some-token"},
		"newPassword":        {"N3w@Passw0rd"},
		"confirmNewPassword": {"N3w@Passw0rd!"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Contains(t, w.Body.String(), textPasswordMismatch)
}

func TestUnknownAuthRouteRendersNotFound(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Get("/auth/does-not-exist")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), textNotFound)

	w = env.Get("/elsewhere")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), textNotFound)
}

func TestFormPostWithoutCSRFIsRejected(t *testing.T) {
	env := testutil.NewEnv(t)

	require.Equal(t, http.StatusOK, env.Get("/auth/sign-in").Code)

	w := env.PostFormWithoutCSRF("/auth/sign-in", url.Values{
		"email":    {testutil.DemoEmail},
		"password": {testutil.DemoPassword},
	})
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "text/html")
}
