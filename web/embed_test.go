package web_test

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/authflow/internal/handlers"
	"github.com/charlesng35/authflow/web"
)

func TestTemplatesParse(t *testing.T) {
	tmpl, err := web.Templates(handlers.TemplateFuncs())
	require.NoError(t, err)
	for _, name := range []string{"sign-in.html", "sign-up.html", "verify-email.html", "forgot-password.html", "reset-password.html", "not-found.html"} {
		require.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestCodeScriptIgnoresMultiDigitInput(t *testing.T) {
	static, err := web.Static()
	require.NoError(t, err)

	script, err := fs.ReadFile(static, "app.js")
	require.NoError(t, err)
	src := string(script)

	// A slot receiving several digits falls back to its previous value, like forms.CodeInput.Type.
	require.NotContains(t, src, "slice(-1)")
	start := strings.Index(src, "value.length > 1")
	require.NotEqual(t, -1, start)
	branch := src[start:]
	branch = branch[:strings.Index(branch, "}")]
	require.Contains(t, branch, "input.dataset.prev")
	require.Contains(t, branch, "return;")
}
