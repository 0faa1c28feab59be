package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STORAGE_DRIVER", "memory")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(append([]string{"--no-color"}, args...))
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))

	err := root.Execute()
	return out.String(), err
}

func TestCalcCommand(t *testing.T) {
	out, err := execute(t, "", "calc", "2 + 3 * 4")
	require.NoError(t, err)
	assert.Contains(t, out, "14")

	out, err = execute(t, "", "calc", "x + 5 = 10")
	require.NoError(t, err)
	assert.Contains(t, out, "x = 5")

	_, err = execute(t, "", "calc", "5 / 0")
	assert.Error(t, err)
}

func TestCountCommand(t *testing.T) {
	out, err := execute(t, "", "count", "الله")
	require.NoError(t, err)
	assert.Equal(t, "الله: 5\n", out)
}

func TestVerseCommand(t *testing.T) {
	out, err := execute(t, "", "verse", "1", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "ترجمه")

	_, err = execute(t, "", "verse", "one", "1")
	assert.Error(t, err)
}

func TestAskCommand(t *testing.T) {
	out, err := execute(t, "", "ask", "--session", "cli-test", "نماز صبح چند رکعت است؟")
	require.NoError(t, err)
	assert.Contains(t, out, "نماز صبح دو رکعت است.")
}

func TestChatCommand(t *testing.T) {
	out, err := execute(t, "۲ به توان ۳ چند میشه؟\n/reset\nexit\nnot reached\n", "chat")
	require.NoError(t, err)
	assert.Contains(t, out, "8")
	assert.NotContains(t, out, "not reached")
}

func TestConfigShowRedactsSecrets(t *testing.T) {
	t.Setenv("TELEGRAM_API_TOKEN", "secret-token")

	out, err := execute(t, "", "config", "show")
	require.NoError(t, err)
	assert.NotContains(t, out, "secret-token")
	assert.Contains(t, out, redacted)
}

func TestColorize(t *testing.T) {
	old := noColor
	defer func() { noColor = old }()

	noColor = true
	assert.Equal(t, "x", colorize(colorRed, "x"))

	noColor = false
	assert.Equal(t, colorRed+"x"+colorReset, colorize(colorRed, "x"))
}
