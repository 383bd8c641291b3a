package oracle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStripANSI(t *testing.T) {
	colored := "\x1b[1;32mhello\x1b[0m world\x1b[2K"
	require.Equal(t, "hello world", StripANSI(colored))
}

func TestStripANSI_PlainTextUntouched(t *testing.T) {
	require.Equal(t, "plain text", StripANSI("plain text"))
}

func TestCleanSessionOutput(t *testing.T) {
	raw := "\x1b[36m> \x1b[0mfirst line\r\n\r\n\r\n\r\nsecond line\rthird\n"
	cleaned := CleanSessionOutput(raw)
	require.Equal(t, "> first line\n\nsecond line\nthird", cleaned)
}

func TestCleanSessionOutput_Empty(t *testing.T) {
	require.Empty(t, CleanSessionOutput("\x1b[2J\r\n\r\n"))
}
