package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPrinter(colors, quiet bool) (*Printer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewPrinterWithWriters(&out, &errOut, colors, quiet), &out, &errOut
}

func TestParseColorMode(t *testing.T) {
	for in, want := range map[string]ColorMode{"": ColorAuto, "auto": ColorAuto, "always": ColorAlways, "never": ColorNever} {
		got, err := ParseColorMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseColorMode("sometimes")
	assert.Error(t, err)
}

func TestResolveColors(t *testing.T) {
	assert.True(t, ResolveColors(ColorAlways))
	assert.False(t, ResolveColors(ColorNever))

	t.Setenv("NO_COLOR", "1")
	assert.False(t, ResolveColors(ColorAuto))
}

func TestPrinter_Plain(t *testing.T) {
	p, out, errOut := newTestPrinter(false, false)

	p.Info("found %d", 3)
	p.Success("index updated")
	p.Warning("slow")
	p.Error("broken")

	assert.Equal(t, "found 3\n[OK] index updated\n", out.String())
	assert.Equal(t, "[WARN] slow\n[ERROR] broken\n", errOut.String())
}

func TestPrinter_Quiet(t *testing.T) {
	p, out, errOut := newTestPrinter(false, true)

	p.Info("hidden")
	p.Success("hidden")
	p.Warning("hidden")
	p.Error("shown")

	assert.Empty(t, out.String())
	assert.Equal(t, "[ERROR] shown\n", errOut.String())
}

func TestPrinter_Colors(t *testing.T) {
	p, out, _ := newTestPrinter(true, false)

	p.Success("done")

	assert.Contains(t, out.String(), "\x1b[")
	assert.Contains(t, out.String(), "✓ done")
}

func TestPrinter_Highlight(t *testing.T) {
	plain, _, _ := newTestPrinter(false, false)
	assert.Equal(t, "/bin/sh", plain.Highlight("sh", "/bin/sh"))
	assert.Equal(t, "/bin/sh", plain.Dim("/bin/sh"))

	colored, _, _ := newTestPrinter(true, false)
	got := colored.Highlight("sh", "/bin/sh")
	assert.NotEqual(t, "/bin/sh", got)
	assert.Contains(t, got, "/bin/")
	assert.Contains(t, got, "\x1b[")
}

func TestFormatError(t *testing.T) {
	p, _, errOut := newTestPrinter(false, false)

	p.FormatError(&CLIError{
		Summary:    "locate is not available",
		Detail:     "exit status 1",
		Suggestion: "run 'locatecat update'",
		ExitCode:   ExitUnavailable,
	})

	assert.Equal(t, "[ERROR] locate is not available\n  Cause: exit status 1\n  Suggestion: run 'locatecat update'\n", errOut.String())
}

func TestFormatError_NoDetail(t *testing.T) {
	p, _, errOut := newTestPrinter(false, false)

	p.FormatError(&CLIError{Summary: "bad flag"})

	assert.NotContains(t, errOut.String(), "Cause:")
	assert.NotContains(t, errOut.String(), "Suggestion:")
}

func TestCLIError_Error(t *testing.T) {
	assert.Equal(t, "failed", (&CLIError{Summary: "failed", Detail: "x"}).Error())
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "confidence", "path")
	tbl.AddRow("1.00", "/bin/sh")
	tbl.AddRow("0.27", "/usr/bin/shutdown")

	require.NoError(t, tbl.Render())

	assert.Equal(t, 2, tbl.Len())
	assert.Contains(t, buf.String(), "/usr/bin/shutdown")
	assert.Contains(t, buf.String(), "CONFIDENCE")
}
