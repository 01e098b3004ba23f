package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRenderer_UnknownModeFallsBackToAuto(t *testing.T) {
	r := NewRenderer(&strings.Builder{}, &strings.Builder{}, Mode("weird"))
	assert.Equal(t, ModeAuto, r.Mode())
}

func TestEffectiveMode_AutoOnBufferIsMarkdown(t *testing.T) {
	r := NewRenderer(&strings.Builder{}, &strings.Builder{}, ModeAuto)
	assert.Equal(t, ModeMarkdown, r.EffectiveMode(), "non-TTY auto output is markdown")
}

func TestEffectiveMode_ExplicitModesPassThrough(t *testing.T) {
	for _, mode := range []Mode{ModeText, ModeMarkdown, ModeJSON} {
		r := NewRenderer(&strings.Builder{}, &strings.Builder{}, mode)
		assert.Equal(t, mode, r.EffectiveMode())
	}
}

func TestMarkdownOutput(t *testing.T) {
	var out, errW strings.Builder
	r := NewRenderer(&out, &errW, ModeMarkdown)

	r.Header(2, "Models")
	r.KeyValue("Kind", "program")
	r.Success("done")
	r.Warning("careful")
	r.Error("broken")

	assert.Contains(t, out.String(), "## Models")
	assert.Contains(t, out.String(), "- **Kind**: program")
	assert.Contains(t, out.String(), "✓ done")
	assert.Contains(t, errW.String(), "! careful")
	assert.Contains(t, errW.String(), "✗ broken")
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "# Title", FormatHeader(1, "Title"))
	assert.Equal(t, "### Deep", FormatHeader(3, "Deep"))
	assert.Equal(t, "# Clamped", FormatHeader(0, "Clamped"))
	assert.Equal(t, "- **File**: a.yaml", FormatKeyValue("File", "a.yaml"))
}

func TestPrintfPrintln(t *testing.T) {
	var out strings.Builder
	r := NewRenderer(&out, &strings.Builder{}, ModeMarkdown)
	r.Println("line")
	r.Printf("%d models\n", 3)
	assert.Equal(t, "line\n3 models\n", out.String())
}
