package diagnostics

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func init() {
	color.NoColor = true
}

func TestSystem_Levels(t *testing.T) {
	var out, errOut bytes.Buffer
	d := NewWithWriters(Warn, &out, &errOut)

	d.Info("hidden %d", 1)
	d.Warn("shown %d", 2)
	d.Error("broken")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[WARN] shown 2")
	assert.Contains(t, errOut.String(), "[ERROR] broken")
}

func TestSystem_ListIndent(t *testing.T) {
	var out bytes.Buffer
	d := NewWithWriters(Info, &out, &out)

	d.List("top")
	d.Indent()
	d.List("nested")
	d.Unindent()
	d.Unindent()
	d.List("back")

	assert.Equal(t, "- top\n  - nested\n- back\n", out.String())
}

func TestSystem_SummarySorted(t *testing.T) {
	var out bytes.Buffer
	d := NewWithWriters(Info, &out, &out)

	d.Summary("Done", map[string]any{"b": 2, "a": 1})

	assert.Equal(t, "\nDone\n   a: 1\n   b: 2\n\n", out.String())
}

func TestSystem_Silent(t *testing.T) {
	var out bytes.Buffer
	d := NewWithWriters(Silent, &out, &out)

	d.Error("x")
	d.Section("y")
	d.Summary("z", nil)

	assert.Empty(t, out.String())
}
