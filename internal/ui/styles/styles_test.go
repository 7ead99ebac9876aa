package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoColorRendersPlain(t *testing.T) {
	t.Setenv("PINVITE_NO_COLOR", "1")

	assert.Equal(t, "pending", Status("pending", "pending"))
	assert.Equal(t, "b3c4d5e", ID("01HQB3C4D5E", true))
	assert.Equal(t, "+ done", SuccessMsg("done"))
	assert.Equal(t, "^", SortIndicator(false))
	assert.Equal(t, "v", SortIndicator(true))
}

func TestNoColorHelpersFormatPlain(t *testing.T) {
	t.Setenv("PINVITE_NO_COLOR", "1")

	assert.Equal(t, "3 pending", Successf("%d pending", 3))
	assert.Equal(t, "MISSING", Warningf("MISSING"))
	assert.Equal(t, "bad: x", Errorf("bad: %s", "x"))
	assert.Equal(t, "(db)", Mutef("(%s)", "db"))
	assert.Equal(t, "info", Cyan("info"))
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "  a\n\n  b", Indent("a\n\nb", 2))
}

func TestIsAccessible(t *testing.T) {
	t.Setenv("PINVITE_ACCESSIBLE", "true")
	assert.True(t, IsAccessible())
	t.Setenv("PINVITE_ACCESSIBLE", "")
	assert.False(t, IsAccessible())
}
