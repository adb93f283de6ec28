package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMarkdown(t *testing.T) {
	for _, p := range []string{"a.md", "a.mkd", "a.mkdn", "a.mdown", "a.markdown", "dir/A.MD"} {
		assert.True(t, IsMarkdown(p), p)
	}
	for _, p := range []string{"a.html", "a.txt", "md", "a.md.bak"} {
		assert.False(t, IsMarkdown(p), p)
	}
}

func TestNewConverter(t *testing.T) {
	c, err := NewConverter("", ConverterOptions{})
	require.NoError(t, err)
	assert.IsType(t, &GoldmarkConverter{}, c)

	c, err = NewConverter("Blackfriday", ConverterOptions{})
	require.NoError(t, err)
	assert.IsType(t, &BlackfridayConverter{}, c)

	c, err = NewConverter(EngineNone, ConverterOptions{})
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = NewConverter("pandoc", ConverterOptions{})
	require.Error(t, err)
}

func TestConverters_Emphasis(t *testing.T) {
	for _, engine := range []string{EngineGoldmark, EngineBlackfriday} {
		c, err := NewConverter(engine, ConverterOptions{})
		require.NoError(t, err)

		out, err := c.Convert([]byte("*Foo*"))
		require.NoError(t, err)
		assert.Equal(t, "<p><em>Foo</em></p>\n", out, engine)
	}
}

func TestGoldmarkConverter_Sanitizes(t *testing.T) {
	src := []byte("<script>alert(1)</script>\n\nhello")

	out, err := NewGoldmarkConverter(ConverterOptions{}).Convert(src)
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "hello")

	out, err = NewGoldmarkConverter(ConverterOptions{Unsafe: true}).Convert(src)
	require.NoError(t, err)
	assert.Contains(t, out, "<script>alert(1)</script>")
}

func TestGoldmarkConverter_GFM(t *testing.T) {
	out, err := NewGoldmarkConverter(ConverterOptions{Unsafe: true}).Convert([]byte("| a |\n|---|\n| b |\n\n~~gone~~"))
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<del>gone</del>")
}
