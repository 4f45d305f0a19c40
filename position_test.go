package ezpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionMatch(t *testing.T) {
	p := Start("héllo world")

	next, ok := p.MatchLiteral("hé")
	require.True(t, ok)
	assert.Equal(t, 3, next.Offset())
	_, ok = p.MatchLiteral("hello")
	assert.False(t, ok)
	assert.Equal(t, 1, p.divergence("hello").Offset())

	next, text, ok := p.MatchInsensitive("HÉLLO")
	require.True(t, ok)
	assert.Equal(t, "héllo", text)
	assert.Equal(t, " world", next.Remaining())

	next, r, ok := p.MatchRange('a', 'z')
	require.True(t, ok)
	assert.Equal(t, 'h', r)
	_, _, ok = next.MatchRange('a', 'z')
	assert.False(t, ok)
	_, r, ok = next.MatchAny()
	require.True(t, ok)
	assert.Equal(t, 'é', r)

	end := p.advance(len(p.Remaining()))
	assert.True(t, end.AtEnd())
	_, _, ok = end.MatchAny()
	assert.False(t, ok)
}

func TestPositionInvalidUTF8(t *testing.T) {
	p := Start("\xffa")
	_, _, ok := p.MatchAny()
	assert.False(t, ok)
}

func TestPositionSkipUntil(t *testing.T) {
	p := Start("abc */ def")
	next, ok := p.SkipUntil([]string{"*/", "\n"})
	require.True(t, ok)
	assert.Equal(t, "*/ def", next.Remaining())

	_, ok = p.SkipUntil([]string{"xyz"})
	assert.False(t, ok)

	next, ok = Start("").SkipUntil([]string{""})
	assert.True(t, ok)
	assert.Equal(t, 0, next.Offset())
}

func TestPositionLineCol(t *testing.T) {
	input := "ab\r\ncd\néf\rg"
	tests := []struct {
		offset    int
		line, col int
	}{
		{0, 1, 1},
		{2, 1, 3},
		{4, 2, 1},
		{7, 3, 1},
		{9, 3, 2},
		{11, 4, 1},
	}
	for _, tt := range tests {
		line, col := Start(input).advance(tt.offset).LineCol()
		assert.Equal(t, tt.line, line, "line at %d", tt.offset)
		assert.Equal(t, tt.col, col, "column at %d", tt.offset)
	}
	assert.Equal(t, "2:1", Start(input).advance(4).String())
}

func TestSpan(t *testing.T) {
	p := Start("hello")
	s := p.advance(4).SpanTo(p.advance(1))
	assert.Equal(t, "ell", s.String())
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 1, s.Start().Offset())
	assert.Equal(t, 4, s.End().Offset())
}
