package ezpeg

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pushAll(s *Stack[string], items ...string) {
	for _, it := range items {
		s.Push(it)
	}
}

func TestStackPushPop(t *testing.T) {
	s := NewStack[string]()
	assert.True(t, s.IsEmpty())

	_, ok := s.Pop()
	assert.False(t, ok)
	_, ok = s.Peek()
	assert.False(t, ok)

	pushAll(s, "a", "b", "c")
	assert.Equal(t, 3, s.Len())

	top, ok := s.Peek()
	require.True(t, ok)
	assert.Equal(t, "c", top)

	top, ok = s.Pop()
	require.True(t, ok)
	assert.Equal(t, "c", top)
	assert.Equal(t, []string{"b", "a"}, s.TopDown())

	s.Clear()
	assert.True(t, s.IsEmpty())
}

func TestStackSnapshot(t *testing.T) {
	t.Run("restore undoes pushes", func(t *testing.T) {
		s := NewStack[string]()
		pushAll(s, "a")
		s.Snapshot()
		pushAll(s, "b", "c")
		s.Restore()
		assert.Equal(t, []string{"a"}, s.TopDown())
	})

	t.Run("restore undoes pops", func(t *testing.T) {
		s := NewStack[string]()
		pushAll(s, "a", "b")
		s.Snapshot()
		s.Pop()
		s.Pop()
		s.Push("x")
		s.Restore()
		assert.Equal(t, []string{"b", "a"}, s.TopDown())
	})

	t.Run("clear snapshot keeps changes", func(t *testing.T) {
		s := NewStack[string]()
		s.Snapshot()
		pushAll(s, "a", "b")
		s.ClearSnapshot()
		assert.Equal(t, []string{"b", "a"}, s.TopDown())
	})

	t.Run("nested", func(t *testing.T) {
		s := NewStack[string]()
		pushAll(s, "a")
		s.Snapshot()
		pushAll(s, "b")
		s.Snapshot()
		pushAll(s, "c")
		s.Pop()
		s.Pop()
		s.Restore()
		assert.Equal(t, []string{"b", "a"}, s.TopDown())
		s.Snapshot()
		s.Clear()
		s.ClearSnapshot()
		assert.True(t, s.IsEmpty())
		s.Restore()
		assert.Equal(t, []string{"a"}, s.TopDown())
	})

	t.Run("unbalanced", func(t *testing.T) {
		s := NewStack[string]()
		assert.Panics(t, func() { s.Restore() })
		assert.Panics(t, func() { s.ClearSnapshot() })
	})
}

func TestStackSlice(t *testing.T) {
	s := NewStack[string]()
	pushAll(s, "a", "b", "c")

	tests := []struct {
		name  string
		start int
		end   *int
		want  []string
		err   bool
	}{
		{name: "all", start: 0, want: []string{"c", "b", "a"}},
		{name: "from one", start: 1, want: []string{"b", "a"}},
		{name: "last", start: -1, want: []string{"a"}},
		{name: "bounded", start: 0, end: ptr(2), want: []string{"c", "b"}},
		{name: "negative end", start: 0, end: ptr(-1), want: []string{"c", "b"}},
		{name: "empty range", start: 2, end: ptr(1), want: nil},
		{name: "at length", start: 3, want: nil},
		{name: "start too large", start: 4, err: true},
		{name: "start too small", start: -4, err: true},
		{name: "end too large", start: 0, end: ptr(4), err: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.slice(tt.start, tt.end)
			if tt.err {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrSliceOutOfBound))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := s.Slice(1, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, got)
	got, err = s.SliceFrom(-2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, got)
}

func ptr(i int) *int {
	return &i
}
