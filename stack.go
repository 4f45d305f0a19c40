package ezpeg

type stackOp[T any] struct {
	push bool
	elem T
}

// Stack is the backreference stack. Besides push and pop at the top it
// supports nested snapshots: Restore undoes every push and pop made since the
// matching Snapshot, ClearSnapshot keeps them.
type Stack[T any] struct {
	items []T
	// ops logs changes made while at least one snapshot is open.
	ops       []stackOp[T]
	snapshots []int
}

func NewStack[T any]() *Stack[T] {
	return &Stack[T]{}
}

func (s *Stack[T]) Len() int {
	return len(s.items)
}

func (s *Stack[T]) IsEmpty() bool {
	return len(s.items) == 0
}

func (s *Stack[T]) Push(elem T) {
	s.items = append(s.items, elem)
	if len(s.snapshots) > 0 {
		s.ops = append(s.ops, stackOp[T]{push: true, elem: elem})
	}
}

func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}
	elem := s.items[len(s.items)-1]
	s.items[len(s.items)-1] = zero
	s.items = s.items[:len(s.items)-1]
	if len(s.snapshots) > 0 {
		s.ops = append(s.ops, stackOp[T]{elem: elem})
	}
	return elem, true
}

// Peek returns the top entry.
func (s *Stack[T]) Peek() (T, bool) {
	if len(s.items) == 0 {
		var zero T
		return zero, false
	}
	return s.items[len(s.items)-1], true
}

// Clear pops every entry.
func (s *Stack[T]) Clear() {
	for len(s.items) > 0 {
		s.Pop()
	}
}

// TopDown returns the entries from the top of the stack to the bottom.
func (s *Stack[T]) TopDown() []T {
	out := make([]T, len(s.items))
	for i, elem := range s.items {
		out[len(s.items)-1-i] = elem
	}
	return out
}

// Slice returns entries [start, end) of the top-to-bottom view of the stack.
// Negative indices count from the bottom, as in Python.
func (s *Stack[T]) Slice(start, end int) ([]T, error) {
	return s.slice(start, &end)
}

// SliceFrom returns entries from start down to the bottom of the stack.
func (s *Stack[T]) SliceFrom(start int) ([]T, error) {
	return s.slice(start, nil)
}

func (s *Stack[T]) slice(start int, end *int) ([]T, error) {
	lo, hi, ok := constrainIndices(start, end, len(s.items))
	if !ok {
		return nil, sliceError(start, end)
	}
	if hi <= lo {
		return nil, nil
	}
	return s.TopDown()[lo:hi], nil
}

func constrainIndices(start int, end *int, n int) (int, int, bool) {
	lo, ok := normalizeIndex(start, n)
	if !ok {
		return 0, 0, false
	}
	hi := n
	if end != nil {
		if hi, ok = normalizeIndex(*end, n); !ok {
			return 0, 0, false
		}
	}
	return lo, hi, true
}

func normalizeIndex(i, n int) (int, bool) {
	switch {
	case i > n:
		return 0, false
	case i >= 0:
		return i, true
	case n+i >= 0:
		return n + i, true
	}
	return 0, false
}

func (s *Stack[T]) Snapshot() {
	s.snapshots = append(s.snapshots, len(s.ops))
}

// ClearSnapshot drops the latest snapshot and keeps the changes made since.
func (s *Stack[T]) ClearSnapshot() {
	s.popSnapshot()
	if len(s.snapshots) == 0 {
		s.ops = s.ops[:0]
	}
}

// Restore drops the latest snapshot and undoes the changes made since.
func (s *Stack[T]) Restore() {
	mark := s.popSnapshot()
	for i := len(s.ops) - 1; i >= mark; i-- {
		op := s.ops[i]
		if op.push {
			s.items = s.items[:len(s.items)-1]
		} else {
			s.items = append(s.items, op.elem)
		}
	}
	s.ops = s.ops[:mark]
}

func (s *Stack[T]) popSnapshot() int {
	if len(s.snapshots) == 0 {
		panic("ezpeg: stack snapshot resolved without a matching Snapshot")
	}
	mark := s.snapshots[len(s.snapshots)-1]
	s.snapshots = s.snapshots[:len(s.snapshots)-1]
	return mark
}
