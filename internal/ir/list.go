package ir

import "iter"

// Link is the intrusive node embedded in every list element.
type Link[T any] struct {
	prev, next T
}

// element is the capability a type needs to live in a List owned by a P.
// setParent is package-private so only List changes ownership.
type element[P comparable, T any] interface {
	comparable
	Parent() P
	setParent(P)
	link() *Link[T]
}

// List is an ordered, doubly linked list of elements owned by parent.
//
// Each element is in at most one list at a time, and its Parent() is the
// list's owner exactly while it is linked. Contains is therefore O(1).
type List[P comparable, T element[P, T]] struct {
	parent      P
	first, last T
	size        int
	frozen      bool
}

func newList[P comparable, T element[P, T]](parent P) *List[P, T] {
	return &List[P, T]{parent: parent}
}

// Parent returns the owner of the list.
func (l *List[P, T]) Parent() P { return l.parent }

// Len returns the number of elements.
func (l *List[P, T]) Len() int { return l.size }

// Empty reports whether the list has no elements.
func (l *List[P, T]) Empty() bool { return l.size == 0 }

// First returns the first element or the zero T.
func (l *List[P, T]) First() T { return l.first }

// Last returns the last element or the zero T.
func (l *List[P, T]) Last() T { return l.last }

// Next returns the element after e or the zero T.
func (l *List[P, T]) Next(e T) T {
	var zero T
	if !l.Contains(e) {
		return zero
	}
	return e.link().next
}

// Prev returns the element before e or the zero T.
func (l *List[P, T]) Prev(e T) T {
	var zero T
	if !l.Contains(e) {
		return zero
	}
	return e.link().prev
}

// Contains reports whether e is linked into this list.
func (l *List[P, T]) Contains(e T) bool {
	var zero T
	return e != zero && e.Parent() == l.parent
}

// Frozen reports whether the list rejects mutation.
func (l *List[P, T]) Frozen() bool { return l.frozen }

// Freeze makes the list reject further insertion and removal.
func (l *List[P, T]) Freeze() { l.frozen = true }

func (l *List[P, T]) checkInsert(op string, e T) error {
	var zero T
	var noParent P
	if e == zero {
		return structuralErrorf(op, "cannot insert nil element")
	}
	if l.frozen {
		return structuralErrorf(op, "list owner is immutable")
	}
	if e.Parent() != noParent {
		return structuralErrorf(op, "element already has a parent")
	}
	return nil
}

// Append links e at the end of the list.
func (l *List[P, T]) Append(e T) error {
	if err := l.checkInsert("List.Append", e); err != nil {
		return err
	}
	l.linkAfter(e, l.last)
	return nil
}

// Prepend links e at the start of the list.
func (l *List[P, T]) Prepend(e T) error {
	if err := l.checkInsert("List.Prepend", e); err != nil {
		return err
	}
	var zero T
	l.linkAfter(e, zero)
	return nil
}

// InsertBefore links e immediately before mark, which must be in the list.
func (l *List[P, T]) InsertBefore(e, mark T) error {
	if err := l.checkInsert("List.InsertBefore", e); err != nil {
		return err
	}
	if !l.Contains(mark) {
		return structuralErrorf("List.InsertBefore", "mark is not in this list")
	}
	l.linkAfter(e, mark.link().prev)
	return nil
}

// InsertAfter links e immediately after mark, which must be in the list.
func (l *List[P, T]) InsertAfter(e, mark T) error {
	if err := l.checkInsert("List.InsertAfter", e); err != nil {
		return err
	}
	if !l.Contains(mark) {
		return structuralErrorf("List.InsertAfter", "mark is not in this list")
	}
	l.linkAfter(e, mark)
	return nil
}

// InsertAt links e so that it ends up at position i (0 <= i <= Len).
func (l *List[P, T]) InsertAt(i int, e T) error {
	if i < 0 || i > l.size {
		return structuralErrorf("List.InsertAt", "index %d out of range [0, %d]", i, l.size)
	}
	if i == l.size {
		return l.Append(e)
	}
	return l.InsertBefore(e, l.At(i))
}

// Remove unlinks e, which must belong to this list, and clears its parent.
func (l *List[P, T]) Remove(e T) error {
	if l.frozen {
		return structuralErrorf("List.Remove", "list owner is immutable")
	}
	if !l.Contains(e) {
		return structuralErrorf("List.Remove", "element is not in this list")
	}
	l.unlink(e)
	return nil
}

// linkAfter links e after prev; a zero prev means at the front.
func (l *List[P, T]) linkAfter(e, prev T) {
	var zero T
	ln := e.link()
	ln.prev = prev
	if prev == zero {
		ln.next = l.first
		l.first = e
	} else {
		ln.next = prev.link().next
		prev.link().next = e
	}
	if ln.next == zero {
		l.last = e
	} else {
		ln.next.link().prev = e
	}
	e.setParent(l.parent)
	l.size++
}

func (l *List[P, T]) unlink(e T) {
	var zero T
	var noParent P
	ln := e.link()
	if ln.prev == zero {
		l.first = ln.next
	} else {
		ln.prev.link().next = ln.next
	}
	if ln.next == zero {
		l.last = ln.prev
	} else {
		ln.next.link().prev = ln.prev
	}
	ln.prev, ln.next = zero, zero
	e.setParent(noParent)
	l.size--
}

// Index returns the position of e or -1.
func (l *List[P, T]) Index(e T) int {
	if !l.Contains(e) {
		return -1
	}
	i := 0
	var zero T
	for cur := l.first; cur != zero; cur = cur.link().next {
		if cur == e {
			return i
		}
		i++
	}
	return -1
}

// At returns the element at position i or the zero T.
func (l *List[P, T]) At(i int) T {
	var zero T
	if i < 0 || i >= l.size {
		return zero
	}
	cur := l.first
	for ; i > 0; i-- {
		cur = cur.link().next
	}
	return cur
}

// All iterates the list in order. Removing the current element during
// iteration is allowed.
func (l *List[P, T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		var zero T
		for cur := l.first; cur != zero; {
			next := cur.link().next
			if !yield(cur) {
				return
			}
			cur = next
		}
	}
}

// Slice returns a snapshot of the elements in order.
func (l *List[P, T]) Slice() []T {
	out := make([]T, 0, l.size)
	for e := range l.All() {
		out = append(out, e)
	}
	return out
}
