package gallery

import (
	kerrors "github.com/kuvia/kuvia/internal/errors"
)

// KeyFunc derives the stable key of a list item.
type KeyFunc[T any] func(item T) string

// List is an ordered sequence with a cursor. Insertion order is display
// order. When a key function is supplied, items can also be selected or
// removed by key in constant time.
//
// The cursor is always in [0, LastIndex()], or 0 for an empty list.
// A List is not safe for concurrent use.
type List[T any] struct {
	items      []T
	current    int
	keyOf      KeyFunc[T]
	keyIndex   map[string]int
	currentKey string
	hasKey     bool
}

// NewList creates a list without key lookup.
func NewList[T any](items []T) *List[T] {
	l := &List[T]{}
	l.SetItems(items)
	return l
}

// NewKeyedList creates a list whose items can be looked up by keyOf(item).
func NewKeyedList[T any](items []T, keyOf KeyFunc[T]) *List[T] {
	l := &List[T]{keyOf: keyOf}
	l.SetItems(items)
	return l
}

// SetItems replaces the sequence and resets the cursor to 0.
func (l *List[T]) SetItems(items []T) {
	l.items = items
	l.rebuildKeyIndex()
	l.setIndex(0, 0)
}

// Items returns a copy of the sequence.
func (l *List[T]) Items() []T {
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the number of items.
func (l *List[T]) Len() int {
	return len(l.items)
}

// LastIndex returns Len()-1, which is -1 for an empty list.
func (l *List[T]) LastIndex() int {
	return len(l.items) - 1
}

// CurrentIndex returns the cursor position.
func (l *List[T]) CurrentIndex() int {
	return l.current
}

// CurrentKey returns the key of the current item. It reports false when the
// list has no key function or is empty.
func (l *List[T]) CurrentKey() (string, bool) {
	return l.currentKey, l.hasKey
}

// Current returns the item under the cursor. It reports false when the list
// is empty.
func (l *List[T]) Current() (T, bool) {
	if len(l.items) == 0 {
		var zero T
		return zero, false
	}
	return l.items[l.current], true
}

// Advance moves the cursor forward, wrapping from the last item to the first.
func (l *List[T]) Advance() (T, bool) {
	return l.setIndex(l.current+1, 0)
}

// Retreat moves the cursor backward, wrapping from the first item to the last.
func (l *List[T]) Retreat() (T, bool) {
	return l.setIndex(l.current-1, l.LastIndex())
}

// SetIndex moves the cursor to index. An index outside [0, LastIndex()]
// leaves the cursor where it was.
func (l *List[T]) SetIndex(index int) (T, bool) {
	return l.setIndex(index, l.current)
}

// SetByKey moves the cursor to the item with the given key. An unknown key
// leaves the cursor where it was. It fails with an unsupported operation
// error when the list has no key function.
func (l *List[T]) SetByKey(key string) (T, bool, error) {
	index, err := l.lookup("SetByKey", key)
	if err != nil {
		var zero T
		return zero, false, err
	}
	item, ok := l.SetIndex(index)
	return item, ok, nil
}

// SetCurrentItem is SetByKey(keyOf(item)).
func (l *List[T]) SetCurrentItem(item T) (T, bool, error) {
	if l.keyOf == nil {
		var zero T
		return zero, false, kerrors.UnsupportedOperation("SetCurrentItem")
	}
	return l.SetByKey(l.keyOf(item))
}

// Remove deletes item from the sequence. The cursor is clamped to
// min(CurrentIndex(), LastIndex()). It returns the new current item and
// reports whether item was present; after removing the last remaining item
// the returned item is the zero value and Current reports false.
func (l *List[T]) Remove(item T) (T, bool, error) {
	var zero T
	if l.keyOf == nil {
		return zero, false, kerrors.UnsupportedOperation("Remove")
	}

	index, err := l.lookup("Remove", l.keyOf(item))
	if err != nil {
		return zero, false, err
	}
	if index < 0 {
		return zero, false, nil
	}

	l.items = append(l.items[:index:index], l.items[index+1:]...)
	l.rebuildKeyIndex()
	next, _ := l.setIndex(l.current, l.LastIndex())
	return next, true, nil
}

// lookup resolves key to an index, or -1 when the key is unknown.
func (l *List[T]) lookup(op, key string) (int, error) {
	if l.keyOf == nil {
		return -1, kerrors.UnsupportedOperation(op)
	}
	index, ok := l.keyIndex[key]
	if !ok {
		return -1, nil
	}
	return index, nil
}

func (l *List[T]) validIndex(index int) bool {
	return index >= 0 && index <= l.LastIndex()
}

func (l *List[T]) setIndex(index, fallback int) (T, bool) {
	switch {
	case l.validIndex(index):
		l.current = index
	case l.validIndex(fallback):
		l.current = fallback
	default:
		l.current = 0
	}
	l.updateCurrentKey()
	return l.Current()
}

func (l *List[T]) updateCurrentKey() {
	item, ok := l.Current()
	if l.keyOf == nil || !ok {
		l.currentKey, l.hasKey = "", false
		return
	}
	l.currentKey, l.hasKey = l.keyOf(item), true
}

func (l *List[T]) rebuildKeyIndex() {
	if l.keyOf == nil {
		l.keyIndex = nil
		return
	}
	l.keyIndex = make(map[string]int, len(l.items))
	for i, item := range l.items {
		l.keyIndex[l.keyOf(item)] = i
	}
}
