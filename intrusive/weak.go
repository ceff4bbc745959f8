package intrusive

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// Weak is a non-owning handle to a managed object. It does not keep the
// object alive but can be promoted to a Ptr while the object is.
//
// Like Ptr, a Weak accounts for one reference on the object's weak view and
// must be duplicated with Clone and given up with Release.
//
// The zero Weak is null.
type Weak[T Object] struct {
	v *view
}

// IsNull reports whether w observes no object.
func (w Weak[T]) IsNull() bool {
	return w.v == nil
}

// IsAlive reports whether the observed object still has strong owners.
// The answer may be stale by the time the caller acts on it; use Lock to
// get a handle that is guaranteed to stay valid.
func (w Weak[T]) IsAlive() bool {
	if w.v == nil {
		return false
	}
	return w.v.isOwnerAlive()
}

// WeakCount returns the number of weak handles observing the object.
func (w Weak[T]) WeakCount() int64 {
	if w.v == nil {
		return 0
	}
	return w.v.weakCount()
}

// Lock promotes w to a strong handle. It returns false if the object is
// gone or being destroyed; that is an ordinary outcome, not an error.
func (w Weak[T]) Lock() (Ptr[T], bool) {
	if w.v == nil {
		return Ptr[T]{}, false
	}
	return lockOwner[T](w.v)
}

// Clone returns a second weak handle observing the same object.
func (w Weak[T]) Clone() Weak[T] {
	if w.v != nil {
		w.v.addRef()
	}
	return w
}

// Move transfers the reference out of w, leaving w null.
func (w *Weak[T]) Move() Weak[T] {
	out := *w
	*w = Weak[T]{}
	return out
}

// Release drops w's reference on the view and makes w null.
func (w *Weak[T]) Release() {
	v := w.v
	w.v = nil
	if v != nil {
		v.release()
	}
}

// Reset releases w's current reference and takes over other's.
func (w *Weak[T]) Reset(other Weak[T]) {
	old := *w
	*w = other
	old.Release()
}

// Swap exchanges the references held by w and other.
func (w *Weak[T]) Swap(other *Weak[T]) {
	*w, *other = *other, *w
}

// Equal reports whether w and other observe the same object. It keeps
// answering after the object is gone.
func (w Weak[T]) Equal(other Weak[T]) bool {
	return w.v == other.v
}

func (w Weak[T]) String() string {
	if w.v == nil {
		return fmt.Sprintf("Weak[%s](null)", typeName[T]())
	}
	return fmt.Sprintf("Weak[%s](%p alive=%t)", typeName[T](), w.v, w.IsAlive())
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (w Weak[T]) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("type", typeName[T]())
	if w.v == nil {
		enc.AddBool("null", true)
		return nil
	}
	enc.AddBool("alive", w.IsAlive())
	enc.AddInt64("weak", w.WeakCount())
	return nil
}
