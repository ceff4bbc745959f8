package intrusive

import (
	"fmt"
	"unsafe"

	"go.uber.org/zap/zapcore"
)

// Ptr is a strong, owning handle to a managed object. Each non-null Ptr
// accounts for exactly one reference in the object's strong count.
//
// Ptr values must be passed on explicitly: Share makes a second owner, Move
// transfers ownership and Release gives it up. Copying a Ptr with plain
// assignment duplicates the handle without adding a reference; only one of
// the copies may then be released.
//
// The zero Ptr is null.
type Ptr[T Object] struct {
	obj T
	blk *Block
}

// New hands a freshly built object to its first strong handle, applying opts
// before anyone else can see it.
//
//	conn := intrusive.New(&Conn{fd: fd}, intrusive.WithDeleter(func(c *Conn) {
//		syscall.Close(c.fd)
//	}))
//	defer conn.Release()
func New[T Object](obj T, opts ...Option) Ptr[T] {
	if isNil(obj) {
		return Ptr[T]{}
	}
	blk := obj.ownershipBlock()
	for _, opt := range opts {
		opt(blk)
	}
	return Adopt(obj)
}

// Adopt takes over the reference the caller holds on obj without adding one.
// Use it for freshly built objects and for references obtained from Detach.
func Adopt[T Object](obj T) Ptr[T] {
	if isNil(obj) {
		return Ptr[T]{}
	}
	notify(EventAdopted, obj)
	return Ptr[T]{obj: obj, blk: obj.ownershipBlock()}
}

// Get returns the managed object, or the zero T for a null handle.
func (p Ptr[T]) Get() T {
	return p.obj
}

// IsNull reports whether p refers to no object.
func (p Ptr[T]) IsNull() bool {
	return p.blk == nil
}

// IsUnique reports whether p is the only strong handle to its object.
func (p Ptr[T]) IsUnique() bool {
	if p.blk == nil {
		return false
	}
	return p.blk.refs.IsUnique()
}

// RefCount returns the number of strong handles to the object, or 0 for a
// null handle.
func (p Ptr[T]) RefCount() int64 {
	if p.blk == nil {
		return 0
	}
	return p.blk.refs.Load()
}

// WeakCount returns the number of weak handles to the object, or 0 if none
// was ever made.
func (p Ptr[T]) WeakCount() int64 {
	if p.blk == nil {
		return 0
	}
	v := p.blk.peekView()
	if v == nil {
		return 0
	}
	return v.weakCount()
}

// Share returns a second strong handle to the same object.
func (p Ptr[T]) Share() Ptr[T] {
	if p.blk == nil {
		return Ptr[T]{}
	}
	p.blk.refs.AddRef()
	return p
}

// Weaken returns a weak handle to the object. A null p yields a null handle.
func (p Ptr[T]) Weaken() Weak[T] {
	if p.blk == nil {
		return Weak[T]{}
	}
	v := p.blk.requireView(p.obj)
	v.addRef()
	return Weak[T]{v: v}
}

// Move transfers the reference out of p, leaving p null.
func (p *Ptr[T]) Move() Ptr[T] {
	out := *p
	*p = Ptr[T]{}
	return out
}

// Detach gives up p's reference without releasing it and returns the
// object. The caller becomes responsible for handing it back with Adopt.
func (p *Ptr[T]) Detach() T {
	obj := p.obj
	*p = Ptr[T]{}
	return obj
}

// Release drops p's reference and makes p null. If it was the last strong
// reference, the object's weak view is detached and its deleter runs.
// Releasing a null handle does nothing.
func (p *Ptr[T]) Release() {
	obj, blk := p.obj, p.blk
	*p = Ptr[T]{}
	if blk == nil {
		return
	}
	if blk.refs.DropRef() {
		blk.destroy(obj)
	}
}

// Reset releases p's current reference and takes over other's.
func (p *Ptr[T]) Reset(other Ptr[T]) {
	old := *p
	*p = other
	old.Release()
}

// Swap exchanges the objects of p and other.
func (p *Ptr[T]) Swap(other *Ptr[T]) {
	*p, *other = *other, *p
}

// Equal reports whether p and other refer to the same object.
func (p Ptr[T]) Equal(other Ptr[T]) bool {
	return p.blk == other.blk
}

// Compare orders handles by object identity. Null sorts first.
func (p Ptr[T]) Compare(other Ptr[T]) int {
	a, b := uintptr(unsafe.Pointer(p.blk)), uintptr(unsafe.Pointer(other.blk))
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Same reports whether two handles of possibly different types refer to the
// same object.
func Same[A Object, B Object](a Ptr[A], b Ptr[B]) bool {
	return a.blk == b.blk
}

func (p Ptr[T]) String() string {
	if p.blk == nil {
		return fmt.Sprintf("Ptr[%s](null)", typeName[T]())
	}
	return fmt.Sprintf("Ptr[%s](%p refs=%d)", typeName[T](), p.blk, p.RefCount())
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (p Ptr[T]) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("type", typeName[T]())
	if p.blk == nil {
		enc.AddBool("null", true)
		return nil
	}
	enc.AddInt64("refs", p.RefCount())
	enc.AddInt64("weak", p.WeakCount())
	return nil
}
