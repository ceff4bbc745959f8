package intrusive

import (
	"github.com/wippyai/refkit/errors"
)

// convert turns a managed object into a D. Upcasts and interface
// satisfaction known to the type system always succeed; downcasts and
// cross-casts are checked against the dynamic type. Both go through the same
// type assertion, whose interface table the runtime resolves once per type
// pair.
func convert[D Object](src Object) (D, bool) {
	if src == nil {
		var zero D
		return zero, false
	}
	d, ok := src.(D)
	return d, ok
}

// StaticCast reinterprets *p as a handle to D. The reference moves to the
// result and *p becomes null; the strong count is unchanged. Converting to a
// type the object does not have is a programmer error and panics, leaving *p
// untouched.
func StaticCast[D Object, S Object](p *Ptr[S]) Ptr[D] {
	if p.blk == nil {
		return Ptr[D]{}
	}
	d, ok := convert[D](p.obj)
	if !ok {
		panic(errors.TypeMismatch(errors.PhaseCast, typeOf(p.obj), typeName[D]()))
	}
	out := Ptr[D]{obj: d, blk: p.blk}
	var zero S
	p.obj, p.blk = zero, nil
	return out
}

// ConstCast converts *p between read-only and mutable views of the same
// object. The contract is that of StaticCast: *p becomes null and the strong
// count is unchanged.
func ConstCast[D Object, S Object](p *Ptr[S]) Ptr[D] {
	return StaticCast[D](p)
}

// DynamicCast converts *p to a handle to D if the object is a D. On success
// the reference moves to the result and *p becomes null; on failure *p keeps
// its reference and the result is null.
func DynamicCast[D Object, S Object](p *Ptr[S]) (Ptr[D], bool) {
	if p.blk == nil {
		return Ptr[D]{}, false
	}
	d, ok := convert[D](p.obj)
	if !ok {
		return Ptr[D]{}, false
	}
	out := Ptr[D]{obj: d, blk: p.blk}
	var zero S
	p.obj, p.blk = zero, nil
	return out, true
}

// Share returns a new strong handle to obj, which must be alive and owned
// by the caller through some other handle.
func Share[T Object](obj T) Ptr[T] {
	if isNil(obj) {
		return Ptr[T]{}
	}
	blk := obj.ownershipBlock()
	blk.refs.AddRef()
	return Ptr[T]{obj: obj, blk: blk}
}

// ShareAs returns a new strong handle to obj viewed as a U. It fails without
// touching any count if obj is nil or not a U.
func ShareAs[U Object](obj Object) (Ptr[U], bool) {
	if isNil(obj) {
		return Ptr[U]{}, false
	}
	u, ok := convert[U](obj)
	if !ok {
		return Ptr[U]{}, false
	}
	blk := obj.ownershipBlock()
	blk.refs.AddRef()
	return Ptr[U]{obj: u, blk: blk}, true
}

// Weaken returns a weak handle to obj, which must be alive. The first call
// for an object allocates its weak view.
func Weaken[T Object](obj T) Weak[T] {
	if isNil(obj) {
		return Weak[T]{}
	}
	v := obj.ownershipBlock().requireView(obj)
	v.addRef()
	return Weak[T]{v: v}
}

// WeakenAs returns a weak handle to obj viewed as a U. It fails without
// allocating if obj is nil or not a U.
func WeakenAs[U Object](obj Object) (Weak[U], bool) {
	if isNil(obj) {
		return Weak[U]{}, false
	}
	if _, ok := convert[U](obj); !ok {
		return Weak[U]{}, false
	}
	v := obj.ownershipBlock().requireView(obj)
	v.addRef()
	return Weak[U]{v: v}, true
}

// ReserveWeak publishes obj's weak view ahead of time, so that later Weaken
// calls do not allocate.
func ReserveWeak(obj Object) {
	if isNil(obj) {
		return
	}
	obj.ownershipBlock().requireView(obj)
}

// LockAs promotes w to a strong handle viewed as a U. It fails if the object
// is gone, is being destroyed, or is not a U.
func LockAs[U Object, T Object](w Weak[T]) (Ptr[U], bool) {
	if w.v == nil {
		return Ptr[U]{}, false
	}
	return lockOwner[U](w.v)
}
