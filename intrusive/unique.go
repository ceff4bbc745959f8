package intrusive

// Unique is a single-owner handle to a managed object. It never shares; it
// is converted into a Ptr with FromUnique when sharing becomes necessary.
// The zero Unique is null.
type Unique[T Object] struct {
	obj   T
	valid bool
}

// NewUnique hands a freshly built object to a unique handle, applying opts.
func NewUnique[T Object](obj T, opts ...Option) Unique[T] {
	if isNil(obj) {
		return Unique[T]{}
	}
	blk := obj.ownershipBlock()
	for _, opt := range opts {
		opt(blk)
	}
	notify(EventAdopted, obj)
	return Unique[T]{obj: obj, valid: true}
}

// Get returns the managed object, or the zero T for a null handle.
func (u Unique[T]) Get() T {
	return u.obj
}

// IsNull reports whether u owns no object.
func (u Unique[T]) IsNull() bool {
	return !u.valid
}

// Move transfers ownership out of u, leaving u null.
func (u *Unique[T]) Move() Unique[T] {
	out := *u
	*u = Unique[T]{}
	return out
}

// Detach gives up ownership without destroying the object.
func (u *Unique[T]) Detach() T {
	obj := u.obj
	*u = Unique[T]{}
	return obj
}

// Release destroys the owned object and makes u null.
func (u *Unique[T]) Release() {
	if !u.valid {
		return
	}
	obj := u.Detach()
	Discard(obj)
}

// FromUnique converts unique ownership into a strong handle without touching
// the strong count. u becomes null.
func FromUnique[T Object](u *Unique[T]) Ptr[T] {
	if !u.valid {
		return Ptr[T]{}
	}
	obj := u.Detach()
	return Ptr[T]{obj: obj, blk: obj.ownershipBlock()}
}

// Discard destroys an object the caller owns outright: one that was never
// handed to a handle, or whose only owner is the caller. Discarding an object
// that is still shared is an invariant violation and terminates the process.
func Discard[T Object](obj T) {
	if isNil(obj) {
		return
	}
	blk := obj.ownershipBlock()
	blk.assertUnshared(obj)
	if blk.refs.DropRef() {
		blk.destroy(obj)
	}
}
