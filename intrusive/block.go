package intrusive

import (
	"reflect"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/refkit"
	"github.com/wippyai/refkit/errors"
	"github.com/wippyai/refkit/refcount"
)

// Object is implemented by every type that embeds Base.
// Handles are parameterized over Object, which is either a pointer to a
// struct embedding Base or an interface embedding Object.
type Object interface {
	ownershipBlock() *Block
}

// Base is embedded in payload structs to make them intrusively owned.
//
//	type Conn struct {
//		intrusive.Base
//		fd int
//	}
//
// The zero Base already counts one strong owner, the creator, which New,
// Adopt or NewUnique hand to the first handle. A Base must not be copied
// after first use.
type Base struct {
	block Block
}

func (b *Base) ownershipBlock() *Block {
	return &b.block
}

// Block is the ownership state embedded in every managed object: the strong
// count, the lazily published weak view and the deleter.
type Block struct {
	refs    refcount.Counter
	view    atomic.Pointer[view]
	deleter func(Object)
}

// Option configures a managed object when it is handed to its first handle.
type Option func(*Block)

// WithDeleter sets the function run when the last strong owner releases the
// object. fn runs exactly once and must not fail; it replaces the object's
// Drop method if it has one.
func WithDeleter[T Object](fn func(T)) Option {
	return func(b *Block) {
		b.deleter = func(obj Object) {
			fn(obj.(T))
		}
	}
}

// requireView returns the object's weak view, publishing a new one on first
// use. Concurrent first callers may each allocate a view; exactly one is
// published and the others are discarded.
func (b *Block) requireView(owner Object) *view {
	if v := b.view.Load(); v != nil {
		return v
	}

	nv := newView(owner)
	if b.view.CompareAndSwap(nil, nv) {
		Logger().Debug("weak view published", zap.String("type", typeOf(owner)))
		notify(EventViewPublished, owner)
		return nv
	}

	Logger().Debug("weak view publication lost race", zap.String("type", typeOf(owner)))
	notify(EventViewDiscarded, owner)
	return b.view.Load()
}

// peekView returns the published weak view without creating one.
func (b *Block) peekView() *view {
	return b.view.Load()
}

// HasWeakView reports whether a weak view has been published for obj.
func HasWeakView(obj Object) bool {
	if isNil(obj) {
		return false
	}
	return obj.ownershipBlock().peekView() != nil
}

// assertUnshared bails if the object still has more than one strong owner.
func (b *Block) assertUnshared(obj Object) {
	if n := b.refs.Load(); n > 1 {
		bail(errors.New(errors.PhaseDestroy, errors.KindInvariant).
			Type(typeOf(obj)).
			Value(n).
			Detail("destroying an object that is still shared").
			Build(), zap.Int64("refs", n))
	}
}

// finalize releases the object's implicit hold on its weak view.
func (b *Block) finalize(obj Object) {
	b.assertUnshared(obj)
	if v := b.peekView(); v != nil {
		v.clearOwner()
	}
}

// destroy tears the object down after its last strong reference is gone.
func (b *Block) destroy(obj Object) {
	b.finalize(obj)
	switch {
	case b.deleter != nil:
		b.deleter(obj)
	default:
		if d, ok := obj.(refkit.Dropper); ok {
			d.Drop()
		}
	}
	notify(EventDestroyed, obj)
}

func isNil(obj Object) bool {
	if obj == nil {
		return true
	}
	v := reflect.ValueOf(obj)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func typeOf(obj any) string {
	if obj == nil {
		return "<nil>"
	}
	return reflect.TypeOf(obj).String()
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
