package refkit

// Dropper is implemented by values that hold resources which must be released
// when their last owner lets go of them. Owning containers and handles call
// Drop exactly once, unless a more specific deleter was configured.
type Dropper interface {
	Drop()
}

// DropperFunc adapts a plain function to the Dropper interface.
type DropperFunc func()

// Drop calls f.
func (f DropperFunc) Drop() { f() }
