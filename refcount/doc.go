// Package refcount provides the atomic reference counter embedded in every
// intrusively owned object and in every weak view.
//
//	var c refcount.Counter // one reference
//	c.AddRef()             // two
//	c.DropRef()            // false, one left
//	c.DropRef()            // true, last reference gone
//	c.TryAddRef()          // false, a released count stays released
//
// Misuse (adding to a released count, dropping below zero) panics with an
// invariant error from package errors.
package refcount
