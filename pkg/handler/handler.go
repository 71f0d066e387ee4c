// Package handler implements virtual object handlers: pluggable interceptors
// that decide how a virtual entity answers the fundamental object operations.
//
// A handler supplies a small set of primitive operations (Primitives). The
// derived operations (has, get, set, enumerate, construct, seal, freeze, ...)
// are computed from those primitives by Derived, which walks the delegation
// chain and binds accessor and method invocations to the invocation context
// the handler selects (Binding).
//
// Three strategies are provided. DelegatingHandler routes every primitive to
// the backing value and binds to the receiver. ForwardingHandler does the same
// but binds to the backing value. VirtualHandler has no meaningful backing
// value: each of its primitives fails with a NotImplementedError until a
// concrete handler overrides it.
//
// Derived operations are deliberately not methods of the strategy types. A Go
// struct embedding DelegatingHandler and overriding a primitive would
// otherwise still run the embedded type's derived methods, which call the
// embedded primitives and silently bypass the override.
package handler

import (
	"github.com/tvcutsem/proxy-handlers/pkg/values"
)

// Primitive operation names, as reported by NotImplementedError.
const (
	OpGetOwnPropertyDescriptor = "getOwnPropertyDescriptor"
	OpGetOwnPropertyNames      = "getOwnPropertyNames"
	OpGetOwnPropertyKeys       = "getOwnPropertyKeys"
	OpGetPrototypeOf           = "getPrototypeOf"
	OpSetPrototypeOf           = "setPrototypeOf"
	OpDefineProperty           = "defineProperty"
	OpDeleteProperty           = "deleteProperty"
	OpPreventExtensions        = "preventExtensions"
	OpIsExtensible             = "isExtensible"
	OpApply                    = "apply"
)

// Primitives is the contract every handler fulfils. target is the backing
// value the handler was bound to.
type Primitives interface {
	// GetOwnPropertyDescriptor returns the own property record for key, or
	// nil when target has no such own property.
	GetOwnPropertyDescriptor(target values.Value, key string) (*values.PartialDescriptor, error)
	GetOwnPropertyNames(target values.Value) ([]string, error)
	GetOwnPropertyKeys(target values.Value) ([]string, error)
	// GetPrototypeOf returns the next entity of the delegation chain or Null.
	GetPrototypeOf(target values.Value) (values.Value, error)
	SetPrototypeOf(target values.Value, proto values.Value) (bool, error)
	DefineProperty(target values.Value, key string, desc *values.PartialDescriptor) (bool, error)
	DeleteProperty(target values.Value, key string) (bool, error)
	PreventExtensions(target values.Value) (bool, error)
	IsExtensible(target values.Value) (bool, error)
	Apply(target values.Value, thisArg values.Value, args []values.Value) (values.Value, error)
}

// Binding selects the identity derived operations use as invocation context.
type Binding uint8

const (
	// BindReceiver runs accessors and methods against the entity the
	// access originated from.
	BindReceiver Binding = iota
	// BindTarget runs accessors and methods against the backing value.
	// Chain lookups and data writes still use the receiver.
	BindTarget
)

func (b Binding) String() string {
	if b == BindTarget {
		return "target"
	}
	return "receiver"
}

// Handler is a primitive implementation plus its binding rule.
type Handler interface {
	Primitives
	InvocationContext() Binding
}

// CallableHandler is implemented by handlers that decide callability
// themselves instead of inheriting it from the backing value, e.g. a virtual
// handler whose Apply routes to a function it materializes on demand.
type CallableHandler interface {
	IsCallable(target values.Value) bool
}

// Constructor builds a handler instance from constructor arguments; it plays
// the role of a handler class for the entity factory.
type Constructor func(args ...values.Value) (Handler, error)
