package handler

import (
	paserr "github.com/tvcutsem/proxy-handlers/pkg/errors"
	"github.com/tvcutsem/proxy-handlers/pkg/values"
)

// DelegatingHandler routes every primitive verbatim to the backing value and
// binds accessor and method invocations to the receiver, so a method found on
// a delegate still acts on the entity that was originally touched.
type DelegatingHandler struct{}

var _ Handler = (*DelegatingHandler)(nil)

func NewDelegatingHandler(...values.Value) (Handler, error) { return &DelegatingHandler{}, nil }

func (*DelegatingHandler) InvocationContext() Binding { return BindReceiver }

func targetObject(target values.Value, op string) (values.Object, error) {
	if !target.IsObject() {
		return nil, paserr.NewTypeError("%s: backing value is not an object: %s", op, target.Inspect())
	}
	return target.AsObject(), nil
}

func (*DelegatingHandler) GetOwnPropertyDescriptor(target values.Value, key string) (*values.PartialDescriptor, error) {
	o, err := targetObject(target, OpGetOwnPropertyDescriptor)
	if err != nil {
		return nil, err
	}
	d, err := o.GetOwnProperty(key)
	if err != nil || d == nil {
		return nil, err
	}
	return d.Partial(), nil
}

func (*DelegatingHandler) GetOwnPropertyNames(target values.Value) ([]string, error) {
	o, err := targetObject(target, OpGetOwnPropertyNames)
	if err != nil {
		return nil, err
	}
	return o.OwnKeys()
}

// GetOwnPropertyKeys equals GetOwnPropertyNames: keys are strings only.
func (*DelegatingHandler) GetOwnPropertyKeys(target values.Value) ([]string, error) {
	o, err := targetObject(target, OpGetOwnPropertyKeys)
	if err != nil {
		return nil, err
	}
	return o.OwnKeys()
}

func (*DelegatingHandler) GetPrototypeOf(target values.Value) (values.Value, error) {
	o, err := targetObject(target, OpGetPrototypeOf)
	if err != nil {
		return values.Null, err
	}
	return o.GetPrototypeOf()
}

func (*DelegatingHandler) SetPrototypeOf(target values.Value, proto values.Value) (bool, error) {
	o, err := targetObject(target, OpSetPrototypeOf)
	if err != nil {
		return false, err
	}
	return o.SetPrototypeOf(proto)
}

func (*DelegatingHandler) DefineProperty(target values.Value, key string, desc *values.PartialDescriptor) (bool, error) {
	o, err := targetObject(target, OpDefineProperty)
	if err != nil {
		return false, err
	}
	return o.DefineOwnProperty(key, desc)
}

func (*DelegatingHandler) DeleteProperty(target values.Value, key string) (bool, error) {
	o, err := targetObject(target, OpDeleteProperty)
	if err != nil {
		return false, err
	}
	return o.Delete(key)
}

func (*DelegatingHandler) PreventExtensions(target values.Value) (bool, error) {
	o, err := targetObject(target, OpPreventExtensions)
	if err != nil {
		return false, err
	}
	return o.PreventExtensions()
}

func (*DelegatingHandler) IsExtensible(target values.Value) (bool, error) {
	o, err := targetObject(target, OpIsExtensible)
	if err != nil {
		return false, err
	}
	return o.IsExtensible()
}

func (*DelegatingHandler) Apply(target values.Value, thisArg values.Value, args []values.Value) (values.Value, error) {
	return values.Call(target, thisArg, args)
}

// ForwardingHandler routes primitives like DelegatingHandler but binds every
// own accessor and method invocation to the backing value. It suits values
// whose methods only work with their own identity as context. Chain lookups
// and data writes keep the receiver, as for DelegatingHandler.
type ForwardingHandler struct {
	DelegatingHandler
}

var _ Handler = (*ForwardingHandler)(nil)

func NewForwardingHandler(...values.Value) (Handler, error) { return &ForwardingHandler{}, nil }

func (*ForwardingHandler) InvocationContext() Binding { return BindTarget }

// VirtualHandler models an entity without a meaningful backing value. Every
// primitive fails with NotImplementedError; concrete handlers embed it and
// override the primitives to route to the state they maintain. Derived
// operations bind to the receiver, as for DelegatingHandler. The placeholder
// backing value is not callable; a handler whose Apply produces a function
// also implements CallableHandler.
type VirtualHandler struct {
	DelegatingHandler
}

var _ Handler = (*VirtualHandler)(nil)

func NewVirtualHandler(...values.Value) (Handler, error) { return &VirtualHandler{}, nil }

func (*VirtualHandler) GetOwnPropertyDescriptor(values.Value, string) (*values.PartialDescriptor, error) {
	return nil, paserr.NewNotImplemented(OpGetOwnPropertyDescriptor)
}

func (*VirtualHandler) GetOwnPropertyNames(values.Value) ([]string, error) {
	return nil, paserr.NewNotImplemented(OpGetOwnPropertyNames)
}

func (*VirtualHandler) GetOwnPropertyKeys(values.Value) ([]string, error) {
	return nil, paserr.NewNotImplemented(OpGetOwnPropertyKeys)
}

func (*VirtualHandler) GetPrototypeOf(values.Value) (values.Value, error) {
	return values.Null, paserr.NewNotImplemented(OpGetPrototypeOf)
}

func (*VirtualHandler) SetPrototypeOf(values.Value, values.Value) (bool, error) {
	return false, paserr.NewNotImplemented(OpSetPrototypeOf)
}

func (*VirtualHandler) DefineProperty(values.Value, string, *values.PartialDescriptor) (bool, error) {
	return false, paserr.NewNotImplemented(OpDefineProperty)
}

func (*VirtualHandler) DeleteProperty(values.Value, string) (bool, error) {
	return false, paserr.NewNotImplemented(OpDeleteProperty)
}

func (*VirtualHandler) PreventExtensions(values.Value) (bool, error) {
	return false, paserr.NewNotImplemented(OpPreventExtensions)
}

func (*VirtualHandler) IsExtensible(values.Value) (bool, error) {
	return false, paserr.NewNotImplemented(OpIsExtensible)
}

func (*VirtualHandler) Apply(values.Value, values.Value, []values.Value) (values.Value, error) {
	return values.Undefined, paserr.NewNotImplemented(OpApply)
}
