package values

import (
	paserr "github.com/tvcutsem/proxy-handlers/pkg/errors"
)

// NativeFunc is the body of a Function. this is the invocation context the
// caller bound; args may be shorter than the function expects.
type NativeFunc func(this Value, args []Value) (Value, error)

// Function is an ordinary object with a native body.
type Function struct {
	PlainObject
	name string
	fn   NativeFunc
}

func newFunction(name string, fn NativeFunc) *Function {
	f := &Function{name: name, fn: fn}
	f.PlainObject = PlainObject{prototype: ObjectPrototype, props: make(map[string]*property), extensible: true}
	return f
}

func NewFunction(name string, fn NativeFunc) Value {
	return ObjectValue(newFunction(name, fn))
}

// NewConstructor creates a function whose "prototype" property holds a fresh
// object, as class-like constructors do.
func NewConstructor(name string, fn NativeFunc) Value {
	f := newFunction(name, fn)
	f.props["prototype"] = &property{value: NewObject(ObjectPrototype), getter: Undefined, setter: Undefined, writable: true}
	f.keys = append(f.keys, "prototype")
	return ObjectValue(f)
}

func (f *Function) Name() string { return f.name }

func (f *Function) Call(this Value, args []Value) (Value, error) {
	return f.fn(this, args)
}

// Arg returns args[i] or Undefined when the caller passed fewer arguments.
func Arg(args []Value, i int) Value {
	if i < len(args) {
		return args[i]
	}
	return Undefined
}

// Call invokes fn with the given this-binding.
func Call(fn Value, this Value, args []Value) (Value, error) {
	if !fn.IsCallable() {
		return Undefined, paserr.NewTypeError("%s is not a function", fn.Inspect())
	}
	return fn.AsCallable().Call(this, args)
}

// Construct creates a new instance with fn as constructor. Objects that
// implement Constructor decide for themselves; ordinary functions get an
// instance inheriting from their "prototype" property (or ObjectPrototype when
// that is not an object), and a structured result replaces the instance.
func Construct(fn Value, args []Value) (Value, error) {
	if fn.IsObject() {
		if c, ok := fn.obj.(Constructor); ok {
			return c.Construct(args)
		}
	}
	if !fn.IsCallable() {
		return Undefined, paserr.NewTypeError("%s is not a constructor", fn.Inspect())
	}
	proto, err := fn.obj.Get("prototype", fn)
	if err != nil {
		return Undefined, err
	}
	instance := NewObject(proto)
	result, err := Call(fn, instance, args)
	if err != nil {
		return Undefined, err
	}
	if result.IsObject() {
		return result, nil
	}
	return instance, nil
}

// Get reads key from obj with obj as receiver.
func Get(obj Value, key string) (Value, error) {
	if !obj.IsObject() {
		return Undefined, paserr.NewTypeError("cannot read property %q of %s", key, obj.Inspect())
	}
	return obj.obj.Get(key, obj)
}

// Set assigns key on obj with obj as receiver and reports whether the
// assignment took effect.
func Set(obj Value, key string, v Value) (bool, error) {
	if !obj.IsObject() {
		return false, paserr.NewTypeError("cannot set property %q of %s", key, obj.Inspect())
	}
	return obj.obj.Set(key, v, obj)
}

// Invoke performs a method call obj[key](...args).
func Invoke(obj Value, key string, args []Value) (Value, error) {
	if !obj.IsObject() {
		return Undefined, paserr.NewTypeError("cannot read property %q of %s", key, obj.Inspect())
	}
	if inv, ok := obj.obj.(Invoker); ok {
		return inv.Invoke(key, args, obj)
	}
	m, err := obj.obj.Get(key, obj)
	if err != nil {
		return Undefined, err
	}
	if !m.IsCallable() {
		return Undefined, paserr.NewTypeError("%s is not a function", key)
	}
	return m.AsCallable().Call(obj, args)
}

// Enumerate lists the for-in keys of obj: enumerable own keys followed by
// those of the prototype chain, each key once, with own keys (enumerable or
// not) shadowing keys further up.
func Enumerate(obj Value) ([]string, error) {
	if !obj.IsObject() {
		return nil, nil
	}
	if e, ok := obj.obj.(Enumerator); ok {
		return e.Enumerate()
	}
	var out []string
	seen := make(map[string]struct{})
	for cur := obj; cur.IsObject(); {
		o := cur.obj
		if e, ok := o.(Enumerator); ok {
			rest, err := e.Enumerate()
			if err != nil {
				return nil, err
			}
			for _, k := range rest {
				if _, dup := seen[k]; !dup {
					seen[k] = struct{}{}
					out = append(out, k)
				}
			}
			break
		}
		keys, err := o.OwnKeys()
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			d, err := o.GetOwnProperty(k)
			if err != nil {
				return nil, err
			}
			if d != nil && d.Enumerable {
				out = append(out, k)
			}
		}
		if cur, err = o.GetPrototypeOf(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// EnumerateRaw is Enumerate without deduplication: each object of the chain
// contributes its enumerable own keys, and an Enumerator ends the walk with
// its own list.
func EnumerateRaw(obj Value) ([]string, error) {
	var out []string
	for cur := obj; cur.IsObject(); {
		o := cur.obj
		if e, ok := o.(Enumerator); ok {
			rest, err := e.Enumerate()
			if err != nil {
				return nil, err
			}
			return append(out, rest...), nil
		}
		keys, err := EnumerableOwnKeys(o)
		if err != nil {
			return nil, err
		}
		out = append(out, keys...)
		if cur, err = o.GetPrototypeOf(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// EnumerableOwnKeys lists the own enumerable keys of obj in key order.
func EnumerableOwnKeys(obj Object) ([]string, error) {
	keys, err := obj.OwnKeys()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		d, err := obj.GetOwnProperty(k)
		if err != nil {
			return nil, err
		}
		if d != nil && d.Enumerable {
			out = append(out, k)
		}
	}
	return out, nil
}
