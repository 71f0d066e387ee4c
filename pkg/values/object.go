package values

import (
	"sort"
	"strconv"

	paserr "github.com/tvcutsem/proxy-handlers/pkg/errors"
)

// Object is the set of internal methods every object-like entity supports.
// Ordinary objects implement them directly; virtual entities route them
// through a handler. Every method may raise, so each returns an error.
type Object interface {
	GetPrototypeOf() (Value, error)
	SetPrototypeOf(proto Value) (bool, error)
	IsExtensible() (bool, error)
	PreventExtensions() (bool, error)
	GetOwnProperty(key string) (*Descriptor, error)
	DefineOwnProperty(key string, desc *PartialDescriptor) (bool, error)
	HasProperty(key string) (bool, error)
	Get(key string, receiver Value) (Value, error)
	Set(key string, v Value, receiver Value) (bool, error)
	Delete(key string) (bool, error)
	OwnKeys() ([]string, error)
}

// Callable is an Object that can be invoked as a function.
type Callable interface {
	Object
	Call(this Value, args []Value) (Value, error)
}

// Constructor is implemented by objects with their own construct behaviour.
type Constructor interface {
	Construct(args []Value) (Value, error)
}

// Enumerator is implemented by objects that compute their own for-in key list.
type Enumerator interface {
	Enumerate() ([]string, error)
}

// Invoker is implemented by objects that decide the this-binding of method
// calls made through them.
type Invoker interface {
	Invoke(key string, args []Value, receiver Value) (Value, error)
}

type property struct {
	value        Value
	getter       Value
	setter       Value
	isAccessor   bool
	writable     bool
	enumerable   bool
	configurable bool
}

func (p *property) descriptor() *Descriptor {
	d := &Descriptor{
		Value:        Undefined,
		Get:          Undefined,
		Set:          Undefined,
		Enumerable:   p.enumerable,
		Configurable: p.configurable,
	}
	if p.isAccessor {
		d.Kind = AccessorDescriptorKind
		d.Get, d.Set = p.getter, p.setter
	} else {
		d.Kind = DataDescriptorKind
		d.Value, d.Writable = p.value, p.writable
	}
	return d
}

// PlainObject is an ordinary object: own properties with attributes, a
// prototype link and an extensible flag.
type PlainObject struct {
	prototype  Value
	props      map[string]*property
	keys       []string // insertion order
	extensible bool
}

// ObjectPrototype is the default prototype of ordinary objects. Its own
// prototype is Null.
var ObjectPrototype = ObjectValue(&PlainObject{prototype: Null, props: make(map[string]*property), extensible: true})

// NewPlainObject creates an empty ordinary object. proto must be an object or
// Null; any other value selects ObjectPrototype.
func NewPlainObject(proto Value) *PlainObject {
	if !proto.IsObject() && !proto.IsNull() {
		proto = ObjectPrototype
	}
	return &PlainObject{prototype: proto, props: make(map[string]*property), extensible: true}
}

func NewObject(proto Value) Value {
	return ObjectValue(NewPlainObject(proto))
}

func (o *PlainObject) ordinary() *PlainObject { return o }

// SetOwn creates or overwrites an own data property as a plain assignment
// would: writable, enumerable and configurable.
func (o *PlainObject) SetOwn(name string, v Value) *PlainObject {
	o.put(name, v)
	return o
}

func (o *PlainObject) put(name string, v Value) {
	if p, ok := o.props[name]; ok {
		*p = property{value: v, writable: true, enumerable: true, configurable: true}
		return
	}
	o.props[name] = &property{value: v, writable: true, enumerable: true, configurable: true}
	o.keys = append(o.keys, name)
}

func (o *PlainObject) GetPrototypeOf() (Value, error) {
	return o.prototype, nil
}

// SetPrototypeOf refuses to change the prototype of a non-extensible object
// and refuses links that would close a cycle of ordinary objects. The cycle
// scan stops at the first non-ordinary object.
func (o *PlainObject) SetPrototypeOf(proto Value) (bool, error) {
	if !proto.IsObject() && !proto.IsNull() {
		return false, paserr.NewTypeError("object prototype may only be an object or null: %s", proto.Inspect())
	}
	if SameValue(proto, o.prototype) {
		return true, nil
	}
	if !o.extensible {
		return false, nil
	}
	for p := proto; p.IsObject(); {
		ord, ok := p.obj.(interface{ ordinary() *PlainObject })
		if !ok {
			break
		}
		po := ord.ordinary()
		if po == o {
			return false, nil
		}
		p = po.prototype
	}
	o.prototype = proto
	return true, nil
}

func (o *PlainObject) IsExtensible() (bool, error) {
	return o.extensible, nil
}

func (o *PlainObject) PreventExtensions() (bool, error) {
	o.extensible = false
	return true, nil
}

func (o *PlainObject) GetOwnProperty(key string) (*Descriptor, error) {
	p, ok := o.props[key]
	if !ok {
		return nil, nil
	}
	return p.descriptor(), nil
}

// DefineOwnProperty validates desc against the current property and applies
// it. A refused change returns false; a malformed record raises.
func (o *PlainObject) DefineOwnProperty(key string, desc *PartialDescriptor) (bool, error) {
	if desc == nil {
		return false, paserr.NewTypeError("property description must be an object")
	}
	if err := desc.validate(); err != nil {
		return false, err
	}
	current, ok := o.props[key]
	if !ok {
		if !o.extensible {
			return false, nil
		}
		p := &property{value: Undefined, getter: Undefined, setter: Undefined}
		if desc.isAccessorLeaning() {
			p.isAccessor = true
		}
		applyFields(p, desc)
		o.props[key] = p
		o.keys = append(o.keys, key)
		return true, nil
	}

	if !current.configurable {
		if c, has := desc.flag(FieldConfigurable); has && c {
			return false, nil
		}
		if e, has := desc.flag(FieldEnumerable); has && e != current.enumerable {
			return false, nil
		}
		switch {
		case desc.isDataLeaning() && current.isAccessor, desc.isAccessorLeaning() && !current.isAccessor:
			return false, nil
		case !current.isAccessor && !current.writable:
			if w, has := desc.flag(FieldWritable); has && w {
				return false, nil
			}
			if v, has := desc.Lookup(FieldValue); has && !SameValue(v, current.value) {
				return false, nil
			}
		case current.isAccessor:
			if g, has := desc.Lookup(FieldGet); has && !SameValue(g, current.getter) {
				return false, nil
			}
			if s, has := desc.Lookup(FieldSet); has && !SameValue(s, current.setter) {
				return false, nil
			}
		}
	}

	// Kind conversion keeps enumerable/configurable and resets the rest.
	if desc.isDataLeaning() && current.isAccessor {
		*current = property{value: Undefined, getter: Undefined, setter: Undefined, enumerable: current.enumerable, configurable: current.configurable}
	} else if desc.isAccessorLeaning() && !current.isAccessor {
		*current = property{value: Undefined, getter: Undefined, setter: Undefined, isAccessor: true, enumerable: current.enumerable, configurable: current.configurable}
	}
	applyFields(current, desc)
	return true, nil
}

func applyFields(p *property, desc *PartialDescriptor) {
	if v, ok := desc.Lookup(FieldValue); ok {
		p.value = v
	}
	if w, ok := desc.flag(FieldWritable); ok {
		p.writable = w
	}
	if g, ok := desc.Lookup(FieldGet); ok {
		p.getter = g
	}
	if s, ok := desc.Lookup(FieldSet); ok {
		p.setter = s
	}
	if e, ok := desc.flag(FieldEnumerable); ok {
		p.enumerable = e
	}
	if c, ok := desc.flag(FieldConfigurable); ok {
		p.configurable = c
	}
}

func (o *PlainObject) HasProperty(key string) (bool, error) {
	if _, ok := o.props[key]; ok {
		return true, nil
	}
	if !o.prototype.IsObject() {
		return false, nil
	}
	return o.prototype.AsObject().HasProperty(key)
}

func (o *PlainObject) Get(key string, receiver Value) (Value, error) {
	p, ok := o.props[key]
	if !ok {
		if !o.prototype.IsObject() {
			return Undefined, nil
		}
		return o.prototype.AsObject().Get(key, receiver)
	}
	if !p.isAccessor {
		return p.value, nil
	}
	if p.getter.IsUndefined() {
		return Undefined, nil
	}
	return Call(p.getter, receiver, nil)
}

func (o *PlainObject) Set(key string, v Value, receiver Value) (bool, error) {
	p, ok := o.props[key]
	if !ok {
		if o.prototype.IsObject() {
			return o.prototype.AsObject().Set(key, v, receiver)
		}
		return SetOnReceiver(receiver, key, v)
	}
	if p.isAccessor {
		if p.setter.IsUndefined() {
			return false, nil
		}
		if _, err := Call(p.setter, receiver, []Value{v}); err != nil {
			return false, err
		}
		return true, nil
	}
	if !p.writable {
		return false, nil
	}
	return SetOnReceiver(receiver, key, v)
}

func (o *PlainObject) Delete(key string) (bool, error) {
	p, ok := o.props[key]
	if !ok {
		return true, nil
	}
	if !p.configurable {
		return false, nil
	}
	delete(o.props, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true, nil
}

// OwnKeys returns integer-index keys in ascending numeric order followed by
// the remaining keys in insertion order.
func (o *PlainObject) OwnKeys() ([]string, error) {
	var indices []int
	var names []string
	for _, k := range o.keys {
		if idx, ok := tryParseArrayIndex(k); ok {
			indices = append(indices, idx)
		} else {
			names = append(names, k)
		}
	}
	sort.Ints(indices)
	out := make([]string, 0, len(indices)+len(names))
	for _, idx := range indices {
		out = append(out, strconv.Itoa(idx))
	}
	return append(out, names...), nil
}

// tryParseArrayIndex checks if a string represents a valid array index:
// a non-negative integer below 2^32-1 without leading zeros.
func tryParseArrayIndex(key string) (int, bool) {
	if key == "" {
		return 0, false
	}
	if len(key) > 1 && key[0] == '0' {
		return 0, false
	}
	idx := 0
	for _, ch := range key {
		if ch < '0' || ch > '9' {
			return 0, false
		}
		idx = idx*10 + int(ch-'0')
		if idx > 4294967294 {
			return 0, false
		}
	}
	return idx, true
}

// SetOnReceiver performs the final step of an assignment: writing key on
// receiver itself. An existing own property is updated in place when it is a
// writable data property; otherwise a fresh enumerable, writable and
// configurable data property is created if receiver is extensible.
func SetOnReceiver(receiver Value, key string, v Value) (bool, error) {
	if !receiver.IsObject() {
		return false, nil
	}
	r := receiver.AsObject()
	existing, err := r.GetOwnProperty(key)
	if err != nil {
		return false, err
	}
	if existing != nil {
		if existing.IsAccessor() || !existing.Writable {
			return false, nil
		}
		return r.DefineOwnProperty(key, NewPartialDescriptor().Set(FieldValue, v))
	}
	ext, err := r.IsExtensible()
	if err != nil || !ext {
		return false, err
	}
	return r.DefineOwnProperty(key, DataDescriptor(v, true, true, true))
}
