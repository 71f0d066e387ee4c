package values

import (
	paserr "github.com/tvcutsem/proxy-handlers/pkg/errors"
)

// Standard descriptor field names.
const (
	FieldValue        = "value"
	FieldWritable     = "writable"
	FieldGet          = "get"
	FieldSet          = "set"
	FieldEnumerable   = "enumerable"
	FieldConfigurable = "configurable"
)

func isStandardField(name string) bool {
	switch name {
	case FieldValue, FieldWritable, FieldGet, FieldSet, FieldEnumerable, FieldConfigurable:
		return true
	}
	return false
}

// PartialDescriptor is a property descriptor record as a primitive operation
// supplies it: any field may be missing, and fields outside the six standard
// ones are allowed. Field order is insertion order.
type PartialDescriptor struct {
	names  []string
	fields map[string]Value
}

func NewPartialDescriptor() *PartialDescriptor {
	return &PartialDescriptor{fields: make(map[string]Value)}
}

// DataDescriptor builds a complete data descriptor record.
func DataDescriptor(value Value, writable, enumerable, configurable bool) *PartialDescriptor {
	return NewPartialDescriptor().
		Set(FieldValue, value).
		Set(FieldWritable, BooleanValue(writable)).
		Set(FieldEnumerable, BooleanValue(enumerable)).
		Set(FieldConfigurable, BooleanValue(configurable))
}

// AccessorDescriptor builds a complete accessor descriptor record. get and
// set are Undefined or callable.
func AccessorDescriptor(get, set Value, enumerable, configurable bool) *PartialDescriptor {
	return NewPartialDescriptor().
		Set(FieldGet, get).
		Set(FieldSet, set).
		Set(FieldEnumerable, BooleanValue(enumerable)).
		Set(FieldConfigurable, BooleanValue(configurable))
}

// Set adds or replaces a field and returns the record for chaining.
func (p *PartialDescriptor) Set(name string, v Value) *PartialDescriptor {
	if _, ok := p.fields[name]; !ok {
		p.names = append(p.names, name)
	}
	p.fields[name] = v
	return p
}

func (p *PartialDescriptor) Lookup(name string) (Value, bool) {
	if p == nil {
		return Undefined, false
	}
	v, ok := p.fields[name]
	return v, ok
}

func (p *PartialDescriptor) Has(name string) bool {
	_, ok := p.Lookup(name)
	return ok
}

// Fields returns the field names in insertion order.
func (p *PartialDescriptor) Fields() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

func (p *PartialDescriptor) Len() int {
	if p == nil {
		return 0
	}
	return len(p.names)
}

func (p *PartialDescriptor) flag(name string) (bool, bool) {
	v, ok := p.Lookup(name)
	if !ok {
		return false, false
	}
	return v.IsTruthy(), true
}

func (p *PartialDescriptor) isDataLeaning() bool {
	return p.Has(FieldValue) || p.Has(FieldWritable)
}

func (p *PartialDescriptor) isAccessorLeaning() bool {
	return p.Has(FieldGet) || p.Has(FieldSet)
}

// validate checks the structural constraints shared by Normalize and the
// ordinary define algorithm.
func (p *PartialDescriptor) validate() error {
	if p.isDataLeaning() && p.isAccessorLeaning() {
		return paserr.NewValidationError("invalid property descriptor: cannot both specify accessors and a value or writable attribute")
	}
	for _, name := range [...]string{FieldGet, FieldSet} {
		if fn, ok := p.Lookup(name); ok && !fn.IsUndefined() && !fn.IsCallable() {
			return paserr.NewValidationError("invalid property descriptor: %s must be a function or undefined, got %s", name, fn.TypeName())
		}
	}
	return nil
}

type DescriptorKind uint8

const (
	GenericDescriptor DescriptorKind = iota
	DataDescriptorKind
	AccessorDescriptorKind
)

func (k DescriptorKind) String() string {
	switch k {
	case DataDescriptorKind:
		return "data"
	case AccessorDescriptorKind:
		return "accessor"
	default:
		return "generic"
	}
}

// Attribute is a non-standard descriptor field carried through normalization.
type Attribute struct {
	Name  string
	Value Value
}

// Descriptor is a completed property descriptor: every field of its kind is
// populated. Value and Writable are meaningful for data descriptors, Get and
// Set for accessor descriptors.
type Descriptor struct {
	Kind         DescriptorKind
	Value        Value
	Writable     bool
	Get          Value
	Set          Value
	Enumerable   bool
	Configurable bool
	Extra        []Attribute
}

func (d *Descriptor) IsData() bool     { return d != nil && d.Kind == DataDescriptorKind }
func (d *Descriptor) IsAccessor() bool { return d != nil && d.Kind == AccessorDescriptorKind }
func (d *Descriptor) IsGeneric() bool  { return d != nil && d.Kind == GenericDescriptor }

// Partial converts d back into a record holding exactly the fields of its kind.
func (d *Descriptor) Partial() *PartialDescriptor {
	p := NewPartialDescriptor()
	switch d.Kind {
	case DataDescriptorKind:
		p.Set(FieldValue, d.Value).Set(FieldWritable, BooleanValue(d.Writable))
	case AccessorDescriptorKind:
		p.Set(FieldGet, d.Get).Set(FieldSet, d.Set)
	}
	p.Set(FieldEnumerable, BooleanValue(d.Enumerable)).Set(FieldConfigurable, BooleanValue(d.Configurable))
	for _, a := range d.Extra {
		p.Set(a.Name, a.Value)
	}
	return p
}

// Equal compares two completed descriptors field by field using SameValue.
func (d *Descriptor) Equal(o *Descriptor) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.Kind != o.Kind || d.Enumerable != o.Enumerable || d.Configurable != o.Configurable {
		return false
	}
	switch d.Kind {
	case DataDescriptorKind:
		if !SameValue(d.Value, o.Value) || d.Writable != o.Writable {
			return false
		}
	case AccessorDescriptorKind:
		if !SameValue(d.Get, o.Get) || !SameValue(d.Set, o.Set) {
			return false
		}
	}
	if len(d.Extra) != len(o.Extra) {
		return false
	}
	for i := range d.Extra {
		if d.Extra[i].Name != o.Extra[i].Name || !SameValue(d.Extra[i].Value, o.Extra[i].Value) {
			return false
		}
	}
	return true
}

// Normalize completes a partial descriptor. A nil record means "no own
// property" and yields nil. Missing fields take their defaults: value
// undefined, writable false, get/set undefined, enumerable and configurable
// false. Non-standard fields are copied onto Extra unchanged.
func Normalize(p *PartialDescriptor) (*Descriptor, error) {
	if p == nil {
		return nil, nil
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	d := &Descriptor{
		Kind:  GenericDescriptor,
		Value: Undefined,
		Get:   Undefined,
		Set:   Undefined,
	}
	switch {
	case p.isDataLeaning():
		d.Kind = DataDescriptorKind
		if v, ok := p.Lookup(FieldValue); ok {
			d.Value = v
		}
		d.Writable, _ = p.flag(FieldWritable)
	case p.isAccessorLeaning():
		d.Kind = AccessorDescriptorKind
		if v, ok := p.Lookup(FieldGet); ok {
			d.Get = v
		}
		if v, ok := p.Lookup(FieldSet); ok {
			d.Set = v
		}
	}
	d.Enumerable, _ = p.flag(FieldEnumerable)
	d.Configurable, _ = p.flag(FieldConfigurable)
	for _, name := range p.names {
		if !isStandardField(name) {
			d.Extra = append(d.Extra, Attribute{Name: name, Value: p.fields[name]})
		}
	}
	return d, nil
}

// NormalizeValue reads a descriptor record from a structured value (its
// enumerable own properties) and normalizes it. Undefined yields nil.
func NormalizeValue(v Value) (*Descriptor, error) {
	p, err := ToPartialDescriptor(v)
	if err != nil || p == nil {
		return nil, err
	}
	return Normalize(p)
}

// ToPartialDescriptor converts a descriptor object into a record.
func ToPartialDescriptor(v Value) (*PartialDescriptor, error) {
	if v.IsUndefined() {
		return nil, nil
	}
	if !v.IsObject() {
		return nil, paserr.NewValidationError("property description must be an object: %s", v.Inspect())
	}
	obj := v.AsObject()
	keys, err := obj.OwnKeys()
	if err != nil {
		return nil, err
	}
	p := NewPartialDescriptor()
	for _, key := range keys {
		own, err := obj.GetOwnProperty(key)
		if err != nil {
			return nil, err
		}
		if own == nil || !own.Enumerable {
			continue
		}
		fv, err := obj.Get(key, v)
		if err != nil {
			return nil, err
		}
		p.Set(key, fv)
	}
	return p, nil
}

// FromDescriptor builds a plain descriptor object from d; nil yields Undefined.
func FromDescriptor(d *Descriptor) Value {
	if d == nil {
		return Undefined
	}
	po := NewPlainObject(ObjectPrototype)
	p := d.Partial()
	for _, name := range p.names {
		po.put(name, p.fields[name])
	}
	return ObjectValue(po)
}
