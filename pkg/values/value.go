package values

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type ValueType uint8

const (
	TypeUndefined ValueType = iota
	TypeNull

	TypeBoolean
	TypeNumber
	TypeString

	TypeObject
)

// Value is the tagged union every operation of the protocol passes around.
// Undefined doubles as "absent" wherever a descriptor field or lookup result
// may be missing.
type Value struct {
	typ     ValueType
	payload uint64
	str     string
	obj     Object
}

var (
	Undefined = Value{typ: TypeUndefined}
	Null      = Value{typ: TypeNull}
	True      = Value{typ: TypeBoolean, payload: 1}
	False     = Value{typ: TypeBoolean, payload: 0}
	NaN       = Value{typ: TypeNumber, payload: math.Float64bits(math.NaN())}
)

func NumberValue(value float64) Value {
	return Value{typ: TypeNumber, payload: math.Float64bits(value)}
}

func IntegerValue(value int) Value {
	return NumberValue(float64(value))
}

func BooleanValue(value bool) Value {
	if value {
		return True
	}
	return False
}

func NewString(value string) Value {
	return Value{typ: TypeString, str: value}
}

// ObjectValue wraps an object implementation. A nil object yields Null.
func ObjectValue(o Object) Value {
	if o == nil {
		return Null
	}
	return Value{typ: TypeObject, obj: o}
}

func (v Value) Type() ValueType { return v.typ }

func (v Value) IsUndefined() bool { return v.typ == TypeUndefined }
func (v Value) IsNull() bool      { return v.typ == TypeNull }
func (v Value) IsBoolean() bool   { return v.typ == TypeBoolean }
func (v Value) IsNumber() bool    { return v.typ == TypeNumber }
func (v Value) IsString() bool    { return v.typ == TypeString }

// IsObject reports whether v is a structured value.
func (v Value) IsObject() bool { return v.typ == TypeObject }

// IsCallable reports whether v can be invoked with Call.
func (v Value) IsCallable() bool {
	if v.typ != TypeObject {
		return false
	}
	if c, ok := v.obj.(interface{ IsCallable() bool }); ok {
		return c.IsCallable()
	}
	_, ok := v.obj.(Callable)
	return ok
}

func (v Value) TypeName() string {
	switch v.typ {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeObject:
		if v.IsCallable() {
			return "function"
		}
		return "object"
	default:
		return fmt.Sprintf("<unknown type: %d>", v.typ)
	}
}

func (v Value) AsBoolean() bool {
	if v.typ != TypeBoolean {
		panic("value is not a boolean")
	}
	return v.payload == 1
}

func (v Value) AsNumber() float64 {
	if v.typ != TypeNumber {
		panic("value is not a number")
	}
	return math.Float64frombits(v.payload)
}

func (v Value) AsString() string {
	if v.typ != TypeString {
		panic("value is not a string")
	}
	return v.str
}

func (v Value) AsObject() Object {
	if v.typ != TypeObject {
		panic("value is not an object")
	}
	return v.obj
}

func (v Value) AsCallable() Callable {
	if v.typ != TypeObject {
		panic("value is not an object")
	}
	c, ok := v.obj.(Callable)
	if !ok {
		panic("value is not callable")
	}
	return c
}

func (v Value) ToString() string {
	switch v.typ {
	case TypeString:
		return v.str
	case TypeNumber:
		return strconv.FormatFloat(v.AsNumber(), 'f', -1, 64)
	case TypeBoolean:
		if v.AsBoolean() {
			return "true"
		}
		return "false"
	case TypeObject:
		if v.IsCallable() {
			return "function"
		}
		return "[object Object]"
	case TypeNull:
		return "null"
	case TypeUndefined:
		return "undefined"
	}
	return fmt.Sprintf("<unknown type %d>", v.typ)
}

// IsTruthy follows ECMAScript truthiness: undefined, null, false, 0, NaN and
// "" are falsey.
func (v Value) IsTruthy() bool {
	switch v.typ {
	case TypeUndefined, TypeNull:
		return false
	case TypeBoolean:
		return v.AsBoolean()
	case TypeNumber:
		f := v.AsNumber()
		return f != 0 && !math.IsNaN(f)
	case TypeString:
		return v.str != ""
	default:
		return true
	}
}

// Inspect returns a developer-friendly representation of Value, similar to a REPL.
// Objects print their own data properties only, so inspecting never invokes
// accessors or handler traps beyond own-property lookups.
func (v Value) Inspect() string {
	switch v.typ {
	case TypeString:
		return fmt.Sprintf("%q", v.str)
	case TypeObject:
		if v.IsCallable() {
			if f, ok := v.obj.(*Function); ok && f.name != "" {
				return fmt.Sprintf("[Function: %s]", f.name)
			}
			return "[Function (anonymous)]"
		}
		po, ok := v.obj.(*PlainObject)
		if !ok {
			return "[object]"
		}
		var b strings.Builder
		b.WriteString("{")
		for i, key := range po.keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(key)
			b.WriteString(": ")
			p := po.props[key]
			if p.isAccessor {
				b.WriteString("[Accessor]")
			} else {
				b.WriteString(p.value.Inspect())
			}
		}
		b.WriteString("}")
		return b.String()
	default:
		return v.ToString()
	}
}

func (v Value) String() string { return v.Inspect() }

// SameValue implements the ECMAScript SameValue comparison: NaN equals NaN,
// +0 and -0 differ, objects compare by identity.
func SameValue(a, b Value) bool {
	if a.typ != b.typ {
		return false
	}
	switch a.typ {
	case TypeUndefined, TypeNull:
		return true
	case TypeBoolean:
		return a.payload == b.payload
	case TypeNumber:
		af, bf := a.AsNumber(), b.AsNumber()
		if math.IsNaN(af) && math.IsNaN(bf) {
			return true
		}
		return a.payload == b.payload
	case TypeString:
		return a.str == b.str
	case TypeObject:
		return a.obj == b.obj
	default:
		panic(fmt.Sprintf("Unhandled type in SameValue comparison: %v", a.typ)) // Should not happen
	}
}
