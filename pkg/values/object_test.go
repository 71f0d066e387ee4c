package values

import (
	"errors"
	"math"
	"reflect"
	"testing"

	paserr "github.com/tvcutsem/proxy-handlers/pkg/errors"
)

func TestPlainObjectBasic(t *testing.T) {
	po := NewPlainObject(ObjectPrototype)
	obj := ObjectValue(po)
	if has, _ := po.HasProperty("foo"); has {
		t.Errorf("expected HasProperty(\"foo\") to be false on new object")
	}
	if ok, err := Set(obj, "foo", IntegerValue(42)); !ok || err != nil {
		t.Fatalf("Set(foo) = %v, %v", ok, err)
	}
	v, err := Get(obj, "foo")
	if err != nil || !SameValue(v, IntegerValue(42)) {
		t.Errorf("expected 42, got %v (err=%v)", v, err)
	}
	d, _ := po.GetOwnProperty("foo")
	if !d.IsData() || !d.Writable || !d.Enumerable || !d.Configurable {
		t.Errorf("assignment should create a plain data property, got %+v", d)
	}
}

func TestPlainObjectOwnKeysOrder(t *testing.T) {
	po := NewPlainObject(Null)
	for _, k := range []string{"b", "10", "a", "2", "01"} {
		po.SetOwn(k, True)
	}
	keys, _ := po.OwnKeys()
	want := []string{"2", "10", "b", "a", "01"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("OwnKeys order mismatch, expected %v, got %v", want, keys)
	}
}

func TestPlainObjectDefineRules(t *testing.T) {
	po := NewPlainObject(ObjectPrototype)
	if ok, _ := po.DefineOwnProperty("x", DataDescriptor(IntegerValue(1), false, false, false)); !ok {
		t.Fatalf("initial define failed")
	}
	cases := []struct {
		name string
		desc *PartialDescriptor
		want bool
	}{
		{"same value", NewPartialDescriptor().Set(FieldValue, IntegerValue(1)), true},
		{"new value", NewPartialDescriptor().Set(FieldValue, IntegerValue(2)), false},
		{"make writable", NewPartialDescriptor().Set(FieldWritable, True), false},
		{"make configurable", NewPartialDescriptor().Set(FieldConfigurable, True), false},
		{"make enumerable", NewPartialDescriptor().Set(FieldEnumerable, True), false},
		{"to accessor", NewPartialDescriptor().Set(FieldGet, NewFunction("g", noop)), false},
		{"generic no-op", NewPartialDescriptor(), true},
	}
	for _, tc := range cases {
		got, err := po.DefineOwnProperty("x", tc.desc)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%s: DefineOwnProperty = %v, want %v", tc.name, got, tc.want)
		}
	}

	po.PreventExtensions()
	if ok, _ := po.DefineOwnProperty("y", DataDescriptor(True, true, true, true)); ok {
		t.Errorf("non-extensible object accepted a new property")
	}
	if ok, _ := Set(ObjectValue(po), "y", True); ok {
		t.Errorf("assignment on non-extensible object succeeded")
	}
}

func TestPlainObjectKindConversion(t *testing.T) {
	po := NewPlainObject(ObjectPrototype)
	po.SetOwn("x", IntegerValue(1))
	getter := NewFunction("g", func(this Value, args []Value) (Value, error) { return NewString("got"), nil })
	if ok, _ := po.DefineOwnProperty("x", NewPartialDescriptor().Set(FieldGet, getter)); !ok {
		t.Fatalf("converting a configurable data property to an accessor failed")
	}
	d, _ := po.GetOwnProperty("x")
	if !d.IsAccessor() || !d.Enumerable || !d.Configurable || !d.Set.IsUndefined() {
		t.Errorf("unexpected converted descriptor %+v", d)
	}
	v, _ := Get(ObjectValue(po), "x")
	if !SameValue(v, NewString("got")) {
		t.Errorf("expected getter result, got %v", v)
	}
}

func TestPlainObjectSetPrototypeRejectsCycle(t *testing.T) {
	a := NewPlainObject(ObjectPrototype)
	b := NewPlainObject(ObjectValue(a))
	ok, err := a.SetPrototypeOf(ObjectValue(b))
	if err != nil || ok {
		t.Errorf("expected cycle to be refused, got ok=%v err=%v", ok, err)
	}
	_, err = a.SetPrototypeOf(IntegerValue(1))
	var terr *paserr.TypeError
	if !errors.As(err, &terr) {
		t.Errorf("expected TypeError for a primitive prototype, got %v", err)
	}
}

func TestPlainObjectInheritedSetterUsesReceiver(t *testing.T) {
	proto := NewPlainObject(ObjectPrototype)
	setter := NewFunction("set", func(this Value, args []Value) (Value, error) {
		_, err := Set(this, "stored", Arg(args, 0))
		return Undefined, err
	})
	proto.DefineOwnProperty("v", AccessorDescriptor(Undefined, setter, true, true))
	child := NewObject(ObjectValue(proto))
	if ok, err := Set(child, "v", IntegerValue(3)); !ok || err != nil {
		t.Fatalf("Set through inherited setter = %v, %v", ok, err)
	}
	own, _ := child.AsObject().GetOwnProperty("stored")
	if own == nil || !SameValue(own.Value, IntegerValue(3)) {
		t.Errorf("expected setter to write the receiver, got %+v", own)
	}
	if d, _ := proto.GetOwnProperty("stored"); d != nil {
		t.Errorf("setter wrote the prototype")
	}
}

func TestPlainObjectInheritedReadOnlyBlocksAssignment(t *testing.T) {
	proto := NewPlainObject(ObjectPrototype)
	proto.DefineOwnProperty("ro", DataDescriptor(IntegerValue(1), false, true, true))
	child := NewObject(ObjectValue(proto))
	if ok, _ := Set(child, "ro", IntegerValue(2)); ok {
		t.Errorf("assignment shadowed a read-only inherited property")
	}
}

func TestPlainObjectDelete(t *testing.T) {
	po := NewPlainObject(ObjectPrototype)
	po.SetOwn("a", True)
	po.DefineOwnProperty("fixed", DataDescriptor(True, false, false, false))
	if ok, _ := po.Delete("a"); !ok {
		t.Errorf("expected configurable delete to succeed")
	}
	if ok, _ := po.Delete("fixed"); ok {
		t.Errorf("expected non-configurable delete to fail")
	}
	if ok, _ := po.Delete("missing"); !ok {
		t.Errorf("deleting a missing key should succeed")
	}
	keys, _ := po.OwnKeys()
	if !reflect.DeepEqual(keys, []string{"fixed"}) {
		t.Errorf("unexpected keys after delete: %v", keys)
	}
}

func TestConstructOrdinaryFunction(t *testing.T) {
	ctor := NewConstructor("Point", func(this Value, args []Value) (Value, error) {
		_, err := Set(this, "x", Arg(args, 0))
		return Undefined, err
	})
	proto, _ := Get(ctor, "prototype")
	inst, err := Construct(ctor, []Value{IntegerValue(4)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := inst.AsObject().GetPrototypeOf()
	if !SameValue(got, proto) {
		t.Errorf("instance does not inherit from the constructor prototype")
	}
	x, _ := Get(inst, "x")
	if !SameValue(x, IntegerValue(4)) {
		t.Errorf("expected x=4, got %v", x)
	}
}

func TestEnumerateShadowing(t *testing.T) {
	base := NewPlainObject(Null)
	base.SetOwn("shared", True).SetOwn("base", True)
	mid := NewPlainObject(ObjectValue(base))
	mid.DefineOwnProperty("shared", DataDescriptor(False, true, false, true))
	mid.SetOwn("mid", True)
	top := NewObject(ObjectValue(mid))
	top.AsObject().(*PlainObject).SetOwn("top", True)

	keys, err := Enumerate(top)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"top", "mid", "base"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("Enumerate = %v, want %v", keys, want)
	}
}

func TestInvokeBindsThisToObject(t *testing.T) {
	obj := NewPlainObject(ObjectPrototype)
	obj.SetOwn("name", NewString("o"))
	obj.SetOwn("who", NewFunction("who", func(this Value, args []Value) (Value, error) {
		return Get(this, "name")
	}))
	v, err := Invoke(ObjectValue(obj), "who", nil)
	if err != nil || !SameValue(v, NewString("o")) {
		t.Errorf("Invoke = %v, %v", v, err)
	}
	_, err = Invoke(ObjectValue(obj), "name", nil)
	var terr *paserr.TypeError
	if !errors.As(err, &terr) {
		t.Errorf("expected TypeError invoking a non-function, got %v", err)
	}
}

func TestSameValue(t *testing.T) {
	if !SameValue(NaN, NaN) {
		t.Errorf("NaN should be SameValue to NaN")
	}
	negZero := NumberValue(math.Copysign(0, -1))
	if SameValue(NumberValue(0), negZero) {
		t.Errorf("+0 and -0 should differ")
	}
	a, b := NewObject(Null), NewObject(Null)
	if SameValue(a, b) || !SameValue(a, a) {
		t.Errorf("objects must compare by identity")
	}
}
