package handler

import (
	"errors"
	"testing"

	paserr "github.com/tvcutsem/proxy-handlers/pkg/errors"
	"github.com/tvcutsem/proxy-handlers/pkg/values"
)

func num(n int) values.Value { return values.IntegerValue(n) }

func mustGet(t *testing.T, obj values.Value, key string) values.Value {
	t.Helper()
	v, err := values.Get(obj, key)
	if err != nil {
		t.Fatalf("Get(%q) failed: %v", key, err)
	}
	return v
}

func mustSet(t *testing.T, obj values.Value, key string, v values.Value) {
	t.Helper()
	ok, err := values.Set(obj, key, v)
	if err != nil {
		t.Fatalf("Set(%q) failed: %v", key, err)
	}
	if !ok {
		t.Fatalf("Set(%q) was refused", key)
	}
}

func expectValue(t *testing.T, got, want values.Value, what string) {
	t.Helper()
	if !values.SameValue(got, want) {
		t.Errorf("%s: expected %s, got %s", what, want.Inspect(), got.Inspect())
	}
}

func ownValue(t *testing.T, obj values.Value, key string) (values.Value, bool) {
	t.Helper()
	d, err := obj.AsObject().GetOwnProperty(key)
	if err != nil {
		t.Fatalf("GetOwnProperty(%q) failed: %v", key, err)
	}
	if d == nil {
		return values.Undefined, false
	}
	return d.Value, true
}

func expectNotImplemented(t *testing.T, err error, op string) {
	t.Helper()
	var nie *paserr.NotImplementedError
	if !errors.As(err, &nie) {
		t.Fatalf("expected NotImplementedError(%s), got %v", op, err)
	}
	if nie.Operation != op {
		t.Errorf("expected NotImplementedError(%s), got NotImplementedError(%s)", op, nie.Operation)
	}
}

// fooBar builds {foo: 42, bar(v) { this.foo = v }, double: get() { return this.foo * 2 }}.
func fooBar() *values.PlainObject {
	o := values.NewPlainObject(values.ObjectPrototype)
	o.SetOwn("foo", num(42))
	o.SetOwn("bar", values.NewFunction("bar", func(this values.Value, args []values.Value) (values.Value, error) {
		_, err := values.Set(this, "foo", values.Arg(args, 0))
		return values.Undefined, err
	}))
	double := values.NewFunction("double", func(this values.Value, args []values.Value) (values.Value, error) {
		v, err := values.Get(this, "foo")
		if err != nil || !v.IsNumber() {
			return values.Undefined, err
		}
		return values.NumberValue(v.AsNumber() * 2), nil
	})
	setFoo := values.NewFunction("setFoo", func(this values.Value, args []values.Value) (values.Value, error) {
		_, err := values.Set(this, "foo", values.Arg(args, 0))
		return values.Undefined, err
	})
	o.DefineOwnProperty("double", values.AccessorDescriptor(double, values.Undefined, true, true))
	o.DefineOwnProperty("fooSetter", values.AccessorDescriptor(values.Undefined, setFoo, true, true))
	return o
}
