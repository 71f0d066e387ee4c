package handler

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tvcutsem/proxy-handlers/pkg/config"
	paserr "github.com/tvcutsem/proxy-handlers/pkg/errors"
	"github.com/tvcutsem/proxy-handlers/pkg/values"
)

func TestCreateEntity(t *testing.T) {
	target := values.ObjectValue(fooBar())
	v, err := CreateEntity(NewForwardingHandler, target)
	if err != nil {
		t.Fatalf("CreateEntity: %v", err)
	}
	e, ok := Of(v)
	if !ok {
		t.Fatalf("CreateEntity did not return an entity")
	}
	if _, ok := e.Handler().(*ForwardingHandler); !ok {
		t.Errorf("unexpected handler %T", e.Handler())
	}
	if !values.SameValue(e.Target(), target) {
		t.Errorf("entity not bound to the given target")
	}
	expectValue(t, mustGet(t, v, "foo"), num(42), "entity.foo")

	if _, ok := Of(target); ok {
		t.Errorf("Of reported a plain object as an entity")
	}
	if _, ok := Of(num(1)); ok {
		t.Errorf("Of reported a number as an entity")
	}
}

// prefixed is a client handler whose constructor takes the prefix every
// own key must carry to be visible.
type prefixed struct {
	DelegatingHandler
	prefix string
}

func newPrefixed(args ...values.Value) (Handler, error) {
	p := values.Arg(args, 0)
	if !p.IsString() {
		return nil, paserr.NewTypeError("prefix must be a string, got %s", p.TypeName())
	}
	return &prefixed{prefix: p.AsString()}, nil
}

func (h *prefixed) GetOwnPropertyDescriptor(target values.Value, key string) (*values.PartialDescriptor, error) {
	if !strings.HasPrefix(key, h.prefix) {
		return nil, nil
	}
	return h.DelegatingHandler.GetOwnPropertyDescriptor(target, key)
}

func TestCreateEntityPassesConstructorArgs(t *testing.T) {
	po := values.NewPlainObject(values.Null)
	po.SetOwn("pub_a", num(1)).SetOwn("priv_b", num(2))
	v, err := CreateEntity(newPrefixed, values.ObjectValue(po), values.NewString("pub_"))
	if err != nil {
		t.Fatalf("CreateEntity: %v", err)
	}
	expectValue(t, mustGet(t, v, "pub_a"), num(1), "pub_a")
	if got := mustGet(t, v, "priv_b"); !got.IsUndefined() {
		t.Errorf("priv_b should be hidden, got %s", got.Inspect())
	}

	_, err = CreateEntity(newPrefixed, values.ObjectValue(po))
	var terr *paserr.TypeError
	if !errors.As(err, &terr) {
		t.Errorf("expected the constructor's TypeError, got %v", err)
	}
}

func TestCreateEntityRejectsBadInput(t *testing.T) {
	revokedVal, revoke, err := CreateRevocableEntity(NewDelegatingHandler, values.NewObject(values.Null))
	if err != nil {
		t.Fatalf("CreateRevocableEntity: %v", err)
	}
	revoke()

	nilHandler := func(...values.Value) (Handler, error) { return nil, nil }
	tests := []struct {
		name   string
		ctor   Constructor
		target values.Value
	}{
		{"nil constructor", nil, values.NewObject(values.Null)},
		{"primitive target", NewDelegatingHandler, num(1)},
		{"null target", NewDelegatingHandler, values.Null},
		{"revoked target", NewDelegatingHandler, revokedVal},
		{"nil handler", nilHandler, values.NewObject(values.Null)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateEntity(tt.ctor, tt.target)
			var terr *paserr.TypeError
			if !errors.As(err, &terr) {
				t.Errorf("expected TypeError, got %v", err)
			}
		})
	}
}

func TestCreateEntityWithoutTarget(t *testing.T) {
	v, err := CreateEntity(NewDelegatingHandler, values.Undefined)
	if err != nil {
		t.Fatalf("CreateEntity: %v", err)
	}
	e, _ := Of(v)
	if !e.Target().IsObject() {
		t.Fatalf("expected a placeholder target, got %s", e.Target().Inspect())
	}
	mustSet(t, v, "x", num(1))
	expectValue(t, mustGet(t, e.Target(), "x"), num(1), "placeholder.x")
}

func TestRevocableEntity(t *testing.T) {
	fn := values.NewFunction("f", func(values.Value, []values.Value) (values.Value, error) { return num(1), nil })
	v, revoke, err := CreateRevocableEntity(NewDelegatingHandler, fn)
	if err != nil {
		t.Fatalf("CreateRevocableEntity: %v", err)
	}
	if _, err := values.Call(v, values.Undefined, nil); err != nil {
		t.Fatalf("call before revocation: %v", err)
	}
	revoke()
	revoke()

	e, _ := Of(v)
	if !e.Revoked() {
		t.Fatalf("entity not revoked")
	}
	tests := []struct {
		op  string
		run func() error
	}{
		{OpGetOwnPropertyDescriptor, func() error { _, err := e.GetOwnProperty("x"); return err }},
		{OpGetOwnPropertyKeys, func() error { _, err := e.OwnKeys(); return err }},
		{OpGetPrototypeOf, func() error { _, err := e.GetPrototypeOf(); return err }},
		{OpSetPrototypeOf, func() error { _, err := e.SetPrototypeOf(values.Null); return err }},
		{OpDefineProperty, func() error {
			_, err := e.DefineOwnProperty("x", values.DataDescriptor(num(1), true, true, true))
			return err
		}},
		{OpDeleteProperty, func() error { _, err := e.Delete("x"); return err }},
		{OpPreventExtensions, func() error { _, err := e.PreventExtensions(); return err }},
		{OpIsExtensible, func() error { _, err := e.IsExtensible(); return err }},
		{OpApply, func() error { _, err := values.Call(v, values.Undefined, nil); return err }},
		{"has", func() error { _, err := e.HasProperty("x"); return err }},
		{"hasOwn", func() error { _, err := e.HasOwn("x"); return err }},
		{"get", func() error { _, err := values.Get(v, "x"); return err }},
		{"set", func() error { _, err := values.Set(v, "x", num(1)); return err }},
		{"invoke", func() error { _, err := values.Invoke(v, "x", nil); return err }},
		{"keys", func() error { _, err := e.Keys(); return err }},
		{"enumerate", func() error { _, err := e.Enumerate(); return err }},
		{"construct", func() error { _, err := values.Construct(v, nil); return err }},
		{"seal", func() error { _, err := e.Seal(); return err }},
		{"freeze", func() error { _, err := e.Freeze(); return err }},
		{"isSealed", func() error { _, err := e.IsSealed(); return err }},
		{"isFrozen", func() error { _, err := e.IsFrozen(); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			var rerr *paserr.RevokedError
			err := tt.run()
			if !errors.As(err, &rerr) {
				t.Fatalf("expected RevokedError, got %v", err)
			}
			if rerr.Operation != tt.op {
				t.Errorf("RevokedError names %q, want %q", rerr.Operation, tt.op)
			}
		})
	}

	// An object delegating to the revoked entity fails when the walk reaches it.
	child := values.NewObject(v)
	var rerr *paserr.RevokedError
	if _, err := values.Get(child, "missing"); !errors.As(err, &rerr) {
		t.Errorf("expected RevokedError through the chain, got %v", err)
	}
}

func TestFactoryLogging(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)
	cfg := config.Default()
	cfg.Chain.MaxDepth = 4
	f := Factory{Config: cfg, Logger: log}

	v, revoke, err := f.CreateRevocableEntity(NewVirtualHandler, values.Undefined)
	if err != nil {
		t.Fatalf("CreateRevocableEntity: %v", err)
	}
	if !strings.Contains(buf.String(), `"message":"entity created"`) || !strings.Contains(buf.String(), `"handler":"virtual"`) {
		t.Errorf("missing creation log, got %q", buf.String())
	}
	revoke()
	if !strings.Contains(buf.String(), `"message":"entity revoked"`) {
		t.Errorf("missing revocation log, got %q", buf.String())
	}
	e, _ := Of(v)
	if e.Derived().cfg.Chain.MaxDepth != 4 {
		t.Errorf("factory configuration not applied to the entity")
	}
}

func TestCycleIsLogged(t *testing.T) {
	var buf bytes.Buffer
	po := values.NewPlainObject(values.Null)
	e := NewEntity(&DelegatingHandler{}, values.ObjectValue(po), WithLogger(zerolog.New(&buf)))
	po.SetPrototypeOf(e.Value())
	if _, err := values.Get(e.Value(), "k"); err == nil {
		t.Fatalf("expected a cycle error")
	}
	out := buf.String()
	if !strings.Contains(out, `"level":"warn"`) || !strings.Contains(out, `"key":"k"`) || !strings.Contains(out, `"handler":"delegating"`) {
		t.Errorf("unexpected cycle log %q", out)
	}
}
