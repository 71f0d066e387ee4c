package handler

import (
	"github.com/rs/zerolog"

	"github.com/tvcutsem/proxy-handlers/pkg/config"
	paserr "github.com/tvcutsem/proxy-handlers/pkg/errors"
	"github.com/tvcutsem/proxy-handlers/pkg/values"
)

// Entity is a virtual object: a backing value paired with a handler. Every
// internal method dispatches to the handler's primitives or to the derived
// engine, so an Entity can be used anywhere a values.Object is expected,
// including as another object's prototype.
type Entity struct {
	handler Handler
	target  values.Value
	derived *Derived
	revoked bool
	log     zerolog.Logger
}

var (
	_ values.Object      = (*Entity)(nil)
	_ values.Callable    = (*Entity)(nil)
	_ values.Constructor = (*Entity)(nil)
	_ values.Enumerator  = (*Entity)(nil)
	_ values.Invoker     = (*Entity)(nil)
)

type options struct {
	cfg config.Config
	log zerolog.Logger
}

type Option func(*options)

// WithConfig sets the engine configuration. The default is config.Default().
func WithConfig(cfg config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithLogger sets the logger chain walks and revocations are reported to.
// The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

// NewEntity binds h to target. An Undefined target is replaced with an
// empty placeholder object, which is what virtual handlers expect.
func NewEntity(h Handler, target values.Value, opts ...Option) *Entity {
	o := options{cfg: config.Default(), log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if target.IsUndefined() {
		target = values.NewObject(values.Null)
	}
	log := o.log.With().Str("handler", handlerName(h)).Logger()
	return &Entity{
		handler: h,
		target:  target,
		derived: NewDerived(h, o.cfg, log),
		log:     log,
	}
}

func handlerName(h Handler) string {
	switch h.(type) {
	case *DelegatingHandler:
		return "delegating"
	case *ForwardingHandler:
		return "forwarding"
	case *VirtualHandler:
		return "virtual"
	default:
		return "custom"
	}
}

// Value returns the entity as a value.
func (e *Entity) Value() values.Value { return values.ObjectValue(e) }

func (e *Entity) Handler() Handler { return e.handler }

func (e *Entity) Target() values.Value { return e.target }

// Derived exposes the engine computing this entity's derived operations.
func (e *Entity) Derived() *Derived { return e.derived }

// Revoke permanently disables the entity. Revoking twice is a no-op.
func (e *Entity) Revoke() {
	if e.revoked {
		return
	}
	e.revoked = true
	e.log.Debug().Msg("entity revoked")
}

func (e *Entity) Revoked() bool { return e.revoked }

func (e *Entity) check(op string) error {
	if e.revoked {
		return paserr.NewRevoked(op)
	}
	return nil
}

// IsCallable reports whether the entity can be called: the handler decides
// when it implements CallableHandler, the backing value otherwise.
func (e *Entity) IsCallable() bool {
	if c, ok := e.handler.(CallableHandler); ok {
		return c.IsCallable(e.target)
	}
	return e.target.IsCallable()
}

func (e *Entity) GetPrototypeOf() (values.Value, error) {
	if err := e.check(OpGetPrototypeOf); err != nil {
		return values.Null, err
	}
	return e.handler.GetPrototypeOf(e.target)
}

func (e *Entity) SetPrototypeOf(proto values.Value) (bool, error) {
	if err := e.check(OpSetPrototypeOf); err != nil {
		return false, err
	}
	return e.handler.SetPrototypeOf(e.target, proto)
}

func (e *Entity) IsExtensible() (bool, error) {
	if err := e.check(OpIsExtensible); err != nil {
		return false, err
	}
	return e.handler.IsExtensible(e.target)
}

func (e *Entity) PreventExtensions() (bool, error) {
	if err := e.check(OpPreventExtensions); err != nil {
		return false, err
	}
	return e.handler.PreventExtensions(e.target)
}

func (e *Entity) GetOwnProperty(key string) (*values.Descriptor, error) {
	if err := e.check(OpGetOwnPropertyDescriptor); err != nil {
		return nil, err
	}
	return e.derived.ownDescriptor(e.target, key)
}

func (e *Entity) DefineOwnProperty(key string, desc *values.PartialDescriptor) (bool, error) {
	if err := e.check(OpDefineProperty); err != nil {
		return false, err
	}
	return e.handler.DefineProperty(e.target, key, desc)
}

func (e *Entity) Delete(key string) (bool, error) {
	if err := e.check(OpDeleteProperty); err != nil {
		return false, err
	}
	return e.handler.DeleteProperty(e.target, key)
}

func (e *Entity) OwnKeys() ([]string, error) {
	if err := e.check(OpGetOwnPropertyKeys); err != nil {
		return nil, err
	}
	return e.handler.GetOwnPropertyKeys(e.target)
}

func (e *Entity) Call(this values.Value, args []values.Value) (values.Value, error) {
	if err := e.check(OpApply); err != nil {
		return values.Undefined, err
	}
	return e.handler.Apply(e.target, this, args)
}

func (e *Entity) HasProperty(key string) (bool, error) {
	if err := e.check("has"); err != nil {
		return false, err
	}
	return e.derived.Has(e.target, key)
}

func (e *Entity) HasOwn(key string) (bool, error) {
	if err := e.check("hasOwn"); err != nil {
		return false, err
	}
	return e.derived.HasOwn(e.target, key)
}

func (e *Entity) Get(key string, receiver values.Value) (values.Value, error) {
	if err := e.check("get"); err != nil {
		return values.Undefined, err
	}
	return e.derived.Get(e.target, key, receiver)
}

func (e *Entity) Set(key string, v values.Value, receiver values.Value) (bool, error) {
	if err := e.check("set"); err != nil {
		return false, err
	}
	return e.derived.Set(e.target, key, v, receiver)
}

func (e *Entity) Invoke(key string, args []values.Value, receiver values.Value) (values.Value, error) {
	if err := e.check("invoke"); err != nil {
		return values.Undefined, err
	}
	return e.derived.Invoke(e.target, key, args, receiver)
}

func (e *Entity) Enumerate() ([]string, error) {
	if err := e.check("enumerate"); err != nil {
		return nil, err
	}
	return e.derived.Enumerate(e.target)
}

func (e *Entity) Keys() ([]string, error) {
	if err := e.check("keys"); err != nil {
		return nil, err
	}
	return e.derived.Keys(e.target)
}

func (e *Entity) Construct(args []values.Value) (values.Value, error) {
	if err := e.check("construct"); err != nil {
		return values.Undefined, err
	}
	if !e.IsCallable() {
		return values.Undefined, paserr.NewTypeError("entity is not a constructor")
	}
	return e.derived.Construct(e.target, args, e.Value())
}

func (e *Entity) Seal() (bool, error) {
	if err := e.check("seal"); err != nil {
		return false, err
	}
	return e.derived.Seal(e.target)
}

func (e *Entity) Freeze() (bool, error) {
	if err := e.check("freeze"); err != nil {
		return false, err
	}
	return e.derived.Freeze(e.target)
}

func (e *Entity) IsSealed() (bool, error) {
	if err := e.check("isSealed"); err != nil {
		return false, err
	}
	return e.derived.IsSealed(e.target)
}

func (e *Entity) IsFrozen() (bool, error) {
	if err := e.check("isFrozen"); err != nil {
		return false, err
	}
	return e.derived.IsFrozen(e.target)
}
