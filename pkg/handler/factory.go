package handler

import (
	"github.com/rs/zerolog"

	"github.com/tvcutsem/proxy-handlers/pkg/config"
	paserr "github.com/tvcutsem/proxy-handlers/pkg/errors"
	"github.com/tvcutsem/proxy-handlers/pkg/values"
)

// Revoke permanently disables the entity it was created with.
type Revoke func()

// Factory creates entities sharing one configuration and logger.
type Factory struct {
	Config config.Config
	Logger zerolog.Logger
}

// DefaultFactory uses config.Default() and discards logs.
var DefaultFactory = Factory{Config: config.Default(), Logger: zerolog.Nop()}

// CreateEntity builds a handler with ctor(args...) and binds it to target.
func (f Factory) CreateEntity(ctor Constructor, target values.Value, args ...values.Value) (values.Value, error) {
	e, err := f.create(ctor, target, args)
	if err != nil {
		return values.Undefined, err
	}
	return e.Value(), nil
}

// CreateRevocableEntity is CreateEntity plus a capability that revokes the
// entity; afterwards every operation on it fails with RevokedError.
func (f Factory) CreateRevocableEntity(ctor Constructor, target values.Value, args ...values.Value) (values.Value, Revoke, error) {
	e, err := f.create(ctor, target, args)
	if err != nil {
		return values.Undefined, nil, err
	}
	return e.Value(), e.Revoke, nil
}

func (f Factory) create(ctor Constructor, target values.Value, args []values.Value) (*Entity, error) {
	if ctor == nil {
		return nil, paserr.NewTypeError("entity factory requires a handler constructor")
	}
	if !target.IsObject() && !target.IsUndefined() {
		return nil, paserr.NewTypeError("entity target must be an object, got %s", target.TypeName())
	}
	if target.IsObject() {
		if t, ok := target.AsObject().(*Entity); ok && t.Revoked() {
			return nil, paserr.NewTypeError("cannot create an entity with a revoked entity as target")
		}
	}
	h, err := ctor(args...)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, paserr.NewTypeError("handler constructor returned no handler")
	}
	e := NewEntity(h, target, WithConfig(f.Config), WithLogger(f.Logger))
	f.Logger.Debug().Str("handler", handlerName(h)).Bool("callable", e.IsCallable()).Msg("entity created")
	return e, nil
}

func CreateEntity(ctor Constructor, target values.Value, args ...values.Value) (values.Value, error) {
	return DefaultFactory.CreateEntity(ctor, target, args...)
}

func CreateRevocableEntity(ctor Constructor, target values.Value, args ...values.Value) (values.Value, Revoke, error) {
	return DefaultFactory.CreateRevocableEntity(ctor, target, args...)
}

// Of returns the entity behind v, if v is one.
func Of(v values.Value) (*Entity, bool) {
	if !v.IsObject() {
		return nil, false
	}
	e, ok := v.AsObject().(*Entity)
	return e, ok
}
