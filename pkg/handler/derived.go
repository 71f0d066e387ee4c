package handler

import (
	"github.com/rs/zerolog"

	"github.com/tvcutsem/proxy-handlers/pkg/config"
	paserr "github.com/tvcutsem/proxy-handlers/pkg/errors"
	"github.com/tvcutsem/proxy-handlers/pkg/values"
)

// Derived computes the derived operations of a handler purely from its
// primitives, normalized descriptors and the delegation chain. Errors raised
// by primitives or by normalization are returned unchanged.
type Derived struct {
	h     Handler
	cfg   config.Config
	log   zerolog.Logger
	guard walkGuard
}

func NewDerived(h Handler, cfg config.Config, log zerolog.Logger) *Derived {
	return &Derived{h: h, cfg: cfg, log: log, guard: walkGuard{maxDepth: cfg.Chain.MaxDepth, inFlight: make(map[walkKey]struct{})}}
}

// walkKey identifies one in-flight chain walk.
type walkKey struct {
	op       string
	key      string
	receiver values.Object
}

// walkGuard detects a chain walk that re-enters itself through a cycle of
// entities, which would otherwise recurse until the stack is exhausted.
// inFlight only holds the walks of the current frame: code run from an
// accessor or method starts a fresh frame, so a getter re-reading its own
// key is not a cycle. depth spans frames and bounds runaway user recursion.
type walkGuard struct {
	maxDepth int
	depth    int
	inFlight map[walkKey]struct{}
}

func (d *Derived) enter(op, key string, receiver values.Value) (func(), error) {
	wk := walkKey{op: op, key: key}
	if receiver.IsObject() {
		wk.receiver = receiver.AsObject()
	}
	g := &d.guard
	if _, cyclic := g.inFlight[wk]; cyclic || (g.maxDepth > 0 && g.depth >= g.maxDepth) {
		d.log.Warn().Str("op", op).Str("key", key).Int("depth", g.depth).Msg("delegation chain cycle detected")
		return nil, &paserr.CyclicChainError{Operation: op, Key: key, Depth: g.depth}
	}
	g.inFlight[wk] = struct{}{}
	g.depth++
	return func() {
		delete(g.inFlight, wk)
		g.depth--
	}, nil
}

// call runs accessor or method code in a fresh guard frame.
func (d *Derived) call(fn, this values.Value, args []values.Value) (values.Value, error) {
	g := &d.guard
	saved := g.inFlight
	g.inFlight = make(map[walkKey]struct{})
	defer func() { g.inFlight = saved }()
	return values.Call(fn, this, args)
}

// context returns the identity accessors and methods are invoked against.
// Only invocations use it; chain recursion and data writes keep the receiver.
func (d *Derived) context(target, receiver values.Value) values.Value {
	if d.h.InvocationContext() == BindTarget {
		return target
	}
	return receiver
}

func (d *Derived) ownDescriptor(target values.Value, key string) (*values.Descriptor, error) {
	p, err := d.h.GetOwnPropertyDescriptor(target, key)
	if err != nil {
		return nil, err
	}
	return values.Normalize(p)
}

// HasOwn reports whether target has an own property key.
func (d *Derived) HasOwn(target values.Value, key string) (bool, error) {
	desc, err := d.ownDescriptor(target, key)
	return desc != nil, err
}

// Has reports whether key is found on target or anywhere up its chain.
func (d *Derived) Has(target values.Value, key string) (bool, error) {
	release, err := d.enter("has", key, values.Undefined)
	if err != nil {
		return false, err
	}
	defer release()

	own, err := d.HasOwn(target, key)
	if err != nil || own {
		return own, err
	}
	proto, err := d.h.GetPrototypeOf(target)
	if err != nil {
		return false, err
	}
	if !proto.IsObject() {
		return false, nil
	}
	d.log.Trace().Str("op", "has").Str("key", key).Msg("delegating to prototype")
	return proto.AsObject().HasProperty(key)
}

// Get reads key. Data properties yield their value; getters run against the
// invocation context; missing keys are looked up on the prototype with the
// same receiver.
func (d *Derived) Get(target values.Value, key string, receiver values.Value) (values.Value, error) {
	release, err := d.enter("get", key, receiver)
	if err != nil {
		return values.Undefined, err
	}
	defer release()

	desc, err := d.ownDescriptor(target, key)
	if err != nil {
		return values.Undefined, err
	}
	if desc == nil {
		proto, err := d.h.GetPrototypeOf(target)
		if err != nil || !proto.IsObject() {
			return values.Undefined, err
		}
		d.log.Trace().Str("op", "get").Str("key", key).Msg("delegating to prototype")
		return proto.AsObject().Get(key, receiver)
	}
	switch {
	case desc.IsData():
		return desc.Value, nil
	case desc.IsAccessor() && !desc.Get.IsUndefined():
		return d.call(desc.Get, d.context(target, receiver), nil)
	default:
		return values.Undefined, nil
	}
}

// Set assigns key and reports whether the assignment took effect. Setters run
// against the invocation context; data writes land on the receiver.
func (d *Derived) Set(target values.Value, key string, v values.Value, receiver values.Value) (bool, error) {
	release, err := d.enter("set", key, receiver)
	if err != nil {
		return false, err
	}
	defer release()

	desc, err := d.ownDescriptor(target, key)
	if err != nil {
		return false, err
	}
	if desc != nil {
		switch {
		case desc.IsData():
			if !desc.Writable {
				return false, nil
			}
			return values.SetOnReceiver(receiver, key, v)
		case desc.IsAccessor() && !desc.Set.IsUndefined():
			if _, err := d.call(desc.Set, d.context(target, receiver), []values.Value{v}); err != nil {
				return false, err
			}
			return true, nil
		default:
			// no setter, or a generic descriptor
			return false, nil
		}
	}
	proto, err := d.h.GetPrototypeOf(target)
	if err != nil {
		return false, err
	}
	if !proto.IsObject() {
		return values.SetOnReceiver(receiver, key, v)
	}
	d.log.Trace().Str("op", "set").Str("key", key).Msg("delegating to prototype")
	return proto.AsObject().Set(key, v, receiver)
}

// Invoke looks up method key with Get and calls it against the invocation
// context.
func (d *Derived) Invoke(target values.Value, key string, args []values.Value, receiver values.Value) (values.Value, error) {
	m, err := d.Get(target, key, receiver)
	if err != nil {
		return values.Undefined, err
	}
	if !m.IsCallable() {
		return values.Undefined, paserr.NewTypeError("%s is not a function", key)
	}
	return d.call(m, d.context(target, receiver), args)
}

// Keys lists the enumerable own keys of target.
func (d *Derived) Keys(target values.Value) ([]string, error) {
	names, err := d.h.GetOwnPropertyNames(target)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		desc, err := d.ownDescriptor(target, name)
		if err != nil {
			return nil, err
		}
		if desc != nil && desc.Enumerable {
			out = append(out, name)
		}
	}
	return out, nil
}

// Enumerate lists the enumerable keys of target followed by those of its
// delegation chain. With deduplication enabled each key appears once and an
// own key, enumerable or not, hides the same key further up the chain.
// Without it every hop contributes all of its enumerable keys.
func (d *Derived) Enumerate(target values.Value) ([]string, error) {
	release, err := d.enter("enumerate", "", values.Undefined)
	if err != nil {
		return nil, err
	}
	defer release()

	names, err := d.h.GetOwnPropertyNames(target)
	if err != nil {
		return nil, err
	}
	dedupe := d.cfg.Enumerate.Deduplicate
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		desc, err := d.ownDescriptor(target, name)
		if err != nil {
			return nil, err
		}
		if dedupe {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
		}
		if desc != nil && desc.Enumerable {
			out = append(out, name)
		}
	}
	proto, err := d.h.GetPrototypeOf(target)
	if err != nil || !proto.IsObject() {
		return out, err
	}
	if !dedupe {
		inherited, err := values.EnumerateRaw(proto)
		if err != nil {
			return nil, err
		}
		return append(out, inherited...), nil
	}
	inherited, err := values.Enumerate(proto)
	if err != nil {
		return nil, err
	}
	for _, name := range inherited {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out, nil
}

// Construct reads the "prototype" property of target, creates an instance
// delegating to it (or to values.ObjectPrototype when it is not an object),
// and applies target to the instance. A structured result replaces the
// instance. receiver is the entity being constructed.
func (d *Derived) Construct(target values.Value, args []values.Value, receiver values.Value) (values.Value, error) {
	proto, err := d.Get(target, "prototype", receiver)
	if err != nil {
		return values.Undefined, err
	}
	if !proto.IsObject() {
		proto = values.ObjectPrototype
	}
	instance := values.NewObject(proto)
	result, err := d.h.Apply(target, instance, args)
	if err != nil {
		return values.Undefined, err
	}
	if result.IsObject() {
		return result, nil
	}
	return instance, nil
}

// Seal prevents extensions and makes every own property non-configurable.
// The result is the conjunction of every step.
func (d *Derived) Seal(target values.Value) (bool, error) {
	return d.lock(target, false)
}

// Freeze seals target and additionally makes data properties non-writable.
// Accessor properties only lose configurability.
func (d *Derived) Freeze(target values.Value) (bool, error) {
	return d.lock(target, true)
}

func (d *Derived) lock(target values.Value, freeze bool) (bool, error) {
	ok, err := d.h.PreventExtensions(target)
	if err != nil {
		return false, err
	}
	names, err := d.h.GetOwnPropertyNames(target)
	if err != nil {
		return false, err
	}
	for _, name := range names {
		update := values.NewPartialDescriptor().Set(values.FieldConfigurable, values.False)
		if freeze {
			desc, err := d.ownDescriptor(target, name)
			if err != nil {
				return false, err
			}
			if desc == nil {
				continue
			}
			if desc.IsData() {
				update.Set(values.FieldWritable, values.False)
			}
		}
		defined, err := d.h.DefineProperty(target, name, update)
		if err != nil {
			return false, err
		}
		ok = ok && defined
	}
	return ok, nil
}

// IsSealed reports whether target is non-extensible and every own property
// is non-configurable.
func (d *Derived) IsSealed(target values.Value) (bool, error) {
	return d.isLocked(target, false)
}

// IsFrozen is IsSealed plus every own data property being non-writable.
func (d *Derived) IsFrozen(target values.Value) (bool, error) {
	return d.isLocked(target, true)
}

func (d *Derived) isLocked(target values.Value, frozen bool) (bool, error) {
	ext, err := d.h.IsExtensible(target)
	if err != nil || ext {
		return false, err
	}
	names, err := d.h.GetOwnPropertyNames(target)
	if err != nil {
		return false, err
	}
	for _, name := range names {
		desc, err := d.ownDescriptor(target, name)
		if err != nil {
			return false, err
		}
		if desc == nil {
			continue
		}
		if desc.Configurable {
			return false, nil
		}
		if frozen && desc.IsData() && desc.Writable {
			return false, nil
		}
	}
	return true, nil
}
