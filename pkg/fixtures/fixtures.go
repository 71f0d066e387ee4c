// Package fixtures builds graphs of ordinary objects from YAML documents:
//
//	objects:
//	  c:
//	    proto: null
//	    props:
//	      key: 1
//	      hidden: {value: "x", enumerable: false}
//	  b: {proto: c}
//	  a: {proto: b}
//
// A scalar property is a plain assignment (writable, enumerable,
// configurable). A mapping with a "value" field sets attributes explicitly;
// omitted attributes default to true. proto names another object of the
// document, null, or is omitted for the default object prototype.
package fixtures

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/tvcutsem/proxy-handlers/pkg/values"
)

type document struct {
	Objects map[string]objectSpec `yaml:"objects"`
}

type objectSpec struct {
	Proto yaml.Node `yaml:"proto"`
	Props yaml.Node `yaml:"props"`
}

// Graph holds the objects of a document by name.
type Graph map[string]values.Value

// Get returns the named object and panics if the document did not define it.
func (g Graph) Get(name string) values.Value {
	v, ok := g[name]
	if !ok {
		panic(fmt.Sprintf("fixtures: no object named %q", name))
	}
	return v
}

func LoadFile(path string) (Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixture load failed (%s): %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (Graph, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("fixture parse failed: %w", err)
	}
	g := make(Graph, len(doc.Objects))
	objs := make(map[string]*values.PlainObject, len(doc.Objects))
	for name := range doc.Objects {
		po := values.NewPlainObject(values.ObjectPrototype)
		objs[name] = po
		g[name] = values.ObjectValue(po)
	}
	for name, spec := range doc.Objects {
		po := objs[name]
		if err := linkProto(g, po, name, &spec.Proto); err != nil {
			return nil, err
		}
		if err := defineProps(po, name, &spec.Props); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func linkProto(g Graph, po *values.PlainObject, name string, n *yaml.Node) error {
	if n.Kind == 0 {
		return nil
	}
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("fixture %s: proto must be a name or null", name)
	}
	proto := values.Null
	if n.Tag != "!!null" {
		p, ok := g[n.Value]
		if !ok {
			return fmt.Errorf("fixture %s: unknown proto %q", name, n.Value)
		}
		proto = p
	}
	ok, err := po.SetPrototypeOf(proto)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("fixture %s: proto %q would create a cycle", name, n.Value)
	}
	return nil
}

func defineProps(po *values.PlainObject, name string, n *yaml.Node) error {
	if n.Kind == 0 {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("fixture %s: props must be a mapping", name)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		desc, err := propDescriptor(n.Content[i+1])
		if err != nil {
			return fmt.Errorf("fixture %s.%s: %w", name, key, err)
		}
		if _, err := po.DefineOwnProperty(key, desc); err != nil {
			return fmt.Errorf("fixture %s.%s: %w", name, key, err)
		}
	}
	return nil
}

func propDescriptor(n *yaml.Node) (*values.PartialDescriptor, error) {
	if n.Kind != yaml.MappingNode {
		v, err := scalar(n)
		if err != nil {
			return nil, err
		}
		return values.DataDescriptor(v, true, true, true), nil
	}
	attrs := map[string]bool{values.FieldWritable: true, values.FieldEnumerable: true, values.FieldConfigurable: true}
	v := values.Undefined
	for i := 0; i+1 < len(n.Content); i += 2 {
		field, valNode := n.Content[i].Value, n.Content[i+1]
		switch field {
		case values.FieldValue:
			sv, err := scalar(valNode)
			if err != nil {
				return nil, err
			}
			v = sv
		case values.FieldWritable, values.FieldEnumerable, values.FieldConfigurable:
			var b bool
			if err := valNode.Decode(&b); err != nil {
				return nil, err
			}
			attrs[field] = b
		default:
			return nil, fmt.Errorf("unknown attribute %q", field)
		}
	}
	return values.DataDescriptor(v, attrs[values.FieldWritable], attrs[values.FieldEnumerable], attrs[values.FieldConfigurable]), nil
}

func scalar(n *yaml.Node) (values.Value, error) {
	if n.Kind != yaml.ScalarNode {
		return values.Undefined, fmt.Errorf("expected a scalar value at line %d", n.Line)
	}
	switch n.Tag {
	case "!!null":
		return values.Null, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return values.Undefined, err
		}
		return values.BooleanValue(b), nil
	case "!!int", "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return values.Undefined, err
		}
		return values.NumberValue(f), nil
	default:
		return values.NewString(n.Value), nil
	}
}
