// Package schema reflects Go parameter structs into the JSON Schema
// definitions advertised to MCP clients.
package schema

import (
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/effective-security/ollama-mcp/utils"
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	cache   = make(map[reflect.Type]*Schema)
	cacheMu sync.Mutex
)

type Schema struct {
	*jsonschema.Schema
	// Parameters is the flattened top-level schema suitable for a tool
	// parameters definition.
	Parameters *jsonschema.Schema
}

// New creates a schema from the given type. Results are cached per type.
func New(t reflect.Type) (*Schema, error) {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	if s, ok := cache[t]; ok {
		return s, nil
	}

	full := reflectType(t)
	s := &Schema{
		Schema:     full,
		Parameters: flatten(full),
	}
	cache[t] = s
	return s, nil
}

func (s *Schema) String() string {
	return utils.ToJSONIndent(s.Parameters)
}

// flatten lifts the root definition out of the reflector's $defs envelope
// and resolves property references inline.
func flatten(tSchema *jsonschema.Schema) *jsonschema.Schema {
	rootID := strings.TrimPrefix(tSchema.Ref, "#/$defs/")

	defs := make(map[string]*jsonschema.Schema)
	var root *jsonschema.Schema
	for name, def := range tSchema.Definitions {
		if name == rootID {
			root = def
		} else {
			defs[name] = def
		}
	}
	if root == nil {
		return tSchema
	}

	res := &jsonschema.Schema{
		Type:       root.Type,
		Properties: root.Properties,
		Required:   root.Required,
	}
	resolveRefs(res.Properties, defs)
	return res
}

func resolveRefs(props *orderedmap.OrderedMap[string, *jsonschema.Schema], defs map[string]*jsonschema.Schema) {
	if props == nil {
		return
	}
	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		child := pair.Value
		if child.Ref != "" {
			if def, ok := defs[strings.TrimPrefix(child.Ref, "#/$defs/")]; ok {
				pair.Value = def
				child = def
			}
		}
		if child.Properties != nil {
			resolveRefs(child.Properties, defs)
		}
		if child.Items != nil && child.Items.Ref != "" {
			if def, ok := defs[strings.TrimPrefix(child.Items.Ref, "#/$defs/")]; ok {
				child.Items = def
			}
		}
	}
}

// reflectType returns the raw reflected schema. Struct names are suffixed
// with a hash of their package path so that identically named structs from
// different packages do not collide on $ref.
// See https://github.com/invopop/jsonschema/issues/42
func reflectType(t reflect.Type) *jsonschema.Schema {
	r := new(jsonschema.Reflector)
	r.Namer = func(t reflect.Type) string {
		name := t.Name()
		if t.Kind() == reflect.Struct {
			fullname := t.PkgPath() + "/" + t.Name()
			name = t.Name() + "@" + strconv.FormatUint(xxhash.Sum64String(fullname), 10)
		}
		return name
	}
	return r.ReflectFromType(t)
}
