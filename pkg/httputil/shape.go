package httputil

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ErrNoShapeMatched is returned when no matcher accepts the payload.
var ErrNoShapeMatched = errors.New("response did not match any known shape")

// ShapeMatcher recognises one payload layout by JSON schema and says where
// the interesting value lives inside it.
type ShapeMatcher struct {
	Name string
	// Path is the key path from the document root to the value to extract.
	Path   []string
	schema *gojsonschema.Schema
}

// NewShapeMatcher compiles schema. It panics on an invalid schema since
// matchers are declared at package init.
func NewShapeMatcher(name, schema string, path ...string) ShapeMatcher {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("shape %s: invalid schema: %v", name, err))
	}
	return ShapeMatcher{Name: name, Path: path, schema: s}
}

// Matches reports whether doc has this shape.
func (m ShapeMatcher) Matches(doc []byte) bool {
	res, err := m.schema.Validate(gojsonschema.NewBytesLoader(doc))
	return err == nil && res.Valid()
}

// Extract walks Path through doc.
func (m ShapeMatcher) Extract(doc []byte) (json.RawMessage, error) {
	cur := json.RawMessage(doc)
	for _, key := range m.Path {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(cur, &obj); err != nil {
			return nil, fmt.Errorf("shape %s: %q is not an object: %w", m.Name, key, err)
		}
		next, ok := obj[key]
		if !ok {
			return nil, fmt.Errorf("shape %s: missing key %q", m.Name, key)
		}
		cur = next
	}
	return cur, nil
}

// Normalizer tries matchers in priority order; the first structural match wins.
type Normalizer struct {
	matchers []ShapeMatcher
}

func NewNormalizer(matchers ...ShapeMatcher) *Normalizer {
	return &Normalizer{matchers: matchers}
}

// With returns a normalizer that tries extra before the existing matchers.
func (n *Normalizer) With(extra ...ShapeMatcher) *Normalizer {
	ms := make([]ShapeMatcher, 0, len(extra)+len(n.matchers))
	ms = append(ms, extra...)
	ms = append(ms, n.matchers...)
	return &Normalizer{matchers: ms}
}

// Normalize returns the extracted value and the name of the matching shape.
func (n *Normalizer) Normalize(doc []byte) (json.RawMessage, string, error) {
	for _, m := range n.matchers {
		if !m.Matches(doc) {
			continue
		}
		v, err := m.Extract(doc)
		if err != nil {
			return nil, m.Name, err
		}
		return v, m.Name, nil
	}
	return nil, "", ErrNoShapeMatched
}

// Decode normalizes doc and unmarshals the extracted value into out.
func (n *Normalizer) Decode(doc []byte, out interface{}) (string, error) {
	raw, name, err := n.Normalize(doc)
	if err != nil {
		return name, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return name, fmt.Errorf("shape %s: decode: %w", name, err)
	}
	return name, nil
}

// ListShapes returns the list layouts seen from the commerce backend, most
// specific first. key is the resource collection name, e.g. "products".
func ListShapes(key string) *Normalizer {
	return NewNormalizer(
		NewShapeMatcher("bare-array", `{"type":"array"}`),
		NewShapeMatcher("data-array",
			`{"type":"object","required":["data"],"properties":{"data":{"type":"array"}}}`,
			"data"),
		NewShapeMatcher("data-items",
			`{"type":"object","required":["data"],"properties":{"data":{"type":"object","required":["items"],"properties":{"items":{"type":"array"}}}}}`,
			"data", "items"),
		NewShapeMatcher("data-"+key,
			fmt.Sprintf(`{"type":"object","required":["data"],"properties":{"data":{"type":"object","required":[%q],"properties":{%q:{"type":"array"}}}}}`, key, key),
			"data", key),
		NewShapeMatcher("items",
			`{"type":"object","required":["items"],"properties":{"items":{"type":"array"}}}`,
			"items"),
		NewShapeMatcher(key,
			fmt.Sprintf(`{"type":"object","required":[%q],"properties":{%q:{"type":"array"}}}`, key, key),
			key),
	)
}

// ObjectShapes returns the single-record layouts: {data:{...}}, {data:{<key>:{...}}}, {...}.
func ObjectShapes(key string) *Normalizer {
	return NewNormalizer(
		NewShapeMatcher("data-"+key,
			fmt.Sprintf(`{"type":"object","required":["data"],"properties":{"data":{"type":"object","required":[%q],"properties":{%q:{"type":"object"}}}}}`, key, key),
			"data", key),
		NewShapeMatcher("data-object",
			`{"type":"object","required":["data"],"properties":{"data":{"type":"object"}}}`,
			"data"),
		NewShapeMatcher(key,
			fmt.Sprintf(`{"type":"object","required":[%q],"properties":{%q:{"type":"object"}}}`, key, key),
			key),
		NewShapeMatcher("bare-object", `{"type":"object"}`),
	)
}
