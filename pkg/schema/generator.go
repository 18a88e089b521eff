package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// JSONSchema is the subset of a JSON Schema document the generator emits.
type JSONSchema struct {
	Schema               string                 `json:"$schema,omitempty"`
	ID                   string                 `json:"$id,omitempty"`
	Title                string                 `json:"title,omitempty"`
	Description          string                 `json:"description,omitempty"`
	Type                 string                 `json:"type,omitempty"`
	Required             []string               `json:"required,omitempty"`
	Properties           map[string]*JSONSchema `json:"properties,omitempty"`
	AdditionalProperties *JSONSchema            `json:"additionalProperties,omitempty"`
	Items                *JSONSchema            `json:"items,omitempty"`
	Enum                 []any                  `json:"enum,omitempty"`
	Default              any                    `json:"default,omitempty"`
	Pattern              string                 `json:"pattern,omitempty"`
	Minimum              *float64               `json:"minimum,omitempty"`
	MinItems             *int                   `json:"minItems,omitempty"`
}

const schemaRef = "https://json-schema.org/draft/2020-12/schema"

// Generator builds JSON schemas from Go types. Property names come from the
// struct tag named by TagName, so YAML documents can be described too.
type Generator struct {
	TagName string
	BaseID  string
}

func NewGenerator(tagName, baseID string) *Generator {
	return &Generator{TagName: tagName, BaseID: baseID}
}

// GenerateSchema generates the root schema for t.
func (g *Generator) GenerateSchema(t reflect.Type) (*JSONSchema, error) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	s, err := g.schemaForType(t)
	if err != nil {
		return nil, err
	}
	s.Schema = schemaRef
	s.Title = t.Name()
	if g.BaseID != "" {
		s.ID = strings.TrimSuffix(g.BaseID, "/") + "/" + strings.ToLower(t.Name())
	}
	return s, nil
}

// GenerateJSONSchema renders the schema of v's type as indented JSON.
func (g *Generator) GenerateJSONSchema(v any) (string, error) {
	s, err := g.GenerateSchema(reflect.TypeOf(v))
	if err != nil {
		return "", err
	}

	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema to JSON: %w", err)
	}
	return string(out), nil
}

func (g *Generator) schemaForType(t reflect.Type) (*JSONSchema, error) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Struct:
		return g.structSchema(t)
	case reflect.Slice, reflect.Array:
		items, err := g.schemaForType(t.Elem())
		if err != nil {
			return nil, fmt.Errorf("array items: %w", err)
		}
		return &JSONSchema{Type: "array", Items: items}, nil
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("unsupported map key type: %s", t.Key())
		}
		values, err := g.schemaForType(t.Elem())
		if err != nil {
			return nil, fmt.Errorf("map values: %w", err)
		}
		return &JSONSchema{Type: "object", AdditionalProperties: values}, nil
	case reflect.Interface:
		// any value
		return &JSONSchema{}, nil
	case reflect.String:
		return &JSONSchema{Type: "string"}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &JSONSchema{Type: "integer"}, nil
	case reflect.Float32, reflect.Float64:
		return &JSONSchema{Type: "number"}, nil
	case reflect.Bool:
		return &JSONSchema{Type: "boolean"}, nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", t.Kind())
	}
}

func (g *Generator) structSchema(t reflect.Type) (*JSONSchema, error) {
	s := &JSONSchema{
		Type:       "object",
		Properties: make(map[string]*JSONSchema),
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := g.fieldName(field)
		if name == "" {
			continue
		}

		fs, err := g.schemaForType(field.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		if desc := field.Tag.Get("description"); desc != "" {
			fs.Description = desc
		}
		required := applySchemaTag(field.Tag.Get("schema"), fs)

		s.Properties[name] = fs
		if required {
			s.Required = append(s.Required, name)
		}
	}
	return s, nil
}

func (g *Generator) fieldName(field reflect.StructField) string {
	tag := field.Tag.Get(g.TagName)
	if tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return strings.ToLower(field.Name[:1]) + field.Name[1:]
	}
	return name
}

// applySchemaTag copies constraints like `schema:"required,enum=a|b,minItems=1"`
// onto s and reports whether the field is required.
func applySchemaTag(tag string, s *JSONSchema) bool {
	required := false
	for _, part := range strings.Split(tag, ",") {
		key, val, _ := strings.Cut(strings.TrimSpace(part), "=")
		switch key {
		case "required":
			required = true
		case "enum":
			for _, e := range strings.Split(val, "|") {
				s.Enum = append(s.Enum, e)
			}
		case "default":
			s.Default = val
		case "pattern":
			s.Pattern = val
		case "minimum":
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				s.Minimum = &f
			}
		case "minItems":
			if n, err := strconv.Atoi(val); err == nil {
				s.MinItems = &n
			}
		}
	}
	return required
}
