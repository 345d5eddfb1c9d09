package model

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

type ValueKind int

const (
	EmptyValue ValueKind = iota
	SingleValue
	MultiValue
	FieldsValue
)

// Value is the current answer to one question: nothing, a single string,
// a set of option ids, or a map of input id to text.
type Value struct {
	Kind   ValueKind
	Text   string
	Items  []string
	Fields map[string]string
}

func Empty() Value                       { return Value{} }
func Single(s string) Value              { return Value{Kind: SingleValue, Text: s} }
func Multi(items ...string) Value        { return Value{Kind: MultiValue, Items: append([]string{}, items...)} }
func FieldMap(f map[string]string) Value { return Value{Kind: FieldsValue, Fields: copyFields(f)} }

func copyFields(f map[string]string) map[string]string {
	out := make(map[string]string, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// IsEmpty follows the emptiness rule of required fields: blank strings,
// empty arrays and maps whose every field is blank count as empty.
func (v Value) IsEmpty() bool {
	switch v.Kind {
	case SingleValue:
		return strings.TrimSpace(v.Text) == ""
	case MultiValue:
		return len(v.Items) == 0
	case FieldsValue:
		for _, f := range v.Fields {
			if strings.TrimSpace(f) != "" {
				return false
			}
		}
		return true
	}
	return true
}

// Field returns the text stored under an input id, or "" for any other kind.
func (v Value) Field(id string) string {
	if v.Kind != FieldsValue {
		return ""
	}
	return v.Fields[id]
}

func (v Value) String() string {
	switch v.Kind {
	case SingleValue:
		return v.Text
	case MultiValue:
		return strings.Join(v.Items, ",")
	case FieldsValue:
		keys := make([]string, 0, len(v.Fields))
		for k := range v.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + v.Fields[k]
		}
		return strings.Join(parts, ",")
	}
	return ""
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case SingleValue:
		return json.Marshal(v.Text)
	case MultiValue:
		items := v.Items
		if items == nil {
			items = []string{}
		}
		return json.Marshal(items)
	case FieldsValue:
		fields := v.Fields
		if fields == nil {
			fields = map[string]string{}
		}
		return json.Marshal(fields)
	}
	return []byte("null"), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Empty()
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Single(s)
	case '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*v = Multi(items...)
	case '{':
		var fields map[string]string
		if err := json.Unmarshal(data, &fields); err != nil {
			return err
		}
		*v = FieldMap(fields)
	default:
		return fmt.Errorf("answer value %s: %w", data, ErrMalformed)
	}
	return nil
}

type Answer struct {
	QuestionID    string        `json:"questionId"`
	Value         Value         `json:"value"`
	ComponentType ComponentType `json:"componentType"`
}
