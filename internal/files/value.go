package files

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind identifies the JSON type held by a Value
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

var kindNames = map[Kind]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindNumber: "number",
	KindString: "string",
	KindArray:  "array",
	KindObject: "object",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Value is a decoded JSON value. Numbers keep their literal text so that a
// report prints exactly what the statistics contain. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	s    string
	arr  []Value
	obj  *Object
}

// NewNull returns the JSON null value
func NewNull() Value { return Value{} }

// NewBool wraps a boolean
func NewBool(b bool) Value { return Value{kind: KindBool, b: b} }

// NewNumber wraps a JSON number literal such as "12" or "3.5"
func NewNumber(literal string) Value { return Value{kind: KindNumber, s: literal} }

// NewString wraps a string
func NewString(s string) Value { return Value{kind: KindString, s: s} }

// NewArray wraps a list of values
func NewArray(items ...Value) Value { return Value{kind: KindArray, arr: items} }

// NewObjectValue wraps an object
func NewObjectValue(o *Object) Value {
	if o == nil {
		o = NewObject()
	}
	return Value{kind: KindObject, obj: o}
}

// Kind returns the JSON type of v
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is JSON null
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsObject returns the object held by v
func (v Value) AsObject() (*Object, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.obj, true
}

// AsArray returns the items held by v
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.arr, true
}

// AsString returns the string held by v
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// Int converts a number to int64. Integral floats such as "3.0" are accepted.
func (v Value) Int() (int64, error) {
	if v.kind != KindNumber {
		return 0, fmt.Errorf("expected number, got %s", v.kind)
	}
	if n, err := strconv.ParseInt(v.s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v.s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", v.s, err)
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("number %q is not an integer", v.s)
	}
	return int64(f), nil
}

// Float converts a number to float64
func (v Value) Float() (float64, error) {
	if v.kind != KindNumber {
		return 0, fmt.Errorf("expected number, got %s", v.kind)
	}
	f, err := strconv.ParseFloat(v.s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", v.s, err)
	}
	return f, nil
}

// Len returns the number of items of an array or keys of an object, 0 otherwise
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return v.obj.Len()
	default:
		return 0
	}
}

// Truthy follows the usual scripting notion of truth: null, false, zero,
// and empty strings, arrays and objects are false.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		f, err := strconv.ParseFloat(v.s, 64)
		return err != nil || f != 0
	case KindString:
		return v.s != ""
	case KindArray, KindObject:
		return v.Len() > 0
	default:
		return false
	}
}

// Text renders v as a single CSV cell. Null is empty, booleans are "True"
// or "False", numbers keep their literal text and containers are compact
// JSON.
func (v Value) Text() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		if v.b {
			return "True"
		}
		return "False"
	case KindNumber, KindString:
		return v.s
	default:
		data, err := v.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// MarshalJSON writes v as compact JSON, keeping object key order
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		buf.WriteString(v.s)
	case KindString:
		return writeJSONString(buf, v.s)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, key := range v.obj.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := v.obj.values[key].writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates every value with a newline
	buf.Truncate(buf.Len() - 1)
	return nil
}

// Object is a JSON object that remembers the order its keys were first seen
type Object struct {
	keys   []string
	values map[string]Value
}

// NewObject creates an empty object
func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

// Set stores value under key. A repeated key keeps its first position and
// takes the latest value.
func (o *Object) Set(key string, value Value) *Object {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
	return o
}

// Get returns the value stored under key
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is present
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Keys returns the keys in insertion order
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Len returns the number of keys
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Each calls fn for every key in insertion order and stops at the first error
func (o *Object) Each(fn func(key string, value Value) error) error {
	if o == nil {
		return nil
	}
	for _, key := range o.keys {
		if err := fn(key, o.values[key]); err != nil {
			return err
		}
	}
	return nil
}
