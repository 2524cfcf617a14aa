package files

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	apperrors "dashcsv/internal/errors"
)

// Decode reads exactly one JSON document from r. Object key order is kept.
func Decode(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, err
	}

	if tok, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return Value{}, err
		}
		return Value{}, fmt.Errorf("unexpected %v after top-level value", tok)
	}
	return v, nil
}

// DecodeFile decodes the JSON document stored at path
func DecodeFile(path string) (Value, error) {
	f, err := os.Open(path)
	if err != nil {
		return Value{}, apperrors.NewStorageError("failed to open "+path, err)
	}
	defer f.Close()

	v, err := Decode(f)
	if err != nil {
		return Value{}, apperrors.NewParsingError("failed to decode "+path, err)
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return Value{}, fmt.Errorf("unexpected delimiter %q", t)
		}
	case string:
		return NewString(t), nil
	case json.Number:
		return NewNumber(t.String()), nil
	case bool:
		return NewBool(t), nil
	case nil:
		return NewNull(), nil
	default:
		return Value{}, fmt.Errorf("unexpected token %v", tok)
	}
}

func decodeObject(dec *json.Decoder) (Value, error) {
	obj := NewObject()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("expected object key, got %v", tok)
		}

		v, err := decodeValue(dec)
		if err != nil {
			return Value{}, fmt.Errorf("key %q: %w", key, err)
		}
		obj.Set(key, v)
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return NewObjectValue(obj), nil
}

func decodeArray(dec *json.Decoder) (Value, error) {
	items := []Value{}
	for dec.More() {
		v, err := decodeValue(dec)
		if err != nil {
			return Value{}, fmt.Errorf("index %d: %w", len(items), err)
		}
		items = append(items, v)
	}

	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return NewArray(items...), nil
}
