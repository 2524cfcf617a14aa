package files

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueText(t *testing.T) {
	obj := NewObject().Set("b", NewNumber("1")).Set("a", NewString("x<y"))

	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"null", NewNull(), ""},
		{"true", NewBool(true), "True"},
		{"false", NewBool(false), "False"},
		{"integer literal", NewNumber("42"), "42"},
		{"float literal kept", NewNumber("1.50"), "1.50"},
		{"string", NewString("Agence Française"), "Agence Française"},
		{"array", NewArray(NewString("a"), NewNumber("2")), `["a",2]`},
		{"object keeps order", NewObjectValue(obj), `{"b":1,"a":"x<y"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.value.Text())
		})
	}
}

func TestValueTruthy(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  bool
	}{
		{"null", NewNull(), false},
		{"false", NewBool(false), false},
		{"true", NewBool(true), true},
		{"zero", NewNumber("0"), false},
		{"zero float", NewNumber("0.0"), false},
		{"non zero", NewNumber("-3"), true},
		{"empty string", NewString(""), false},
		{"string", NewString("0"), true},
		{"empty array", NewArray(), false},
		{"array", NewArray(NewNull()), true},
		{"empty object", NewObjectValue(nil), false},
		{"object", NewObjectValue(NewObject().Set("k", NewNull())), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.value.Truthy())
		})
	}
}

func TestValueInt(t *testing.T) {
	n, err := NewNumber("17").Int()
	require.NoError(t, err)
	assert.Equal(t, int64(17), n)

	n, err = NewNumber("4.0").Int()
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	_, err = NewNumber("4.5").Int()
	assert.Error(t, err)

	_, err = NewString("17").Int()
	assert.Error(t, err)
}

func TestValueFloat(t *testing.T) {
	f, err := NewNumber("2.5").Float()
	require.NoError(t, err)
	assert.Equal(t, 2.5, f)

	_, err = NewBool(true).Float()
	assert.Error(t, err)
}

func TestObjectSet(t *testing.T) {
	obj := NewObject()
	obj.Set("z", NewNumber("1")).Set("a", NewNumber("2")).Set("z", NewNumber("3"))

	assert.Equal(t, []string{"z", "a"}, obj.Keys())
	assert.Equal(t, 2, obj.Len())

	v, ok := obj.Get("z")
	require.True(t, ok)
	assert.Equal(t, "3", v.Text())

	assert.True(t, obj.Has("a"))
	assert.False(t, obj.Has("missing"))
}

func TestObjectKeysIsACopy(t *testing.T) {
	obj := NewObject().Set("a", NewNull())
	keys := obj.Keys()
	keys[0] = "mutated"

	assert.Equal(t, []string{"a"}, obj.Keys())
}

func TestObjectEach(t *testing.T) {
	obj := NewObject().Set("b", NewNumber("1")).Set("a", NewNumber("2"))

	var seen []string
	require.NoError(t, obj.Each(func(key string, value Value) error {
		seen = append(seen, key+"="+value.Text())
		return nil
	}))
	assert.Equal(t, []string{"b=1", "a=2"}, seen)

	var nilObj *Object
	assert.NoError(t, nilObj.Each(func(string, Value) error { return assert.AnError }))
	assert.Equal(t, 0, nilObj.Len())
}
