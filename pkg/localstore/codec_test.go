package localstore

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type celsius float64

func TestStringify(t *testing.T) {
	var nilPtr *int
	var nilMap map[string]any
	n := 7

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "abc", "abc"},
		{"int", 42, "42"},
		{"negative int64", int64(-3), "-3"},
		{"uint8", uint8(255), "255"},
		{"float", 0.1, "0.1"},
		{"whole float", 3.0, "3"},
		{"float32", float32(1.1), "1.1"},
		{"large float", 1e20, "100000000000000000000"},
		{"exponent float", 1e21, "1e+21"},
		{"small float", 0.000001, "0.000001"},
		{"tiny float", 1e-7, "1e-7"},
		{"negative zero", math.Copysign(0, -1), "0"},
		{"nan", math.NaN(), "NaN"},
		{"inf", math.Inf(1), "Infinity"},
		{"-inf", math.Inf(-1), "-Infinity"},
		{"bool", false, "false"},
		{"nil", nil, "null"},
		{"nil pointer", nilPtr, "null"},
		{"nil map", nilMap, "null"},
		{"pointer to int", &n, "7"},
		{"named float", celsius(21.5), "21.5"},
		{"json number", json.Number("12.50"), "12.50"},
		{"stringer", 90 * time.Second, "1m30s"},
		{"error", errors.New("boom"), "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stringify(tt.in))
		})
	}
}

func TestIsObject(t *testing.T) {
	var nilSlice []int
	var nilPtr *struct{}

	tests := []struct {
		name string
		in   any
		want bool
	}{
		{"map", map[string]int{}, true},
		{"slice", []string{}, true},
		{"array", [2]int{}, true},
		{"struct", struct{ A int }{}, true},
		{"pointer to struct", &struct{}{}, true},
		{"raw json", json.RawMessage(`{"a":1}`), true},
		{"nil", nil, false},
		{"nil slice", nilSlice, false},
		{"nil pointer", nilPtr, false},
		{"string", "x", false},
		{"number", 1, false},
		{"json number", json.Number("1"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isObject(tt.in))
		})
	}
}

func TestDecode(t *testing.T) {
	assert.Equal(t, float64(5), decode("5"))
	assert.Equal(t, float64(5), decode(" 5 "))
	assert.Equal(t, "hello", decode("hello"))
	assert.Equal(t, "42abc", decode("42abc"))
	assert.Equal(t, "quoted", decode(`"quoted"`))
	assert.Equal(t, []any{"a", true}, decode(`["a",true]`))
	assert.Nil(t, decode("null"))
	assert.Equal(t, "", decode(""))
}
