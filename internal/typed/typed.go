// Package typed holds small, strictly typed helpers.
package typed

import (
	"fmt"
	"math"
	"strconv"

	"golang.org/x/exp/constraints"
)

// Number is any built-in integer or floating point type.
type Number interface {
	constraints.Integer | constraints.Float
}

func Add(a, b float64) float64 {
	return a + b
}

func Concat(a, b string) string {
	return a + b
}

func Floor(n float64) int {
	return int(math.Floor(n))
}

func ToStr(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func SumList(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum
}

// Sum adds values of a single numeric type as float64.
func Sum[T Number](values []T) float64 {
	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	return sum
}

// SumMixedList adds a list of ints and floats. Any other element type is an
// error.
func SumMixedList(values []any) (float64, error) {
	var sum float64
	for i, v := range values {
		switch n := v.(type) {
		case int:
			sum += float64(n)
		case int32:
			sum += float64(n)
		case int64:
			sum += float64(n)
		case float32:
			sum += float64(n)
		case float64:
			sum += n
		default:
			return 0, fmt.Errorf("element %d: unsupported type %T", i, v)
		}
	}
	return sum, nil
}

// ToKV pairs k with the square of v.
func ToKV[T Number](k string, v T) (string, float64) {
	f := float64(v)
	return k, f * f
}

func MakeMultiplier(multiplier float64) func(float64) float64 {
	return func(v float64) float64 {
		return v * multiplier
	}
}

type ElementLen struct {
	Element string
	Len     int
}

// ElementLength pairs every element with its length in bytes.
func ElementLength(items []string) []ElementLen {
	out := make([]ElementLen, 0, len(items))
	for _, item := range items {
		out = append(out, ElementLen{Element: item, Len: len(item)})
	}
	return out
}

// SafeFirstElement returns the first element and true, or the zero value
// and false for an empty slice.
func SafeFirstElement[T any](s []T) (T, bool) {
	if len(s) == 0 {
		var zero T
		return zero, false
	}
	return s[0], true
}

func SafelyGetValue[K comparable, V any](m map[K]V, key K, fallback V) V {
	if v, ok := m[key]; ok {
		return v
	}
	return fallback
}

// ZoomArray repeats each element factor times in place.
func ZoomArray[T any](s []T, factor int) []T {
	if factor <= 0 {
		return []T{}
	}

	out := make([]T, 0, len(s)*factor)
	for _, item := range s {
		for i := 0; i < factor; i++ {
			out = append(out, item)
		}
	}
	return out
}
