package message

import (
	"fmt"
	"math"
	"reflect"
)

// maxValueDepth bounds nesting so self-referencing maps fail instead of
// recursing forever.
const maxValueDepth = 64

// Extensions maps string keys to variant values: nil, bool, string, numbers,
// arrays of variants and string-keyed maps of variants. Byte slices are
// rejected; put binary data in the payload. The JSON codec decodes numbers
// as float64, so integers beyond 2^53 lose precision on a round trip.
type Extensions map[string]any

// Validate checks that every value belongs to the variant set and that no
// reserved envelope key is used.
func (e Extensions) Validate() error {
	for key, value := range e {
		if key == PayloadKey || key == ExtensionsKey {
			return fmt.Errorf("reserved envelope key %q used as extension", key)
		}
		if err := validateValue(key, reflect.ValueOf(value), 0); err != nil {
			return err
		}
	}
	return nil
}

func validateValue(path string, v reflect.Value, depth int) error {
	if depth > maxValueDepth {
		return fmt.Errorf("extension %s nested deeper than %d", path, maxValueDepth)
	}
	if !v.IsValid() {
		return nil
	}

	switch v.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return nil
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("extension %s is not a finite number", path)
		}
		return nil
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		return validateValue(path, v.Elem(), depth+1)
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return fmt.Errorf("extension %s is a byte sequence; binary data belongs in the payload", path)
		}
		for i := 0; i < v.Len(); i++ {
			if err := validateValue(fmt.Sprintf("%s[%d]", path, i), v.Index(i), depth+1); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("extension %s has non-string map keys", path)
		}
		iter := v.MapRange()
		for iter.Next() {
			if err := validateValue(path+"."+iter.Key().String(), iter.Value(), depth+1); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("extension %s has unsupported type %s", path, v.Type())
	}
}
