package reconcile

import "reflect"

// equalValue is a tight structural-equality test that avoids reflection for
// the value kinds a JSON document actually produces.
//
// Numeric values compare by value across int/int64/float64 so that a
// declared untyped constant matches the float64 a decoded snapshot carries.
// List comparison is order-sensitive (the remote apply treats arrays as
// ordered). Everything weird falls back to reflect.DeepEqual.
func equalValue(a, b any) bool {
	switch va := a.(type) {
	case string:
		vb, ok := b.(string)
		return ok && va == vb
	case bool:
		vb, ok := b.(bool)
		return ok && va == vb
	case int:
		return numEqual(float64(va), b)
	case int64:
		return numEqual(float64(va), b)
	case float64:
		return numEqual(va, b)
	case nil:
		return b == nil
	}
	return reflect.DeepEqual(a, b)
}

func numEqual(a float64, b any) bool {
	switch vb := b.(type) {
	case int:
		return a == float64(vb)
	case int64:
		return a == float64(vb)
	case float64:
		return a == vb
	}
	return false
}
