package ir

// Scalar is the set of Go types a Value can be extracted into.
type Scalar interface {
	string | int64 | bool
}

// Extract returns the named field of vm converted to T.
//
// Fails with FIELD_MISSING if the field is absent and TYPE_MISMATCH if the
// stored variant is not convertible to T. Null is never convertible: a
// caller that accepts absent data must check for it with Get first.
//
// Example:
//
//	id, err := ir.Extract[string](component, "id")
func Extract[T Scalar](vm ValueMapping, field string) (T, error) {
	var out T

	v, ok := vm.Get(field)
	if !ok {
		return out, NewFieldMissingError(field)
	}

	switch dst := any(&out).(type) {
	case *string:
		s, ok := v.(String)
		if !ok {
			return out, NewTypeMismatchError(field, "string", KindOf(v))
		}
		*dst = string(s)
	case *int64:
		n, ok := v.(Int)
		if !ok {
			return out, NewTypeMismatchError(field, "int", KindOf(v))
		}
		*dst = int64(n)
	case *bool:
		b, ok := v.(Bool)
		if !ok {
			return out, NewTypeMismatchError(field, "bool", KindOf(v))
		}
		*dst = bool(b)
	}

	return out, nil
}
