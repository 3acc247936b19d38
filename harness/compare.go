package harness

import (
	"math"
	"reflect"
)

// DeepEqual compares an actual output against an expected output with the
// grading semantics of the harness:
//
//   - numbers compare by value across integer and float kinds, and NaN
//     compares equal to NaN (tests frequently assert not-a-number results);
//   - ordered sequences require equal length and pairwise equality, and a
//     sequence is never equal to a non-sequence;
//   - keyed records (string-keyed maps and structs) require identical key
//     sets and pairwise-equal values, regardless of key order;
//   - everything else requires identical dynamic types and equal values.
func DeepEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	av := reflect.ValueOf(a)
	bv := reflect.ValueOf(b)

	if isNumericValue(av) && isNumericValue(bv) {
		af, bf := asFloat(av), asFloat(bv)
		if math.IsNaN(af) && math.IsNaN(bf) {
			return true
		}
		return af == bf
	}

	aSeq := isSequenceValue(av)
	bSeq := isSequenceValue(bv)
	if aSeq != bSeq {
		return false
	}
	if aSeq {
		if av.Len() != bv.Len() {
			return false
		}
		for i := 0; i < av.Len(); i++ {
			if !DeepEqual(av.Index(i).Interface(), bv.Index(i).Interface()) {
				return false
			}
		}
		return true
	}

	aRec, aOK := asRecord(av)
	bRec, bOK := asRecord(bv)
	if aOK != bOK {
		return false
	}
	if aOK {
		if len(aRec) != len(bRec) {
			return false
		}
		for key, aVal := range aRec {
			bVal, present := bRec[key]
			if !present || !DeepEqual(aVal, bVal) {
				return false
			}
		}
		return true
	}

	if av.Type() != bv.Type() {
		return false
	}
	return reflect.DeepEqual(a, b)
}

func isNumericValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func asFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	default:
		return v.Float()
	}
}

func isSequenceValue(v reflect.Value) bool {
	return v.Kind() == reflect.Slice || v.Kind() == reflect.Array
}

// asRecord views string-keyed maps and structs uniformly as keyed
// records, so a snippet returning a struct grades correctly against an
// expected output decoded as a map.
func asRecord(v reflect.Value) (map[string]any, bool) {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		rec := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			rec[iter.Key().String()] = iter.Value().Interface()
		}
		return rec, true
	case reflect.Struct:
		t := v.Type()
		rec := make(map[string]any, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			if f := t.Field(i); f.IsExported() {
				rec[f.Name] = v.Field(i).Interface()
			}
		}
		return rec, true
	default:
		return nil, false
	}
}
