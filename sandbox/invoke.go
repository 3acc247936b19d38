package sandbox

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/snippetlab/verifier/classify"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Invoke calls a discovered callable with the test-case input. Ordered
// sequences are spread as positional arguments; any other input is passed
// as a single argument. Channel-valued results are awaited; a non-nil
// error return, an error received from a channel, or a panic inside the
// callable becomes a classified failure instead of propagating.
func (e *Executor) Invoke(ctx context.Context, name string, fn reflect.Value, input any) (out any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = &classify.Failure{
				Kind:    classify.KindInvocation,
				Message: fmt.Sprintf("%s panicked: %s", name, classify.Sanitize(classify.Message(rec))),
			}
		}
	}()

	args, err := buildArgs(fn.Type(), input)
	if err != nil {
		return nil, &classify.Failure{
			Kind:    classify.KindInvocation,
			Message: fmt.Sprintf("cannot call %s: %s", name, classify.Message(err)),
		}
	}

	results := fn.Call(args)

	// A trailing non-nil error return is the dialect's rejection.
	if n := len(results); n > 0 && fn.Type().Out(n-1).Implements(errorType) {
		if errVal := results[n-1]; !errVal.IsNil() {
			return nil, &classify.Failure{
				Kind:    classify.KindRejection,
				Message: fmt.Sprintf("%s rejected: %s", name, classify.Sanitize(errVal.Interface().(error).Error())),
			}
		}
		results = results[:n-1]
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return e.await(ctx, name, results[0])
	default:
		vals := make([]any, len(results))
		for i, r := range results {
			vals[i] = r.Interface()
		}
		return vals, nil
	}
}

// await resolves a pending asynchronous result: a channel-valued return
// is received from (a closed, empty channel resolves to nil), anything
// else is already settled.
func (e *Executor) await(ctx context.Context, name string, v reflect.Value) (any, error) {
	if v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	if v.Kind() != reflect.Chan {
		if !v.IsValid() {
			return nil, nil
		}
		return v.Interface(), nil
	}

	chosen, recv, ok := reflect.Select([]reflect.SelectCase{
		{Dir: reflect.SelectRecv, Chan: v},
		{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())},
	})
	if chosen == 1 {
		return nil, &classify.Failure{
			Kind:    classify.KindInvocation,
			Message: fmt.Sprintf("cancelled while awaiting result of %s", name),
		}
	}
	if !ok {
		return nil, nil
	}
	if recvErr, isErr := recv.Interface().(error); isErr && recvErr != nil {
		return nil, &classify.Failure{
			Kind:    classify.KindRejection,
			Message: fmt.Sprintf("%s rejected: %s", name, classify.Sanitize(recvErr.Error())),
		}
	}
	return recv.Interface(), nil
}

// buildArgs maps a test-case input onto the callable's parameter list.
func buildArgs(ft reflect.Type, input any) ([]reflect.Value, error) {
	var raw []any
	switch {
	case input == nil:
		if ft.NumIn() == 0 {
			raw = nil
		} else {
			raw = []any{nil}
		}
	case isSequence(input):
		rv := reflect.ValueOf(input)
		raw = make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			raw[i] = rv.Index(i).Interface()
		}
	default:
		raw = []any{input}
	}

	min := ft.NumIn()
	if ft.IsVariadic() {
		min--
		if len(raw) < min {
			return nil, fmt.Errorf("expects at least %d arguments, got %d", min, len(raw))
		}
	} else if len(raw) != min {
		return nil, fmt.Errorf("expects %d arguments, got %d", min, len(raw))
	}

	args := make([]reflect.Value, len(raw))
	for i, v := range raw {
		paramType := ft.In(minInt(i, ft.NumIn()-1))
		if ft.IsVariadic() && i >= ft.NumIn()-1 {
			paramType = ft.In(ft.NumIn() - 1).Elem()
		}
		arg, err := coerceValue(v, paramType)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		args[i] = arg
	}
	return args, nil
}

// isSequence reports whether an input value is an ordered sequence.
func isSequence(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return true
	default:
		return false
	}
}

// coerceValue adapts a decoded input value (YAML/JSON kinds) to the
// callable's parameter type.
func coerceValue(v any, t reflect.Type) (reflect.Value, error) {
	if t.Kind() == reflect.Interface && t.NumMethod() == 0 {
		if v == nil {
			return reflect.Zero(t), nil
		}
		return reflect.ValueOf(v), nil
	}
	if v == nil {
		switch t.Kind() {
		case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface:
			return reflect.Zero(t), nil
		default:
			return reflect.Value{}, fmt.Errorf("cannot use nil as %s", t)
		}
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if isNumericKind(rv.Kind()) && isNumericKind(t.Kind()) {
		return rv.Convert(t), nil
	}

	switch t.Kind() {
	case reflect.Slice:
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return reflect.Value{}, fmt.Errorf("cannot use %T as %s", v, t)
		}
		out := reflect.MakeSlice(t, rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elem, err := coerceValue(rv.Index(i).Interface(), t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(elem)
		}
		return out, nil
	case reflect.Map:
		if rv.Kind() != reflect.Map {
			return reflect.Value{}, fmt.Errorf("cannot use %T as %s", v, t)
		}
		out := reflect.MakeMapWithSize(t, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key, err := coerceValue(iter.Key().Interface(), t.Key())
			if err != nil {
				return reflect.Value{}, err
			}
			val, err := coerceValue(iter.Value().Interface(), t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.SetMapIndex(key, val)
		}
		return out, nil
	case reflect.Struct:
		if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
			return reflect.Value{}, fmt.Errorf("cannot use %T as %s", v, t)
		}
		out := reflect.New(t).Elem()
		iter := rv.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			field := fieldByFoldedName(out, key)
			if !field.IsValid() {
				continue
			}
			val, err := coerceValue(iter.Value().Interface(), field.Type())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("field %s: %w", key, err)
			}
			field.Set(val)
		}
		return out, nil
	case reflect.Ptr:
		inner, err := coerceValue(v, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.New(t.Elem())
		out.Elem().Set(inner)
		return out, nil
	}

	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", v, t)
}

func fieldByFoldedName(structVal reflect.Value, name string) reflect.Value {
	t := structVal.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.IsExported() && strings.EqualFold(f.Name, name) {
			return structVal.Field(i)
		}
	}
	return reflect.Value{}
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
