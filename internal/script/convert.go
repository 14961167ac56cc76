// Package script exposes reflected objects to Starlark and evaluates the
// script-valued fields of card files (pack filters, statistics dimensions).
package script

import (
	"fmt"
	"reflect"
	"sort"

	"go.starlark.net/starlark"

	"github.com/leapstack-labs/cardfile/pkg/core"
	"github.com/leapstack-labs/cardfile/pkg/schema"
	"github.com/leapstack-labs/cardfile/pkg/value"
)

// ToStarlark converts a field value to a frozen Starlark value. Reflected
// objects become attribute-only views that hide no-script fields.
func ToStarlark(types *schema.Registry, v any) (starlark.Value, error) {
	switch val := v.(type) {
	case nil:
		return starlark.None, nil
	case starlark.Value:
		return val, nil
	case value.Holder:
		return ToStarlark(types, val.Interface())
	case core.Version:
		return starlark.MakeInt64(int64(val)), nil
	case schema.Object:
		if isNilPointer(val) {
			return starlark.None, nil
		}
		return newObject(types, val)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return starlark.String(rv.String()), nil
	case reflect.Bool:
		return starlark.Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// enumerations are exposed by name
		if s, ok := v.(fmt.Stringer); ok {
			return starlark.String(s.String()), nil
		}
		return starlark.MakeInt64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return starlark.MakeUint64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return starlark.Float(rv.Float()), nil
	case reflect.Slice, reflect.Array:
		elems := make([]starlark.Value, rv.Len())
		for i := range elems {
			sv, err := ToStarlark(types, rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			elems[i] = sv
		}
		list := starlark.NewList(elems)
		list.Freeze()
		return list, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("unsupported map key type %s", rv.Type().Key())
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)

		dict := starlark.NewDict(len(keys))
		for _, k := range keys {
			sv, err := ToStarlark(types, rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			if err := dict.SetKey(starlark.String(k), sv); err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
		}
		dict.Freeze()
		return dict, nil
	case reflect.Pointer:
		if rv.IsNil() {
			return starlark.None, nil
		}
	}
	return nil, fmt.Errorf("unsupported type %T", v)
}

// ToGo converts a Starlark value back to a Go value.
// Returns: string, int64, float64, bool, []any, map[string]any, or nil.
func ToGo(v starlark.Value) (any, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.String:
		return string(val), nil
	case starlark.Int:
		i64, ok := val.Int64()
		if !ok {
			return val.String(), nil
		}
		return i64, nil
	case starlark.Float:
		return float64(val), nil
	case starlark.Bool:
		return bool(val), nil
	case starlark.Indexable:
		out := make([]any, val.Len())
		for i := range out {
			gv, err := ToGo(val.Index(i))
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = gv
		}
		return out, nil
	case *starlark.Dict:
		out := make(map[string]any, val.Len())
		for _, item := range val.Items() {
			key, ok := item[0].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("dict key must be string, got %s", item[0].Type())
			}
			gv, err := ToGo(item[1])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", string(key), err)
			}
			out[string(key)] = gv
		}
		return out, nil
	case *Object:
		return val.obj, nil
	default:
		return val.String(), nil
	}
}

// Text renders a script result the way it is shown to users: strings
// without quotes, everything else in Starlark syntax.
func Text(v starlark.Value) string {
	if s, ok := v.(starlark.String); ok {
		return string(s)
	}
	return v.String()
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
