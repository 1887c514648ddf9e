package observe

import (
	"fmt"
	"maps"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
)

// InputKey holds scalar and slice inputs in the bound argument map.
const InputKey = "input"

const defaultTag = "default"

var durationType = reflect.TypeOf(time.Duration(0))

// BindArgs turns a handler input into the named argument map recorded on
// spans and handed to extractors. Struct fields are named by their json tag
// and zero fields take their `default:"..."` tag. Map inputs are copied and
// merged with params for keys the caller left out. Anything else is stored
// under InputKey.
func BindArgs(in any, params ...Param) (map[string]any, error) {
	args, err := bindValue(in)
	if err != nil {
		return nil, err
	}
	for _, p := range params {
		if _, ok := args[p.Name]; !ok {
			args[p.Name] = p.Default
		}
	}
	return args, nil
}

func bindValue(in any) (map[string]any, error) {
	if in == nil {
		return map[string]any{}, nil
	}

	switch v := in.(type) {
	case map[string]any:
		if v == nil {
			return map[string]any{}, nil
		}
		return maps.Clone(v), nil
	case map[string]string:
		args := make(map[string]any, len(v))
		for k, s := range v {
			args[k] = s
		}
		return args, nil
	}

	rv := reflect.ValueOf(in)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return map[string]any{}, nil
		}
		rv = rv.Elem()
	}

	switch {
	case rv.Kind() == reflect.Struct:
		return bindStruct(rv)
	case rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String:
		return decodeMap(rv.Interface())
	default:
		return map[string]any{InputKey: in}, nil
	}
}

// bindStruct names fields the way encoding/json does: mapstructure lays out
// the top level, struct-valued fields keep their Go value so the snapshot
// uses their own encoding, and untagged embedded structs are promoted.
func bindStruct(rv reflect.Value) (map[string]any, error) {
	args, err := decodeMap(rv.Interface())
	if err != nil {
		return nil, err
	}

	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, skip := fieldName(f)
		if skip {
			continue
		}
		fv := rv.Field(i)

		if isPromoted(f) {
			delete(args, f.Name)
			ev := reflect.Indirect(fv)
			if !ev.IsValid() {
				continue
			}
			inner, err := bindStruct(ev)
			if err != nil {
				return nil, err
			}
			for k, v := range inner {
				if _, ok := args[k]; !ok {
					args[k] = v
				}
			}
			continue
		}

		if _, ok := args[name]; ok && isStructValue(fv) {
			args[name] = fv.Interface()
		}
	}

	if err := applyDefaults(rv, args); err != nil {
		return nil, err
	}
	return args, nil
}

// isPromoted reports an embedded struct without a json name.
func isPromoted(f reflect.StructField) bool {
	if !f.Anonymous {
		return false
	}
	if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name != "" {
		return false
	}
	t := f.Type
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

func isStructValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Struct:
		return true
	case reflect.Pointer:
		return !v.IsNil() && v.Elem().Kind() == reflect.Struct
	default:
		return false
	}
}

func decodeMap(in any) (map[string]any, error) {
	args := map[string]any{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  &args,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(in); err != nil {
		return nil, fmt.Errorf("bind arguments: %w", err)
	}
	return args, nil
}

// applyDefaults fills zero fields carrying a default tag.
func applyDefaults(rv reflect.Value, args map[string]any) error {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		raw, ok := f.Tag.Lookup(defaultTag)
		if !ok || !f.IsExported() {
			continue
		}
		name, skip := fieldName(f)
		if skip || !rv.Field(i).IsZero() {
			continue
		}
		v, err := convertDefault(raw, f.Type)
		if err != nil {
			return fmt.Errorf("default for %s: %w", name, err)
		}
		args[name] = v
	}
	return nil
}

func fieldName(f reflect.StructField) (string, bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name, false
	}
	return f.Name, false
}

func convertDefault(raw string, t reflect.Type) (any, error) {
	var (
		v   any
		err error
	)
	switch {
	case t == durationType:
		v, err = cast.ToDurationE(raw)
	case t.Kind() == reflect.Bool:
		v, err = cast.ToBoolE(raw)
	case t.Kind() >= reflect.Int && t.Kind() <= reflect.Int64:
		v, err = cast.ToInt64E(raw)
	case t.Kind() >= reflect.Uint && t.Kind() <= reflect.Uint64:
		v, err = cast.ToUint64E(raw)
	case t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64:
		v, err = cast.ToFloat64E(raw)
	case t.Kind() == reflect.String:
		v = raw
	default:
		return raw, nil
	}
	if err != nil {
		return nil, err
	}
	rv := reflect.ValueOf(v)
	if rv.Type().ConvertibleTo(t) {
		return rv.Convert(t).Interface(), nil
	}
	return v, nil
}
