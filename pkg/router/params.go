package router

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// paramType is the type constraint of a route parameter.
type paramType uint8

const (
	typeString paramType = iota
	typeInt
	typeUint
	typeUUID
)

var paramTypeNames = map[string]paramType{
	"":       typeString,
	"string": typeString,
	"int":    typeInt,
	"int64":  typeInt,
	"int32":  typeInt,
	"uint":   typeUint,
	"uint64": typeUint,
	"uint32": typeUint,
	"uuid":   typeUUID,
}

func lookupParamType(name string) (paramType, bool) {
	t, ok := paramTypeNames[name]
	return t, ok
}

func (t paramType) String() string {
	switch t {
	case typeInt:
		return "int"
	case typeUint:
		return "uint"
	case typeUUID:
		return "uuid"
	default:
		return "string"
	}
}

func (t paramType) accepts(value string) bool {
	return ValidateParam(value, t.String()) == nil
}

const uuidSample = "00000000-0000-0000-0000-000000000000"

// redirectProbes are the values tried for untyped parameters when a
// redirect target is resolved at registration.
var redirectProbes = []string{"1", uuidSample, "x"}

func (t paramType) sample() string {
	switch t {
	case typeInt, typeUint:
		return "1"
	case typeUUID:
		return uuidSample
	default:
		return "x"
	}
}

// ValidateParam validates a parameter value against its declared type.
// Unknown types accept any value.
func ValidateParam(value, typ string) error {
	switch typ {
	case "int", "int64", "int32":
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return fmt.Errorf("invalid integer: %s", value)
		}
	case "uint", "uint64", "uint32":
		if _, err := strconv.ParseUint(value, 10, 64); err != nil {
			return fmt.Errorf("invalid unsigned integer: %s", value)
		}
	case "uuid":
		// uuid.Parse also accepts urn and braced forms; a path segment
		// must be the canonical 36-character form.
		if len(value) != 36 {
			return fmt.Errorf("invalid UUID: %s", value)
		}
		if _, err := uuid.Parse(value); err != nil {
			return fmt.Errorf("invalid UUID: %s", value)
		}
	}
	return nil
}

// DecodeParams populates a struct with values from a params map.
// The target must be a pointer to a struct with `param` tags:
//
//	var p struct {
//	    ID   int      `param:"id"`
//	    Rest []string `param:"path"`
//	}
//	err := router.DecodeParams(match.Params, &p)
func DecodeParams(params map[string]string, target any) error {
	if target == nil {
		return nil
	}

	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr {
		return fmt.Errorf("target must be a pointer, got %s", v.Kind())
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("target must be a pointer to struct, got pointer to %s", v.Kind())
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := field.Tag.Get("param")
		if name == "" {
			continue
		}
		value, ok := params[name]
		if !ok {
			continue
		}
		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}
		if err := setField(fv, value); err != nil {
			return fmt.Errorf("parsing param %q: %w", name, err)
		}
	}
	return nil
}

func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer: %s", value)
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer: %s", value)
		}
		field.SetUint(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %s", value)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice element type: %s", field.Type().Elem().Kind())
		}
		// Catch-all values: "a/b/c" → ["a", "b", "c"]
		var parts []string
		if value != "" {
			parts = strings.Split(value, "/")
		}
		field.Set(reflect.ValueOf(parts))

	case reflect.Array:
		// uuid.UUID fields
		if field.Type() != reflect.TypeOf(uuid.UUID{}) {
			return fmt.Errorf("unsupported type: %s", field.Type())
		}
		id, err := uuid.Parse(value)
		if err != nil {
			return fmt.Errorf("invalid UUID: %s", value)
		}
		field.Set(reflect.ValueOf(id))

	default:
		return fmt.Errorf("unsupported type: %s", field.Kind())
	}
	return nil
}
