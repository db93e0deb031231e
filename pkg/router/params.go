package router

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Bind populates a struct from the captures of a match context.
// The target must be a pointer to a struct with `param` tags:
//
//	type FileParams struct {
//		Path  []string `param:"rest"`       // remainder split on '/'
//		Query string   `param:"rest,query"` // text after '?'
//		Page  int      `param:"page"`
//	}
//
// Fields whose capture is missing are left untouched.
func (c Context) Bind(target any) error {
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
		tag := field.Tag.Get("param")
		if tag == "" {
			continue
		}
		name, opt, _ := strings.Cut(tag, ",")

		captured, ok := c[name]
		if !ok {
			continue
		}

		fieldValue := v.Field(i)
		if !fieldValue.CanSet() {
			continue
		}

		var err error
		switch {
		case opt == "query":
			if captured.HasParams {
				err = setField(fieldValue, captured.ParamStr)
			}
		case captured.Kind == CaptureSlice:
			err = setSlice(fieldValue, captured.Values)
		default:
			err = setField(fieldValue, captured.Value)
		}
		if err != nil {
			return fmt.Errorf("parsing param %q: %w", name, err)
		}
	}

	return nil
}

// setSlice stores a fixed-count capture. A string field receives the
// segments joined with '/'.
func setSlice(field reflect.Value, values []string) error {
	if field.Kind() == reflect.String {
		field.SetString(strings.Join(values, "/"))
		return nil
	}
	if field.Kind() != reflect.Slice {
		return fmt.Errorf("cannot store %d segments in %s", len(values), field.Kind())
	}

	out := reflect.MakeSlice(field.Type(), len(values), len(values))
	for i, s := range values {
		if err := setField(out.Index(i), s); err != nil {
			return err
		}
	}
	field.Set(out)
	return nil
}

// setField sets a field value from a string.
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

	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid float: %s", value)
		}
		field.SetFloat(n)

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
		// Remainder captures: "a/b/c" → ["a", "b", "c"]
		if value == "" {
			field.Set(reflect.Zero(field.Type()))
			break
		}
		parts := strings.Split(value, "/")
		out := reflect.MakeSlice(field.Type(), len(parts), len(parts))
		for i, s := range parts {
			out.Index(i).SetString(s)
		}
		field.Set(out)

	default:
		return fmt.Errorf("unsupported type: %s", field.Kind())
	}

	return nil
}
