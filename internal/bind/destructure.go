package bind

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/csvcore/csvcore/internal/valueparse"
)

// Destructure produces the header names for a given struct value — the
// encode-side inverse of Bind; Values renders the matching field strings.
// header order follows declared field order unless explicitOrder is
// non-empty.
func Destructure(v any, cfg Config, explicitOrder []string) (headers []string, err error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, &UnsupportedError{Message: "Destructure requires a struct or pointer to struct"}
	}
	if len(explicitOrder) > 0 {
		return explicitOrder, nil
	}
	return headerNamesInOrder(rv.Type(), cfg), nil
}

func headerNamesInOrder(t reflect.Type, cfg Config) []string {
	var names []string
	for _, d := range Descriptors(t) {
		if d.Nested {
			switch cfg.NestedStrategy.Kind {
			case NestedJSON:
				names = append(names, fieldName(d, cfg))
			default:
				sep := cfg.NestedStrategy.Separator
				if sep == "" {
					sep = "_"
				}
				prefix := d.FlattenPrefix
				if prefix == "" {
					prefix = strings.ToLower(d.GoName) + sep
				}
				for _, sub := range headerNamesInOrder(d.Type, cfg) {
					names = append(names, prefix+sub)
				}
			}
			continue
		}
		names = append(names, fieldName(d, cfg))
	}
	return names
}

// Values renders v's bindable fields into the string form Writer.Write expects,
// in the same order Destructure returns headers.
func Values(v any, cfg Config) ([]string, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, &UnsupportedError{Message: "Values requires a struct or pointer to struct"}
	}
	return valuesForStruct(rv, cfg)
}

func valuesForStruct(structVal reflect.Value, cfg Config) ([]string, error) {
	var out []string
	for _, d := range Descriptors(structVal.Type()) {
		fieldVal := structVal.FieldByIndex(d.Index)

		if d.Nested {
			switch cfg.NestedStrategy.Kind {
			case NestedJSON:
				b, err := json.Marshal(fieldVal.Interface())
				if err != nil {
					return nil, &ParsingError{Message: "failed to marshal nested field", Column: fieldName(d, cfg), Err: err}
				}
				out = append(out, string(b))
			default:
				nested, err := valuesForStruct(fieldVal, cfg)
				if err != nil {
					return nil, err
				}
				out = append(out, nested...)
			}
			continue
		}

		s, err := formatScalar(fieldVal, cfg)
		if err != nil {
			return nil, &TypeMismatchError{Expected: "formattable scalar", Actual: fieldVal.Kind().String(), Column: fieldName(d, cfg)}
		}
		out = append(out, s)
	}
	return out, nil
}

func formatScalar(fieldVal reflect.Value, cfg Config) (string, error) {
	if fieldVal.Kind() == reflect.Ptr {
		if fieldVal.IsNil() {
			return nilLiteral(cfg), nil
		}
		return formatScalar(fieldVal.Elem(), cfg)
	}

	if t := fieldVal.Type(); t == reflect.TypeOf(time.Time{}) {
		tm := fieldVal.Interface().(time.Time)
		return valueparse.FormatDate(tm, cfg.DateStrategy)
	}

	switch fieldVal.Kind() {
	case reflect.String:
		return fieldVal.String(), nil
	case reflect.Bool:
		return valueparse.FormatBool(fieldVal.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return valueparse.FormatInt(fieldVal.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return valueparse.FormatInt(int64(fieldVal.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return valueparse.FormatNumber(fieldVal.Float(), cfg.NumberStrategy)
	case reflect.Slice:
		if fieldVal.Type().Elem().Kind() == reflect.String {
			parts := make([]string, fieldVal.Len())
			for i := range parts {
				parts[i] = fieldVal.Index(i).String()
			}
			return strings.Join(parts, ","), nil
		}
		return "", fmt.Errorf("unsupported slice element type %s", fieldVal.Type().Elem())
	default:
		return "", fmt.Errorf("unsupported field kind %s", fieldVal.Kind())
	}
}

func nilLiteral(cfg Config) string {
	if cfg.NilStrategy.Kind == valueparse.NilNullLiteral {
		return "null"
	}
	return ""
}
