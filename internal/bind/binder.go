package bind

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/csvcore/csvcore/internal/valueparse"
)

type NestedStrategyKind int

const (
	NestedFlatten NestedStrategyKind = iota
	NestedJSON
	NestedError
)

// NestedStrategy configures how a nested-struct field is decoded.
type NestedStrategy struct {
	Kind      NestedStrategyKind
	Separator string
}

// Row is the minimal view of a parsed row the binder needs. *csvcore.RowView
// satisfies this without any adapter.
type Row interface {
	FieldCount() int
	Field(i int) (string, bool)
}

// Config collects every strategy the binder consults. It mirrors
// csvcore.DecodeConfig's relevant fields using this package's own strategy
// types to avoid an import cycle back to csvcore.
type Config struct {
	KeyStrategy    KeyStrategy
	NestedStrategy NestedStrategy
	ColumnMapping  map[string]string
	IndexMapping   map[int]string
	TrimWhitespace bool
	// HasHeaders gates the declared-column-order fallback in resolveColumn:
	// a field's declared index (the csvindex tag) is only consulted for
	// headerless input, per spec precedence index_mapping > column_mapping
	// > declared_order(!has_headers) > key_strategy.
	HasHeaders bool

	NilStrategy    valueparse.NilStrategy
	BoolStrategy   valueparse.BoolStrategy
	NumberStrategy valueparse.NumberStrategy
	DateStrategy   valueparse.DateStrategy
}

// HeaderMap maps a column name to its 0-based index.
type HeaderMap map[string]int

// Bind populates dest (a pointer to struct) from row, using headers (nil in
// headerless mode) and cfg. rowNum is used for error locations.
//
// Every field-level error is collected and returned as a slice (nil when
// the row bound cleanly); decode.go aggregates them into a single
// *RowErrors so a caller sees every problem in the row at once.
func Bind(dest any, row Row, headers HeaderMap, cfg Config, rowNum int) []error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return []error{&UnsupportedError{Message: "Bind destination must be a pointer to struct"}}
	}
	return bindStruct(rv.Elem(), row, headers, cfg, rowNum, "")
}

func bindStruct(structVal reflect.Value, row Row, headers HeaderMap, cfg Config, rowNum int, pathPrefix string) []error {
	var errs []error
	descriptors := Descriptors(structVal.Type())

	for _, d := range descriptors {
		fieldVal := structVal.FieldByIndex(d.Index)
		path := d.GoName
		if pathPrefix != "" {
			path = pathPrefix + "." + d.GoName
		}

		if d.Nested {
			if err := bindNested(fieldVal, d, row, headers, cfg, rowNum, path); err != nil {
				errs = append(errs, err)
			}
			continue
		}

		colIdx, colName, found := resolveColumn(d, headers, cfg)
		if !found {
			if d.Nullable {
				fieldVal.Set(reflect.Zero(fieldVal.Type()))
				continue
			}
			errs = append(errs, &KeyNotFoundError{
				Name: fieldName(d, cfg), Row: rowNum, Column: colName,
				Available:  headerNames(headers),
				Suggestion: suggestKey(fieldName(d, cfg), headerNames(headers)),
			})
			continue
		}

		raw, ok := row.Field(colIdx)
		if !ok {
			if d.Nullable {
				fieldVal.Set(reflect.Zero(fieldVal.Type()))
				continue
			}
			errs = append(errs, &KeyNotFoundError{Name: fieldName(d, cfg), Row: rowNum, Column: colName})
			continue
		}
		if cfg.TrimWhitespace {
			raw = strings.TrimSpace(raw)
		}

		if err := setScalar(fieldVal, d, raw, cfg, rowNum, colName); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func bindNested(fieldVal reflect.Value, d FieldDescriptor, row Row, headers HeaderMap, cfg Config, rowNum int, path string) error {
	switch cfg.NestedStrategy.Kind {
	case NestedJSON:
		colIdx, colName, found := resolveColumn(d, headers, cfg)
		if !found {
			if d.Nullable {
				return nil
			}
			return &KeyNotFoundError{Name: fieldName(d, cfg), Row: rowNum, Column: colName}
		}
		raw, _ := row.Field(colIdx)
		target := reflect.New(d.Type)
		if err := json.Unmarshal([]byte(raw), target.Interface()); err != nil {
			return &ParsingError{Message: "invalid JSON for nested field", Row: rowNum, Column: colName, Err: err}
		}
		fieldVal.Set(target.Elem())
		return nil
	case NestedError:
		return &UnsupportedError{Message: fmt.Sprintf("nested field %q requires a nested_strategy other than error", path)}
	default: // NestedFlatten
		sep := cfg.NestedStrategy.Separator
		if sep == "" {
			sep = "_"
		}
		prefix := d.FlattenPrefix
		if prefix == "" {
			prefix = strings.ToLower(d.GoName) + sep
		}
		sub := filterHeaders(headers, prefix)
		if fieldVal.Kind() == reflect.Struct {
			errs := bindStruct(fieldVal, row, sub, cfg, rowNum, path)
			if len(errs) > 0 {
				return errs[0]
			}
		}
		return nil
	}
}

// filterHeaders returns the subset of headers whose name begins with
// prefix, with the prefix stripped, for a flattened nested binder.
func filterHeaders(headers HeaderMap, prefix string) HeaderMap {
	sub := make(HeaderMap)
	for name, idx := range headers {
		if strings.HasPrefix(name, prefix) {
			sub[strings.TrimPrefix(name, prefix)] = idx
		}
	}
	return sub
}

// resolveColumn implements spec §4.8 step 1's precedence: index_mapping >
// column_mapping > declared order (headerless only) > key_strategy match.
func resolveColumn(d FieldDescriptor, headers HeaderMap, cfg Config) (idx int, name string, found bool) {
	name = fieldName(d, cfg)

	for colIdx, fname := range cfg.IndexMapping {
		if fname == d.GoName || fname == d.Column {
			return colIdx, name, true
		}
	}
	for header, fname := range cfg.ColumnMapping {
		if fname == d.GoName || fname == d.Column {
			if hi, ok := headers[header]; ok {
				return hi, header, true
			}
		}
	}
	if d.Column != "" {
		if hi, ok := headers[d.Column]; ok {
			return hi, d.Column, true
		}
	}
	if !cfg.HasHeaders && d.ColumnIndex >= 0 {
		return d.ColumnIndex, name, true
	}
	for header, hi := range headers {
		if keysMatch(header, d.GoName, cfg.KeyStrategy) {
			return hi, header, true
		}
	}
	return -1, name, false
}

func fieldName(d FieldDescriptor, _ Config) string {
	if d.Column != "" {
		return d.Column
	}
	return d.GoName
}

func headerNames(headers HeaderMap) []string {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	return names
}

// setScalar parses raw per the field's kind and the configured strategies,
// delegating to internal/valueparse (C7), and assigns into fieldVal.
func setScalar(fieldVal reflect.Value, d FieldDescriptor, raw string, cfg Config, rowNum int, colName string) error {
	if valueparse.IsNil(raw, cfg.NilStrategy) {
		if d.Nullable || fieldVal.Kind() == reflect.Ptr {
			fieldVal.Set(reflect.Zero(fieldVal.Type()))
			return nil
		}
	}

	t := fieldVal.Type()
	if t.Kind() == reflect.Ptr {
		elem := reflect.New(t.Elem())
		if err := setScalar(elem.Elem(), d, raw, cfg, rowNum, colName); err != nil {
			return err
		}
		fieldVal.Set(elem)
		return nil
	}

	if t == reflect.TypeOf(time.Time{}) {
		tm, err := valueparse.ParseDate(raw, cfg.DateStrategy)
		if err != nil {
			return &ParsingError{Message: "invalid date", Row: rowNum, Column: colName, Err: err}
		}
		fieldVal.Set(reflect.ValueOf(tm))
		return nil
	}

	switch t.Kind() {
	case reflect.String:
		fieldVal.SetString(raw)
	case reflect.Bool:
		b, err := valueparse.ParseBool(raw, cfg.BoolStrategy)
		if err != nil {
			return &TypeMismatchError{Expected: "bool", Actual: raw, Row: rowNum, Column: colName}
		}
		fieldVal.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := valueparse.ParseInt(raw, cfg.NumberStrategy)
		if err != nil {
			return &TypeMismatchError{Expected: "int", Actual: raw, Row: rowNum, Column: colName}
		}
		fieldVal.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := valueparse.ParseInt(raw, cfg.NumberStrategy)
		if err != nil || n < 0 {
			return &TypeMismatchError{Expected: "uint", Actual: raw, Row: rowNum, Column: colName}
		}
		fieldVal.SetUint(uint64(n))
	case reflect.Float32, reflect.Float64:
		f, err := valueparse.ParseFloat(raw, cfg.NumberStrategy)
		if err != nil {
			return &TypeMismatchError{Expected: "float", Actual: raw, Row: rowNum, Column: colName}
		}
		fieldVal.SetFloat(f)
	case reflect.Slice:
		if t.Elem().Kind() == reflect.String {
			fieldVal.Set(reflect.ValueOf(strings.Split(raw, ",")))
			return nil
		}
		return &UnsupportedError{Message: fmt.Sprintf("unsupported slice element type %s for column %q", t.Elem(), colName)}
	default:
		return &UnsupportedError{Message: fmt.Sprintf("unsupported field kind %s for column %q", t.Kind(), colName)}
	}
	return nil
}

// ColumnIndexOf is a small helper exposed for callers deriving a
// declared-order HeaderMap from ordinal positions in headerless mode.
func ColumnIndexOf(i int) string { return strconv.Itoa(i) }
