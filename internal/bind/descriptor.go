// Package bind implements the Record Binder (C8): reflection-based
// resolution of a destination struct's fields against a row's columns, and
// the inverse (destructuring a struct back into ordered field strings for
// encode).
//
// Grounded on tiendc-go-csvlib's decoder.go (DecodeConfig, functional
// options, decodeColumnMeta's struct-tag walk and header-order validation)
// as the primary model, with trimmer-io-go-csv's fluent Decoder/Unmarshaler
// split informing the encode-side destructure API.
package bind

import (
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// FieldDescriptor describes one bindable field of a destination struct.
type FieldDescriptor struct {
	// GoName is the struct field's name.
	GoName string
	// Index is the field's position within the (possibly nested) struct,
	// as reflect.Value.FieldByIndex expects.
	Index []int
	// Column is the explicit column name from a `csv:"..."` tag, or "" if
	// unset (in which case the active KeyStrategy derives one from GoName).
	Column string
	// ColumnIndex is the explicit 0-based column index from a
	// `csvindex:"N"` tag, or -1 if unset.
	ColumnIndex int
	// Type is the field's Go type.
	Type reflect.Type
	// Nullable reports whether the field accepts an absent column (pointer
	// types, and any field tagged `csv:",omitempty"`).
	Nullable bool
	// Nested reports whether Type is itself a bindable struct (excluding
	// time.Time, which C7 handles as a scalar).
	Nested bool
	// FlattenPrefix is the `csvflatten:"prefix"` tag value, used when the
	// active NestedStrategy is "flatten".
	FlattenPrefix string
}

// Descriptors returns the ordered field descriptors for t (a struct type),
// caching the reflection walk per type.
func Descriptors(t reflect.Type) []FieldDescriptor {
	if cached, ok := descriptorCache.Load(t); ok {
		return cached.([]FieldDescriptor)
	}
	fields := walkFields(t, nil)
	descriptorCache.Store(t, fields)
	return fields
}

var descriptorCache sync.Map // reflect.Type -> []FieldDescriptor

func walkFields(t reflect.Type, parentIndex []int) []FieldDescriptor {
	var out []FieldDescriptor
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" && !f.Anonymous {
			continue // unexported
		}
		index := append(append([]int{}, parentIndex...), i)

		tag := f.Tag.Get("csv")
		name, nullableTag := parseCSVTag(tag)
		if name == "-" {
			continue
		}

		ft := f.Type
		nullable := nullableTag
		if ft.Kind() == reflect.Ptr {
			nullable = true
			ft = ft.Elem()
		}

		colIndex := -1
		if idxTag := f.Tag.Get("csvindex"); idxTag != "" {
			if n, err := strconv.Atoi(idxTag); err == nil {
				colIndex = n
			}
		}

		nested := ft.Kind() == reflect.Struct && !isScalarStruct(ft)
		out = append(out, FieldDescriptor{
			GoName:        f.Name,
			Index:         index,
			Column:        name,
			ColumnIndex:   colIndex,
			Type:          ft,
			Nullable:      nullable,
			Nested:        nested,
			FlattenPrefix: f.Tag.Get("csvflatten"),
		})
	}
	return out
}

// isScalarStruct reports whether t is a struct type C7 parses directly
// (currently only time.Time) rather than one the binder should recurse
// into as a nested record.
func isScalarStruct(t reflect.Type) bool {
	return t.PkgPath() == "time" && t.Name() == "Time"
}

func parseCSVTag(tag string) (name string, nullable bool) {
	if tag == "" {
		return "", false
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			nullable = true
		}
	}
	return name, nullable
}
