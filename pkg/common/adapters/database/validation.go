package database

import (
	"reflect"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ColumnValidator knows the storage columns of a model, read from its bun
// tags. It catches field mappings that drifted from the model.
type ColumnValidator struct {
	validColumns map[string]bool
}

// NewColumnValidator creates a new column validator for a given model
func NewColumnValidator(model interface{}) *ColumnValidator {
	v := &ColumnValidator{validColumns: make(map[string]bool)}

	modelType := reflect.TypeOf(model)
	for modelType != nil && (modelType.Kind() == reflect.Ptr || modelType.Kind() == reflect.Slice) {
		modelType = modelType.Elem()
	}
	if modelType != nil && modelType.Kind() == reflect.Struct {
		v.collect(modelType, "")
	}
	return v
}

func (v *ColumnValidator) collect(t reflect.Type, prefix string) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get("bun")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		switch {
		case strings.HasPrefix(name, "embed:"):
			v.collect(indirect(field.Type), prefix+strings.TrimPrefix(name, "embed:"))
			continue
		case strings.HasPrefix(name, "table:"), strings.HasPrefix(name, "rel:"), strings.Contains(opts, "rel:"):
			continue
		case name == "":
			name = toSnake(field.Name)
		}
		v.validColumns[prefix+name] = true
	}
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

func toSnake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// IsValidColumn reports whether column, optionally qualified by a table
// alias, exists on the model
func (v *ColumnValidator) IsValidColumn(column string) bool {
	if i := strings.LastIndexByte(column, '.'); i >= 0 {
		column = column[i+1:]
	}
	return v.validColumns[column]
}

// ValidateColumns returns an error naming every mapped field whose column is
// not on the model
func (v *ColumnValidator) ValidateColumns(columns Columns) error {
	var invalid []string
	for field, col := range columns {
		if !v.IsValidColumn(col) {
			invalid = append(invalid, field+"->"+col)
		}
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return errors.Errorf("invalid columns: %s (model has: %s)",
			strings.Join(invalid, ", "), strings.Join(v.GetValidColumns(), ", "))
	}
	return nil
}

// GetValidColumns returns the model's column names in order
func (v *ColumnValidator) GetValidColumns() []string {
	columns := make([]string, 0, len(v.validColumns))
	for col := range v.validColumns {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	return columns
}
