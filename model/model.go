package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

var (
	// ErrNotStruct is returned when the type cannot carry field metadata.
	ErrNotStruct = errors.New("not a struct type")
	// ErrMissingID is returned when no field carries the pk marker.
	ErrMissingID = errors.New("missing id")
	// ErrAmbiguousID is returned when more than one field carries the pk marker.
	ErrAmbiguousID = errors.New("ambiguous id")
	// ErrNoTableName is returned when neither an override nor the type name gives a table.
	ErrNoTableName = errors.New("no table name")
	// ErrDuplicateColumn is returned when fields at the same depth map to one column.
	ErrDuplicateColumn = errors.New("duplicate column")
	// ErrUnexportedEmbed is returned for an embedded pointer to an unexported struct,
	// which cannot be allocated while mapping.
	ErrUnexportedEmbed = errors.New("unexported embedded pointer")
)

// Entity marks a struct as mappable. Embed it in the struct; its tag carries
// the class-level options:
//
//	type Person struct {
//		model.Entity `jorm:"table:person"`
//		ID           int64     `jorm:"pk"`
//		Name         string
//		CreatedAt    time.Time `jorm:"column:created_at"`
//	}
type Entity struct{}

// TableNamer lets a struct supply its table name from code.
type TableNamer interface {
	TableName() string
}

// MetadataError reports an inconsistency found while resolving a type.
type MetadataError struct {
	Type reflect.Type
	Err  error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("metadata for %v: %v", e.Type, e.Err)
}

func (e *MetadataError) Unwrap() error { return e.Err }

// Model represents table metadata
type Model struct {
	Type            reflect.Type
	TableName       string
	Fields          []*Field
	FieldMap        map[string]*Field // keyed by column
	ID              *Field
	RequiresFactory bool // zero value is not a valid instance
}

var (
	entityType = reflect.TypeOf(Entity{})
	modelCache sync.Map // reflect.Type -> *Model
)

// GetModel returns the model metadata for a given value
func GetModel(value any) (*Model, error) {
	if value == nil {
		return nil, fmt.Errorf("value is nil")
	}
	return Resolve(reflect.TypeOf(value))
}

// Resolve returns the metadata of typ, dereferencing pointer types.
// Successful results are cached per type.
func Resolve(typ reflect.Type) (*Model, error) {
	typ = Indirect(typ)
	if cached, ok := modelCache.Load(typ); ok {
		return cached.(*Model), nil
	}

	m, err := parseModel(typ)
	if err != nil {
		return nil, err
	}

	actual, _ := modelCache.LoadOrStore(typ, m)
	return actual.(*Model), nil
}

// ResolveIDColumn returns the column that holds the identifier of typ.
func ResolveIDColumn(typ reflect.Type) (string, error) {
	m, err := Resolve(typ)
	if err != nil {
		return "", err
	}
	return m.ID.Column, nil
}

// Indirect strips pointer levels from typ.
func Indirect(typ reflect.Type) reflect.Type {
	for typ != nil && typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	return typ
}

// IsEntity reports whether typ embeds the Entity marker.
func IsEntity(typ reflect.Type) bool {
	_, ok := marker(Indirect(typ))
	return ok
}

func marker(typ reflect.Type) (reflect.StructField, bool) {
	if typ == nil || typ.Kind() != reflect.Struct {
		return reflect.StructField{}, false
	}
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if sf.Anonymous && sf.Type == entityType {
			return sf, true
		}
	}
	return reflect.StructField{}, false
}

func parseModel(typ reflect.Type) (*Model, error) {
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, &MetadataError{Type: typ, Err: ErrNotStruct}
	}

	m := &Model{
		Type:      typ,
		TableName: typ.Name(),
		FieldMap:  make(map[string]*Field),
	}

	if sf, ok := marker(typ); ok {
		tag := ParseTag(sf.Tag.Get(TagKey))
		m.RequiresFactory = tag.Factory
		if tag.Table != "" {
			m.TableName = tag.Table
		} else if name := tableNameOf(typ); name != "" {
			m.TableName = name
		}
	} else if name := tableNameOf(typ); name != "" {
		m.TableName = name
	}

	if m.TableName == "" {
		return nil, &MetadataError{Type: typ, Err: ErrNoTableName}
	}

	if err := collectFields(m, typ, nil); err != nil {
		return nil, &MetadataError{Type: typ, Err: err}
	}
	if err := resolveColumns(m); err != nil {
		return nil, &MetadataError{Type: typ, Err: err}
	}

	var ids []*Field
	for _, f := range m.Fields {
		if f.IsID {
			ids = append(ids, f)
		}
	}
	switch {
	case len(ids) == 0:
		return nil, &MetadataError{Type: typ, Err: ErrMissingID}
	case len(ids) > 1:
		names := make([]string, len(ids))
		for i, f := range ids {
			names[i] = f.Name
		}
		return nil, &MetadataError{
			Type: typ,
			Err:  fmt.Errorf("%w: %s", ErrAmbiguousID, strings.Join(names, ", ")),
		}
	}
	m.ID = ids[0]

	return m, nil
}

func collectFields(m *Model, typ reflect.Type, parent []int) error {
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if sf.Type == entityType {
			continue
		}

		tagStr := sf.Tag.Get(TagKey)
		tag := ParseTag(tagStr)
		if tag.Ignore {
			continue
		}

		index := make([]int, len(parent)+1)
		copy(index, parent)
		index[len(parent)] = i

		if sf.Anonymous && isEmbeddedStruct(sf.Type) {
			if sf.Type.Kind() == reflect.Ptr && !sf.IsExported() {
				return fmt.Errorf("%w: %s", ErrUnexportedEmbed, sf.Type)
			}
			if err := collectFields(m, Indirect(sf.Type), index); err != nil {
				return err
			}
			continue
		}
		if !sf.IsExported() {
			continue
		}

		column := tag.Column
		if column == "" {
			column = sf.Name
		}

		m.Fields = append(m.Fields, &Field{
			Name:   sf.Name,
			Column: column,
			Kind:   KindOf(sf.Type),
			Type:   sf.Type,
			Index:  index,
			IsID:   tag.PrimaryKey,
			Tag:    tagStr,
		})
	}
	return nil
}

// isEmbeddedStruct reports whether an anonymous field of type typ has its
// fields promoted into the entity.
func isEmbeddedStruct(typ reflect.Type) bool {
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	return typ.Kind() == reflect.Struct && typ != entityType &&
		typ != timeType && typ != dateType && !IsScanner(typ)
}

// resolveColumns applies Go's promotion rule per column: the shallowest
// field wins and two fields at that depth are an error. Columns compare
// case-insensitively, as rows are matched that way.
func resolveColumns(m *Model) error {
	depth := make(map[string]int, len(m.Fields))
	for _, f := range m.Fields {
		key := strings.ToLower(f.Column)
		if d, ok := depth[key]; !ok || len(f.Index) < d {
			depth[key] = len(f.Index)
		}
	}

	kept := m.Fields[:0]
	for _, f := range m.Fields {
		key := strings.ToLower(f.Column)
		if len(f.Index) != depth[key] {
			continue
		}
		for _, k := range kept {
			if strings.EqualFold(k.Column, f.Column) {
				return fmt.Errorf("%w: %q (fields %s and %s)", ErrDuplicateColumn, f.Column, k.Name, f.Name)
			}
		}
		kept = append(kept, f)
		m.FieldMap[f.Column] = f
	}
	m.Fields = kept
	return nil
}

func tableNameOf(typ reflect.Type) string {
	for _, t := range []reflect.Type{typ, reflect.PointerTo(typ)} {
		if t.Implements(reflect.TypeOf((*TableNamer)(nil)).Elem()) {
			v := reflect.New(typ)
			if t.Kind() != reflect.Ptr {
				return strings.TrimSpace(v.Elem().Interface().(TableNamer).TableName())
			}
			return strings.TrimSpace(v.Interface().(TableNamer).TableName())
		}
	}
	return ""
}
