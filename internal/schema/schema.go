package schema

import (
	"sort"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/hanpama/gqlcore/internal/value"
)

// Schema is the immutable type registry. It is built once and read
// concurrently by every request; nothing mutates it after Build returns.
type Schema struct {
	QueryType        string
	MutationType     string
	SubscriptionType string
	Description      string

	// Root field maps keyed by field name. Mutations and Subscriptions are
	// empty when the schema has no such root type.
	Queries       map[string]*Field
	Mutations     map[string]*Field
	Subscriptions map[string]*Field

	Types      map[string]*Type // All named types keyed by name
	Interfaces map[string]*Type
	Directives map[string]*Directive

	possibleTypes map[string][]string
}

// GetQueryType returns the root query type (may be nil if absent)
func (s *Schema) GetQueryType() *Type { return s.Types[s.QueryType] }

// GetMutationType returns the root mutation type (may be nil if absent)
func (s *Schema) GetMutationType() *Type { return s.Types[s.MutationType] }

// GetSubscriptionType returns the root subscription type (may be nil if absent)
func (s *Schema) GetSubscriptionType() *Type { return s.Types[s.SubscriptionType] }

// RootType returns the root type name for the operation kind.
func (s *Schema) RootType(op ast.Operation) string {
	switch op {
	case ast.Mutation:
		return s.MutationType
	case ast.Subscription:
		return s.SubscriptionType
	default:
		return s.QueryType
	}
}

// RootFields returns the root field map for the operation kind.
func (s *Schema) RootFields(op ast.Operation) map[string]*Field {
	switch op {
	case ast.Mutation:
		return s.Mutations
	case ast.Subscription:
		return s.Subscriptions
	default:
		return s.Queries
	}
}

// FieldDefinition looks up a field on a composite type, including the
// meta fields available on it.
func (s *Schema) FieldDefinition(typeName, fieldName string) *Field {
	if fieldName == TypenameFieldName {
		if t := s.Types[typeName]; t != nil && t.IsComposite() {
			return typenameField
		}
		return nil
	}
	if typeName == s.QueryType {
		switch fieldName {
		case SchemaFieldName:
			return schemaField
		case TypeFieldName:
			return typeField
		}
	}
	t := s.Types[typeName]
	if t == nil {
		return nil
	}
	return t.Field(fieldName)
}

// PossibleTypes returns the object types that can stand in for the named
// type: the type itself for objects, members for unions and implementations
// for interfaces. Names are sorted.
func (s *Schema) PossibleTypes(name string) []string {
	t := s.Types[name]
	if t == nil {
		return nil
	}
	if t.Kind == TypeKindObject {
		return []string{name}
	}
	return s.possibleTypes[name]
}

// IsPossibleType reports whether objectName is one of name's possible types.
func (s *Schema) IsPossibleType(name, objectName string) bool {
	for _, n := range s.PossibleTypes(name) {
		if n == objectName {
			return true
		}
	}
	return false
}

// Overlaps reports whether two composite types share a possible type.
func (s *Schema) Overlaps(a, b string) bool {
	if a == b {
		return true
	}
	for _, n := range s.PossibleTypes(a) {
		if s.IsPossibleType(b, n) {
			return true
		}
	}
	return false
}

// IsSubType reports whether sub may be used where super is expected.
func (s *Schema) IsSubType(super, sub string) bool {
	if super == sub {
		return true
	}
	t := s.Types[super]
	if t == nil || !t.IsAbstract() {
		return false
	}
	if st := s.Types[sub]; st != nil && st.Kind == TypeKindInterface {
		for _, iface := range st.Interfaces {
			if iface == super {
				return true
			}
		}
		return false
	}
	return s.IsPossibleType(super, sub)
}

func (s *Schema) computePossibleTypes() {
	s.possibleTypes = make(map[string][]string)
	for name, t := range s.Types {
		switch t.Kind {
		case TypeKindUnion:
			s.possibleTypes[name] = append([]string(nil), t.PossibleTypes...)
		case TypeKindObject:
			for _, iface := range t.Interfaces {
				s.possibleTypes[iface] = append(s.possibleTypes[iface], name)
			}
		}
	}
	for _, names := range s.possibleTypes {
		sort.Strings(names)
	}
}

// Type is a named GraphQL type (object, interface, union, scalar, enum, input)
type Type struct {
	Name           string
	Kind           TypeKind
	Description    string
	Fields         []*Field      // For OBJECT and INTERFACE
	Interfaces     []string      // For OBJECT and INTERFACE (implemented/extended)
	PossibleTypes  []string      // For UNION
	EnumValues     []*EnumValue  // For ENUM
	InputFields    []*InputValue // For INPUT_OBJECT
	Directives     ast.DirectiveList
	SpecifiedByURL *string
	OneOf          bool
	BuiltIn        bool
	Position       *ast.Position
}

// Field returns the first field with the given name. Extensions may add a
// field twice; the base definition wins.
func (t *Type) Field(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (t *Type) InputField(name string) *InputValue {
	for _, f := range t.InputFields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (t *Type) EnumValue(name string) *EnumValue {
	for _, v := range t.EnumValues {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// IsLeaf reports whether the type is a scalar or enum.
func (t *Type) IsLeaf() bool {
	return t.Kind == TypeKindScalar || t.Kind == TypeKindEnum
}

// IsComposite reports whether the type is an object, interface or union.
func (t *Type) IsComposite() bool {
	return t.Kind == TypeKindObject || t.Kind == TypeKindInterface || t.Kind == TypeKindUnion
}

func (t *Type) IsAbstract() bool {
	return t.Kind == TypeKindInterface || t.Kind == TypeKindUnion
}

// IsInput reports whether the type may be used for arguments and variables.
func (t *Type) IsInput() bool {
	return t.Kind == TypeKindScalar || t.Kind == TypeKindEnum || t.Kind == TypeKindInputObject
}

// Field represents a field on an object or interface
type Field struct {
	Name              string
	Description       string
	Type              *TypeRef
	Arguments         []*InputValue
	Directives        ast.DirectiveList
	IsDeprecated      bool
	DeprecationReason string
	Position          *ast.Position
}

func (f *Field) Argument(name string) *InputValue {
	for _, a := range f.Arguments {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// TypeKind represents the kind of GraphQL type
type TypeKind string

const (
	TypeKindScalar      TypeKind = "SCALAR"
	TypeKindObject      TypeKind = "OBJECT"
	TypeKindInterface   TypeKind = "INTERFACE"
	TypeKindUnion       TypeKind = "UNION"
	TypeKindEnum        TypeKind = "ENUM"
	TypeKindInputObject TypeKind = "INPUT_OBJECT"
)

// TypeRef represents a reference to a type (can be wrapped)
type TypeRef struct {
	Kind   TypeRefKind
	OfType *TypeRef // For List and NonNull
	Named  string   // For named types
}

type TypeRefKind string

const (
	TypeRefKindNamed   TypeRefKind = "NAMED"
	TypeRefKindList    TypeRefKind = "LIST"
	TypeRefKindNonNull TypeRefKind = "NON_NULL"
)

func (t *TypeRef) IsNonNull() bool {
	return t != nil && t.Kind == TypeRefKindNonNull
}

func (t *TypeRef) IsList() bool {
	if t == nil {
		return false
	}
	if t.Kind == TypeRefKindList {
		return true
	}
	if t.Kind == TypeRefKindNonNull && t.OfType != nil {
		return t.OfType.Kind == TypeRefKindList
	}
	return false
}

func (t *TypeRef) Unwrap() *TypeRef {
	if t.Kind == TypeRefKindNonNull || t.Kind == TypeRefKindList {
		return t.OfType
	}
	return t
}

// Nullable strips a Non-Null wrapper if present.
func (t *TypeRef) Nullable() *TypeRef {
	if t.IsNonNull() {
		return t.OfType
	}
	return t
}

func (t *TypeRef) GetNamedType() string {
	current := t
	for current != nil {
		if current.Named != "" {
			return current.Named
		}
		current = current.OfType
	}
	return ""
}

func (t *TypeRef) String() string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case TypeRefKindList:
		return "[" + t.OfType.String() + "]"
	case TypeRefKindNonNull:
		return t.OfType.String() + "!"
	default:
		return t.Named
	}
}

// Equal reports whether both references denote the same wrapped type.
func (t *TypeRef) Equal(o *TypeRef) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Kind != o.Kind || t.Named != o.Named {
		return false
	}
	if t.Kind == TypeRefKindNamed {
		return true
	}
	return t.OfType.Equal(o.OfType)
}

type EnumValue struct {
	Name              string
	Description       string
	Directives        ast.DirectiveList
	IsDeprecated      bool
	DeprecationReason string
}

type InputValue struct {
	Name              string
	Description       string
	Type              *TypeRef
	DefaultValue      value.Value // nil when no default is declared
	Directives        ast.DirectiveList
	IsDeprecated      bool
	DeprecationReason string
	Position          *ast.Position
}

type Directive struct {
	Name         string
	Description  string
	Locations    []string
	Arguments    []*InputValue
	IsRepeatable bool
	BuiltIn      bool
	Position     *ast.Position
}

func (d *Directive) Argument(name string) *InputValue {
	for _, a := range d.Arguments {
		if a.Name == name {
			return a
		}
	}
	return nil
}

func NonNullType(t *TypeRef) *TypeRef { return &TypeRef{Kind: TypeRefKindNonNull, OfType: t} }
func ListType(t *TypeRef) *TypeRef    { return &TypeRef{Kind: TypeRefKindList, OfType: t} }
func NamedType(name string) *TypeRef  { return &TypeRef{Kind: TypeRefKindNamed, Named: name} }

// FromAST converts a parsed type reference.
func FromAST(t *ast.Type) *TypeRef {
	if t == nil {
		return nil
	}
	var ref *TypeRef
	if t.Elem != nil {
		ref = ListType(FromAST(t.Elem))
	} else {
		ref = NamedType(t.NamedType)
	}
	if t.NonNull {
		ref = NonNullType(ref)
	}
	return ref
}

// IsNonNull reports whether the type is wrapped with Non-Null.
func IsNonNull(t *TypeRef) bool { return t != nil && t.IsNonNull() }

// IsList reports whether the type is (or is wrapped by) a list type.
func IsList(t *TypeRef) bool { return t != nil && t.IsList() }

// Unwrap removes one layer of Non-Null or List wrapping and returns the inner type.
func Unwrap(t *TypeRef) *TypeRef { return t.Unwrap() }

// GetNamedType returns the innermost named type for the given reference.
func GetNamedType(t *TypeRef) string { return t.GetNamedType() }
