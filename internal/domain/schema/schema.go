// Package schema declares record shapes (fields, enumerations, bounds,
// defaults, references, ordering, list filters) and validates payloads
// against them.
package schema

// Kind is the storage type of a field.
type Kind int

const (
	KindString Kind = iota
	KindEmail
	KindNumber
	KindBool
	KindDate
	KindRef
	KindStringList
	KindObject
)

// Reserved fields are maintained by the engine and never taken from payloads.
const (
	FieldID        = "_id"
	FieldOwner     = "userId"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// Field describes one attribute. Construct with Text, Email, Number, Bool,
// Date, Reference, StringList, Enum or Object and refine with the chainable
// modifiers.
type Field struct {
	Name string
	Kind Kind

	required  bool
	lowercase bool
	enum      []string
	min       *float64
	max       *float64
	def       any
	fields    []Field
}

func Text(name string) Field       { return Field{Name: name, Kind: KindString} }
func Email(name string) Field      { return Field{Name: name, Kind: KindEmail, lowercase: true} }
func Number(name string) Field     { return Field{Name: name, Kind: KindNumber} }
func Bool(name string) Field       { return Field{Name: name, Kind: KindBool} }
func Date(name string) Field       { return Field{Name: name, Kind: KindDate} }
func Reference(name string) Field  { return Field{Name: name, Kind: KindRef} }
func StringList(name string) Field { return Field{Name: name, Kind: KindStringList} }

// Enum is a string field restricted to values.
func Enum(name string, values ...string) Field {
	return Field{Name: name, Kind: KindString, enum: values}
}

// Object is a nested document with its own fields.
func Object(name string, fields ...Field) Field {
	return Field{Name: name, Kind: KindObject, fields: fields}
}

func (f Field) Required() Field {
	f.required = true
	return f
}

func (f Field) Lowercase() Field {
	f.lowercase = true
	return f
}

func (f Field) Min(v float64) Field {
	f.min = &v
	return f
}

func (f Field) Max(v float64) Field {
	f.max = &v
	return f
}

// Default is applied on create when the payload omits the field.
func (f Field) Default(v any) Field {
	f.def = v
	return f
}

// IsRequired reports whether the field must be present on create.
func (f Field) IsRequired() bool { return f.required }

// Values returns the enumeration, if any.
func (f Field) Values() []string { return f.enum }

// Fields returns the nested fields of an Object.
func (f Field) Fields() []Field { return f.fields }

// Ref declares that Field holds the id of a record in Collection and should be
// expanded to Projection on read.
type Ref struct {
	Field      string
	Collection string
	Projection []string
}

// Sort is the default list ordering.
type Sort struct {
	Field string
	Desc  bool
}

// Match selects how a list filter compares its value.
type Match int

const (
	MatchExact Match = iota
	MatchContains
	MatchRef
)

// ListFilter maps a query parameter to a field condition.
type ListFilter struct {
	Param string
	Field string
	Match Match
}

// Schema describes one record family.
type Schema struct {
	// Label is the human name used in messages, e.g. "Health record".
	Label      string
	Collection string
	Fields     []Field
	Refs       []Ref
	Sort       Sort
	// DateField is filtered by the startDate/endDate list parameters.
	DateField string
	Filters   []ListFilter
	// Owned records carry the owner id and are only visible to that owner.
	Owned bool
	// Lifecycle, when set, guards updates of the status field.
	Lifecycle *Lifecycle
}

// Field returns the top-level field called name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Columns lists the top-level and nested field paths in declaration order.
func (s *Schema) Columns() []string {
	var out []string
	var walk func(prefix string, fields []Field)
	walk = func(prefix string, fields []Field) {
		for _, f := range fields {
			if f.Kind == KindObject {
				walk(prefix+f.Name+".", f.fields)
				continue
			}
			out = append(out, prefix+f.Name)
		}
	}
	walk("", s.Fields)
	return out
}
