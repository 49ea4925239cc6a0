package value

// Field is a single entry of an Object.
type Field struct {
	Name  string
	Value Value
}

// Object is an ordered mapping with unique keys. Keys keep the order in
// which they were first set.
type Object struct {
	fields []Field
	index  map[string]int
}

func (*Object) Kind() Kind { return KindObject }
func (*Object) isValue()   {}

func NewObject(fields ...Field) *Object {
	o := &Object{}
	for _, f := range fields {
		o.Set(f.Name, f.Value)
	}
	return o
}

// Set stores v under name. An existing key keeps its position.
func (o *Object) Set(name string, v Value) {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	if i, ok := o.index[name]; ok {
		o.fields[i].Value = v
		return
	}
	o.index[name] = len(o.fields)
	o.fields = append(o.fields, Field{Name: name, Value: v})
}

func (o *Object) Get(name string) (Value, bool) {
	if o == nil {
		return nil, false
	}
	i, ok := o.index[name]
	if !ok {
		return nil, false
	}
	return o.fields[i].Value, true
}

func (o *Object) Has(name string) bool {
	_, ok := o.Get(name)
	return ok
}

func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.fields)
}

func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.fields))
	for i, f := range o.fields {
		keys[i] = f.Name
	}
	return keys
}

// Fields returns the entries in order. The slice must not be modified.
func (o *Object) Fields() []Field {
	if o == nil {
		return nil
	}
	return o.fields
}
