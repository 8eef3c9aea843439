package writer

// Source values flowing through the writer tree are plain interface{} —
// BufferQL's Python original walks dynamically-typed dicts/lists/objects
// directly (`value.get(key)`, `value[i]`, `value.keys()`); Go has no
// reflection-free equivalent, so callers expose structure through these
// small interfaces instead. Each has a convenience concrete type for the
// common case.

// Tuple is implemented by values supplied to a Tuple-typed writer: an
// ordered, fixed-length sequence of fields addressed by position.
type Tuple interface {
	Field(i int) interface{}
}

// SliceTuple is a Tuple backed directly by a slice.
type SliceTuple []interface{}

func (t SliceTuple) Field(i int) interface{} { return t[i] }

// Fields is implemented by values supplied to a NamedTuple-typed writer:
// fields addressed by key, absent keys reporting ok=false (mirroring
// Python's dict.get returning None for a missing key — spec §4.3's
// NamedTuple spawn rule: "value.get(key)").
type Fields interface {
	Field(key string) (value interface{}, ok bool)
}

// MapFields is a Fields backed directly by a Go map. Field order for a
// NamedTuple comes from the schema's declared keys, not map iteration
// order, so a native map is safe to use here without violating any
// ordering invariant.
type MapFields map[string]interface{}

func (f MapFields) Field(key string) (interface{}, bool) {
	v, ok := f[key]
	return v, ok
}

// List is implemented by values supplied to an Array-typed writer: the
// ordered elements of one row.
type List interface {
	Len() int
	At(i int) interface{}
}

// SliceList is a List backed directly by a slice.
type SliceList []interface{}

func (l SliceList) Len() int            { return len(l) }
func (l SliceList) At(i int) interface{} { return l[i] }

// Map is implemented by values supplied to a Map-typed writer: an
// insertion-ordered string-keyed collection (spec §3 "Map ... String→V,
// preserving insertion order" — a native Go map cannot honor this, so
// unlike NamedTuple, Map has no bare-map convenience type).
type Map interface {
	Keys() []string
	Get(key string) interface{}
}

// OrderedMap is the concrete Map most callers construct directly.
type OrderedMap struct {
	keys   []string
	values map[string]interface{}
}

// NewOrderedMap returns an empty OrderedMap ready for Set calls.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: make(map[string]interface{})}
}

// Set appends key to the insertion order the first time it is seen, or
// overwrites its value in place on a repeat key.
func (m *OrderedMap) Set(key string, value interface{}) *OrderedMap {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
	return m
}

func (m *OrderedMap) Keys() []string        { return m.keys }
func (m *OrderedMap) Get(key string) interface{} { return m.values[key] }

// Identified is implemented by domain values that may be the target of a
// schema Ref. Go has no generic object-identity hook the library could
// retrofit after the fact (unlike the Python original's id()), so the
// stable key design note (spec §9) is realized here by asking the
// caller's own domain type to supply it.
type Identified interface {
	Identity() int64
}

func asTuple(v interface{}) Tuple {
	switch t := v.(type) {
	case Tuple:
		return t
	case []interface{}:
		return SliceTuple(t)
	}
	panic(Error("Tuple source value must implement writer.Tuple or be []interface{}"))
}

func asFields(v interface{}) Fields {
	switch t := v.(type) {
	case Fields:
		return t
	case map[string]interface{}:
		return MapFields(t)
	}
	panic(Error("NamedTuple source value must implement writer.Fields or be map[string]interface{}"))
}

func asList(v interface{}) List {
	switch t := v.(type) {
	case List:
		return t
	case []interface{}:
		return SliceList(t)
	}
	panic(Error("Array source value must implement writer.List or be []interface{}"))
}

func asMap(v interface{}) Map {
	switch t := v.(type) {
	case Map:
		return t
	}
	panic(Error("Map source value must implement writer.Map (e.g. *writer.OrderedMap)"))
}
