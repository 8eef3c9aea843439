package writer

// refTarget is one reference-table entry: the writer that owns the
// target value and the value's index within that writer's source,
// grounded on writer.py's module-level `references[id(value)] = (self, i)`.
type refTarget struct {
	writer *Writer
	index  int
}

// refTable is process-local to a single encode call (spec §5: "the
// reference table is private to a single encode call and cleared at
// entry"), realized here simply by constructing a fresh one per Encode
// rather than clearing a shared one, since Go gives no reason to reuse
// the allocation across calls.
//
// Keyed by Identity() rather than Go value identity: a plain struct or
// map value has no stable address once copied through spawn's column
// extraction, so pointer/value equality cannot be relied on in general
// (spec §9 "Identity-keyed lookups").
type refTable map[int64]refTarget

func (rt refTable) register(w *Writer) {
	for i, v := range w.source {
		id, ok := v.(Identified)
		if !ok {
			continue
		}
		rt[id.Identity()] = refTarget{writer: w, index: i}
	}
}

func (rt refTable) resolve(v interface{}) (refTarget, bool) {
	id, ok := v.(Identified)
	if !ok {
		return refTarget{}, false
	}
	target, ok := rt[id.Identity()]
	return target, ok
}
