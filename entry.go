package redq

import "github.com/redq-io/redq/resp"

// Field is one name/value pair of a stream entry.
type Field struct {
	Name  string
	Value string
}

// Fields is the ordered field list of an entry, in the order the server sent
// it. Names are unique per entry.
type Fields []Field

// Get returns the value for name and whether it is present.
func (f Fields) Get(name string) (string, bool) {
	for _, field := range f {
		if field.Name == name {
			return field.Value, true
		}
	}
	return "", false
}

// Map copies the fields into a map, losing order.
func (f Fields) Map() map[string]string {
	m := make(map[string]string, len(f))
	for _, field := range f {
		m[field.Name] = field.Value
	}
	return m
}

// Entry is one stream record: an id issued by the server and its fields.
// Entries are only ever produced by decoding replies.
type Entry struct {
	ID     string
	Fields Fields
}

// StreamResult is one stream's slice of a read reply.
type StreamResult struct {
	Stream  string
	Entries []Entry
}

// The decoders below are deliberately lenient, unlike the strict Value.As*
// path: a missing or wrong-shaped nested element degrades to an empty
// placeholder (empty id, empty field list, empty slice) for that element
// only, and no error is ever returned. Callers distinguish "zero results"
// from a degraded decode only by shape.

// decodeEntryList converts a range-style reply, an array of
// [id, [name, value, ...]] pairs, into entries, preserving order.
func decodeEntryList(v resp.Value) []Entry {
	if v.Type != resp.TypeArray || v.IsNull {
		return []Entry{}
	}
	entries := make([]Entry, 0, len(v.Array))
	for _, el := range v.Array {
		entries = append(entries, decodeEntry(el))
	}
	return entries
}

func decodeEntry(v resp.Value) Entry {
	entry := Entry{Fields: Fields{}}
	if v.Type != resp.TypeArray || v.IsNull || len(v.Array) == 0 {
		return entry
	}

	entry.ID = lenientText(v.Array[0])

	if len(v.Array) < 2 {
		return entry
	}
	flat := v.Array[1]
	if flat.Type != resp.TypeArray || flat.IsNull {
		return entry
	}

	// Re-pair the flat [name, value, name, value, ...] sequence.
	// A trailing unpaired element is dropped.
	for i := 0; i+1 < len(flat.Array); i += 2 {
		entry.Fields = append(entry.Fields, Field{
			Name:  lenientText(flat.Array[i]),
			Value: lenientText(flat.Array[i+1]),
		})
	}
	return entry
}

// decodeStreamResults converts a read-style reply, an array of
// [stream name, entry list] pairs, into per-stream results.
func decodeStreamResults(v resp.Value) []StreamResult {
	if v.Type != resp.TypeArray || v.IsNull {
		return []StreamResult{}
	}
	results := make([]StreamResult, 0, len(v.Array))
	for _, el := range v.Array {
		results = append(results, decodeStreamResult(el))
	}
	return results
}

func decodeStreamResult(v resp.Value) StreamResult {
	result := StreamResult{Entries: []Entry{}}
	if v.Type != resp.TypeArray || v.IsNull || len(v.Array) == 0 {
		return result
	}
	result.Stream = lenientText(v.Array[0])
	if len(v.Array) >= 2 {
		result.Entries = decodeEntryList(v.Array[1])
	}
	return result
}

// lenientText narrows to text, substituting "" for anything that isn't.
func lenientText(v resp.Value) string {
	s, err := v.AsString()
	if err != nil {
		return ""
	}
	return s
}
