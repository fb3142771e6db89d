package mav

import (
	"bytes"
	"strconv"

	"github.com/goccy/go-json"
)

// Field is one key/value pair of a detail record. Raw holds the compacted
// JSON value so values of any JSON type compare byte-for-byte.
type Field struct {
	Key string
	Raw json.RawMessage
}

// Record is a single presentation record attached to a node. Objects keep
// their field order; any other JSON value is kept as a free-text entry.
type Record struct {
	Fields []Field
	Text   string
	free   bool
}

// TextRecord returns a free-text record.
func TextRecord(text string) Record {
	return Record{Text: text, free: true}
}

// NewRecord builds an object record from alternating key/value strings.
// It panics on an odd number of arguments.
func NewRecord(kv ...string) Record {
	if len(kv)%2 != 0 {
		panic("mav: NewRecord needs key/value pairs")
	}
	r := Record{Fields: make([]Field, 0, len(kv)/2)}
	for i := 0; i < len(kv); i += 2 {
		raw, _ := json.Marshal(kv[i+1])
		r.Fields = append(r.Fields, Field{Key: kv[i], Raw: raw})
	}
	return r
}

// IsText reports whether r is a free-text entry rather than an object.
func (r Record) IsText() bool { return r.free }

// Lookup returns the raw value stored under key.
func (r Record) Lookup(key string) (json.RawMessage, bool) {
	for _, f := range r.Fields {
		if f.Key == key {
			return f.Raw, true
		}
	}
	return nil, false
}

// Has reports whether r carries a field named key.
func (r Record) Has(key string) bool {
	_, ok := r.Lookup(key)
	return ok
}

// Value returns the textual value of key. Strings are returned unquoted,
// other JSON values in their compact encoding. Missing keys yield "".
func (r Record) Value(key string) string {
	raw, ok := r.Lookup(key)
	if !ok {
		return ""
	}
	return rawText(raw)
}

// Without returns a copy of r with the named keys removed.
func (r Record) Without(keys map[string]bool) Record {
	if r.free || len(keys) == 0 {
		return r
	}
	out := Record{Fields: make([]Field, 0, len(r.Fields))}
	for _, f := range r.Fields {
		if !keys[f.Key] {
			out.Fields = append(out.Fields, f)
		}
	}
	return out
}

// EqualExcept reports whether a and b carry the same key set with equal
// values, ignoring the values (but not the presence) of excluded keys.
func EqualExcept(a, b Record, excluded map[string]bool) bool {
	if a.free || b.free {
		return a.free == b.free && a.Text == b.Text
	}
	if len(a.Fields) != len(b.Fields) {
		return false
	}
	for _, f := range a.Fields {
		raw, ok := b.Lookup(f.Key)
		if !ok {
			return false
		}
		if !excluded[f.Key] && !bytes.Equal(f.Raw, raw) {
			return false
		}
	}
	return true
}

// UnmarshalJSON decodes an object into ordered fields and any other value
// into a free-text entry.
func (r *Record) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*r = TextRecord(rawText(data))
		return nil
	}

	var values map[string]json.RawMessage
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	keys := objectKeys(data)
	fields := make([]Field, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, k := range keys {
		raw, ok := values[k]
		if !ok || seen[k] {
			continue
		}
		seen[k] = true
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return err
		}
		fields = append(fields, Field{Key: k, Raw: buf.Bytes()})
	}
	*r = Record{Fields: fields}
	return nil
}

// MarshalJSON encodes r back into an object (or a string for free text)
// preserving field order.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.free {
		return json.Marshal(r.Text)
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(f.Raw)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func rawText(raw []byte) string {
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

// objectKeys lists the top-level keys of a JSON object in document order.
// The input has already been validated by json.Unmarshal.
func objectKeys(data []byte) []string {
	var keys []string
	depth := 0
	expectKey := false
	for i := 0; i < len(data); i++ {
		switch c := data[i]; c {
		case '{', '[':
			depth++
			if depth == 1 && c == '{' {
				expectKey = true
			}
		case '}', ']':
			depth--
		case ',':
			if depth == 1 {
				expectKey = true
			}
		case '"':
			end := skipString(data, i)
			if depth == 1 && expectKey {
				if k, err := strconv.Unquote(string(data[i : end+1])); err == nil {
					keys = append(keys, k)
				} else {
					var s string
					_ = json.Unmarshal(data[i:end+1], &s)
					keys = append(keys, s)
				}
				expectKey = false
			}
			i = end
		}
	}
	return keys
}

// skipString returns the index of the closing quote of the string that
// starts at data[start].
func skipString(data []byte, start int) int {
	for i := start + 1; i < len(data); i++ {
		switch data[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return len(data) - 1
}
