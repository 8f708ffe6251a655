// Package hashutil computes the automation hash that guards IssueMapping rows
// against being silently overwritten after a manual operator edit.
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Field is one entry of the automation-managed field set. Order matters: the
// hash is computed over fields in the exact order they are appended, per
// spec §4.7 ("the map MUST preserve insertion order... to keep hashes stable
// across runs").
type Field struct {
	Name  string
	Value any // nil, string, int64, float64, bool, or json.RawMessage-like string
}

// Payload is an ordered list of automation-managed fields for one
// IssueMapping row.
type Payload []Field

// Add appends a field, returning the payload for chaining.
func (p Payload) Add(name string, value any) Payload {
	return append(p, Field{Name: name, Value: value})
}

// Hash computes the automation_hash: SHA-256 hex digest of the canonical
// JSON encoding of the payload, preserving field order and using unescaped
// unicode/slashes (spec §3, §4.7).
func Hash(p Payload) string {
	sum := sha256.Sum256([]byte(CanonicalJSON(p)))
	return hex.EncodeToString(sum[:])
}

// CanonicalJSON renders the payload as an ordered JSON object. Unlike
// encoding/json.Marshal on a map, this never reorders keys and never escapes
// '<', '>', '&', or '/'.
func CanonicalJSON(p Payload) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range p {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(encodeJSONString(f.Name))
		b.WriteByte(':')
		encodeJSONValue(&b, f.Value)
	}
	b.WriteByte('}')
	return b.String()
}

func encodeJSONValue(b *strings.Builder, v any) {
	switch val := v.(type) {
	case nil:
		b.WriteString("null")
	case string:
		b.WriteString(encodeJSONString(val))
	case bool:
		if val {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case int:
		b.WriteString(strconv.Itoa(val))
	case int64:
		b.WriteString(strconv.FormatInt(val, 10))
	case float64:
		b.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
	case []string:
		b.WriteByte('[')
		for i, s := range val {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(encodeJSONString(s))
		}
		b.WriteByte(']')
	case map[string]string:
		// Deterministic ordering required for nested objects (e.g. custom
		// field payload entries rendered as raw JSON strings instead, see
		// Payload construction in internal/transform).
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(encodeJSONString(k))
			b.WriteByte(':')
			b.WriteString(encodeJSONString(val[k]))
		}
		b.WriteByte('}')
	case RawJSON:
		if len(val) == 0 {
			b.WriteString("null")
		} else {
			b.WriteString(string(val))
		}
	default:
		panic(fmt.Sprintf("hashutil: unsupported field value type %T", v))
	}
}

// RawJSON marks a value that is already valid JSON (e.g. the serialized
// proposed_custom_field_payload array) and should be embedded verbatim.
type RawJSON string

// encodeJSONString encodes s as a JSON string literal without escaping
// forward slashes or non-ASCII runes, matching spec §4.7 ("unescaped
// Unicode and unescaped slashes").
func encodeJSONString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
