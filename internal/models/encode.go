package models

import (
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/valyala/fastjson"
)

const hex = "0123456789abcdef"

// AppendJSON appends the JSON text of v to dst. An empty indent produces
// compact output; otherwise every nesting level is indented by indent and
// keys are followed by ": ", matching a browser's JSON.stringify(v, null, n).
func (v *Value) AppendJSON(dst []byte, indent string) []byte {
	return v.appendJSON(dst, indent, 0)
}

func (v *Value) appendJSON(b []byte, indent string, depth int) []byte {
	switch v.Kind() {
	case Bool:
		return strconv.AppendBool(b, v.b)
	case Number:
		return appendNumber(b, v.n)
	case String:
		return appendString(b, v.s)
	case Array:
		if len(v.items) == 0 {
			return append(b, "[]"...)
		}
		b = append(b, '[')
		for i, item := range v.items {
			if i > 0 {
				b = append(b, ',')
			}
			b = appendNewline(b, indent, depth+1)
			b = item.appendJSON(b, indent, depth+1)
		}
		b = appendNewline(b, indent, depth)
		return append(b, ']')
	case Object:
		if v.Len() == 0 {
			return append(b, "{}"...)
		}
		b = append(b, '{')
		for i, k := range v.Keys() {
			if i > 0 {
				b = append(b, ',')
			}
			b = appendNewline(b, indent, depth+1)
			b = appendString(b, k)
			b = append(b, ':')
			if indent != "" {
				b = append(b, ' ')
			}
			item, _ := v.Field(k)
			b = item.appendJSON(b, indent, depth+1)
		}
		b = appendNewline(b, indent, depth)
		return append(b, '}')
	default:
		return append(b, "null"...)
	}
}

func appendNewline(b []byte, indent string, depth int) []byte {
	if indent == "" {
		return b
	}
	b = append(b, '\n')
	for i := 0; i < depth; i++ {
		b = append(b, indent...)
	}
	return b
}

// appendNumber formats like ECMAScript Number.prototype.toString: exponent
// notation only below 1e-6 or at/above 1e21. Non-finite numbers become null.
func appendNumber(b []byte, f float64) []byte {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return append(b, "null"...)
	}
	if f == 0 {
		f = 0 // drop the sign of -0
	}
	format := byte('f')
	if abs := math.Abs(f); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	b = strconv.AppendFloat(b, f, format, -1, 64)
	if format == 'e' {
		// e-09 -> e-9
		n := len(b)
		if n >= 4 && b[n-4] == 'e' && b[n-3] == '-' && b[n-2] == '0' {
			b[n-2] = b[n-1]
			b = b[:n-1]
		}
	}
	return b
}

// appendString quotes s. Only quotes, backslashes and control characters
// are escaped; invalid UTF-8 becomes U+FFFD.
func appendString(b []byte, s string) []byte {
	b = append(b, '"')
	start := 0
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			if c >= 0x20 && c != '"' && c != '\\' {
				i++
				continue
			}
			b = append(b, s[start:i]...)
			switch c {
			case '"', '\\':
				b = append(b, '\\', c)
			case '\b':
				b = append(b, '\\', 'b')
			case '\f':
				b = append(b, '\\', 'f')
			case '\n':
				b = append(b, '\\', 'n')
			case '\r':
				b = append(b, '\\', 'r')
			case '\t':
				b = append(b, '\\', 't')
			default:
				b = append(b, '\\', 'u', '0', '0', hex[c>>4], hex[c&0xf])
			}
			i++
			start = i
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			b = append(b, s[start:i]...)
			b = append(b, `�`...)
			i += size
			start = i
			continue
		}
		i += size
	}
	b = append(b, s[start:]...)
	return append(b, '"')
}

// String returns the compact JSON text of v.
func (v *Value) String() string {
	return string(v.AppendJSON(nil, ""))
}

// MarshalJSON implements json.Marshaler with compact output.
func (v *Value) MarshalJSON() ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("models: cannot marshal invalid value")
	}
	return v.AppendJSON(nil, ""), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var p fastjson.Parser
	parsed, err := p.ParseBytes(data)
	if err != nil {
		return err
	}
	out, err := FromFastjson(parsed)
	if err != nil {
		return err
	}
	*v = *out
	return nil
}

// FromFastjson converts a parsed fastjson value. Numbers that do not fit a
// finite float64 are rejected.
func FromFastjson(in *fastjson.Value) (*Value, error) {
	switch in.Type() {
	case fastjson.TypeNull:
		return NewNull(), nil
	case fastjson.TypeTrue:
		return NewBool(true), nil
	case fastjson.TypeFalse:
		return NewBool(false), nil
	case fastjson.TypeNumber:
		f, err := in.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %s: %w", in.String(), err)
		}
		return finiteNumber(f)
	case fastjson.TypeString:
		sb, err := in.StringBytes()
		if err != nil {
			return nil, err
		}
		return NewString(string(sb)), nil
	case fastjson.TypeArray:
		arr, err := in.Array()
		if err != nil {
			return nil, err
		}
		out := NewArray()
		for i, item := range arr {
			child, err := FromFastjson(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out.Append(child)
		}
		return out, nil
	case fastjson.TypeObject:
		obj, err := in.Object()
		if err != nil {
			return nil, err
		}
		out := NewObject()
		var visitErr error
		obj.Visit(func(key []byte, item *fastjson.Value) {
			if visitErr != nil {
				return
			}
			child, err := FromFastjson(item)
			if err != nil {
				visitErr = fmt.Errorf("%s: %w", key, err)
				return
			}
			// Duplicate keys: the last value wins at the first position.
			out.SetField(string(key), child)
		})
		if visitErr != nil {
			return nil, visitErr
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected JSON type %s", in.Type())
	}
}
