package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

// Kind identifies which variant a Value holds
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	// KindRaw holds a JSON object or array verbatim
	KindRaw
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindRaw:
		return "raw"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a decoded JSON scalar taken from the calendar payload.
// The zero Value is null. Numbers keep their source text in str so they are
// written back exactly as published.
type Value struct {
	kind Kind
	str  string
	num  decimal.Decimal
	b    bool
}

// NullValue returns the null Value
func NullValue() Value {
	return Value{}
}

// StringValue wraps a string
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// NumberValue wraps an exact decimal number
func NumberValue(d decimal.Decimal) Value {
	return Value{kind: KindNumber, num: d, str: d.String()}
}

// numberFromText parses a JSON number, keeping text for rendering
func numberFromText(text string) (Value, error) {
	d, err := decimal.NewFromString(text)
	if err != nil {
		return Value{}, fmt.Errorf("decoding number %q: %w", text, err)
	}
	return Value{kind: KindNumber, num: d, str: text}, nil
}

// BoolValue wraps a boolean
func BoolValue(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Kind reports which variant v holds
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null or was absent from the payload
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string payload and whether v is a string
func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindString
}

// Num returns the numeric payload and whether v is a number
func (v Value) Num() (decimal.Decimal, bool) {
	return v.num, v.kind == KindNumber
}

// Bool returns the boolean payload and whether v is a boolean
func (v Value) Bool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// Interface returns the payload as a plain Go value: nil, string,
// decimal.Decimal, bool, or json.RawMessage.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindRaw:
		return json.RawMessage(v.str)
	default:
		return nil
	}
}

// String renders v the way it appears in a CSV cell. Null renders empty and
// booleans render as True/False.
func (v Value) String() string {
	switch v.kind {
	case KindString, KindRaw, KindNumber:
		return v.str
	case KindBool:
		if v.b {
			return "True"
		}
		return "False"
	default:
		return ""
	}
}

// Equal reports whether two values hold the same variant and payload
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindNumber:
		return v.num.Equal(o.num)
	case KindBool:
		return v.b == o.b
	default:
		return v.str == o.str
	}
}

// UnmarshalJSON decodes any JSON value without coercing it
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		*v = NullValue()
		return nil
	}

	switch trimmed[0] {
	case 'n':
		*v = NullValue()
		return nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return err
		}
		*v = Value{kind: KindRaw, str: buf.String()}
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	switch x := raw.(type) {
	case string:
		*v = StringValue(x)
	case bool:
		*v = BoolValue(x)
	case json.Number:
		n, err := numberFromText(x.String())
		if err != nil {
			return err
		}
		*v = n
	default:
		return fmt.Errorf("unsupported JSON value %s", string(trimmed))
	}
	return nil
}

// MarshalJSON encodes v back to the JSON it was decoded from
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return []byte(v.str), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindRaw:
		return []byte(v.str), nil
	default:
		return []byte("null"), nil
	}
}

// MarshalCSV implements gocsv.TypeMarshaller
func (v Value) MarshalCSV() (string, error) {
	return v.String(), nil
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller
func (v *Value) UnmarshalCSV(s string) error {
	*v = ParseValue(s)
	return nil
}

// ParseValue reverses String for text read back from a CSV cell or a
// database column. Empty text is null, True/False are booleans, decimal
// text is a number and anything else is a string.
func ParseValue(s string) Value {
	switch s {
	case "":
		return NullValue()
	case "True":
		return BoolValue(true)
	case "False":
		return BoolValue(false)
	}

	if numberPattern.MatchString(s) {
		if n, err := numberFromText(s); err == nil {
			return n
		}
	}

	return StringValue(s)
}

// numberPattern is JSON number syntax, so "1e5x", " 1" or "007" stay strings
var numberPattern = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)
