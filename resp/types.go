package resp

import (
	"fmt"
	"strconv"
	"strings"
)

// Type identifies the wire representation of a Value.
// The constants are the protocol marker bytes.
type Type byte

const (
	TypeSimpleString Type = '+'
	TypeError        Type = '-'
	TypeInteger      Type = ':'
	TypeBulkString   Type = '$'
	TypeArray        Type = '*'
)

// String returns a human-readable name for the type, used in error messages.
func (t Type) String() string {
	switch t {
	case TypeSimpleString:
		return "simple string"
	case TypeError:
		return "error"
	case TypeInteger:
		return "integer"
	case TypeBulkString:
		return "bulk string"
	case TypeArray:
		return "array"
	default:
		return fmt.Sprintf("unknown (0x%02x)", byte(t))
	}
}

// Value is a decoded wire value: a closed tagged union over the five protocol
// shapes. Arrays own their elements outright; a Value is immutable once
// decoded.
//
// A null bulk string or null array (IsNull set) is a distinct "no value"
// marker, not the same thing as an empty payload or empty array. Decoders
// preserve the distinction.
type Value struct {
	Type    Type
	Data    []byte // simple string, error and bulk string payload
	Integer int64
	Array   []Value
	IsNull  bool // null bulk string / null array
}

// Constructors for each shape. Tests and servers build replies with these;
// clients normally only build Commands.

func SimpleStringValue(s string) Value { return Value{Type: TypeSimpleString, Data: []byte(s)} }
func ErrorValue(msg string) Value      { return Value{Type: TypeError, Data: []byte(msg)} }
func IntegerValue(n int64) Value       { return Value{Type: TypeInteger, Integer: n} }
func BulkStringValue(b []byte) Value   { return Value{Type: TypeBulkString, Data: b} }
func NullBulkString() Value            { return Value{Type: TypeBulkString, IsNull: true} }
func ArrayValue(vs ...Value) Value {
	if vs == nil {
		vs = []Value{}
	}
	return Value{Type: TypeArray, Array: vs}
}
func NullArray() Value { return Value{Type: TypeArray, IsNull: true} }

// IsNil reports whether the value is a null bulk string or null array.
func (v Value) IsNil() bool { return v.IsNull }

// replyErr returns the server-reported error if v is an error value.
func (v Value) replyErr() error {
	if v.Type == TypeError {
		return &ReplyError{Message: string(v.Data)}
	}
	return nil
}

// AsInt narrows the value to a signed 64-bit integer.
// An error value narrows to *ReplyError; any other shape is a *TypeMismatchError.
func (v Value) AsInt() (int64, error) {
	if err := v.replyErr(); err != nil {
		return 0, err
	}
	if v.Type != TypeInteger {
		return 0, &TypeMismatchError{Want: TypeInteger, Got: v.Type}
	}
	return v.Integer, nil
}

// AsString narrows the value to text. Both simple strings and non-null bulk
// strings qualify; everything else fails.
func (v Value) AsString() (string, error) {
	if err := v.replyErr(); err != nil {
		return "", err
	}
	switch v.Type {
	case TypeSimpleString:
		return string(v.Data), nil
	case TypeBulkString:
		if v.IsNull {
			return "", &TypeMismatchError{Want: TypeBulkString, Got: v.Type, Null: true}
		}
		return string(v.Data), nil
	default:
		return "", &TypeMismatchError{Want: TypeBulkString, Got: v.Type}
	}
}

// AsBytes narrows the value to a bulk payload. A null bulk string yields
// (nil, nil): absence is data, not an error.
func (v Value) AsBytes() ([]byte, error) {
	if err := v.replyErr(); err != nil {
		return nil, err
	}
	if v.Type != TypeBulkString {
		return nil, &TypeMismatchError{Want: TypeBulkString, Got: v.Type}
	}
	if v.IsNull {
		return nil, nil
	}
	return v.Data, nil
}

// AsArray narrows the value to an ordered sequence. A null array yields
// (nil, nil), distinct from an empty non-nil slice.
func (v Value) AsArray() ([]Value, error) {
	if err := v.replyErr(); err != nil {
		return nil, err
	}
	if v.Type != TypeArray {
		return nil, &TypeMismatchError{Want: TypeArray, Got: v.Type}
	}
	if v.IsNull {
		return nil, nil
	}
	return v.Array, nil
}

// AsStatus narrows the value to a simple status line (e.g. "OK").
func (v Value) AsStatus() (string, error) {
	if err := v.replyErr(); err != nil {
		return "", err
	}
	if v.Type != TypeSimpleString {
		return "", &TypeMismatchError{Want: TypeSimpleString, Got: v.Type}
	}
	return string(v.Data), nil
}

// String renders the value for debugging.
func (v Value) String() string {
	switch v.Type {
	case TypeSimpleString, TypeError:
		return string(v.Data)
	case TypeInteger:
		return strconv.FormatInt(v.Integer, 10)
	case TypeBulkString:
		if v.IsNull {
			return "(nil)"
		}
		return string(v.Data)
	case TypeArray:
		if v.IsNull {
			return "(nil)"
		}
		parts := make([]string, len(v.Array))
		for i, el := range v.Array {
			parts[i] = el.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("unknown type %c", byte(v.Type))
	}
}
