package resp

import (
	"bytes"
	"strconv"
)

const (
	// CRLF is the protocol line terminator.
	CRLF = "\r\n"

	// maxBulkLen caps bulk string payloads (512MB, the server default).
	maxBulkLen = 512 * 1024 * 1024

	// maxArrayLen caps array element counts.
	maxArrayLen = 1024 * 1024
)

// Decode parses the first complete value from buf and reports how many bytes
// it consumed. It is incremental: when buf holds only a prefix of a value it
// returns ErrIncomplete and consumes nothing, so the caller can append more
// bytes and retry without losing state. Arrays decode their elements left to
// right and propagate ErrIncomplete from any child.
//
// The returned Value owns its payload bytes; buf may be reused afterwards.
func Decode(buf []byte) (Value, int, error) {
	if len(buf) == 0 {
		return Value{}, 0, ErrIncomplete
	}

	switch t := Type(buf[0]); t {
	case TypeSimpleString, TypeError:
		line, n, err := decodeLine(buf[1:])
		if err != nil {
			return Value{}, 0, err
		}
		return Value{Type: t, Data: bytes.Clone(line)}, 1 + n, nil

	case TypeInteger:
		line, n, err := decodeLine(buf[1:])
		if err != nil {
			return Value{}, 0, err
		}
		i, err := parseInt(line)
		if err != nil {
			return Value{}, 0, &ParseError{Message: "invalid integer " + strconv.Quote(string(line)), Err: err}
		}
		return Value{Type: TypeInteger, Integer: i}, 1 + n, nil

	case TypeBulkString:
		return decodeBulkString(buf)

	case TypeArray:
		return decodeArray(buf)

	default:
		return Value{}, 0, &ParseError{Message: "unknown type marker " + strconv.Quote(string(buf[0:1]))}
	}
}

func decodeBulkString(buf []byte) (Value, int, error) {
	line, n, err := decodeLine(buf[1:])
	if err != nil {
		return Value{}, 0, err
	}
	length, err := parseInt(line)
	if err != nil {
		return Value{}, 0, &ParseError{Message: "invalid bulk string length " + strconv.Quote(string(line)), Err: err}
	}

	if length == -1 {
		return Value{Type: TypeBulkString, IsNull: true}, 1 + n, nil
	}
	if length < 0 || length > maxBulkLen {
		return Value{}, 0, &ParseError{Message: "bulk string length out of range: " + strconv.FormatInt(length, 10)}
	}

	// Payload plus its CRLF terminator.
	head := 1 + n
	total := head + int(length) + len(CRLF)
	if len(buf) < total {
		return Value{}, 0, ErrIncomplete
	}
	if string(buf[total-len(CRLF):total]) != CRLF {
		return Value{}, 0, &ParseError{Message: "bulk string missing CRLF terminator"}
	}
	return Value{Type: TypeBulkString, Data: bytes.Clone(buf[head : head+int(length)])}, total, nil
}

func decodeArray(buf []byte) (Value, int, error) {
	line, n, err := decodeLine(buf[1:])
	if err != nil {
		return Value{}, 0, err
	}
	count, err := parseInt(line)
	if err != nil {
		return Value{}, 0, &ParseError{Message: "invalid array length " + strconv.Quote(string(line)), Err: err}
	}

	if count == -1 {
		return Value{Type: TypeArray, IsNull: true}, 1 + n, nil
	}
	if count < 0 || count > maxArrayLen {
		return Value{}, 0, &ParseError{Message: "array length out of range: " + strconv.FormatInt(count, 10)}
	}

	offset := 1 + n
	elements := make([]Value, 0, count)
	for i := int64(0); i < count; i++ {
		el, consumed, err := Decode(buf[offset:])
		if err != nil {
			// ErrIncomplete propagates upward untouched.
			return Value{}, 0, err
		}
		elements = append(elements, el)
		offset += consumed
	}
	return Value{Type: TypeArray, Array: elements}, offset, nil
}

// decodeLine returns the bytes of the next CRLF-terminated line, without the
// terminator, and the number of bytes consumed including it.
func decodeLine(buf []byte) ([]byte, int, error) {
	idx := bytes.IndexByte(buf, '\n')
	if idx < 0 {
		return nil, 0, ErrIncomplete
	}
	if idx == 0 || buf[idx-1] != '\r' {
		return nil, 0, &ParseError{Message: "line feed without carriage return"}
	}
	return buf[:idx-1], idx + 1, nil
}

// parseInt parses a signed decimal from a byte slice without allocating.
func parseInt(b []byte) (int64, error) {
	if len(b) == 0 {
		return 0, strconv.ErrSyntax
	}

	var neg bool
	i := 0
	if b[0] == '-' {
		neg = true
		i = 1
	}
	if i >= len(b) {
		return 0, strconv.ErrSyntax
	}

	var n int64
	for ; i < len(b); i++ {
		if b[i] < '0' || b[i] > '9' {
			return 0, strconv.ErrSyntax
		}
		if n > (1<<63-1)/10 {
			return 0, strconv.ErrRange
		}
		n = n*10 + int64(b[i]-'0')
	}

	if neg {
		return -n, nil
	}
	return n, nil
}
