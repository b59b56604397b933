package resp

import (
	"bufio"
	"io"
	"strconv"
)

// Writer serializes values and commands to a transport. Writes are buffered;
// call Flush to push them out.
type Writer struct {
	bw *bufio.Writer
}

// NewWriter creates a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriter(w)}
}

// WriteCommand writes the request frame for cmd: a count-prefixed array of
// length-prefixed bulk strings, verb first, arguments in order. The framing
// is byte-exact; the server parses this directly.
func (w *Writer) WriteCommand(cmd *Command) error {
	w.bw.WriteByte(byte(TypeArray))
	w.bw.WriteString(strconv.Itoa(cmd.Len()))
	w.bw.WriteString(CRLF)

	if err := w.writeBulk([]byte(cmd.Name)); err != nil {
		return err
	}
	for _, arg := range cmd.Args {
		if err := w.writeBulk(arg); err != nil {
			return err
		}
	}
	return nil
}

// WriteValue writes any value in its wire framing. Used by servers to frame
// replies; elements of arrays recurse.
func (w *Writer) WriteValue(v Value) error {
	switch v.Type {
	case TypeSimpleString, TypeError:
		w.bw.WriteByte(byte(v.Type))
		w.bw.Write(v.Data)
		_, err := w.bw.WriteString(CRLF)
		return err
	case TypeInteger:
		w.bw.WriteByte(byte(TypeInteger))
		w.bw.WriteString(strconv.FormatInt(v.Integer, 10))
		_, err := w.bw.WriteString(CRLF)
		return err
	case TypeBulkString:
		if v.IsNull {
			_, err := w.bw.WriteString("$-1" + CRLF)
			return err
		}
		return w.writeBulk(v.Data)
	case TypeArray:
		if v.IsNull {
			_, err := w.bw.WriteString("*-1" + CRLF)
			return err
		}
		w.bw.WriteByte(byte(TypeArray))
		w.bw.WriteString(strconv.Itoa(len(v.Array)))
		if _, err := w.bw.WriteString(CRLF); err != nil {
			return err
		}
		for _, el := range v.Array {
			if err := w.WriteValue(el); err != nil {
				return err
			}
		}
		return nil
	default:
		return &ParseError{Message: "cannot encode unknown type " + v.Type.String()}
	}
}

func (w *Writer) writeBulk(b []byte) error {
	w.bw.WriteByte(byte(TypeBulkString))
	w.bw.WriteString(strconv.Itoa(len(b)))
	w.bw.WriteString(CRLF)
	w.bw.Write(b)
	_, err := w.bw.WriteString(CRLF)
	return err
}

// Flush pushes buffered bytes to the underlying writer.
func (w *Writer) Flush() error { return w.bw.Flush() }

// Reset discards buffered state and redirects output to a new writer.
func (w *Writer) Reset(out io.Writer) { w.bw.Reset(out) }
