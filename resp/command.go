package resp

import (
	"strconv"
	"strings"
)

// Command is a protocol verb with its ordered arguments. Argument order is
// significant: the verb goes first on the wire, then each argument as a bulk
// string, in the order it was added.
//
// The Add* methods return the Command for chaining:
//
//	cmd := resp.NewCommand("XRANGE").AddString(key).AddString("-").AddString("+")
type Command struct {
	Name string
	Args [][]byte
}

// NewCommand creates a command for the given verb.
func NewCommand(name string) *Command {
	return &Command{Name: name}
}

func (c *Command) AddString(s string) *Command {
	c.Args = append(c.Args, []byte(s))
	return c
}

func (c *Command) AddBytes(b []byte) *Command {
	c.Args = append(c.Args, b)
	return c
}

func (c *Command) AddInt(n int64) *Command {
	c.Args = append(c.Args, strconv.AppendInt(nil, n, 10))
	return c
}

// AddPairs flattens a field map into alternating name, value arguments.
// Pairs stay intact; their relative order follows map iteration and is
// not guaranteed stable.
func (c *Command) AddPairs(fields map[string]string) *Command {
	for name, value := range fields {
		c.AddString(name).AddString(value)
	}
	return c
}

// Len is the number of wire elements: the verb plus the arguments.
func (c *Command) Len() int { return 1 + len(c.Args) }

// Value renders the command as the array-of-bulk-strings wire value.
func (c *Command) Value() Value {
	elements := make([]Value, 0, c.Len())
	elements = append(elements, BulkStringValue([]byte(c.Name)))
	for _, arg := range c.Args {
		elements = append(elements, BulkStringValue(arg))
	}
	return ArrayValue(elements...)
}

// String renders the command for debugging.
func (c *Command) String() string {
	var sb strings.Builder
	sb.WriteString(c.Name)
	for _, arg := range c.Args {
		sb.WriteByte(' ')
		sb.Write(arg)
	}
	return sb.String()
}

// ParseCommand interprets an array value as a command: the first element is
// the verb, the rest are arguments. All elements must be bulk strings.
// This is the server-side direction of the request framing.
func ParseCommand(v Value) (*Command, error) {
	if v.Type != TypeArray || v.IsNull || len(v.Array) == 0 {
		return nil, &ParseError{Message: "command must be a non-empty array"}
	}
	if v.Array[0].Type != TypeBulkString || v.Array[0].IsNull {
		return nil, &ParseError{Message: "command name must be a bulk string"}
	}

	cmd := &Command{
		Name: strings.ToUpper(string(v.Array[0].Data)),
		Args: make([][]byte, len(v.Array)-1),
	}
	for i := 1; i < len(v.Array); i++ {
		if v.Array[i].Type != TypeBulkString || v.Array[i].IsNull {
			return nil, &ParseError{Message: "command arguments must be bulk strings"}
		}
		cmd.Args[i-1] = v.Array[i].Data
	}
	return cmd, nil
}
