// Package testserver runs a minimal in-memory stream server speaking the
// store's wire protocol. It exists so the client packages can test real
// round trips without an external server; it implements just enough of
// AUTH, PING and the stream-family verbs for that.
package testserver

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/redq-io/redq/resp"
)

// Server is an in-memory stream store listening on a local TCP port.
type Server struct {
	ln       net.Listener
	password string

	mu      sync.Mutex
	streams map[string]*stream

	commands atomic.Int64
}

type stream struct {
	entries []entry
	nextSeq int64
}

type entry struct {
	seq    int64
	fields []string // flat name, value, name, value, ...
}

func (e entry) id() string { return fmt.Sprintf("%d-0", e.seq) }

// Start launches a server on a random local port. An empty password
// disables authentication.
func Start(password string) (*Server, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}

	s := &Server{
		ln:       ln,
		password: password,
		streams:  make(map[string]*stream),
	}
	go s.acceptLoop()
	return s, nil
}

// Addr returns the listen address ("host:port").
func (s *Server) Addr() string { return s.ln.Addr().String() }

// Close stops the listener. Live connections die with it.
func (s *Server) Close() { s.ln.Close() }

// CommandCount reports how many commands the server has processed. Tests use
// it to prove that degenerate client calls never hit the network.
func (s *Server) CommandCount() int64 { return s.commands.Load() }

func (s *Server) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	reader := resp.NewReader(conn)
	writer := resp.NewWriter(conn)
	authed := s.password == ""

	for {
		value, err := reader.ReadValue()
		if err != nil {
			if err != io.EOF {
				writer.WriteValue(resp.ErrorValue("ERR protocol error: " + err.Error()))
				writer.Flush()
			}
			return
		}

		cmd, err := resp.ParseCommand(value)
		if err != nil {
			writer.WriteValue(resp.ErrorValue("ERR " + err.Error()))
			writer.Flush()
			return
		}

		s.commands.Add(1)

		var reply resp.Value
		if cmd.Name == "AUTH" {
			reply, authed = s.auth(cmd)
		} else if !authed {
			reply = resp.ErrorValue("NOAUTH Authentication required.")
		} else {
			reply = s.dispatch(cmd)
		}

		if err := writer.WriteValue(reply); err != nil {
			return
		}
		if err := writer.Flush(); err != nil {
			return
		}
	}
}

func (s *Server) auth(cmd *resp.Command) (resp.Value, bool) {
	if s.password == "" {
		return resp.ErrorValue("ERR Client sent AUTH, but no password is set"), true
	}
	if len(cmd.Args) != 1 || string(cmd.Args[0]) != s.password {
		return resp.ErrorValue("WRONGPASS invalid password"), false
	}
	return resp.SimpleStringValue("OK"), true
}

func (s *Server) dispatch(cmd *resp.Command) resp.Value {
	switch cmd.Name {
	case "PING":
		return resp.SimpleStringValue("PONG")
	case "XADD":
		return s.xadd(cmd)
	case "XLEN":
		return s.xlen(cmd)
	case "XDEL":
		return s.xdel(cmd)
	case "XTRIM":
		return s.xtrim(cmd)
	case "XRANGE":
		return s.xrange(cmd)
	case "XREAD":
		return s.xread(cmd)
	default:
		return resp.ErrorValue("ERR unknown command '" + cmd.Name + "'")
	}
}

func (s *Server) getStream(key string) *stream {
	st, ok := s.streams[key]
	if !ok {
		st = &stream{nextSeq: 1}
		s.streams[key] = st
	}
	return st
}

func (s *Server) xadd(cmd *resp.Command) resp.Value {
	// XADD key * field value [field value ...]
	if len(cmd.Args) < 4 || len(cmd.Args)%2 != 0 {
		return resp.ErrorValue("ERR wrong number of arguments for 'xadd' command")
	}
	if string(cmd.Args[1]) != "*" {
		return resp.ErrorValue("ERR only auto-generated ids are supported")
	}

	fields := make([]string, 0, len(cmd.Args)-2)
	for _, arg := range cmd.Args[2:] {
		fields = append(fields, string(arg))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.getStream(string(cmd.Args[0]))
	e := entry{seq: st.nextSeq, fields: fields}
	st.nextSeq++
	st.entries = append(st.entries, e)
	return resp.BulkStringValue([]byte(e.id()))
}

func (s *Server) xlen(cmd *resp.Command) resp.Value {
	if len(cmd.Args) != 1 {
		return resp.ErrorValue("ERR wrong number of arguments for 'xlen' command")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.streams[string(cmd.Args[0])]
	if !ok {
		return resp.IntegerValue(0)
	}
	return resp.IntegerValue(int64(len(st.entries)))
}

func (s *Server) xdel(cmd *resp.Command) resp.Value {
	if len(cmd.Args) < 2 {
		return resp.ErrorValue("ERR wrong number of arguments for 'xdel' command")
	}

	drop := make(map[string]bool, len(cmd.Args)-1)
	for _, id := range cmd.Args[1:] {
		drop[string(id)] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.streams[string(cmd.Args[0])]
	if !ok {
		return resp.IntegerValue(0)
	}

	var removed int64
	kept := st.entries[:0]
	for _, e := range st.entries {
		if drop[e.id()] {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	st.entries = kept
	return resp.IntegerValue(removed)
}

func (s *Server) xtrim(cmd *resp.Command) resp.Value {
	// XTRIM key MAXLEN n
	if len(cmd.Args) != 3 || !strings.EqualFold(string(cmd.Args[1]), "MAXLEN") {
		return resp.ErrorValue("ERR syntax error")
	}
	maxLen, err := strconv.ParseInt(string(cmd.Args[2]), 10, 64)
	if err != nil || maxLen < 0 {
		return resp.ErrorValue("ERR value is not an integer or out of range")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.streams[string(cmd.Args[0])]
	if !ok {
		return resp.IntegerValue(0)
	}

	excess := int64(len(st.entries)) - maxLen
	if excess <= 0 {
		return resp.IntegerValue(0)
	}
	st.entries = append([]entry(nil), st.entries[excess:]...)
	return resp.IntegerValue(excess)
}

func (s *Server) xrange(cmd *resp.Command) resp.Value {
	// XRANGE key start end [COUNT n]
	if len(cmd.Args) != 3 && len(cmd.Args) != 5 {
		return resp.ErrorValue("ERR wrong number of arguments for 'xrange' command")
	}
	count := int64(-1)
	if len(cmd.Args) == 5 {
		if !strings.EqualFold(string(cmd.Args[3]), "COUNT") {
			return resp.ErrorValue("ERR syntax error")
		}
		n, err := strconv.ParseInt(string(cmd.Args[4]), 10, 64)
		if err != nil {
			return resp.ErrorValue("ERR value is not an integer or out of range")
		}
		count = n
	}

	start, ok := parseRangeID(string(cmd.Args[1]))
	if !ok {
		return resp.ErrorValue("ERR Invalid stream ID specified as stream command argument")
	}
	end, ok := parseRangeID(string(cmd.Args[2]))
	if !ok {
		return resp.ErrorValue("ERR Invalid stream ID specified as stream command argument")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.streams[string(cmd.Args[0])]
	if !ok {
		return resp.ArrayValue()
	}

	elements := []resp.Value{}
	for _, e := range st.entries {
		if e.seq < start || e.seq > end {
			continue
		}
		elements = append(elements, encodeEntry(e))
		if count > 0 && int64(len(elements)) == count {
			break
		}
	}
	return resp.ArrayValue(elements...)
}

func (s *Server) xread(cmd *resp.Command) resp.Value {
	// XREAD [COUNT n] STREAMS key... id...
	args := cmd.Args
	count := int64(-1)
	if len(args) >= 2 && strings.EqualFold(string(args[0]), "COUNT") {
		n, err := strconv.ParseInt(string(args[1]), 10, 64)
		if err != nil {
			return resp.ErrorValue("ERR value is not an integer or out of range")
		}
		count = n
		args = args[2:]
	}
	if len(args) < 3 || !strings.EqualFold(string(args[0]), "STREAMS") {
		return resp.ErrorValue("ERR syntax error")
	}
	args = args[1:]
	if len(args)%2 != 0 {
		return resp.ErrorValue("ERR Unbalanced XREAD list of streams: for each stream key an ID or '$' must be specified.")
	}

	half := len(args) / 2

	s.mu.Lock()
	defer s.mu.Unlock()

	results := []resp.Value{}
	for i := 0; i < half; i++ {
		key := string(args[i])
		after, ok := parseRangeID(string(args[half+i]))
		if !ok {
			return resp.ErrorValue("ERR Invalid stream ID specified as stream command argument")
		}

		st, exists := s.streams[key]
		if !exists {
			continue
		}
		elements := []resp.Value{}
		for _, e := range st.entries {
			if e.seq <= after {
				continue
			}
			elements = append(elements, encodeEntry(e))
			if count > 0 && int64(len(elements)) == count {
				break
			}
		}
		if len(elements) == 0 {
			continue
		}
		results = append(results, resp.ArrayValue(
			resp.BulkStringValue([]byte(key)),
			resp.ArrayValue(elements...),
		))
	}

	if len(results) == 0 {
		return resp.NullArray()
	}
	return resp.ArrayValue(results...)
}

func encodeEntry(e entry) resp.Value {
	fields := make([]resp.Value, 0, len(e.fields))
	for _, f := range e.fields {
		fields = append(fields, resp.BulkStringValue([]byte(f)))
	}
	return resp.ArrayValue(
		resp.BulkStringValue([]byte(e.id())),
		resp.ArrayValue(fields...),
	)
}

const (
	minSeq = int64(0)
	maxSeq = int64(1<<63 - 1)
)

// parseRangeID resolves an id argument to its sequence number. "-" and "+"
// map to the extremes; "n" and "n-m" map to n (this server only ever issues
// sequence numbers in the milliseconds position).
func parseRangeID(id string) (int64, bool) {
	switch id {
	case "-":
		return minSeq, true
	case "+", "$":
		return maxSeq, true
	}
	if ms, _, found := strings.Cut(id, "-"); found {
		id = ms
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
