package redq

import (
	"context"

	"github.com/redq-io/redq/resp"
)

// Range and read sentinels.
const (
	// MinID is the lowest possible entry id, for the start of a range.
	MinID = "-"
	// MaxID is the highest possible entry id, for the end of a range.
	MaxID = "+"
	// InitialID reads a stream from its beginning.
	InitialID = "0"
)

// Executor executes one command round trip. Connection implements it;
// BreakerExecutor decorates it.
type Executor interface {
	Do(ctx context.Context, cmd *resp.Command) (resp.Value, error)
}

// Streams provides the stream-family command surface over any Executor.
//
// Degenerate inputs (an empty field map, zero ids, a negative trim
// threshold) short-circuit to their locally-known result without touching
// the network, so they can never emit a malformed frame. These local
// results are indistinguishable from a genuine zero-effect round trip.
type Streams struct {
	exec  Executor
	stats *streamStatsCollector
}

// NewStreams creates a Streams surface over exec.
func NewStreams(exec Executor) *Streams {
	return &Streams{
		exec:  exec,
		stats: newStreamStatsCollector(),
	}
}

// Add appends an entry with the given fields to the stream at key and
// returns the id the server issued. An empty field map yields an empty id
// with no round trip.
func (s *Streams) Add(ctx context.Context, key string, fields map[string]string) (string, error) {
	if len(fields) == 0 {
		s.stats.recordLocal()
		return "", nil
	}

	cmd := resp.NewCommand("XADD").AddString(key).AddString("*").AddPairs(fields)
	reply, err := s.exec.Do(ctx, cmd)
	if err != nil {
		s.stats.recordError()
		return "", err
	}

	id, err := reply.AsString()
	if err != nil {
		s.stats.recordError()
		return "", err
	}
	s.stats.recordAdd()
	return id, nil
}

// Len returns the number of entries in the stream at key.
func (s *Streams) Len(ctx context.Context, key string) (int64, error) {
	reply, err := s.exec.Do(ctx, resp.NewCommand("XLEN").AddString(key))
	if err != nil {
		s.stats.recordError()
		return 0, err
	}

	n, err := reply.AsInt()
	if err != nil {
		s.stats.recordError()
		return 0, err
	}
	s.stats.recordLen()
	return n, nil
}

// Delete removes the given entry ids from the stream at key and returns how
// many were actually removed. Zero ids yield 0 with no round trip.
func (s *Streams) Delete(ctx context.Context, key string, ids ...string) (int64, error) {
	if len(ids) == 0 {
		s.stats.recordLocal()
		return 0, nil
	}

	cmd := resp.NewCommand("XDEL").AddString(key)
	for _, id := range ids {
		cmd.AddString(id)
	}
	reply, err := s.exec.Do(ctx, cmd)
	if err != nil {
		s.stats.recordError()
		return 0, err
	}

	n, err := reply.AsInt()
	if err != nil {
		s.stats.recordError()
		return 0, err
	}
	s.stats.recordDelete()
	return n, nil
}

// Trim drops the oldest entries of the stream at key until at most maxLen
// remain, returning how many were removed. A negative threshold is a caller
// bug; it yields 0 with no round trip.
func (s *Streams) Trim(ctx context.Context, key string, maxLen int64) (int64, error) {
	if maxLen < 0 {
		s.stats.recordLocal()
		return 0, nil
	}

	cmd := resp.NewCommand("XTRIM").AddString(key).AddString("MAXLEN").AddInt(maxLen)
	reply, err := s.exec.Do(ctx, cmd)
	if err != nil {
		s.stats.recordError()
		return 0, err
	}

	n, err := reply.AsInt()
	if err != nil {
		s.stats.recordError()
		return 0, err
	}
	s.stats.recordTrim()
	return n, nil
}

// Range returns the entries of the stream at key with ids between start and
// end inclusive, in insertion order. Use MinID and MaxID to span the whole
// stream. A count of zero or less means no limit. The reply decodes
// leniently; see the decoder notes in entry.go.
func (s *Streams) Range(ctx context.Context, key, start, end string, count int64) ([]Entry, error) {
	cmd := resp.NewCommand("XRANGE").AddString(key).AddString(start).AddString(end)
	if count > 0 {
		cmd.AddString("COUNT").AddInt(count)
	}

	reply, err := s.exec.Do(ctx, cmd)
	if err != nil {
		s.stats.recordError()
		return nil, err
	}
	s.stats.recordRange()
	return decodeEntryList(reply), nil
}

// Read returns, for each stream in lastIDs, the entries newer than the given
// last-seen id. Use InitialID to read a stream from the start. A count of
// zero or less means no limit. An empty map yields no results with no round
// trip. The reply decodes leniently; see the decoder notes in entry.go.
func (s *Streams) Read(ctx context.Context, lastIDs map[string]string, count int64) ([]StreamResult, error) {
	if len(lastIDs) == 0 {
		s.stats.recordLocal()
		return []StreamResult{}, nil
	}

	cmd := resp.NewCommand("XREAD")
	if count > 0 {
		cmd.AddString("COUNT").AddInt(count)
	}
	cmd.AddString("STREAMS")

	// Keys first, then their ids in the same relative order. Map iteration
	// order is arbitrary, but each key stays paired with its id.
	keys := make([]string, 0, len(lastIDs))
	for key := range lastIDs {
		keys = append(keys, key)
	}
	for _, key := range keys {
		cmd.AddString(key)
	}
	for _, key := range keys {
		cmd.AddString(lastIDs[key])
	}

	reply, err := s.exec.Do(ctx, cmd)
	if err != nil {
		s.stats.recordError()
		return nil, err
	}
	s.stats.recordRead()
	return decodeStreamResults(reply), nil
}

// Stats returns a snapshot of the operation counters.
func (s *Streams) Stats() StreamStats {
	return s.stats.snapshot()
}
