// Package redq is a client for a stream-oriented key-value store's wire
// protocol. It covers the stream-family commands (add, length, delete, trim,
// range, read) over a single pipelined connection, driven by a fixed pool of
// event-loop goroutines owned or borrowed by a Driver.
//
// Typical use:
//
//	driver := redq.NewDriver(4)
//	defer driver.Terminate()
//
//	conn, err := driver.Connect(ctx, "localhost:6379", "")
//	if err != nil {
//		return err
//	}
//	defer conn.Close()
//
//	streams := redq.NewStreams(conn)
//	id, err := streams.Add(ctx, "events", map[string]string{"kind": "signup"})
//
// The wire value model and codec live in the resp subpackage.
package redq
