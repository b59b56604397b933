// redq-cli is a small command line tool for poking at a stream store with
// the redq client. One connection per invocation, one command per run.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/redq-io/redq"
)

var (
	addr     string
	password string
	loops    int
	timeout  time.Duration
	count    int64

	driver  *redq.Driver
	conn    *redq.Connection
	streams *redq.Streams
	cancels []context.CancelFunc

	rootCmd = &cobra.Command{
		Use:               "redq-cli",
		Short:             "Command line client for a stream store",
		PersistentPreRunE: setup,
		PersistentPostRun: teardown,
		SilenceUsage:      true,
	}

	addCmd = &cobra.Command{
		Use:   "add [key] [field value]...",
		Short: "Append an entry to a stream",
		Args:  argPairsAfterKey,
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := make(map[string]string, (len(args)-1)/2)
			for i := 1; i+1 < len(args); i += 2 {
				fields[args[i]] = args[i+1]
			}
			id, err := streams.Add(cmdContext(), args[0], fields)
			if err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		},
	}

	lenCmd = &cobra.Command{
		Use:   "len [key]",
		Short: "Report the number of entries in a stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := streams.Len(cmdContext(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(n)
			return nil
		},
	}

	delCmd = &cobra.Command{
		Use:   "del [key] [id]...",
		Short: "Delete entries from a stream by id",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := streams.Delete(cmdContext(), args[0], args[1:]...)
			if err != nil {
				return err
			}
			fmt.Println(n)
			return nil
		},
	}

	trimCmd = &cobra.Command{
		Use:   "trim [key] [maxlen]",
		Short: "Trim a stream to at most maxlen entries",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			maxLen, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("maxlen must be a number: %w", err)
			}
			n, err := streams.Trim(cmdContext(), args[0], maxLen)
			if err != nil {
				return err
			}
			fmt.Println(n)
			return nil
		},
	}

	rangeCmd = &cobra.Command{
		Use:   "range [key] [start] [end]",
		Short: "List entries of a stream between two ids",
		Long:  "List entries of a stream between two ids inclusive. Use - and + for the stream extremes.",
		Args:  cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end := redq.MinID, redq.MaxID
			if len(args) > 1 {
				start = args[1]
			}
			if len(args) > 2 {
				end = args[2]
			}
			entries, err := streams.Range(cmdContext(), args[0], start, end, count)
			if err != nil {
				return err
			}
			printEntries(entries)
			return nil
		},
	}

	readCmd = &cobra.Command{
		Use:   "read [key id]...",
		Short: "Read entries newer than a last-seen id, per stream",
		Args:  argEvenPairs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lastIDs := make(map[string]string, len(args)/2)
			for i := 0; i+1 < len(args); i += 2 {
				lastIDs[args[i]] = args[i+1]
			}
			results, err := streams.Read(cmdContext(), lastIDs, count)
			if err != nil {
				return err
			}
			for _, res := range results {
				fmt.Printf("%s:\n", res.Stream)
				printEntries(res.Entries)
			}
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&addr, "addr", "localhost:6379", "server address (host:port)")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "password for AUTH, empty to skip")
	rootCmd.PersistentFlags().IntVar(&loops, "loops", 1, "event loop goroutines in the driver")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Second, "per-command timeout")

	rangeCmd.Flags().Int64Var(&count, "count", 0, "maximum entries to return, 0 for no limit")
	readCmd.Flags().Int64Var(&count, "count", 0, "maximum entries per stream, 0 for no limit")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(lenCmd)
	rootCmd.AddCommand(delCmd)
	rootCmd.AddCommand(trimCmd)
	rootCmd.AddCommand(rangeCmd)
	rootCmd.AddCommand(readCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	driver = redq.NewDriver(loops)

	var err error
	conn, err = driver.Connect(cmdContext(), addr, password)
	if err != nil {
		driver.Terminate()
		return err
	}
	streams = redq.NewStreams(conn)
	return nil
}

func teardown(cmd *cobra.Command, _ []string) {
	if conn != nil {
		conn.Close()
	}
	if driver != nil {
		driver.Terminate()
	}
	for _, cancel := range cancels {
		cancel()
	}
}

func cmdContext() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	cancels = append(cancels, cancel)
	return ctx
}

func printEntries(entries []redq.Entry) {
	for _, e := range entries {
		fmt.Printf("%s\n", e.ID)
		for _, f := range e.Fields {
			fmt.Printf("  %s = %s\n", f.Name, f.Value)
		}
	}
}

func argPairsAfterKey(cmd *cobra.Command, args []string) error {
	if len(args) < 3 || len(args)%2 == 0 {
		return fmt.Errorf("expected a key followed by field value pairs")
	}
	return nil
}

func argEvenPairs(cmd *cobra.Command, args []string) error {
	if len(args) < 2 || len(args)%2 != 0 {
		return fmt.Errorf("expected key id pairs")
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
