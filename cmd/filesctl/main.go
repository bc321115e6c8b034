// filesctl is a command line client for the file access service. It logs in,
// creates records, uploads files, mints temporary access tokens and
// downloads single files or whole buckets.
//
// The server and session token come from --server/--token or the
// FILESCTL_SERVER and FILESCTL_TOKEN environment variables.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// globals are the flags accepted before the command name.
type globals struct {
	server string
	token  string
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var g globals

	flagSet := pflag.NewFlagSet("filesctl", pflag.ContinueOnError)
	flagSet.SetInterspersed(false)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&g.server, "server", envOr("FILESCTL_SERVER", "http://localhost:8080"), "base URL of the file access service")
	flagSet.StringVar(&g.token, "token", os.Getenv("FILESCTL_TOKEN"), "session token from 'filesctl login'")
	flagSet.Usage = func() { printUsage(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		printUsage(stderr, flagSet)
		return errors.New("missing command")
	}

	cmd, rest, err := lookup(rest)
	if err != nil {
		printUsage(stderr, flagSet)
		return err
	}

	cmdFlags := pflag.NewFlagSet(cmd.name, pflag.ContinueOnError)
	cmdFlags.SetOutput(stderr)
	if cmd.flags != nil {
		cmd.flags(cmdFlags)
	}
	if err := cmdFlags.Parse(rest); err != nil {
		return err
	}

	return cmd.run(ctx, &env{globals: g, stdout: stdout}, cmdFlags.Args())
}

func lookup(args []string) (*command, []string, error) {
	for i := range commands {
		c := &commands[i]
		n := len(c.path)
		if len(args) < n {
			continue
		}
		match := true
		for j, p := range c.path {
			if args[j] != p {
				match = false
				break
			}
		}
		if match {
			return c, args[n:], nil
		}
	}
	return nil, nil, fmt.Errorf("unknown command %q", args[0])
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, "Usage:\n  filesctl [global flags] <command> [flags] [args]\n\nCommands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-16s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(w, "\nGlobal flags:\n%s", flagSet.FlagUsages())
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
