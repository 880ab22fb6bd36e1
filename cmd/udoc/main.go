// Command udoc diagnoses an HTTP(S) URL by following its redirects and
// timing each phase of each hop.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/pborman/getopt/v2"
	"github.com/udoc-dev/udoc/internal/config"
	"github.com/udoc-dev/udoc/internal/errorsx"
	"github.com/udoc-dev/udoc/internal/logx"
	"github.com/udoc-dev/udoc/internal/version"
)

func main() {
	os.Exit(Main(os.Args, os.Getenv, os.Stdout, os.Stderr))
}

// Options contains the command line options.
type Options struct {
	JSON    bool
	Verbose bool
	Help    bool
	Version bool
	URL     string
}

const environmentHelp = `
Environment:
  UDOC_TIMEOUT      per-step timeout, e.g. 1500ms, 3s or 3 (default 5s)
  UDOC_MAX_REDIRS   maximum number of redirects to follow (default 10)
  UDOC_BODY_LIMIT   maximum number of body bytes to read (default 32768)
  UDOC_REPEAT       number of runs, reports min/median/p90/max (default 1)
  UDOC_RESOLVER     system, dns (use /etc/resolv.conf) or udp://host:port (default system)
  UDOC_LOG_LEVEL    debug, info, warn or error (default warn)
  NO_COLOR          disable colors when set
`

// newGetoptParser creates the parser for opts.
func newGetoptParser(opts *Options) *getopt.Set {
	set := getopt.New()
	set.SetProgram("udoc")
	set.SetParameters("<URL>")
	set.FlagLong(&opts.JSON, "json", 'j', "emit the report as JSON")
	set.FlagLong(&opts.Verbose, "verbose", 'v', "log each network operation")
	set.FlagLong(&opts.Help, "help", 'h', "print this help and exit")
	set.FlagLong(&opts.Version, "version", 0, "print the version and exit")
	return set
}

// makeHelp returns the usage text.
func makeHelp(set *getopt.Set) string {
	var sb strings.Builder
	set.PrintUsage(&sb)
	sb.WriteString(environmentHelp)
	return sb.String()
}

// parseArgs parses args, where args[0] is the program name. Options may
// appear before or after the URL.
func parseArgs(args []string) (*Options, *getopt.Set, error) {
	opts := &Options{}
	set := newGetoptParser(opts)
	var positional []string
	for {
		if err := set.Getopt(args, nil); err != nil {
			return nil, set, err
		}
		rest := set.Args()
		if len(rest) == 0 {
			break
		}
		if set.State() == getopt.DashDash {
			positional = append(positional, rest...)
			break
		}
		positional = append(positional, rest[0])
		// Getopt skips the first element, which is the URL we just consumed
		args = rest
	}
	if len(positional) > 1 {
		return nil, set, fmt.Errorf("unexpected argument: %s", positional[1])
	}
	if len(positional) == 1 {
		opts.URL = positional[0]
	}
	return opts, set, nil
}

// Main runs udoc and returns the process exit code.
func Main(args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	opts, set, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		fmt.Fprint(stderr, makeHelp(set))
		return errorsx.ClassInput.ExitCode()
	}
	if opts.Version {
		fmt.Fprintf(stdout, "udoc %s\n", version.Version)
		return 0
	}
	if opts.Help || opts.URL == "" {
		fmt.Fprint(stderr, makeHelp(set))
		return errorsx.ClassInput.ExitCode()
	}

	cfg, err := config.FromEnv(getenv)
	if err != nil {
		err = errorsx.Wrap(errorsx.ClassInput, errorsx.ParseOperation, err, "%s", err.Error())
		fmt.Fprintln(stderr, errorsx.Format(err))
		return errorsx.ExitCode(err)
	}
	cfg = cfg.WithJSON(opts.JSON).WithVerbose(opts.Verbose)
	logger := logx.NewLogger(stderr, cfg.LogLevel, useColor(stderr, cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner, err := newRunner(cfg, logger, stdout, stderr)
	if err != nil {
		fmt.Fprintln(stderr, errorsx.Format(err))
		return errorsx.ExitCode(err)
	}
	if err := runner.Run(ctx, opts.URL); err != nil {
		fmt.Fprintln(stderr, errorsx.Format(err))
		return errorsx.ExitCode(err)
	}
	return 0
}
