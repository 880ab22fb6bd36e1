package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/udoc-dev/udoc/internal/config"
	"github.com/udoc-dev/udoc/internal/errorsx"
	"github.com/udoc-dev/udoc/internal/httpwire"
	"github.com/udoc-dev/udoc/internal/model"
	"github.com/udoc-dev/udoc/internal/netxlite"
	"github.com/udoc-dev/udoc/internal/pipeline"
	"github.com/udoc-dev/udoc/internal/render"
	"github.com/udoc-dev/udoc/internal/stats"
)

// useColor returns whether we should emit ANSI colors on w.
func useColor(w io.Writer, cfg config.Config) bool {
	if cfg.NoColor {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// newResolver creates the resolver selected by cfg.
func newResolver(cfg config.Config, logger model.Logger) (model.Resolver, error) {
	switch cfg.Resolver.Kind {
	case config.ResolverUDP:
		return netxlite.NewResolverUDP(logger, cfg.Resolver.Endpoint), nil
	case config.ResolverResolvConf:
		reso, err := netxlite.NewResolverFromResolvConf(logger, config.DefaultResolvConf)
		if err != nil {
			return nil, errorsx.Wrap(errorsx.ClassDNS, errorsx.ResolveOperation, err,
				"cannot configure resolver: %s", err.Error())
		}
		return reso, nil
	default:
		return netxlite.NewResolverSystem(logger), nil
	}
}

// runner runs the pipeline one or more times and prints the result.
type runner struct {
	config   config.Config
	logger   model.Logger
	pipeline *pipeline.Pipeline
	renderer render.Renderer
	stdout   io.Writer
	stderr   io.Writer
}

// newRunner wires the production capabilities.
func newRunner(cfg config.Config, logger model.Logger, stdout, stderr io.Writer) (*runner, error) {
	reso, err := newResolver(cfg, logger)
	if err != nil {
		return nil, err
	}
	p := &pipeline.Pipeline{
		Config: pipeline.Config{
			Timeout:      cfg.Timeout,
			MaxRedirects: cfg.MaxRedirects,
			BodyLimit:    cfg.BodyLimit,
		},
		Resolver:      reso,
		TCPDialer:     netxlite.NewTCPDialer(logger),
		TLSHandshaker: netxlite.NewTLSHandshaker(logger),
		HTTPClient:    httpwire.NewClient(logger),
		Clock:         netxlite.Clock{},
		Logger:        logger,
	}
	r := &runner{
		config:   cfg,
		logger:   logger,
		pipeline: p,
		renderer: render.New(cfg.JSON, useColor(stdout, cfg)),
		stdout:   stdout,
		stderr:   stderr,
	}
	return r, nil
}

// Run probes input cfg.Repeat times. The first failure aborts the loop
// and is returned. On success we render the last report.
func (r *runner) Run(ctx context.Context, input string) error {
	repeat := max(r.config.Repeat, 1)
	var (
		last   *model.Report
		totals []time.Duration
	)
	for run := 0; run < repeat; run++ {
		if repeat > 1 {
			r.logger.Infof("run %d of %d", run+1, repeat)
		}
		report, err := r.pipeline.Run(ctx, input)
		if err != nil {
			return err
		}
		last = report
		totals = append(totals, report.Timings.Total)
	}
	fmt.Fprint(r.stdout, r.renderer.Render(last))
	if repeat < 2 {
		return nil
	}
	summary, err := stats.Summarize(totals)
	if err != nil {
		return errorsx.Wrap(errorsx.ClassOther, errorsx.TopLevelOperation, err, "%s", err.Error())
	}
	if r.config.JSON {
		// stdout only contains the report
		fmt.Fprintln(r.stderr, summary.String())
		return nil
	}
	fmt.Fprint(r.stdout, summary.Pretty())
	return nil
}
