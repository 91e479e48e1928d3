package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/quotes/internal/crawler"
	"github.com/go-scripts/quotes/internal/pipeline"
	"github.com/go-scripts/quotes/internal/progress"
	"github.com/go-scripts/quotes/internal/queue"
	"github.com/go-scripts/quotes/internal/stream"
	"github.com/go-scripts/quotes/internal/types"
	"github.com/go-scripts/quotes/internal/writer"
	"github.com/go-scripts/quotes/ui"
)

type ScrapeCmd struct {
	Topics   []string `arg:"" name:"topic" help:"Topics to scrape, one after another."`
	Out      string   `short:"o" help:"Write quotes as JSON Lines to FILE instead of stdout." type:"path" placeholder:"FILE"`
	MaxPages int      `help:"Stop after N pages (overrides scraper.max_pages)." placeholder:"N"`
	NDJSON   bool     `name:"ndjson" help:"Write the raw event stream to stdout."`
}

// scrapeRun holds the collaborators of one scrape command.
type scrapeRun struct {
	launcher crawler.Launcher
	opts     crawler.Options
	proc     *pipeline.Processor
	out      *writer.FileWriter
	ndjson   bool
	stdout   io.Writer
	stderr   io.Writer
}

var errScrapeFailed = errors.New("scrape failed")

func (c *ScrapeCmd) Run(a *app) error {
	q := queue.New(c.Topics...)
	if q.Len() == 0 {
		return errors.New("no topic given")
	}

	opts := a.cfg.CrawlerOptions()
	if c.MaxPages > 0 {
		opts.MaxPages = c.MaxPages
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}
	proc, err := a.processor(st)
	if err != nil {
		return err
	}

	run := &scrapeRun{
		launcher: a.launcher(),
		opts:     opts,
		proc:     proc,
		ndjson:   c.NDJSON,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
	if c.Out != "" {
		if run.out, err = writer.New(c.Out); err != nil {
			return err
		}
	}

	failed := run.all(ctx, q)

	if run.out != nil {
		if err := run.out.Close(); err != nil {
			return err
		}
		log.Info("quotes written", "file", c.Out, "count", run.out.Written())
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d topics failed", failed, q.Taken())
	}
	return nil
}

// all scrapes every queued topic and returns how many failed.
func (r *scrapeRun) all(ctx context.Context, q *queue.Queue) int {
	failed := 0
	for topic, ok := q.Next(); ok; topic, ok = q.Next() {
		if ctx.Err() != nil {
			failed++
			continue
		}
		if err := r.one(ctx, topic); err != nil {
			failed++
		}
	}
	return failed
}

func (r *scrapeRun) one(ctx context.Context, topic string) error {
	scraper, err := crawler.New(r.launcher, r.opts)
	if err != nil {
		return err
	}
	events := scraper.Scrape(ctx, topic)
	if r.proc != nil {
		events = r.proc.Apply(ctx, topic, events)
	}

	if r.ndjson {
		return r.stream(topic, events)
	}

	tracker := progress.New(r.stderr)
	tracker.Start(topic)

	var quotes []types.Quote
	for e := range events {
		tracker.Observe(e)
		q, ok := e.(types.QuoteExtracted)
		if !ok {
			continue
		}
		if r.out == nil {
			quotes = append(quotes, q.Quote)
			continue
		}
		if err := r.out.Write(q.Quote.Record(topic)); err != nil {
			log.Error("failed to write quote", "topic", topic, "err", err)
		}
	}
	summary := tracker.Finish()

	for _, q := range quotes {
		fmt.Fprintln(r.stdout, ui.Quote(q))
	}
	fmt.Fprintln(r.stderr, ui.Summary(topic, summary))

	if summary.Err != "" {
		return errScrapeFailed
	}
	return nil
}

// stream copies events to stdout as NDJSON. Quotes are also exported when an
// output file is set.
func (r *scrapeRun) stream(topic string, events iter.Seq[types.Event]) error {
	enc := stream.NewEncoder(r.stdout, topic)
	var result error
	for e := range events {
		if err := enc.Encode(e); err != nil {
			return err
		}
		switch e := e.(type) {
		case types.QuoteExtracted:
			if r.out != nil {
				if err := r.out.Write(e.Quote.Record(topic)); err != nil {
					log.Error("failed to write quote", "topic", topic, "err", err)
				}
			}
		case types.ScrapeError:
			result = errScrapeFailed
		}
	}
	return result
}
