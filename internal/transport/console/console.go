// Package console reads newline-delimited JSON events from a reader and
// writes one result line per event.
//
// Events are sharded across workers by user ID, so one user's events are
// handled in input order while different users proceed concurrently.
package console

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/roach88/presensi/internal/model"
	"github.com/roach88/presensi/internal/transport"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// DefaultWorkers is used when Options.Workers is not positive.
const DefaultWorkers = 4

const maxLineSize = 1 << 20

// Options configures a Dispatcher.
type Options struct {
	Workers int
	Format  string
	Logger  *slog.Logger
}

// Result is one output line in JSON format.
type Result struct {
	Line    int           `json:"line"`
	UserID  string        `json:"user_id,omitempty"`
	Outcome model.Outcome `json:"outcome"`
}

// Summary counts what a Run processed.
type Summary struct {
	Lines    int
	Outcomes map[model.OutcomeKind]int
}

// Dispatcher fans decoded events out to per-shard workers.
type Dispatcher struct {
	handler transport.Handler
	workers int
	format  string
	logger  *slog.Logger
}

// New creates a Dispatcher around h.
func New(h transport.Handler, opts Options) *Dispatcher {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	format := opts.Format
	if format == "" {
		format = FormatJSON
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher{handler: h, workers: workers, format: format, logger: logger}
}

type job struct {
	line int
	ev   model.Event
}

// Run consumes r until EOF or ctx is cancelled. Output lines are written to
// w as events complete; lines from different users may interleave.
//
// Malformed lines produce an ignored outcome with a reason and do not stop
// the run. The returned error is a read error or ctx.Err().
func (d *Dispatcher) Run(ctx context.Context, r io.Reader, w io.Writer) (Summary, error) {
	out := &resultWriter{w: w, format: d.format, summary: Summary{Outcomes: map[model.OutcomeKind]int{}}}

	queues := make([]chan job, d.workers)
	var wg sync.WaitGroup
	for i := range queues {
		queues[i] = make(chan job, 16)
		wg.Add(1)
		go func(q <-chan job) {
			defer wg.Done()
			for j := range q {
				res := d.handler.Handle(ctx, j.ev)
				out.write(Result{Line: j.line, UserID: j.ev.UserID, Outcome: res})
			}
		}(queues[i])
	}

	runErr := d.feed(ctx, r, queues, out)

	for _, q := range queues {
		close(q)
	}
	wg.Wait()

	d.logger.Debug("console run finished", "lines", out.summary.Lines, "outcomes", out.summary.Outcomes)
	if out.err != nil && runErr == nil {
		runErr = fmt.Errorf("write output: %w", out.err)
	}
	return out.summary, runErr
}

func (d *Dispatcher) feed(ctx context.Context, r io.Reader, queues []chan job, out *resultWriter) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}

		var ev model.Event
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			d.logger.Warn("malformed event", "line", line, "error", err)
			out.write(Result{Line: line, Outcome: ignored("malformed event: " + err.Error())})
			continue
		}
		if err := ev.Validate(); err != nil {
			d.logger.Warn("invalid event", "line", line, "error", err)
			out.write(Result{Line: line, UserID: ev.UserID, Outcome: ignored(err.Error())})
			continue
		}

		select {
		case queues[shard(ev.UserID, len(queues))] <- job{line: line, ev: ev}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read events: %w", err)
	}
	return ctx.Err()
}

func ignored(reason string) model.Outcome {
	return model.Outcome{Kind: model.OutcomeIgnored, Reason: reason}
}

func shard(userID string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(n))
}

// resultWriter serializes writes from all workers.
type resultWriter struct {
	mu      sync.Mutex
	w       io.Writer
	format  string
	summary Summary
	err     error
}

func (rw *resultWriter) write(res Result) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	rw.summary.Lines++
	rw.summary.Outcomes[res.Outcome.Kind]++
	if rw.err != nil {
		return
	}

	if rw.format == FormatText {
		_, rw.err = fmt.Fprintln(rw.w, formatText(res))
		return
	}

	data, err := json.Marshal(res)
	if err != nil {
		rw.err = err
		return
	}
	data = append(data, '\n')
	_, rw.err = rw.w.Write(data)
}

func formatText(res Result) string {
	msg := transport.RenderText(res.Outcome)
	if msg == "" {
		msg = "(ignored"
		if res.Outcome.Reason != "" {
			msg += ": " + res.Outcome.Reason
		}
		msg += ")"
	}
	msg = strings.ReplaceAll(msg, "\n", "\n    ")
	if res.UserID == "" {
		return fmt.Sprintf("line %d: %s", res.Line, msg)
	}
	return fmt.Sprintf("line %d [%s]: %s", res.Line, res.UserID, msg)
}
