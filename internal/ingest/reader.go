package ingest

import (
	"bufio"
	"context"
	"io"
	"time"

	"github.com/fluxmap/fluxmap/internal/errors"
	"github.com/fluxmap/fluxmap/internal/logging"
)

// maxLineSize bounds a single telemetry line. Lines beyond this are
// almost certainly not event telemetry.
const maxLineSize = 1 << 20 // 1MB

// gatePollInterval is how often a blocked reader re-checks the admission gate.
const gatePollInterval = 20 * time.Millisecond

// Handler receives each decoded message in stream order.
type Handler func(Message)

// Gate admits messages into the simulation. The controller implements it;
// a nil gate admits everything.
type Gate interface {
	CanProceed() bool
}

// StepReporter is implemented by gates that hand out single-step grants
// and need to hear back once the admitted work has finished. The reader
// reports after every delivered message; gates without step semantics
// just ignore the call.
type StepReporter interface {
	StepComplete()
}

// Reader decodes an NDJSON telemetry stream and delivers messages through
// the filter and admission gate.
type Reader struct {
	filter  *Filter
	gate    Gate
	strict  bool
	onError func(line []byte, err error)
	logger  *logging.Logger

	lines   int
	dropped int
	skipped int
}

// ReaderOptions configures a Reader. Zero values are usable: no filter,
// no gate, lenient decoding, no logging.
type ReaderOptions struct {
	// Filter drops events by type before they reach the handler.
	Filter *Filter
	// Gate is polled before each message is delivered.
	Gate Gate
	// Strict stops on the first malformed line instead of skipping it.
	Strict bool
	// OnError observes each malformed line in lenient mode.
	OnError func(line []byte, err error)
	// Logger receives skip diagnostics. Nil disables logging.
	Logger *logging.Logger
}

// NewReader creates a Reader.
func NewReader(opts ReaderOptions) *Reader {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Reader{
		filter:  opts.Filter,
		gate:    opts.Gate,
		strict:  opts.Strict,
		onError: opts.OnError,
		logger:  logger.WithComponent("ingest"),
	}
}

// Drain reads src to EOF, delivering each decoded message to fn.
// Blank lines are skipped. Malformed lines are skipped unless Strict is
// set. Returns the first scanner or strict-mode decode error, or the
// context error if canceled mid-stream.
func (r *Reader) Drain(ctx context.Context, src io.Reader, fn Handler) error {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if isBlank(line) {
			continue
		}

		if err := r.HandleLine(ctx, line, fn); err != nil {
			return err
		}
	}

	return scanner.Err()
}

// HandleLine decodes one line and delivers it to fn, applying the filter
// and blocking on the admission gate. Used by Drain and by the Tailer.
func (r *Reader) HandleLine(ctx context.Context, line []byte, fn Handler) error {
	r.lines++
	msg, err := DecodeLine(line)
	if err != nil {
		if r.strict {
			var ie *errors.IngestError
			if errors.As(err, &ie) {
				return ie.WithLine(r.lines)
			}
			return err
		}
		r.skipped++
		r.logger.Warn("skipping malformed line", "line", r.lines, "error", err.Error())
		if r.onError != nil {
			r.onError(line, err)
		}
		return nil
	}

	if msg.Event != nil && r.filter.Drop(msg.Event.Type) {
		r.dropped++
		r.logger.Debug("event dropped by filter", "type", msg.Event.Type)
		return nil
	}

	if err := r.waitForGate(ctx); err != nil {
		return err
	}

	fn(msg)
	if sr, ok := r.gate.(StepReporter); ok {
		sr.StepComplete()
	}
	return nil
}

// waitForGate blocks until the gate admits the next message or the
// context is canceled.
func (r *Reader) waitForGate(ctx context.Context) error {
	if r.gate == nil {
		return nil
	}

	for !r.gate.CanProceed() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(gatePollInterval):
		}
	}
	return nil
}

// Lines returns the number of non-blank lines seen so far.
func (r *Reader) Lines() int { return r.lines }

// Skipped returns the number of malformed lines skipped.
func (r *Reader) Skipped() int { return r.skipped }

// Dropped returns the number of events dropped by the filter.
func (r *Reader) Dropped() int { return r.dropped }

func isBlank(line []byte) bool {
	for _, b := range line {
		if b != ' ' && b != '\t' && b != '\r' {
			return false
		}
	}
	return true
}
