// Package replay reads and writes key event traces and runs them through a
// fresh interceptor.
//
// A trace is a text file with one event per line:
//
//	# comment
//	0    down LeftShift
//	10ms down Semicolon
//	30ms up   LeftShift
//	40ms up   Semicolon
//
// The first field is the offset from the start of the trace, either a Go
// duration or a bare integer number of milliseconds.
package replay

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/keylayer/internal/input/key"
)

// Trace errors.
var (
	ErrBadOffset     = errors.New("bad time offset")
	ErrBadDirection  = errors.New("direction must be down or up")
	ErrOutOfOrder    = errors.New("offset earlier than previous event")
	ErrMalformedLine = errors.New("malformed trace line")
)

// ParseError reports the line of a trace that failed to parse.
type ParseError struct {
	Line int
	Err  error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("trace line %d: %v", e.Line, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Step is one traced event.
type Step struct {
	// At is the offset from the start of the trace.
	At time.Duration

	Event key.Event
}

// String formats the step as a trace line.
func (s Step) String() string {
	dir := "up"
	if s.Event.Pressed {
		dir = "down"
	}
	return fmt.Sprintf("%v %s %s", s.At, dir, s.Event.Key)
}

// ParseFile reads a trace file.
func ParseFile(path string) ([]Step, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trace: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads a trace. Offsets must not decrease.
func Parse(r io.Reader) ([]Step, error) {
	var (
		steps []Step
		prev  time.Duration
	)

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = strings.TrimSpace(text[:i])
		}
		if text == "" {
			continue
		}

		step, err := parseLine(text)
		if err != nil {
			return nil, &ParseError{Line: line, Err: err}
		}
		if step.At < prev {
			return nil, &ParseError{Line: line, Err: fmt.Errorf("%w: %v < %v", ErrOutOfOrder, step.At, prev)}
		}
		prev = step.At
		steps = append(steps, step)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading trace: %w", err)
	}
	return steps, nil
}

func parseLine(text string) (Step, error) {
	fields := strings.Fields(text)
	if len(fields) != 3 {
		return Step{}, fmt.Errorf("%w: %q", ErrMalformedLine, text)
	}

	at, err := parseOffset(fields[0])
	if err != nil {
		return Step{}, err
	}

	var pressed bool
	switch strings.ToLower(fields[1]) {
	case "down":
		pressed = true
	case "up":
		pressed = false
	default:
		return Step{}, fmt.Errorf("%w: %q", ErrBadDirection, fields[1])
	}

	k, ok := key.FromName(fields[2])
	if !ok {
		return Step{}, fmt.Errorf("%w: %q", key.ErrUnknownKey, fields[2])
	}

	return Step{At: at, Event: key.Event{Key: k, Pressed: pressed}}, nil
}

func parseOffset(s string) (time.Duration, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("%w: %q", ErrBadOffset, s)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadOffset, s)
	}
	return d, nil
}

// Writer appends live events to a trace.
type Writer struct {
	w     io.Writer
	start time.Time
	err   error
}

// NewWriter creates a trace writer. Offsets are measured from the first
// written event.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write appends ev observed at now. After the first error every call is a
// no-op and Err reports it.
func (tw *Writer) Write(ev key.Event, now time.Time) {
	if tw.err != nil {
		return
	}
	if tw.start.IsZero() {
		tw.start = now
	}
	step := Step{At: now.Sub(tw.start), Event: ev}
	_, tw.err = fmt.Fprintln(tw.w, step)
}

// Err returns the first write error.
func (tw *Writer) Err() error {
	return tw.err
}
