package stats

// writer.go — the report writer.
//
// One fixed multi-line block per record, appended in sequence and flushed
// immediately, so every processed input is durably visible even if a later
// one fails. The field labels, including the historical "#Choco" solver
// labels, are kept verbatim so existing report consumers keep working.

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Writer appends statistics records to a report stream. It is the sole owner
// of the stream for the lifetime of a run.
type Writer struct {
	bw *bufio.Writer
	c  io.Closer // nil when wrapping a caller-owned stream
}

// NewWriter wraps a caller-owned stream. Close is a no-op in this mode.
func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriter(w)}
}

// Create opens (truncating) the report file at path.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create report %s: %w", path, err)
	}
	return &Writer{bw: bufio.NewWriter(f), c: f}, nil
}

// Append writes one record and flushes the stream.
func (w *Writer) Append(rec Record) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%d\n", rec.Index)
	fmt.Fprintf(&b, "Name: %s\n", rec.Name)
	fmt.Fprintf(&b, "Source: %s\n", rec.Source)
	fmt.Fprintf(&b, "#variables: %d\n", rec.Variables)
	fmt.Fprintf(&b, "#constraints: %d\n", rec.Constraints)
	fmt.Fprintf(&b, "#Choco variables: %d\n", rec.SolverVariables)
	fmt.Fprintf(&b, "#Choco constraints: %d\n", rec.SolverConstraints)
	fmt.Fprintf(&b, "Consistency: %t\n", rec.Consistent)

	if s := rec.FM; s != nil {
		b.WriteString("\n")
		if s.CTCDefined {
			fmt.Fprintf(&b, "CTC ratio: %v\n", s.CTCRatio)
		} else {
			b.WriteString("CTC ratio: undefined\n")
		}
		fmt.Fprintf(&b, "#features: %d\n", s.Features)
		fmt.Fprintf(&b, "#leaf features: %d\n", s.LeafFeatures)
		fmt.Fprintf(&b, "#relationships: %d\n", s.Relationships)
		fmt.Fprintf(&b, "#constraints: %d\n", s.Constraints)
		fmt.Fprintf(&b, "#MANDATORY: %d\n", s.Mandatory)
		fmt.Fprintf(&b, "#OPTIONAL: %d\n", s.Optional)
		fmt.Fprintf(&b, "#ALTERNATIVE: %d\n", s.Alternative)
		fmt.Fprintf(&b, "#OR: %d\n", s.Or)
		fmt.Fprintf(&b, "#REQUIRES: %d\n", s.Requires)
		fmt.Fprintf(&b, "#EXCLUDES: %d\n", s.Excludes)
	}

	if _, err := w.bw.WriteString(b.String()); err != nil {
		return fmt.Errorf("write report record %d: %w", rec.Index, err)
	}
	if err := w.bw.Flush(); err != nil {
		return fmt.Errorf("flush report record %d: %w", rec.Index, err)
	}
	return nil
}

// Close flushes buffered output and releases the stream when the writer owns
// it. Safe on every exit path.
func (w *Writer) Close() error {
	if err := w.bw.Flush(); err != nil {
		return err
	}
	if w.c != nil {
		return w.c.Close()
	}
	return nil
}
