// Package report renders diagnostics as text, JSON or SARIF.
//
// A Reporter receives the diagnostics of one file at a time. The text
// reporter writes them immediately; JSON and SARIF reporters collect them
// and write a single document on Flush.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/Wladim1r/pystyle/internal/model"
)

// Format names an output format.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatSARIF Format = "sarif"
)

// Formats lists the supported formats.
func Formats() []Format { return []Format{FormatText, FormatJSON, FormatSARIF} }

// ParseFormat validates s as a format name, ignoring case.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want text, json or sarif)", s)
}

// Reporter consumes diagnostics file by file.
type Reporter interface {
	Report(diags []model.Diagnostic) error
	Flush() error
}

// Options tune a Reporter.
type Options struct {
	Color       bool   // text only
	ToolVersion string // sarif only
}

// New returns a Reporter for format writing to w.
func New(format Format, w io.Writer, opts Options) (Reporter, error) {
	switch format {
	case FormatText, "":
		return NewText(w, opts.Color), nil
	case FormatJSON:
		return &jsonReporter{w: w, diags: []model.Diagnostic{}}, nil
	case FormatSARIF:
		return &sarifReporter{w: w, version: opts.ToolVersion}, nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// ---------------------------------------------------------------------------
// Text
// ---------------------------------------------------------------------------

// Text writes diagnostics in the canonical line format, optionally with
// the path and rule code highlighted.
type Text struct {
	w    io.Writer
	path *color.Color
	code *color.Color
}

// NewText returns a text reporter. Colors are forced on or off regardless
// of the terminal, so callers decide.
func NewText(w io.Writer, colorize bool) *Text {
	t := &Text{
		w:    w,
		path: color.New(color.Bold),
		code: color.New(color.FgYellow, color.Bold),
	}
	for _, c := range []*color.Color{t.path, t.code} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return t
}

func (t *Text) Report(diags []model.Diagnostic) error {
	for _, d := range diags {
		_, err := fmt.Fprintf(t.w, "%s: Line %d: %s %s\n",
			t.path.Sprint(d.File), d.Line, t.code.Sprint(string(d.Code)), d.Message)
		if err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}
	return nil
}

func (t *Text) Flush() error { return nil }

// ---------------------------------------------------------------------------
// JSON
// ---------------------------------------------------------------------------

type jsonReporter struct {
	w     io.Writer
	diags []model.Diagnostic
}

func (j *jsonReporter) Report(diags []model.Diagnostic) error {
	j.diags = append(j.diags, diags...)
	return nil
}

func (j *jsonReporter) Flush() error {
	return writeJSON(j.w, j.diags)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
