// Package model holds the diagnostic type shared by the driver and the
// report renderers.
package model

import (
	"fmt"

	"github.com/Wladim1r/pystyle/internal/rules"
)

// Diagnostic is one style finding. Diagnostics have no identity beyond
// their fields and are ordered only by emission.
type Diagnostic struct {
	File    string     `json:"file"`
	Line    int        `json:"line"`
	Code    rules.Code `json:"code"`
	Message string     `json:"message"`
}

// String renders d in the canonical text format:
//
//	<path>: Line <n>: <code> <message>
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: Line %d: %s %s", d.File, d.Line, d.Code, d.Message)
}
