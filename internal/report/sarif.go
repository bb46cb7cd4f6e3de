package report

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/Wladim1r/pystyle/internal/model"
	"github.com/Wladim1r/pystyle/internal/rules"
)

const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
	toolName     = "pystyle"
)

// SARIF 2.1.0 subset.
type (
	sarifLog struct {
		Version string     `json:"version"`
		Schema  string     `json:"$schema"`
		Runs    []sarifRun `json:"runs"`
	}

	sarifRun struct {
		Tool    sarifTool     `json:"tool"`
		Results []sarifResult `json:"results"`
	}

	sarifTool struct {
		Driver sarifDriver `json:"driver"`
	}

	sarifDriver struct {
		Name    string      `json:"name"`
		Version string      `json:"version,omitempty"`
		Rules   []sarifRule `json:"rules"`
	}

	sarifRule struct {
		ID               string       `json:"id"`
		ShortDescription sarifMessage `json:"shortDescription"`
	}

	sarifResult struct {
		RuleID    string          `json:"ruleId"`
		RuleIndex *int            `json:"ruleIndex,omitempty"`
		Level     string          `json:"level"`
		Message   sarifMessage    `json:"message"`
		Locations []sarifLocation `json:"locations"`
	}

	sarifMessage struct {
		Text string `json:"text"`
	}

	sarifLocation struct {
		PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
	}

	sarifPhysicalLocation struct {
		ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
		Region           sarifRegion           `json:"region"`
	}

	sarifArtifactLocation struct {
		URI string `json:"uri"`
	}

	sarifRegion struct {
		StartLine int `json:"startLine"`
	}
)

type sarifReporter struct {
	w       io.Writer
	version string
	results []sarifResult
}

func (s *sarifReporter) Report(diags []model.Diagnostic) error {
	for _, d := range diags {
		uri := toURI(d.File)
		if uri == "" {
			uri = "UNKNOWN"
		}
		start := d.Line
		if start <= 0 {
			start = 1
		}
		s.results = append(s.results, sarifResult{
			RuleID:    string(d.Code),
			RuleIndex: ruleIndex(d.Code),
			Level:     "warning",
			Message:   sarifMessage{Text: strings.TrimSpace(d.Message)},
			Locations: []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: uri},
					Region:           sarifRegion{StartLine: start},
				},
			}},
		})
	}
	return nil
}

func (s *sarifReporter) Flush() error {
	codes := rules.Codes()
	ruleMeta := make([]sarifRule, 0, len(codes))
	for _, c := range codes {
		ruleMeta = append(ruleMeta, sarifRule{ID: string(c), ShortDescription: sarifMessage{Text: c.Message()}})
	}
	results := s.results
	if results == nil {
		results = []sarifResult{}
	}
	return writeJSON(s.w, sarifLog{
		Version: sarifVersion,
		Schema:  sarifSchema,
		Runs: []sarifRun{{
			Tool:    sarifTool{Driver: sarifDriver{Name: toolName, Version: s.version, Rules: ruleMeta}},
			Results: results,
		}},
	})
}

// ruleIndex is the position of c in the driver's rule list. Categories
// reported by custom analyzers have none.
func ruleIndex(c rules.Code) *int {
	if !c.Valid() {
		return nil
	}
	for i, known := range rules.Codes() {
		if known == c {
			return &i
		}
	}
	return nil
}

func toURI(p string) string {
	p = strings.TrimSpace(p)
	p = filepath.ToSlash(p)
	for strings.HasPrefix(p, "../") {
		p = strings.TrimPrefix(p, "../")
	}
	return strings.TrimPrefix(p, "./")
}
