package check

import (
	"time"

	"cgp-hq/seqval/pkg/manifest/finding"
)

// Report is the outcome of checking one manifest.
type Report struct {
	Source    string            `json:"source"`
	SessionID string            `json:"session_id,omitempty"`
	Schema    string            `json:"schema,omitempty"`
	Records   int               `json:"records"`
	Findings  []finding.Finding `json:"findings"`
	Duration  time.Duration     `json:"-"`

	// Err is set by CheckFiles when the manifest could not be validated.
	Err error `json:"-"`
	// Error and Reason mirror Err for serialised reports.
	Error  string `json:"error,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// OK reports whether the manifest was validated and produced no findings.
func (r *Report) OK() bool {
	return r.Err == nil && len(r.Findings) == 0
}

// Result returns the findings as a validation result.
func (r *Report) Result() *finding.Result {
	return &finding.Result{
		SessionID: r.SessionID,
		Schema:    r.Schema,
		Findings:  r.Findings,
	}
}

func failedReport(source string, err error) *Report {
	return &Report{
		Source:   source,
		Findings: []finding.Finding{},
		Err:      err,
		Error:    err.Error(),
		Reason:   Reason(err),
	}
}

// Summary aggregates a batch of reports.
type Summary struct {
	Manifests int `json:"manifests"`
	Passed    int `json:"passed"`
	Failed    int `json:"failed"`
	Rejected  int `json:"rejected"`
	Findings  int `json:"findings"`
}

// Summarize counts passed, failed and rejected manifests.
func Summarize(reports []*Report) Summary {
	s := Summary{Manifests: len(reports)}
	for _, r := range reports {
		switch {
		case r.Err != nil:
			s.Rejected++
		case len(r.Findings) > 0:
			s.Failed++
			s.Findings += len(r.Findings)
		default:
			s.Passed++
		}
	}
	return s
}

// OK reports whether every manifest passed.
func (s Summary) OK() bool {
	return s.Failed == 0 && s.Rejected == 0
}
