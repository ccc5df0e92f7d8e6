// Package report aggregates per-document outcomes into the run report and
// persists it as the run's sole artifact.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/deeklead/wfmend/internal/document"
)

// Summary holds the aggregate counts of a run.
type Summary struct {
	Written          int `json:"written"`
	Clean            int `json:"clean"`
	Unrepairable     int `json:"unrepairable"`
	WriteFailed      int `json:"writeFailed"`
	IOErrors         int `json:"ioErrors"`
	Withheld         int `json:"withheld"`
	RepairsApplied   int `json:"repairsApplied"`
	UnresolvedIssues int `json:"unresolvedIssues"`
}

// RunReport is the aggregated outcome of processing a batch of documents.
// Results appear in completion order, not discovery order.
type RunReport struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Results   []document.Result `json:"results"`
	Summary   Summary           `json:"summary"`
}

// New returns an empty report stamped with a fresh run ID.
func New() *RunReport {
	return &RunReport{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
	}
}

// Add appends one document result. Callers synchronize concurrent appends.
func (r *RunReport) Add(res document.Result) {
	r.Results = append(r.Results, res)
}

// Finalize computes the summary counts from the accumulated results.
func (r *RunReport) Finalize() {
	s := Summary{}
	for _, res := range r.Results {
		switch res.Outcome {
		case document.OutcomeWritten:
			s.Written++
		case document.OutcomeClean:
			s.Clean++
		case document.OutcomeUnrepairable:
			s.Unrepairable++
		case document.OutcomeWriteFailed:
			s.WriteFailed++
		case document.OutcomeIOError:
			s.IOErrors++
		case document.OutcomeWithheld:
			s.Withheld++
		}
		s.RepairsApplied += len(res.Repairs)
		s.UnresolvedIssues += len(res.Unresolved)
	}
	r.Summary = s
}

// Failed reports whether any document ended in a failure outcome, which is
// what the process exit flag reflects.
func (r *RunReport) Failed() bool {
	return r.Summary.Unrepairable > 0 || r.Summary.WriteFailed > 0 || r.Summary.IOErrors > 0
}

// SinkPayload is the contract handed to the report sink collaborator, which
// owns all delivery (email, chat, dashboard). This engine never delivers.
type SinkPayload struct {
	Status  string     `json:"status"` // "success" or "warning"
	Title   string     `json:"title"`
	Message string     `json:"message"`
	Details *RunReport `json:"details"`
}

// Payload builds the sink payload for this report.
func (r *RunReport) Payload() SinkPayload {
	status := "success"
	if r.Failed() {
		status = "warning"
	}
	return SinkPayload{
		Status: status,
		Title:  "Workflow definition repair run",
		Message: fmt.Sprintf("%d written, %d clean, %d unrepairable, %d write-failed, %d unreadable, %d withheld",
			r.Summary.Written, r.Summary.Clean, r.Summary.Unrepairable,
			r.Summary.WriteFailed, r.Summary.IOErrors, r.Summary.Withheld),
		Details: r,
	}
}

// WriteArtifact serializes the report to path under a file lock, so two
// concurrent runs cannot interleave writes to the fixed-path artifact.
// Failure here is the only fatal, run-aborting condition.
func WriteArtifact(path string, r *RunReport) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking report artifact: %w", err)
	}
	defer lock.Unlock() //nolint:errcheck

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("writing report artifact: %w", err)
	}
	return nil
}
