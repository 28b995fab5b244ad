package types

import "time"

// PrimaryOutcome is the result of the primary action
type PrimaryOutcome string

const (
	PrimarySucceeded    PrimaryOutcome = "succeeded"
	PrimaryFailed       PrimaryOutcome = "failed"
	PrimaryWouldSucceed PrimaryOutcome = "would-succeed"
)

// SecondaryOutcome is the result of the directory deletion step
type SecondaryOutcome string

const (
	SecondarySkipped       SecondaryOutcome = "skipped"
	SecondarySkippedHybrid SecondaryOutcome = "skipped-hybrid"
	SecondaryDeleted       SecondaryOutcome = "deleted"
	SecondaryWouldDelete   SecondaryOutcome = "would-delete"
	SecondaryNotFound      SecondaryOutcome = "not-found"
	SecondaryFailed        SecondaryOutcome = "failed"
	SecondaryNotAttempted  SecondaryOutcome = "not-attempted"
)

// ActionResult records one attempted entity. It is built once and never
// modified after it is appended to a run's results.
type ActionResult struct {
	RunID          string
	Timestamp      time.Time
	Action         ActionKind
	Primary        PrimaryOutcome
	Status         string
	PrimaryError   string
	Secondary      SecondaryOutcome
	SecondaryError string
	NewName        string
	Entity         Entity
}

// StatusLabel returns the audit status for an action and its outcome
func StatusLabel(action ActionKind, outcome PrimaryOutcome) string {
	spec := action.Spec()
	switch outcome {
	case PrimarySucceeded:
		return spec.Done
	case PrimaryWouldSucceed:
		return spec.DryRun
	default:
		return string(PrimaryFailed)
	}
}

// ResultHeader is the fixed leading columns of an audit row
var ResultHeader = []string{
	"RunId",
	"Timestamp",
	"Action",
	"Status",
	"Error",
	"SecondaryStatus",
	"SecondaryError",
	"NewName",
}

// Record flattens the result into an audit row
func (r ActionResult) Record() []string {
	row := []string{
		r.RunID,
		r.Timestamp.UTC().Format(time.RFC3339),
		r.Action.String(),
		r.Status,
		r.PrimaryError,
		string(r.Secondary),
		r.SecondaryError,
		r.NewName,
	}
	if r.Entity != nil {
		row = append(row, r.Entity.AuditRecord()...)
	}
	return row
}
