// pkg/model/result.go
package model

import "time"

// CheckKind identifies one category of quality check
type CheckKind string

const (
	CheckDuplicates CheckKind = "duplicates"
	CheckIncomplete CheckKind = "incomplete"
	CheckTypes      CheckKind = "types"
)

// CleaningResult is the outcome of one cleaning pass. It is a plain
// serializable value with no references to storage; immutable once
// returned and owned by the caller.
type CleaningResult struct {
	PassID          string        `json:"pass_id"`
	Check           CheckKind     `json:"check"`
	Remediated      bool          `json:"remediated"`
	TotalRecords    int           `json:"total_records"`
	CleanedRecords  int           `json:"cleaned_records"`
	Errors          int           `json:"errors"`
	Warnings        int           `json:"warnings"`
	CleaningSummary []string      `json:"cleaning_summary"`
	StartedAt       time.Time     `json:"started_at"`
	Duration        time.Duration `json:"duration_ns"`
}

// QualityReport merges the dry-run results of all check kinds into a
// single report consumable by dashboards and BI tooling.
type QualityReport struct {
	TotalRecords    int       `json:"total_records"`
	Errors          int       `json:"errors"`
	Warnings        int       `json:"warnings"`
	CleaningSummary []string  `json:"cleaning_summary"`
	Passed          bool      `json:"passed"`
	GeneratedAt     time.Time `json:"generated_at"`
}
