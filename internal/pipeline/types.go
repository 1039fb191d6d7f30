// Package pipeline runs the page-by-page translation of a document.
package pipeline

import (
	"strings"
	"time"

	"github.com/Finnson11-star/pdf-translator/internal/types"
)

// PageStatus is the outcome of one page.
type PageStatus string

const (
	StatusTranslated   PageStatus = "translated"
	StatusSkippedEmpty PageStatus = "skipped_empty"
	StatusFailed       PageStatus = "failed"
)

// TerminationReason says why a run stopped.
type TerminationReason string

const (
	Completed       TerminationReason = "completed"
	AbortedOnError  TerminationReason = "aborted_on_error"
	AbortedByCaller TerminationReason = "aborted_by_caller"
)

// Policy decides what happens after a page fails to translate.
type Policy string

const (
	// PolicyContinue records the failure and moves on to the next page
	PolicyContinue Policy = "continue"
	// PolicyAbort records the failure and stops the run
	PolicyAbort Policy = "abort"
)

// ParsePolicy converts a policy name into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyContinue:
		return PolicyContinue, nil
	case PolicyAbort:
		return PolicyAbort, nil
	default:
		return "", types.NewAppErrorWithDetails(types.ErrInvalidInput, "unknown failure policy", s, nil)
	}
}

// PageResult 单页结果
type PageResult struct {
	Index          int        `json:"index"`
	Status         PageStatus `json:"status"`
	TranslatedText string     `json:"translated_text,omitempty"`
	// ErrorDetail explains a Failed page; on a skipped page it holds the extraction error, if any
	ErrorDetail string `json:"error_detail,omitempty"`
}

// PageNumber returns the 1-based page number.
func (r PageResult) PageNumber() int { return r.Index + 1 }

// Result is the outcome of one pipeline run.
type Result struct {
	Pages          []PageResult      `json:"pages"`
	AggregateText  string            `json:"aggregate_text"`
	Termination    TerminationReason `json:"termination"`
	TargetLanguage string            `json:"target_language"`
	TotalPages     int               `json:"total_pages"`
	StartedAt      time.Time         `json:"started_at"`
	FinishedAt     time.Time         `json:"finished_at"`
}

// Clone returns a deep copy.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Pages = append([]PageResult(nil), r.Pages...)
	return &cp
}

// Counts returns how many pages ended in each status.
func (r *Result) Counts() (translated, skipped, failed int) {
	if r == nil {
		return 0, 0, 0
	}
	for _, p := range r.Pages {
		switch p.Status {
		case StatusTranslated:
			translated++
		case StatusSkippedEmpty:
			skipped++
		case StatusFailed:
			failed++
		}
	}
	return translated, skipped, failed
}

// FirstFailure returns the first failed page, if any.
func (r *Result) FirstFailure() (PageResult, bool) {
	if r != nil {
		for _, p := range r.Pages {
			if p.Status == StatusFailed {
				return p, true
			}
		}
	}
	return PageResult{}, false
}

// Progress 进度快照
type Progress struct {
	Phase      types.ProcessPhase `json:"phase"`
	Processed  int                `json:"processed"`
	Total      int                `json:"total"`
	Fraction   float64            `json:"fraction"`
	Message    string             `json:"message"`
	Translated int                `json:"translated"`
	Skipped    int                `json:"skipped"`
	Failed     int                `json:"failed"`
}
