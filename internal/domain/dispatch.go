package domain

import "time"

// DispatchOp enumerates the gateway operations worth auditing.
type DispatchOp string

const (
	DispatchOpGenerate DispatchOp = "generate"
	DispatchOpAnalyze  DispatchOp = "analyze"
)

// DispatchStatus is the terminal outcome of one dispatch.
type DispatchStatus string

const (
	DispatchStatusSucceeded DispatchStatus = "succeeded"
	DispatchStatusFailed    DispatchStatus = "failed"
)

// DispatchRecord is one audited gateway dispatch. Records are written
// best-effort after the response is decided; they never influence it.
type DispatchRecord struct {
	ID           string
	Op           DispatchOp
	Provider     string
	Model        string
	Status       DispatchStatus
	FailureKind  string
	ErrorMessage string
	ElapsedMS    int64
	CreatedAt    time.Time
}
