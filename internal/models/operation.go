package models

import "time"

// OperationStatus represents the status of a ZIP operation.
type OperationStatus string

const (
	OperationStatusPending    OperationStatus = "pending"
	OperationStatusInProgress OperationStatus = "in_progress"
	OperationStatusComplete   OperationStatus = "complete"
	OperationStatusFailed     OperationStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s OperationStatus) Terminal() bool {
	return s == OperationStatusComplete || s == OperationStatusFailed
}

// ZipOperation is the registry record for one folder-to-ZIP download.
// It is mutated only by the encoder goroutine that owns the operation;
// pollers see copies taken under the registry lock.
type ZipOperation struct {
	ID             string          `json:"id"`
	Status         OperationStatus `json:"status"`
	TotalFiles     int             `json:"totalFiles"`
	ProcessedFiles int             `json:"processedFiles"`
	SkippedFiles   int             `json:"skippedFiles,omitempty"`
	CurrentFile    string          `json:"currentFile,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	CompletedAt    time.Time       `json:"completedAt,omitempty"`
}

// NewZipOperation creates a pending operation record.
func NewZipOperation(id string) *ZipOperation {
	return &ZipOperation{
		ID:        id,
		Status:    OperationStatusPending,
		CreatedAt: time.Now(),
	}
}

// ZipProgress is the snapshot returned to progress polls.
type ZipProgress struct {
	Percentage     float64         `json:"percentage"`
	ProcessedFiles int             `json:"processed_files"`
	TotalFiles     int             `json:"total_files"`
	CurrentFile    *string         `json:"current_file"`
	Status         OperationStatus `json:"status"`
}

// Progress derives a poll snapshot from the record. The percentage is
// clamped to 99 until the operation completes so 100 is only ever
// observed together with a terminal complete status.
func (op *ZipOperation) Progress() ZipProgress {
	p := ZipProgress{
		ProcessedFiles: op.ProcessedFiles,
		TotalFiles:     op.TotalFiles,
		Status:         op.Status,
	}
	if op.CurrentFile != "" {
		f := op.CurrentFile
		p.CurrentFile = &f
	}
	switch {
	case op.Status == OperationStatusComplete:
		p.Percentage = 100
	case op.TotalFiles <= 0:
		p.Percentage = 0
	default:
		p.Percentage = float64(op.ProcessedFiles) * 100 / float64(op.TotalFiles)
		if p.Percentage > 99 {
			p.Percentage = 99
		}
	}
	return p
}
