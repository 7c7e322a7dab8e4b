// Package operation tracks in-flight folder-to-ZIP operations so that a
// progress poll racing against the download request sees consistent state.
package operation

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/serve-folder/backend/internal/models"
)

// MaxOperations limits concurrent tracked operations to bound memory.
const MaxOperations = 64

// DefaultMaxAge is how long terminal records are kept for late polls.
const DefaultMaxAge = 5 * time.Minute

// StaleAge is a hard bound after which even a non-terminal record is
// removed. A record can only stay non-terminal this long if its encoder
// goroutine was lost, and a lost encoder never finishes the operation.
const StaleAge = 4 * time.Hour

// Registry is the process-wide table of ZIP operations. The map and every
// record in it are guarded by mu; each operation has exactly one writer (the
// encoder goroutine driving the download), while progress polls take copies
// under the read lock. No lock is ever held across I/O.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]*models.ZipOperation
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]*models.ZipOperation)}
}

// Create allocates a fresh pending operation and returns a copy of it.
func (r *Registry) Create() models.ZipOperation {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.ops) >= MaxOperations {
		r.evictTerminalLocked(len(r.ops) - MaxOperations + 1)
	}

	op := models.NewZipOperation(uuid.New().String())
	r.ops[op.ID] = op
	return *op
}

// evictTerminalLocked removes up to n of the oldest terminal records.
func (r *Registry) evictTerminalLocked(n int) {
	for n > 0 {
		var oldest string
		var oldestAt time.Time
		for id, op := range r.ops {
			if !op.Status.Terminal() {
				continue
			}
			if oldest == "" || op.CompletedAt.Before(oldestAt) {
				oldest = id
				oldestAt = op.CompletedAt
			}
		}
		if oldest == "" {
			return
		}
		delete(r.ops, oldest)
		n--
	}
}

// SetTotal records the pre-scanned file count for an operation.
func (r *Registry) SetTotal(id string, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	op, ok := r.ops[id]
	if !ok || op.Status.Terminal() {
		return
	}
	op.TotalFiles = total
}

// Update overwrites the mutable progress fields. Called by the single
// encoder goroutine owning the operation, once per archived file.
func (r *Registry) Update(id string, processed int, currentFile string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	op, ok := r.ops[id]
	if !ok || op.Status.Terminal() {
		return
	}
	op.Status = models.OperationStatusInProgress
	if processed > op.ProcessedFiles {
		op.ProcessedFiles = processed
	}
	if op.TotalFiles > 0 && op.ProcessedFiles > op.TotalFiles {
		op.ProcessedFiles = op.TotalFiles
	}
	op.CurrentFile = currentFile
}

// MarkSkipped notes an entry that could not be read and was left out of the
// archive.
func (r *Registry) MarkSkipped(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	op, ok := r.ops[id]
	if !ok || op.Status.Terminal() {
		return
	}
	op.SkippedFiles++
}

// Get returns a progress snapshot for an operation. The copy is taken under
// the read lock so a poll never observes a torn record.
func (r *Registry) Get(id string) (models.ZipProgress, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	op, ok := r.ops[id]
	if !ok {
		return models.ZipProgress{}, false
	}
	return op.Progress(), true
}

// Complete transitions the operation to its terminal state. Transitions are
// one-directional: once terminal, later calls are no-ops.
func (r *Registry) Complete(id string, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	op, ok := r.ops[id]
	if !ok || op.Status.Terminal() {
		return
	}
	if success {
		op.Status = models.OperationStatusComplete
		if op.TotalFiles > 0 {
			op.ProcessedFiles = op.TotalFiles
		}
	} else {
		op.Status = models.OperationStatusFailed
	}
	op.CurrentFile = ""
	op.CompletedAt = time.Now()
}

// Cleanup removes terminal records older than maxAge and non-terminal
// records older than StaleAge. Driven by a ticker goroutine in main.
func (r *Registry) Cleanup(maxAge time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for id, op := range r.ops {
		if op.Status.Terminal() {
			if now.Sub(op.CompletedAt) > maxAge {
				delete(r.ops, id)
			}
			continue
		}
		if now.Sub(op.CreatedAt) > StaleAge {
			delete(r.ops, id)
		}
	}
}

// Len returns the number of tracked operations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ops)
}
