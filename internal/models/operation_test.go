package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestProgressDerivation(t *testing.T) {
	op := NewZipOperation("op-1")
	op.TotalFiles = 4

	p := op.Progress()
	if p.Percentage != 0 || p.CurrentFile != nil {
		t.Errorf("fresh operation: got %+v", p)
	}

	op.Status = OperationStatusInProgress
	op.ProcessedFiles = 2
	op.CurrentFile = "docs/b.txt"
	p = op.Progress()
	if p.Percentage != 50 {
		t.Errorf("percentage = %f, want 50", p.Percentage)
	}
	if p.CurrentFile == nil || *p.CurrentFile != "docs/b.txt" {
		t.Errorf("current_file = %v", p.CurrentFile)
	}

	// All files processed but not yet terminal: clamp below 100.
	op.ProcessedFiles = 4
	p = op.Progress()
	if p.Percentage != 99 {
		t.Errorf("percentage = %f, want 99 while in progress", p.Percentage)
	}

	op.Status = OperationStatusComplete
	op.CurrentFile = ""
	p = op.Progress()
	if p.Percentage != 100 {
		t.Errorf("percentage = %f, want 100 when complete", p.Percentage)
	}
}

func TestProgressZeroTotal(t *testing.T) {
	op := NewZipOperation("op-2")
	p := op.Progress()
	if p.Percentage != 0 {
		t.Errorf("pending zero-total percentage = %f, want 0", p.Percentage)
	}

	op.Status = OperationStatusComplete
	op.CompletedAt = time.Now()
	p = op.Progress()
	if p.Percentage != 100 {
		t.Errorf("complete zero-total percentage = %f, want 100", p.Percentage)
	}
}

func TestProgressWireFormat(t *testing.T) {
	op := NewZipOperation("op-3")
	op.Status = OperationStatusInProgress
	op.TotalFiles = 10
	op.ProcessedFiles = 3
	op.CurrentFile = "x.txt"

	data, err := json.Marshal(op.Progress())
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"percentage", "processed_files", "total_files", "current_file", "status"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing field %q in %s", key, data)
		}
	}

	// current_file must be JSON null when unset.
	op.CurrentFile = ""
	data, err = json.Marshal(op.Progress())
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if raw["current_file"] != nil {
		t.Errorf("current_file = %v, want null", raw["current_file"])
	}
}

func TestStatusTerminal(t *testing.T) {
	cases := map[OperationStatus]bool{
		OperationStatusPending:    false,
		OperationStatusInProgress: false,
		OperationStatusComplete:   true,
		OperationStatusFailed:     true,
	}
	for status, want := range cases {
		if got := status.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", status, got, want)
		}
	}
}
