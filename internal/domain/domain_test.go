package domain

import (
	"errors"
	"testing"
	"time"
)

func TestFingerprint(t *testing.T) {
	task := TaskRequest{TaskType: "data_analysis", TaskSize: 50, Deadline: 20}

	if got := Fingerprint(task, FingerprintPolicy{}); got != "data_analysis_50" {
		t.Errorf("fingerprint = %q", got)
	}
	if got := Fingerprint(task, FingerprintPolicy{IncludeDeadline: true}); got != "data_analysis_50_20" {
		t.Errorf("deadline-aware fingerprint = %q", got)
	}

	other := task
	other.Deadline = 5
	if Fingerprint(task, FingerprintPolicy{}) != Fingerprint(other, FingerprintPolicy{}) {
		t.Error("deadline must not change the default fingerprint")
	}
	if Fingerprint(task, FingerprintPolicy{IncludeDeadline: true}) == Fingerprint(other, FingerprintPolicy{IncludeDeadline: true}) {
		t.Error("deadline must change the deadline-aware fingerprint")
	}
}

func TestTaskRequestValidate(t *testing.T) {
	cases := []struct {
		name            string
		task            TaskRequest
		requireDeadline bool
		wantErr         bool
	}{
		{"valid", TaskRequest{"image_processing", 10, 5}, true, false},
		{"missing type", TaskRequest{"", 10, 5}, true, true},
		{"zero size", TaskRequest{"x", 0, 5}, true, true},
		{"negative deadline", TaskRequest{"x", 1, -1}, false, true},
		{"missing deadline at manager", TaskRequest{"x", 1, 0}, true, true},
		{"missing deadline at node", TaskRequest{"x", 1, 0}, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.task.Validate(tc.requireDeadline)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestStatusRecordComplete(t *testing.T) {
	rec := NewStatusRecord("1", 10, 4, 8, 0, 5000, time.Now())
	if err := rec.Complete(); err != nil {
		t.Fatalf("complete record: %v", err)
	}

	rec.CPUUsage = nil
	if err := rec.Complete(); !errors.Is(err, ErrMissingCPU) {
		t.Errorf("err = %v, want ErrMissingCPU", err)
	}

	rec = NewStatusRecord("1", 10, 4, 0, 0, 5000, time.Now())
	if err := rec.Complete(); !errors.Is(err, ErrZeroMemoryTotal) {
		t.Errorf("err = %v, want ErrZeroMemoryTotal", err)
	}
}

func TestParseScoringWeights(t *testing.T) {
	w, err := ParseScoringWeights("0.6,0.3,0.1")
	if err != nil {
		t.Fatalf("ParseScoringWeights: %v", err)
	}
	if w != WeightsCPUHeavy {
		t.Errorf("weights = %+v", w)
	}
	for _, bad := range []string{"", "1,2", "a,b,c", "1,-1,0"} {
		if _, err := ParseScoringWeights(bad); err == nil {
			t.Errorf("ParseScoringWeights(%q) should fail", bad)
		}
	}
}

func TestPresets(t *testing.T) {
	if p, err := CostPreset("direct"); err != nil || p.QueueDelayPerTask != 0 {
		t.Errorf("direct preset = %+v, %v", p, err)
	}
	if _, err := CostPreset("turbo"); err == nil {
		t.Error("unknown cost preset should fail")
	}
	if w, err := ScoringPreset("even"); err != nil || w != WeightsEven {
		t.Errorf("even preset = %+v, %v", w, err)
	}
}
