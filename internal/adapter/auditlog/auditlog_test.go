package auditlog

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gitlab.com/fog-offload.net/internal/domain"
)

func TestDispatchLogAppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manager_log.json")
	log, err := OpenDispatchLog(path)
	if err != nil {
		t.Fatalf("OpenDispatchLog: %v", err)
	}

	ok := domain.NewDispatchRecord(domain.TaskRequest{TaskType: "image_processing", TaskSize: 50, Deadline: 10}, time.Now())
	ok.Status = domain.DispatchOffloaded
	ok.FogNode = "1"
	ok.Response = &domain.TaskMetrics{TaskID: "image_processing_50"}
	none := domain.NewDispatchRecord(domain.TaskRequest{TaskType: "data_analysis", TaskSize: 20, Deadline: 5}, time.Now())
	none.Status = domain.DispatchNoFogAvailable
	none.Error = "no fog nodes available"

	for _, rec := range []domain.DispatchRecord{ok, none} {
		if err := log.RecordDispatch(context.Background(), rec); err != nil {
			t.Fatalf("RecordDispatch: %v", err)
		}
	}
	if err := log.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var statuses []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var line map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			t.Fatalf("line is not JSON: %v", err)
		}
		statuses = append(statuses, line["status"].(string))
	}
	if strings.Join(statuses, ",") != "offloaded,no_fog_available" {
		t.Errorf("statuses = %v", statuses)
	}
}

func TestMetricsLogHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fog_node_1_log.csv")
	m := domain.TaskMetrics{TaskID: "image_processing_50", NodeID: "1", Delay: 10.1, Energy: 50.5, Result: "Processed image_processing on fog node 1"}

	for i := 0; i < 2; i++ {
		log, err := OpenMetricsLog(path)
		if err != nil {
			t.Fatalf("OpenMetricsLog: %v", err)
		}
		if err := log.RecordMetrics(context.Background(), m); err != nil {
			t.Fatalf("RecordMetrics: %v", err)
		}
		log.Close()
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header plus 2", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(MetricsHeader, ",") {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][3] != "10.1" || rows[1][4] != "50.5" || rows[1][6] != "false" {
		t.Errorf("row = %v", rows[1])
	}
}

type failingSink struct{}

func (failingSink) RecordDispatch(context.Context, domain.DispatchRecord) error {
	return errors.New("disk full")
}

type countingSink struct{ n int }

func (c *countingSink) RecordDispatch(context.Context, domain.DispatchRecord) error {
	c.n++
	return nil
}

func TestDispatchTeeWritesAll(t *testing.T) {
	counter := &countingSink{}
	tee := DispatchTee{failingSink{}, counter}
	err := tee.RecordDispatch(context.Background(), domain.DispatchRecord{})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("err = %v", err)
	}
	if counter.n != 1 {
		t.Errorf("second sink saw %d records", counter.n)
	}
}
