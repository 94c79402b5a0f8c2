package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gitlab.com/fog-offload.net/internal/domain"
	"gitlab.com/fog-offload.net/internal/static/errs"
)

func TestForwardSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/offload_task" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var task domain.TaskRequest
		if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
			t.Errorf("decode: %v", err)
		}
		_ = json.NewEncoder(w).Encode(domain.TaskMetrics{
			TaskID: domain.Fingerprint(task, domain.FingerprintPolicy{}),
			NodeID: "1",
			Delay:  10.1,
			Energy: 50.5,
			Result: "Processed " + task.TaskType + " on fog node 1",
		})
	}))
	defer srv.Close()

	c := NewWorkerClient(NewHTTPClient(time.Second, 4))
	got, err := c.Forward(context.Background(), domain.Node{ID: "1", URL: srv.URL}, domain.TaskRequest{TaskType: "image_processing", TaskSize: 50, Deadline: 10})
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if got.TaskID != "image_processing_50" || got.Delay != 10.1 || got.Energy != 50.5 {
		t.Errorf("unexpected metrics %+v", got)
	}
}

func TestForwardFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"status":"error","message":"boom"}`))
		}},
		{"garbage body", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}},
		{"missing task id", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"node_id":"1"}`))
		}},
		{"timeout", func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewWorkerClient(NewHTTPClient(50*time.Millisecond, 4))
			_, err := c.Forward(context.Background(), domain.Node{ID: "1", URL: srv.URL}, domain.TaskRequest{TaskType: "x", TaskSize: 1})
			if !errors.Is(err, errs.ErrForwardFailure) {
				t.Fatalf("err = %v, want ErrForwardFailure", err)
			}
		})
	}
}

func TestForwardUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewWorkerClient(NewHTTPClient(time.Second, 4))
	_, err := c.Forward(context.Background(), domain.Node{ID: "9", URL: url}, domain.TaskRequest{TaskType: "x", TaskSize: 1})
	if !errors.Is(err, errs.ErrForwardFailure) {
		t.Fatalf("err = %v, want ErrForwardFailure", err)
	}
}

func TestPushStatus(t *testing.T) {
	var got domain.StatusRecord
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status_update" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"status":"updated"}`))
	}))
	defer srv.Close()

	c := NewStatusClient(srv.URL+"/", NewHTTPClient(time.Second, 1))
	rec := domain.NewStatusRecord("3", 12, 100, 200, 1, 5003, time.Now())
	if err := c.PushStatus(context.Background(), rec); err != nil {
		t.Fatalf("PushStatus: %v", err)
	}
	if got.NodeID != "3" || got.CPUUsage == nil || *got.CPUUsage != 12 {
		t.Errorf("manager received %+v", got)
	}
}

func TestPushStatusRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewStatusClient(srv.URL, NewHTTPClient(time.Second, 1))
	if err := c.PushStatus(context.Background(), domain.NewStatusRecord("3", 1, 1, 2, 0, 1, time.Now())); err == nil {
		t.Fatal("expected an error for a 400 answer")
	}
}
