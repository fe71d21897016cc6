package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vietddude/dispatcher/internal/core/domain"
)

func TestSubmitSendsTaskPayload(t *testing.T) {
	tests := []struct {
		name        string
		task        *domain.Task
		wantPayload map[string]string
	}{
		{
			name: "lift task carries the drop area",
			task: &domain.Task{Type: domain.TaskLiftToZone, Source: "L1", Destination: "drop-1"},
			wantPayload: map[string]string{
				"location_id": "L1",
				"area":        "drop-1",
			},
		},
		{
			name: "pickup task carries the target store",
			task: &domain.Task{Type: domain.TaskRegionPickup, Source: "S3", Area: "zone-a", Destination: "OUT-1"},
			wantPayload: map[string]string{
				"location_id":       "S3",
				"store_location_id": "OUT-1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPayload map[string]string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPut {
					t.Errorf("method = %s, want PUT", r.Method)
				}
				if r.URL.Path != taskEndpoint {
					t.Errorf("path = %s, want %s", r.URL.Path, taskEndpoint)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
					t.Errorf("authorization = %q, want bearer token", got)
				}
				if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
					t.Errorf("decode payload: %v", err)
				}
				_, _ = w.Write([]byte(`{"success": true}`))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "test-token", 5*time.Second, []int{50421021})
			outcome := c.Submit(context.Background(), tt.task)

			if !outcome.IsSuccess() {
				t.Fatalf("Submit() = %v, want success", outcome)
			}
			for k, v := range tt.wantPayload {
				if gotPayload[k] != v {
					t.Errorf("payload[%q] = %q, want %q", k, gotPayload[k], v)
				}
			}
			if len(gotPayload) != len(tt.wantPayload) {
				t.Errorf("payload = %v, want exactly %v", gotPayload, tt.wantPayload)
			}
		})
	}
}

func TestSubmitConnectionErrorIsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse all connections

	c := NewClient(srv.URL, "test-token", time.Second, nil)
	outcome := c.Submit(context.Background(), &domain.Task{Type: domain.TaskLiftToZone, Source: "L1", Destination: "drop-1"})

	if outcome.Kind != domain.OutcomeTransportFailure {
		t.Errorf("Submit() kind = %q, want transport failure", outcome.Kind)
	}
	if outcome.Err == nil {
		t.Error("Submit() transport failure carries no error")
	}
}

func TestSubmitBusinessRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": false, "msg": {"detail": {"error_id": 50400001, "info": "location occupied"}}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-token", time.Second, []int{50421021})
	outcome := c.Submit(context.Background(), &domain.Task{Type: domain.TaskRegionPickup, Source: "S1", Destination: "OUT-1"})

	if outcome.Kind != domain.OutcomeBusinessFailure {
		t.Fatalf("Submit() kind = %q, want business failure", outcome.Kind)
	}
	if outcome.ErrorID != 50400001 {
		t.Errorf("error_id = %d, want 50400001", outcome.ErrorID)
	}
	if outcome.Info != "location occupied" {
		t.Errorf("info = %q, want location occupied", outcome.Info)
	}
}
