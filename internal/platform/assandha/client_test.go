package assandha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/saifulla-23/lab-test-wizard/internal/platform/errs"
)

func TestMockClientDeterministic(t *testing.T) {
	ctx := context.Background()
	a, err := MockClient{}.Lookup(ctx, "A123456")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	b, err := MockClient{}.Lookup(ctx, "A123456")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("repeated lookups for the same ID should be identical")
	}

	if a.PatientID != "A123456" {
		t.Errorf("patient_id = %q", a.PatientID)
	}
	if a.Name != "Patient A123456" {
		t.Errorf("name = %q", a.Name)
	}

	var insurance map[string]string
	if err := json.Unmarshal(a.AssandhaData, &insurance); err != nil {
		t.Fatalf("assandha_data not valid JSON: %v", err)
	}
	if insurance["policy_number"] != "ASSA123456" {
		t.Errorf("policy_number = %q", insurance["policy_number"])
	}
	if insurance["insurance_status"] != "active" {
		t.Errorf("insurance_status = %q", insurance["insurance_status"])
	}
}

func TestHTTPClientLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/members/A100" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Record{PatientID: "A100", Name: "Hassan Ali"})
	}))
	defer srv.Close()

	rec, err := NewHTTPClient(srv.URL, time.Second).Lookup(context.Background(), "A100")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if rec.Name != "Hassan Ali" {
		t.Errorf("name = %q", rec.Name)
	}
}

func TestHTTPClientNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, time.Second).Lookup(context.Background(), "MISSING")
	if !errs.IsNotFound(err) {
		t.Errorf("want NotFound, got %v", err)
	}
}

func TestHTTPClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, time.Second).Lookup(context.Background(), "A100")
	if !errs.IsPersistence(err) {
		t.Errorf("want Persistence, got %v", err)
	}
}

func TestHTTPClientFillsMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Record{Name: "No ID In Body"})
	}))
	defer srv.Close()

	rec, err := NewHTTPClient(srv.URL, time.Second).Lookup(context.Background(), "A200")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if rec.PatientID != "A200" {
		t.Errorf("patient_id = %q, want the requested key", rec.PatientID)
	}
}
