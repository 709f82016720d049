// Package assandha talks to the national insurance portal that resolves a
// patient business key to demographic data. The portal is a fallible remote
// service; the deployed clinic currently runs against the deterministic mock.
package assandha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/saifulla-23/lab-test-wizard/internal/platform/errs"
)

// Record is the demographic payload returned for a known patient ID.
type Record struct {
	PatientID    string          `json:"patient_id"`
	Name         string          `json:"name"`
	DateOfBirth  *string         `json:"date_of_birth,omitempty"`
	Gender       *string         `json:"gender,omitempty"`
	Phone        *string         `json:"phone,omitempty"`
	Address      *string         `json:"address,omitempty"`
	AssandhaData json.RawMessage `json:"assandha_data,omitempty"`
}

// Client resolves a patient business key against the portal.
type Client interface {
	Lookup(ctx context.Context, patientID string) (*Record, error)
}

// HTTPClient calls a real portal deployment.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Lookup(ctx context.Context, patientID string) (*Record, error) {
	u := fmt.Sprintf("%s/api/v1/members/%s", c.baseURL, url.PathEscape(patientID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errs.Wrap(errs.Persistence, "build assandha request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.Persistence, "assandha lookup", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var rec Record
		if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
			return nil, errs.Wrap(errs.Persistence, "decode assandha response", err)
		}
		if rec.PatientID == "" {
			rec.PatientID = patientID
		}
		return &rec, nil
	case http.StatusNotFound:
		return nil, errs.Newf(errs.NotFound, "patient %s not found in assandha portal", patientID)
	default:
		return nil, errs.Newf(errs.Persistence, "assandha portal returned status %d", resp.StatusCode)
	}
}

// MockClient returns a synthetic record for any ID, mirroring the behavior the
// clinic runs with today. Every field is derived from the ID so repeated
// lookups are deterministic.
type MockClient struct{}

func (MockClient) Lookup(_ context.Context, patientID string) (*Record, error) {
	dob := "1990-01-01"
	gender := "Male"
	phone := "+960 123-4567"
	address := "Malé, Maldives"
	insurance, _ := json.Marshal(map[string]string{
		"insurance_status": "active",
		"policy_number":    "ASS" + patientID,
		"coverage_type":    "full",
	})
	return &Record{
		PatientID:    patientID,
		Name:         "Patient " + patientID,
		DateOfBirth:  &dob,
		Gender:       &gender,
		Phone:        &phone,
		Address:      &address,
		AssandhaData: insurance,
	}, nil
}
