// Package patient manages the patient directory, including lookup-or-create
// against the Assandha insurance portal.
package patient

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patients table. PatientID is the external business key
// (the ID staff type in); AssandhaData is kept opaque, whatever the portal
// returned at registration time.
type Patient struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	PatientID    string          `db:"patient_id" json:"patient_id"`
	Name         string          `db:"name" json:"name"`
	DateOfBirth  *string         `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender       *string         `db:"gender" json:"gender,omitempty"`
	Phone        *string         `db:"phone" json:"phone,omitempty"`
	Address      *string         `db:"address" json:"address,omitempty"`
	AssandhaData json.RawMessage `db:"assandha_data" json:"assandha_data,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}
