package entity

import (
	"encoding/json"
	"time"
)

type WillStatus string

const (
	WillDraft     WillStatus = "draft"
	WillCompleted WillStatus = "completed"
	WillNotarized WillStatus = "notarized"
	WillArchived  WillStatus = "archived"
)

func (s WillStatus) Valid() bool {
	switch s {
	case WillDraft, WillCompleted, WillNotarized, WillArchived:
		return true
	}
	return false
}

// Will is a user-authored testament. Witnesses, beneficiaries and assets are
// free-form JSON documents supplied by the client.
type Will struct {
	ID                 string
	UserID             string
	Title              string
	Content            string
	Status             WillStatus
	Witnesses          json.RawMessage
	Beneficiaries      json.RawMessage
	Assets             json.RawMessage
	PDFURL             string
	IsDigitalSignature bool
	SignedAt           *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Beneficiary is the subset of a beneficiary record the PDF export prints.
type Beneficiary struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
}

// BeneficiaryList decodes the beneficiaries document, ignoring entries that
// are not objects.
func (w *Will) BeneficiaryList() []Beneficiary {
	var raw []json.RawMessage
	if err := json.Unmarshal(w.Beneficiaries, &raw); err != nil {
		return nil
	}
	out := make([]Beneficiary, 0, len(raw))
	for _, r := range raw {
		var b Beneficiary
		if err := json.Unmarshal(r, &b); err == nil {
			out = append(out, b)
		}
	}
	return out
}
