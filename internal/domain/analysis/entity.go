package analysis

import (
	"strings"
	"time"
)

// Input is the brand information submitted for analysis.
type Input struct {
	BrandName      string `json:"brandName"`
	OfficialURLs   string `json:"officialUrls"`
	AdditionalURLs string `json:"additionalUrls"`
	Competitors    string `json:"competitors"`
	Goal           string `json:"goal"`
	Conditions     string `json:"conditions"`
	ExtraNotes     string `json:"extraNotes"`
}

// Validate checks the only required field.
func (in Input) Validate() error {
	if strings.TrimSpace(in.BrandName) == "" {
		return Validation("brand name is required")
	}
	return nil
}

// Record is a persisted analysis: the input, the generated text and its owner.
type Record struct {
	ID         string    `json:"id"`
	Input      Input     `json:"input"`
	Result     string    `json:"result"`
	CreatedAt  time.Time `json:"createdAt"`
	OwnerID    string    `json:"ownerId"`
	OwnerEmail string    `json:"ownerEmail,omitempty"`
}

// Caller is the identity behind a verified bearer credential.
// It only lives for the duration of one request.
type Caller struct {
	Subject string `json:"subject"`
	Email   string `json:"email,omitempty"`
}
