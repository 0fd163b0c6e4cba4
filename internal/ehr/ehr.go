// Package ehr defines the electronic health record seam used to enrich
// replies with a patient's medications and allergies.
package ehr

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// DataCategory selects a section of the patient record.
type DataCategory string

const (
	CategoryMedications DataCategory = "medications"
	CategoryAllergies   DataCategory = "allergies"
	CategoryConditions  DataCategory = "conditions"
)

// AllCategories is every section a Client can return.
var AllCategories = []DataCategory{CategoryMedications, CategoryAllergies, CategoryConditions}

// ErrPatientNotFound is returned when the record system has no such patient.
var ErrPatientNotFound = errors.New("ehr: patient not found")

// PatientData is the subset of the chart used when composing replies.
type PatientData struct {
	Medications []string `json:"medications"`
	Allergies   []string `json:"allergies"`
	Conditions  []string `json:"conditions"`
}

// Client defines the interface that all EHR integrations must implement.
type Client interface {
	// FetchPatientData returns the requested sections of a patient's record.
	FetchPatientData(ctx context.Context, patientID string, categories []DataCategory) (*PatientData, error)
}

// MockClient serves canned records from memory.
type MockClient struct {
	mu       sync.RWMutex
	patients map[string]PatientData
	// Err, when set, is returned from every call.
	Err error
}

// NewMockClient returns a client seeded with demo patients.
func NewMockClient() *MockClient {
	return &MockClient{
		patients: map[string]PatientData{
			"demo-patient-1": {
				Medications: []string{"Lisinopril 10mg daily", "Metformin 500mg twice daily"},
				Allergies:   []string{"Penicillin"},
				Conditions:  []string{"Hypertension", "Type 2 diabetes"},
			},
			"demo-patient-2": {
				Medications: []string{"Albuterol inhaler as needed"},
				Allergies:   []string{"Peanuts", "Latex"},
				Conditions:  []string{"Asthma"},
			},
		},
	}
}

// Put adds or replaces a patient record.
func (c *MockClient) Put(patientID string, data PatientData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patients[patientID] = data
}

// FetchPatientData returns copies of the requested sections. An empty
// category list means all sections.
func (c *MockClient) FetchPatientData(ctx context.Context, patientID string, categories []DataCategory) (*PatientData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.Err != nil {
		return nil, c.Err
	}
	c.mu.RLock()
	rec, ok := c.patients[strings.TrimSpace(patientID)]
	c.mu.RUnlock()
	if !ok {
		return nil, ErrPatientNotFound
	}
	if len(categories) == 0 {
		categories = AllCategories
	}

	out := &PatientData{}
	for _, cat := range categories {
		switch cat {
		case CategoryMedications:
			out.Medications = append([]string(nil), rec.Medications...)
		case CategoryAllergies:
			out.Allergies = append([]string(nil), rec.Allergies...)
		case CategoryConditions:
			out.Conditions = append([]string(nil), rec.Conditions...)
		}
	}
	return out, nil
}
