package records

import (
	"context"
	"sort"
	"sync"
)

// InMemoryStore is a Reader over in-process data, used in tests and demos.
// Add* methods seed it; the Reader surface stays read-only.
type InMemoryStore struct {
	mu                sync.RWMutex
	medsByEncounter   map[string][]Medication
	diagsByEncounter  map[string][]Diagnosis
	vitalsByEncounter map[string][]Vital
	labsByEncounter   map[string][]LabResult
	labsByPatient     map[string][]LabResult
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		medsByEncounter:   make(map[string][]Medication),
		diagsByEncounter:  make(map[string][]Diagnosis),
		vitalsByEncounter: make(map[string][]Vital),
		labsByEncounter:   make(map[string][]LabResult),
		labsByPatient:     make(map[string][]LabResult),
	}
}

func (s *InMemoryStore) AddMedication(encounterID string, m Medication) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.medsByEncounter[encounterID] = append(s.medsByEncounter[encounterID], m)
}

func (s *InMemoryStore) AddDiagnosis(encounterID string, d Diagnosis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diagsByEncounter[encounterID] = append(s.diagsByEncounter[encounterID], d)
}

func (s *InMemoryStore) AddVital(encounterID string, v Vital) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vitalsByEncounter[encounterID] = append(s.vitalsByEncounter[encounterID], v)
}

func (s *InMemoryStore) AddLabResult(patientID, encounterID string, l LabResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if encounterID != "" {
		s.labsByEncounter[encounterID] = append(s.labsByEncounter[encounterID], l)
	}
	s.labsByPatient[patientID] = append(s.labsByPatient[patientID], l)
}

func (s *InMemoryStore) MedicationsByEncounter(ctx context.Context, encounterID string) ([]Medication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Medication{}, s.medsByEncounter[encounterID]...), nil
}

func (s *InMemoryStore) DiagnosesByEncounter(ctx context.Context, encounterID string) ([]Diagnosis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Diagnosis{}, s.diagsByEncounter[encounterID]...), nil
}

func (s *InMemoryStore) VitalsByEncounter(ctx context.Context, encounterID string) ([]Vital, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Vital{}, s.vitalsByEncounter[encounterID]...), nil
}

func (s *InMemoryStore) LabResultsByEncounter(ctx context.Context, encounterID string) ([]LabResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]LabResult{}, s.labsByEncounter[encounterID]...), nil
}

func (s *InMemoryStore) LabResultsByPatient(ctx context.Context, patientID string) ([]LabResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]LabResult{}, s.labsByPatient[patientID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].TestDate.After(out[j].TestDate) })
	return out, nil
}

var _ Reader = (*InMemoryStore)(nil)
