package availability

import "renovation-workers/internal/models"

// Snapshot is an in-memory Provider over records fetched ahead of a ranking
// call. Populate it with Add before sharing; reads are safe for concurrent use
// once it is no longer modified.
type Snapshot struct {
	records map[string]map[string]models.AvailabilityRecord
	count   int
}

func NewSnapshot(records ...models.AvailabilityRecord) *Snapshot {
	s := &Snapshot{records: make(map[string]map[string]models.AvailabilityRecord)}
	for _, rec := range records {
		s.Add(rec)
	}
	return s
}

// Add stores rec, replacing any earlier record for the same contractor and date.
func (s *Snapshot) Add(rec models.AvailabilityRecord) {
	byDate, ok := s.records[rec.ContractorID]
	if !ok {
		byDate = make(map[string]models.AvailabilityRecord)
		s.records[rec.ContractorID] = byDate
	}
	if _, exists := byDate[rec.Date]; !exists {
		s.count++
	}
	byDate[rec.Date] = rec
}

func (s *Snapshot) AvailabilityForDate(contractorID, dateKey string) (*models.AvailabilityRecord, bool) {
	if s == nil {
		return nil, false
	}
	rec, ok := s.records[contractorID][dateKey]
	if !ok {
		return nil, false
	}
	return &rec, true
}

// Len is the number of distinct contractor/date records held.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return s.count
}
