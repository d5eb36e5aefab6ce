package chain

import (
	"strconv"

	cm "github.com/mosaicnetworks/naivechain/src/common"
)

// InmemStore keeps Records in a slice. It is the default Store and the cache
// layer of the database-backed stores.
type InmemStore struct {
	records []Record
}

// NewInmemStore returns an empty InmemStore.
func NewInmemStore() *InmemStore {
	return &InmemStore{
		records: []Record{},
	}
}

// Len implements the Store interface.
func (s *InmemStore) Len() int {
	return len(s.records)
}

// Tip implements the Store interface.
func (s *InmemStore) Tip() (Record, error) {
	if len(s.records) == 0 {
		return Record{}, cm.NewStoreErr("Record", cm.Empty, "tip")
	}
	return s.records[len(s.records)-1], nil
}

// GetRecord implements the Store interface.
func (s *InmemStore) GetRecord(index int) (Record, error) {
	if index < 0 || index >= len(s.records) {
		return Record{}, cm.NewStoreErr("Record", cm.KeyNotFound, strconv.Itoa(index))
	}
	return s.records[index], nil
}

// Records implements the Store interface.
func (s *InmemStore) Records() ([]Record, error) {
	res := make([]Record, len(s.records))
	copy(res, s.records)
	return res, nil
}

// Append implements the Store interface.
func (s *InmemStore) Append(record Record) error {
	if err := s.checkAppend(record); err != nil {
		return err
	}
	s.records = append(s.records, record)
	return nil
}

// checkAppend returns the error Append would return, without appending.
func (s *InmemStore) checkAppend(record Record) error {
	if record.Index != len(s.records) {
		return cm.NewStoreErr("Record", cm.SkippedIndex, strconv.Itoa(record.Index))
	}
	return nil
}

// Replace implements the Store interface. The new slice is swapped in as a
// whole.
func (s *InmemStore) Replace(records []Record) error {
	if err := s.checkReplace(records); err != nil {
		return err
	}
	res := make([]Record, len(records))
	copy(res, records)
	s.records = res
	return nil
}

// checkReplace returns the error Replace would return, without replacing.
func (s *InmemStore) checkReplace(records []Record) error {
	if len(records) < len(s.records) {
		return cm.NewStoreErr("Record", cm.TooShort, strconv.Itoa(len(records)))
	}
	for i, r := range records {
		if r.Index != i {
			return cm.NewStoreErr("Record", cm.SkippedIndex, strconv.Itoa(r.Index))
		}
	}
	return nil
}

// Close implements the Store interface.
func (s *InmemStore) Close() error {
	return nil
}

// StorePath implements the Store interface.
func (s *InmemStore) StorePath() string {
	return ""
}
