package chain

import (
	"strconv"

	cm "github.com/mosaicnetworks/naivechain/src/common"
	"github.com/syndtr/goleveldb/leveldb"
)

// LevelDBStore mirrors the chain into a LevelDB database. Like the
// BadgerStore, it serves reads from an InmemStore cache.
type LevelDBStore struct {
	inmemStore *InmemStore
	db         *leveldb.DB
	path       string
}

// NewLevelDBStore creates a brand new Store with a new database, using the
// same path rules as NewBadgerStore.
func NewLevelDBStore(path string) (*LevelDBStore, error) {
	path = freshPath(path)

	handle, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}

	return &LevelDBStore{
		inmemStore: NewInmemStore(),
		db:         handle,
		path:       path,
	}, nil
}

// Len implements the Store interface.
func (s *LevelDBStore) Len() int {
	return s.inmemStore.Len()
}

// Tip implements the Store interface.
func (s *LevelDBStore) Tip() (Record, error) {
	return s.inmemStore.Tip()
}

// GetRecord implements the Store interface.
func (s *LevelDBStore) GetRecord(index int) (Record, error) {
	record, err := s.inmemStore.GetRecord(index)
	if err != nil {
		record, err = s.dbGetRecord(index)
	}
	if err == leveldb.ErrNotFound {
		return Record{}, cm.NewStoreErr("Record", cm.KeyNotFound, strconv.Itoa(index))
	}
	return record, err
}

// Records implements the Store interface.
func (s *LevelDBStore) Records() ([]Record, error) {
	return s.inmemStore.Records()
}

// Append implements the Store interface.
func (s *LevelDBStore) Append(record Record) error {
	if err := s.inmemStore.checkAppend(record); err != nil {
		return err
	}
	if err := s.dbSetRecords([]Record{record}); err != nil {
		return err
	}
	return s.inmemStore.Append(record)
}

// Replace implements the Store interface. The cache only changes once the
// database write succeeded.
func (s *LevelDBStore) Replace(records []Record) error {
	if err := s.inmemStore.checkReplace(records); err != nil {
		return err
	}
	if err := s.dbSetRecords(records); err != nil {
		return err
	}
	return s.inmemStore.Replace(records)
}

// Close implements the Store interface.
func (s *LevelDBStore) Close() error {
	return s.db.Close()
}

// StorePath implements the Store interface.
func (s *LevelDBStore) StorePath() string {
	return s.path
}

func (s *LevelDBStore) dbGetRecord(index int) (Record, error) {
	val, err := s.db.Get(recordKey(index), nil)
	if err != nil {
		return Record{}, err
	}

	var record Record
	if err := record.Unmarshal(val); err != nil {
		return Record{}, err
	}
	return record, nil
}

// dbSetRecords writes all records in a single atomic batch.
func (s *LevelDBStore) dbSetRecords(records []Record) error {
	batch := new(leveldb.Batch)
	for _, r := range records {
		val, err := r.Marshal()
		if err != nil {
			return err
		}
		batch.Put(recordKey(r.Index), val)
	}
	return s.db.Write(batch, nil)
}
