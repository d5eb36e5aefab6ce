package chain

import (
	"strconv"

	"github.com/dgraph-io/badger"
	cm "github.com/mosaicnetworks/naivechain/src/common"
	"github.com/sirupsen/logrus"
)

// BadgerStore mirrors the chain into a Badger database. Reads are served from
// an InmemStore cache. Writes go to the database first, and reach the cache
// only once they succeeded.
type BadgerStore struct {
	inmemStore *InmemStore
	db         *badger.DB
	path       string
}

// NewBadgerStore creates a brand new Store with a new database. If something
// already exists at path, the database is created in a sibling directory
// instead (path(1), path(2), ...) and the previous one is left as is.
func NewBadgerStore(path string, logger *logrus.Entry) (*BadgerStore, error) {
	path = freshPath(path)

	opts := badger.DefaultOptions(path).
		WithSyncWrites(false).
		WithTruncate(true)

	if logger != nil {
		sub := logger.WithFields(logrus.Fields{"ns": "badger"})
		opts = opts.WithLogger(sub)
	}

	handle, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	store := &BadgerStore{
		inmemStore: NewInmemStore(),
		db:         handle,
		path:       path,
	}
	return store, nil
}

//==============================================================================
//Implement the Store interface

// Len implements the Store interface.
func (s *BadgerStore) Len() int {
	return s.inmemStore.Len()
}

// Tip implements the Store interface.
func (s *BadgerStore) Tip() (Record, error) {
	return s.inmemStore.Tip()
}

// GetRecord implements the Store interface.
func (s *BadgerStore) GetRecord(index int) (Record, error) {
	//try to get it from cache
	record, err := s.inmemStore.GetRecord(index)
	//if not in cache, try to get it from db
	if err != nil {
		record, err = s.dbGetRecord(index)
	}
	return record, mapError(err, index)
}

// Records implements the Store interface.
func (s *BadgerStore) Records() ([]Record, error) {
	return s.inmemStore.Records()
}

// Append implements the Store interface.
func (s *BadgerStore) Append(record Record) error {
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
func (s *BadgerStore) Replace(records []Record) error {
	if err := s.inmemStore.checkReplace(records); err != nil {
		return err
	}
	if err := s.dbSetRecords(records); err != nil {
		return err
	}
	return s.inmemStore.Replace(records)
}

// Close implements the Store interface.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// StorePath implements the Store interface.
func (s *BadgerStore) StorePath() string {
	return s.path
}

//==============================================================================
//DB Methods

func (s *BadgerStore) dbGetRecord(index int) (Record, error) {
	var recordBytes []byte
	key := recordKey(index)
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		recordBytes, err = item.ValueCopy(nil)
		return err
	})

	if err != nil {
		return Record{}, err
	}

	var record Record
	if err := record.Unmarshal(recordBytes); err != nil {
		return Record{}, err
	}

	return record, nil
}

// dbSetRecords writes records, splitting the work over several transactions
// if a single one grows too big. Records with a higher index than the last
// one written are never left behind because the chain only grows.
func (s *BadgerStore) dbSetRecords(records []Record) error {
	tx := s.db.NewTransaction(true)
	defer func() { tx.Discard() }()

	for _, r := range records {
		val, err := r.Marshal()
		if err != nil {
			return err
		}

		key := recordKey(r.Index)

		//insert [record_index] => [record bytes]
		err = tx.Set(key, val)
		if err == badger.ErrTxnTooBig {
			if err := tx.Commit(); err != nil {
				return err
			}
			tx = s.db.NewTransaction(true)
			err = tx.Set(key, val)
		}
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func isDBKeyNotFound(err error) bool {
	return err != nil && err.Error() == badger.ErrKeyNotFound.Error()
}

func mapError(err error, index int) error {
	if isDBKeyNotFound(err) {
		return cm.NewStoreErr("Record", cm.KeyNotFound, strconv.Itoa(index))
	}
	return err
}
