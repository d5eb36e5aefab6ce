package chain

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Chain is the ordered sequence of Records held by a node. It owns the
// validation rules: every mutation goes through TryAppend or TryReplace, which
// silently discard invalid candidates.
//
// Reads and writes are guarded by a RWMutex so that a reader never observes a
// partially replaced chain.
type Chain struct {
	sync.RWMutex

	store  Store
	logger *logrus.Entry

	// now is the clock used to timestamp new Records
	now func() time.Time
}

// NewChain returns a Chain backed by store. An empty store is initialised
// with the Genesis record. A non-empty store must already hold a valid chain.
func NewChain(store Store, logger *logrus.Entry) (*Chain, error) {
	if logger == nil {
		log := logrus.New()
		log.Level = logrus.DebugLevel
		logger = logrus.NewEntry(log)
	}

	if store.Len() == 0 {
		if err := store.Append(Genesis()); err != nil {
			return nil, err
		}
	}

	records, err := store.Records()
	if err != nil {
		return nil, err
	}
	if err := checkChain(records); err != nil {
		return nil, err
	}

	return &Chain{
		store:  store,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Store returns the underlying Store.
func (c *Chain) Store() Store {
	return c.store
}

// Len returns the number of Records in the chain.
func (c *Chain) Len() int {
	c.RLock()
	defer c.RUnlock()

	return c.store.Len()
}

// Tip returns the last Record of the chain.
func (c *Chain) Tip() Record {
	c.RLock()
	defer c.RUnlock()

	return c.tip()
}

func (c *Chain) tip() Record {
	tip, err := c.store.Tip()
	if err != nil {
		// The store always holds at least the genesis record
		c.logger.WithError(err).Error("Reading chain tip")
		return Genesis()
	}
	return tip
}

// Records returns a snapshot copy of the whole chain.
func (c *Chain) Records() []Record {
	c.RLock()
	defer c.RUnlock()

	records, err := c.store.Records()
	if err != nil {
		c.logger.WithError(err).Error("Reading chain records")
		return []Record{Genesis()}
	}
	return records
}

// GetRecord returns the Record at a given index.
func (c *Chain) GetRecord(index int) (Record, error) {
	c.RLock()
	defer c.RUnlock()

	return c.store.GetRecord(index)
}

// BuildNext returns a candidate Record extending the current tip with data.
// The candidate is not appended.
func (c *Chain) BuildNext(data string) Record {
	tip := c.Tip()

	index := tip.Index + 1
	timestamp := float64(c.now().UnixNano()) / float64(time.Second)

	return Record{
		Index:        index,
		PreviousHash: tip.Hash,
		Timestamp:    timestamp,
		Data:         data,
		Hash:         Digest(index, tip.Hash, timestamp, data),
	}
}

// TryAppend appends candidate if it is a valid successor of the current tip,
// and reports whether it did. Otherwise the chain is left unchanged.
func (c *Chain) TryAppend(candidate Record) bool {
	c.Lock()
	defer c.Unlock()

	tip := c.tip()

	if err := checkSuccessor(candidate, tip); err != nil {
		c.logger.WithFields(logrus.Fields{
			"candidate": candidate.Index,
			"tip":       tip.Index,
			"reason":    err,
		}).Debug("Rejected record")
		return false
	}

	if err := c.store.Append(candidate); err != nil {
		c.logger.WithError(err).Error("Appending record to store")
		return false
	}

	return true
}

// TryReplace replaces the whole chain with candidate if candidate is a valid
// chain strictly longer than the current one, and reports whether it did.
func (c *Chain) TryReplace(candidate []Record) bool {
	c.Lock()
	defer c.Unlock()

	if err := checkChain(candidate); err != nil {
		c.logger.WithFields(logrus.Fields{
			"length": len(candidate),
			"reason": err,
		}).Debug("Rejected chain")
		return false
	}

	if len(candidate) <= c.store.Len() {
		c.logger.WithFields(logrus.Fields{
			"length": len(candidate),
			"local":  c.store.Len(),
		}).Debug("Rejected chain: not longer than local chain")
		return false
	}

	seq := make([]Record, len(candidate))
	copy(seq, candidate)

	if err := c.store.Replace(seq); err != nil {
		c.logger.WithError(err).Error("Replacing chain in store")
		return false
	}

	return true
}
