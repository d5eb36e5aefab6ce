package chain

import (
	"fmt"
	"os"
)

// Store is an interface for backend stores of Records. Implementations are
// not required to be safe for concurrent use; the Chain serializes access.
type Store interface {
	// Len returns the number of stored Records.
	Len() int
	// Tip returns the Record with the highest index.
	Tip() (Record, error)
	// GetRecord returns the Record with a given index.
	GetRecord(index int) (Record, error)
	// Records returns a copy of all Records in index order.
	Records() ([]Record, error)
	// Append stores a Record whose index must equal Len().
	Append(Record) error
	// Replace swaps the whole content of the store for records, which must
	// not be shorter than the current content.
	Replace(records []Record) error
	// Close closes the underlying database.
	Close() error
	// StorePath returns the filepath of the underlying database.
	StorePath() string
}

// recordKey is the database key of the Record at a given index. The
// zero-padding keeps lexicographic and numeric order identical.
func recordKey(index int) []byte {
	return []byte(fmt.Sprintf("%s_%09d", recordPrefix, index))
}

const recordPrefix = "record"

// freshPath returns path if nothing exists there yet. Otherwise it returns the
// first of path(1), path(2), ... that does not exist, leaving any previous
// database untouched.
func freshPath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	for i := 1; ; i++ {
		p := fmt.Sprintf("%s(%d)", path, i)
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return p
		}
	}
}
