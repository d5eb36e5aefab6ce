package common

import "fmt"

// StoreErrType ...
type StoreErrType uint32

const (
	// KeyNotFound is returned when an item does not exist in the store
	KeyNotFound StoreErrType = iota
	// Empty is returned when the store holds no records at all
	Empty
	// SkippedIndex is returned when a write would leave a gap in the indexes
	SkippedIndex
	// TooShort is returned when a replacement would shrink the store
	TooShort
)

// StoreErr ...
type StoreErr struct {
	dataType string
	errType  StoreErrType
	key      string
}

// NewStoreErr ...
func NewStoreErr(dataType string, errType StoreErrType, key string) StoreErr {
	return StoreErr{
		dataType: dataType,
		errType:  errType,
		key:      key,
	}
}

// Error ...
func (e StoreErr) Error() string {
	m := ""
	switch e.errType {
	case KeyNotFound:
		m = "Not Found"
	case Empty:
		m = "Empty"
	case SkippedIndex:
		m = "Skipped Index"
	case TooShort:
		m = "Too Short"
	}

	return fmt.Sprintf("%s, %s, %s", e.dataType, e.key, m)
}

// IsStore checks that an error is of type StoreErr and that it's code matches
// the provided StoreErr code.
func IsStore(err error, t StoreErrType) bool {
	storeErr, ok := err.(StoreErr)
	return ok && storeErr.errType == t
}
