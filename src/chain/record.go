package chain

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/mosaicnetworks/naivechain/src/crypto"
	"github.com/ugorji/go/codec"
)

const (
	genesisTimestamp = 1465154705
	genesisData      = "my genesis block!!"
	genesisHash      = "816534932c2b7154836da6afc367695e6337db8a921823784c14378abed4f7d7"
)

// Record is one link in the chain. Records are values; once built they are
// never modified.
type Record struct {
	Index        int     `json:"index"`
	PreviousHash string  `json:"previousHash"`
	Timestamp    float64 `json:"timestamp"`
	Data         string  `json:"data"`
	Hash         string  `json:"hash"`
}

// Genesis returns the first Record of every valid chain. All nodes must agree
// on it bit for bit.
func Genesis() Record {
	return Record{
		Index:        0,
		PreviousHash: "0",
		Timestamp:    genesisTimestamp,
		Data:         genesisData,
		Hash:         genesisHash,
	}
}

// Digest computes the hash of a Record from its fields. The fields are
// concatenated as decimal index, previous hash, shortest decimal timestamp and
// payload before hashing, which keeps the digest compatible with existing
// nodes.
func Digest(index int, previousHash string, timestamp float64, data string) string {
	var buf bytes.Buffer
	buf.WriteString(strconv.Itoa(index))
	buf.WriteString(previousHash)
	buf.WriteString(strconv.FormatFloat(timestamp, 'f', -1, 64))
	buf.WriteString(data)
	return crypto.SHA256Hex(buf.Bytes())
}

// ComputeHash returns the digest of the Record's fields, regardless of the
// value of its Hash field.
func (r Record) ComputeHash() string {
	return Digest(r.Index, r.PreviousHash, r.Timestamp, r.Data)
}

// IsGenesis reports whether r is identical to the Genesis record.
func (r Record) IsGenesis() bool {
	return r == Genesis()
}

// String ...
func (r Record) String() string {
	return fmt.Sprintf("Record{%d %.8s.. <- %.8s..}", r.Index, r.Hash, r.PreviousHash)
}

// Marshal encodes the Record with a canonical JSON handle. This is the format
// used by the on-disk stores.
func (r *Record) Marshal() ([]byte, error) {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)

	if err := enc.Encode(r); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// Unmarshal decodes a Record produced by Marshal.
func (r *Record) Unmarshal(data []byte) error {
	b := bytes.NewBuffer(data)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	dec := codec.NewDecoder(b, jh)

	return dec.Decode(r)
}
