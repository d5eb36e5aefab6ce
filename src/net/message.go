package net

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mosaicnetworks/naivechain/src/chain"
)

// MessageType is the tag of a message on the wire.
type MessageType string

const (
	// QueryLatestType asks a peer for the last record of its chain.
	QueryLatestType MessageType = "QUERY_LATEST"
	// QueryAllType asks a peer for its whole chain.
	QueryAllType MessageType = "QUERY_ALL"
	// ResponseChainType carries records: either a peer's tip or its whole chain.
	ResponseChainType MessageType = "RESPONSE_BLOCKCHAIN"
)

var (
	// ErrUnknownMessageType is returned when decoding a frame with an
	// unsupported type tag.
	ErrUnknownMessageType = errors.New("unknown message type")
	// ErrMissingData is returned when a chain response has no data.
	ErrMissingData = errors.New("missing data in chain response")
	// ErrUnexpectedData is returned when a query carries data.
	ErrUnexpectedData = errors.New("unexpected data in query")
)

// Message is one of QueryLatest, QueryAll or ChainAnnounce.
type Message interface {
	Type() MessageType
	isMessage()
}

// QueryLatest asks the receiver to reply with its tip.
type QueryLatest struct{}

// QueryAll asks the receiver to reply with its whole chain.
type QueryAll struct{}

// ChainAnnounce carries either the sender's tip alone or its whole chain.
type ChainAnnounce struct {
	Records []chain.Record
}

// Type implements the Message interface.
func (QueryLatest) Type() MessageType { return QueryLatestType }

// Type implements the Message interface.
func (QueryAll) Type() MessageType { return QueryAllType }

// Type implements the Message interface.
func (ChainAnnounce) Type() MessageType { return ResponseChainType }

func (QueryLatest) isMessage()   {}
func (QueryAll) isMessage()      {}
func (ChainAnnounce) isMessage() {}

// wireMessage is the envelope of every frame.
type wireMessage struct {
	Type MessageType `json:"type"`
	Data *string     `json:"data,omitempty"`
}

// wireRecord mirrors chain.Record with every field required.
type wireRecord struct {
	Index        *int     `json:"index"`
	PreviousHash *string  `json:"previousHash"`
	Timestamp    *float64 `json:"timestamp"`
	Data         *string  `json:"data"`
	Hash         *string  `json:"hash"`
}

func (w *wireRecord) toRecord() (chain.Record, error) {
	switch {
	case w.Index == nil:
		return chain.Record{}, fmt.Errorf("record: missing index")
	case w.PreviousHash == nil:
		return chain.Record{}, fmt.Errorf("record: missing previousHash")
	case w.Timestamp == nil:
		return chain.Record{}, fmt.Errorf("record: missing timestamp")
	case w.Data == nil:
		return chain.Record{}, fmt.Errorf("record: missing data")
	case w.Hash == nil:
		return chain.Record{}, fmt.Errorf("record: missing hash")
	case *w.Index < 0:
		return chain.Record{}, fmt.Errorf("record: negative index %d", *w.Index)
	}

	return chain.Record{
		Index:        *w.Index,
		PreviousHash: *w.PreviousHash,
		Timestamp:    *w.Timestamp,
		Data:         *w.Data,
		Hash:         *w.Hash,
	}, nil
}

// EncodeMessage returns the wire form of m.
func EncodeMessage(m Message) ([]byte, error) {
	wm := wireMessage{Type: m.Type()}

	switch msg := m.(type) {
	case QueryLatest, QueryAll:
	case ChainAnnounce:
		records := msg.Records
		if records == nil {
			records = []chain.Record{}
		}
		data, err := json.Marshal(records)
		if err != nil {
			return nil, err
		}
		s := string(data)
		wm.Data = &s
	default:
		return nil, ErrUnknownMessageType
	}

	return json.Marshal(wm)
}

// DecodeMessage parses and validates a frame. Any error means the frame must
// be dropped; it says nothing about the state of the connection.
func DecodeMessage(raw []byte) (Message, error) {
	var wm wireMessage
	if err := json.Unmarshal(raw, &wm); err != nil {
		return nil, err
	}

	switch wm.Type {
	case QueryLatestType:
		if wm.Data != nil && *wm.Data != "" {
			return nil, ErrUnexpectedData
		}
		return QueryLatest{}, nil
	case QueryAllType:
		if wm.Data != nil && *wm.Data != "" {
			return nil, ErrUnexpectedData
		}
		return QueryAll{}, nil
	case ResponseChainType:
		if wm.Data == nil {
			return nil, ErrMissingData
		}
		var wrs []wireRecord
		if err := json.Unmarshal([]byte(*wm.Data), &wrs); err != nil {
			return nil, err
		}
		records := make([]chain.Record, 0, len(wrs))
		for i := range wrs {
			r, err := wrs[i].toRecord()
			if err != nil {
				return nil, err
			}
			records = append(records, r)
		}
		return ChainAnnounce{Records: records}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, wm.Type)
	}
}
