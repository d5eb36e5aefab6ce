package peers

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"
)

const jsonPeerPath = "peers.json"

// JSONPeers reads and writes a list of peer addresses in a JSON file. This
// allows human operators to manipulate the file.
type JSONPeers struct {
	l    sync.Mutex
	path string
}

// NewJSONPeers creates a new JSONPeers with reference to a base directory
// where the peers.json file resides.
func NewJSONPeers(base string) *JSONPeers {
	path := filepath.Join(base, jsonPeerPath)
	store := &JSONPeers{
		path: path,
	}
	return store
}

// Path returns the location of the JSON file.
func (j *JSONPeers) Path() string {
	return j.path
}

// Peers returns the addresses listed in the file. A missing or empty file
// yields no addresses and no error.
func (j *JSONPeers) Peers() ([]string, error) {
	j.l.Lock()
	defer j.l.Unlock()

	// Read the file
	buf, err := ioutil.ReadFile(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	// Check for no peers
	if len(bytes.TrimSpace(buf)) == 0 {
		return nil, nil
	}

	// Decode the peers
	var addrs []string
	dec := json.NewDecoder(bytes.NewReader(buf))
	if err := dec.Decode(&addrs); err != nil {
		return nil, err
	}

	return addrs, nil
}

// SetPeers writes addrs to the file.
func (j *JSONPeers) SetPeers(addrs []string) error {
	j.l.Lock()
	defer j.l.Unlock()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if err := enc.Encode(addrs); err != nil {
		return err
	}

	// Write out as JSON
	return ioutil.WriteFile(j.path, buf.Bytes(), 0755)
}
