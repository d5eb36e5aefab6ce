package chain

import "fmt"

// checkSuccessor returns a non-nil error describing why candidate cannot
// follow predecessor.
func checkSuccessor(candidate, predecessor Record) error {
	if candidate.Index != predecessor.Index+1 {
		return fmt.Errorf("invalid index: expected %d, got %d", predecessor.Index+1, candidate.Index)
	}
	if candidate.PreviousHash != predecessor.Hash {
		return fmt.Errorf("invalid previous hash: expected %s, got %s", predecessor.Hash, candidate.PreviousHash)
	}
	if h := candidate.ComputeHash(); h != candidate.Hash {
		return fmt.Errorf("invalid hash: computed %s, got %s", h, candidate.Hash)
	}
	return nil
}

// checkChain returns a non-nil error describing the first defect in seq.
func checkChain(seq []Record) error {
	if len(seq) == 0 {
		return fmt.Errorf("empty chain")
	}
	if !seq[0].IsGenesis() {
		return fmt.Errorf("first record is not the genesis record")
	}
	for i := 1; i < len(seq); i++ {
		if err := checkSuccessor(seq[i], seq[i-1]); err != nil {
			return fmt.Errorf("record %d: %v", i, err)
		}
	}
	return nil
}

// IsValidSuccessor reports whether candidate can be appended directly after
// predecessor: its index follows, it links to the predecessor's hash, and its
// own hash matches its content.
func IsValidSuccessor(candidate, predecessor Record) bool {
	return checkSuccessor(candidate, predecessor) == nil
}

// IsValidChain reports whether seq starts with the Genesis record and every
// Record is a valid successor of the one before it. It stops at the first
// failure.
func IsValidChain(seq []Record) bool {
	return checkChain(seq) == nil
}
