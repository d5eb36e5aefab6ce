package chain

import (
	"reflect"
	"testing"
)

func TestNewChain(t *testing.T) {
	c := newTestChain(t, 1)

	if c.Len() != 1 {
		t.Fatalf("new chain should have length 1, got %d", c.Len())
	}

	if !c.Tip().IsGenesis() {
		t.Fatalf("new chain tip should be genesis, got %v", c.Tip())
	}
}

func TestNewChainRejectsInvalidStore(t *testing.T) {
	store := NewInmemStore()
	bad := Genesis()
	bad.Data = "not genesis"
	if err := store.Append(bad); err != nil {
		t.Fatal(err)
	}

	if _, err := NewChain(store, nil); err == nil {
		t.Fatal("NewChain should fail on a store that does not start with genesis")
	}
}

func TestBuildNext(t *testing.T) {
	c := newTestChain(t, 3)
	tip := c.Tip()

	r := c.BuildNext("payload")

	if r.Index != tip.Index+1 {
		t.Fatalf("index should be %d, got %d", tip.Index+1, r.Index)
	}
	if r.PreviousHash != tip.Hash {
		t.Fatalf("previous hash should be %s, got %s", tip.Hash, r.PreviousHash)
	}
	if r.Hash != r.ComputeHash() {
		t.Fatalf("hash should match content")
	}
	if c.Len() != 3 {
		t.Fatalf("BuildNext should not append")
	}
	if !IsValidSuccessor(r, tip) {
		t.Fatalf("built record should be a valid successor")
	}
}

func TestTryAppend(t *testing.T) {
	c := newTestChain(t, 2)
	tip := c.Tip()

	stale := nextRecord(Genesis(), "stale")
	if c.TryAppend(stale) {
		t.Fatal("stale record should be rejected")
	}
	if c.Len() != 2 || c.Tip() != tip {
		t.Fatal("chain should be unchanged after rejected append")
	}

	forged := nextRecord(tip, "forged")
	forged.Hash = "00"
	if c.TryAppend(forged) {
		t.Fatal("record with bad hash should be rejected")
	}
	if c.Len() != 2 || c.Tip() != tip {
		t.Fatal("chain should be unchanged after rejected append")
	}

	next := nextRecord(tip, "next")
	if !c.TryAppend(next) {
		t.Fatal("valid successor should be appended")
	}
	if c.Len() != 3 || c.Tip() != next {
		t.Fatalf("tip should be the appended record, got %v", c.Tip())
	}
}

func TestTryReplace(t *testing.T) {
	longerInvalid := buildRecords(6, "x")
	longerInvalid[4].Data = "tampered"

	cases := []struct {
		name      string
		local     int
		candidate []Record
		replaced  bool
	}{
		{"longer valid", 2, buildRecords(5, "remote"), true},
		{"same length valid", 3, buildRecords(3, "remote"), false},
		{"shorter valid", 5, buildRecords(2, "remote"), false},
		{"longer invalid", 2, longerInvalid, false},
		{"empty", 1, []Record{}, false},
	}

	for _, tc := range cases {
		c := newTestChain(t, tc.local)
		before := c.Records()

		got := c.TryReplace(tc.candidate)
		if got != tc.replaced {
			t.Errorf("%s: TryReplace = %v, want %v", tc.name, got, tc.replaced)
			continue
		}

		after := c.Records()
		if tc.replaced {
			if !reflect.DeepEqual(after, tc.candidate) {
				t.Errorf("%s: chain should equal candidate", tc.name)
			}
		} else if !reflect.DeepEqual(after, before) {
			t.Errorf("%s: chain should be unchanged", tc.name)
		}
	}
}

func TestRecordsIsSnapshot(t *testing.T) {
	c := newTestChain(t, 3)

	snapshot := c.Records()
	snapshot[1].Data = "mutated"

	if c.Records()[1].Data == "mutated" {
		t.Fatal("Records should return a copy")
	}
}

func TestTryReplaceKeepsCandidateIndependent(t *testing.T) {
	c := newTestChain(t, 1)
	candidate := buildRecords(3, "remote")

	if !c.TryReplace(candidate) {
		t.Fatal("replacement should succeed")
	}

	candidate[2].Data = "mutated"
	if c.Tip().Data == "mutated" {
		t.Fatal("chain should not alias the candidate slice")
	}
}
