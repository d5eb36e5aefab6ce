package chain

import "testing"

func TestIsValidSuccessor(t *testing.T) {
	g := Genesis()
	valid := nextRecord(g, "one")

	badIndex := valid
	badIndex.Index = 2
	badIndex.Hash = badIndex.ComputeHash()

	badLink := valid
	badLink.PreviousHash = "0"
	badLink.Hash = badLink.ComputeHash()

	badHash := valid
	badHash.Data = "tampered"

	cases := []struct {
		name      string
		candidate Record
		want      bool
	}{
		{"valid", valid, true},
		{"bad index", badIndex, false},
		{"bad previous hash", badLink, false},
		{"bad hash", badHash, false},
		{"genesis after genesis", g, false},
	}

	for _, c := range cases {
		if got := IsValidSuccessor(c.candidate, g); got != c.want {
			t.Errorf("%s: IsValidSuccessor = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestIsValidChain(t *testing.T) {
	valid := buildRecords(4, "v")

	wrongGenesis := buildRecords(4, "v")
	wrongGenesis[0].Data = "other genesis"
	wrongGenesis[0].Hash = wrongGenesis[0].ComputeHash()

	brokenLink := buildRecords(4, "v")
	brokenLink[2].PreviousHash = brokenLink[0].Hash
	brokenLink[2].Hash = brokenLink[2].ComputeHash()

	tampered := buildRecords(4, "v")
	tampered[3].Data = "tampered"

	cases := []struct {
		name string
		seq  []Record
		want bool
	}{
		{"valid", valid, true},
		{"genesis only", []Record{Genesis()}, true},
		{"empty", []Record{}, false},
		{"nil", nil, false},
		{"wrong genesis", wrongGenesis, false},
		{"broken link", brokenLink, false},
		{"tampered tip", tampered, false},
		{"missing genesis", valid[1:], false},
	}

	for _, c := range cases {
		if got := IsValidChain(c.seq); got != c.want {
			t.Errorf("%s: IsValidChain = %v, want %v", c.name, got, c.want)
		}
	}
}
