package qdrant

import (
	"testing"
)

func TestPointID_Stable(t *testing.T) {
	a := pointID("tk-20260314-abc123")
	b := pointID("tk-20260314-abc123")
	if a.GetNum() != b.GetNum() {
		t.Error("point id derivation must be stable for the same ref id")
	}
}

func TestPointID_DistinguishesIDs(t *testing.T) {
	a := pointID("tk-20260314-abc123")
	b := pointID("nt-20260314-abc123")
	if a.GetNum() == b.GetNum() {
		t.Error("different ref ids should map to different point ids")
	}
}
