package seed

import "testing"

func TestComputeCounts_Default(t *testing.T) {
	approved, pending, rejected, drafts := computeCounts(10, defaultDistribution)
	if approved+pending+rejected+drafts != 10 {
		t.Fatalf("sum mismatch: got %d", approved+pending+rejected+drafts)
	}
	if approved != 6 || pending != 2 || rejected != 1 || drafts != 1 {
		t.Fatalf("unexpected default counts: approved=%d, pending=%d, rejected=%d, drafts=%d", approved, pending, rejected, drafts)
	}
}

func TestComputeCounts_RoundingGoesToApproved(t *testing.T) {
	approved, pending, rejected, drafts := computeCounts(7, defaultDistribution)
	if approved+pending+rejected+drafts != 7 {
		t.Fatalf("sum mismatch: got %d", approved+pending+rejected+drafts)
	}
	if approved < pending || approved < rejected || approved < drafts {
		t.Fatalf("approved should absorb the remainder: approved=%d, pending=%d, rejected=%d, drafts=%d", approved, pending, rejected, drafts)
	}
}
