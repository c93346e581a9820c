package rusmt

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRemapByInverse(t *testing.T) {
	dense := map[uint32]bool{0: true, 1: false}
	inverse := []uint32{10, 20}
	got := remapByInverse(dense, inverse)
	want := map[uint32]bool{10: true, 20: false}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("remapByInverse mismatch (-want +got):\n%s", diff)
	}
}

func TestVerdictModelResolvesNames(t *testing.T) {
	frames := NewFrameStack()
	if err := frames.Top().Symbols.SetID("p", 1); err != nil {
		t.Fatal(err)
	}
	if err := frames.Top().Symbols.SetID("q", 2); err != nil {
		t.Fatal(err)
	}
	v := Verdict{Sat: true, assignments: map[uint32]bool{1: true, 2: false}}
	got := v.Model(frames)
	want := map[string]bool{"p": true, "q": false}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Model mismatch (-want +got):\n%s", diff)
	}
}

func TestVerdictModelDropsUnresolvableIDs(t *testing.T) {
	frames := NewFrameStack()
	v := Verdict{Sat: true, assignments: map[uint32]bool{99: true}}
	got := v.Model(frames)
	if len(got) != 0 {
		t.Fatalf("Model() = %v, want empty map for an id with no bound name", got)
	}
}
