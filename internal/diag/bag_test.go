package diag

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBagPreservesArrivalOrder(t *testing.T) {
	bag := NewBag(0)
	sink := BagSink{Bag: bag}

	sink.Push(SevWarning, "w1", "", NoPosition, NoPosition)
	sink.Push(SevError, "e1", "file:///a.groovy", 1, 2)
	sink.Push(SevInfo, "i1", "", NoPosition, NoPosition)

	want := []Diagnostic{
		NewWarning("w1"),
		New(SevError, "e1", "file:///a.groovy", 1, 2),
		NewInfo("i1"),
	}
	if diff := cmp.Diff(want, bag.Items()); diff != "" {
		t.Fatalf("bag items mismatch (-want +got):\n%s", diff)
	}
	if !bag.HasErrors() || !bag.HasWarnings() {
		t.Fatal("expected errors and warnings")
	}
	if bag.Count(SevError) != 1 || bag.Count(SevInfo) != 1 {
		t.Fatalf("unexpected counts: errors=%d info=%d", bag.Count(SevError), bag.Count(SevInfo))
	}
}

func TestBagLimit(t *testing.T) {
	bag := NewBag(2)
	for range 5 {
		bag.Add(NewError("boom"))
	}
	if bag.Len() != 2 {
		t.Fatalf("Len = %d, want 2", bag.Len())
	}
	if bag.Dropped() != 3 {
		t.Fatalf("Dropped = %d, want 3", bag.Dropped())
	}
}

func TestBagMerge(t *testing.T) {
	a := NewBag(1)
	a.Add(NewError("a"))
	b := NewBag(0)
	b.Add(NewWarning("b"))
	b.Add(NewInfo("c"))

	a.Merge(b)
	if a.Len() != 3 || a.Cap() != 3 {
		t.Fatalf("after merge: len=%d cap=%d", a.Len(), a.Cap())
	}
}

func TestMultiSinkFansOut(t *testing.T) {
	first, second := NewBag(0), NewBag(0)
	var calls int
	sink := MultiSink{BagSink{Bag: first}, nil, BagSink{Bag: second}, SinkFunc(func(Severity, string, string, int, int) { calls++ })}

	Emit(sink, NewError("x"))
	if first.Len() != 1 || second.Len() != 1 || calls != 1 {
		t.Fatalf("fan-out failed: %d %d %d", first.Len(), second.Len(), calls)
	}
}
