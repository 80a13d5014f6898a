package resolve

import (
	"testing"

	"github.com/patchwell/docref/internal/domain/document"
)

func orderedIDs(docs []document.Document) []string {
	ids := make([]string, len(docs))
	for i := range docs {
		ids[i] = docs[i].ID()
	}
	return ids
}

func TestApply_NumericAscending(t *testing.T) {
	docs := []document.Document{
		document.Reconstruct("b", map[string]any{"weight": 2.0}, 1),
		document.Reconstruct("c", map[string]any{"weight": 3.0}, 1),
		document.Reconstruct("a", map[string]any{"weight": 1.0}, 1),
	}

	NewOrder("weight", false).Apply(docs)

	got := orderedIDs(docs)
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestApply_StringDescending(t *testing.T) {
	docs := []document.Document{
		document.Reconstruct("1", map[string]any{"name": "alpha"}, 1),
		document.Reconstruct("2", map[string]any{"name": "gamma"}, 1),
		document.Reconstruct("3", map[string]any{"name": "beta"}, 1),
	}

	NewOrder("name", true).Apply(docs)

	got := orderedIDs(docs)
	want := []string{"2", "3", "1"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestApply_MissingFieldSortsLast(t *testing.T) {
	docs := []document.Document{
		document.Reconstruct("x", map[string]any{}, 1),
		document.Reconstruct("a", map[string]any{"weight": 1.0}, 1),
	}

	NewOrder("weight", false).Apply(docs)

	if docs[0].ID() != "a" || docs[1].ID() != "x" {
		t.Errorf("order = %v, want document with field first", orderedIDs(docs))
	}
}

func TestApply_ZeroOrderKeepsInput(t *testing.T) {
	docs := []document.Document{
		document.Reconstruct("b", map[string]any{"weight": 2.0}, 1),
		document.Reconstruct("a", map[string]any{"weight": 1.0}, 1),
	}

	var o Order
	o.Apply(docs)

	if docs[0].ID() != "b" || docs[1].ID() != "a" {
		t.Errorf("zero order reordered documents: %v", orderedIDs(docs))
	}
}

func TestApply_MixedIntAndFloat(t *testing.T) {
	docs := []document.Document{
		document.Reconstruct("b", map[string]any{"weight": 2}, 1),
		document.Reconstruct("a", map[string]any{"weight": 1.5}, 1),
	}

	NewOrder("weight", false).Apply(docs)

	if docs[0].ID() != "a" {
		t.Errorf("order = %v, want [a b]", orderedIDs(docs))
	}
}
