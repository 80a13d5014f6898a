package document

import (
	"fmt"
	"strings"
	"testing"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		fields  map[string]any
		wantErr bool
	}{
		{"valid", "doc-1", map[string]any{"title": "hello"}, false},
		{"valid underscore", "doc_1", nil, false},
		{"empty id", "", nil, true},
		{"id too long", strings.Repeat("a", 257), nil, true},
		{"id with spaces", "doc 1", nil, true},
		{"id with slash", "a/b", nil, true},
		{"reserved id resolve", "resolve", nil, true},
		{"reserved id batch", "batch", nil, true},
		{"reserved id field", "doc-1", map[string]any{"id": "x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.id, tt.fields)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_TooManyFields(t *testing.T) {
	fields := make(map[string]any, MaxFields+1)
	for i := 0; i <= MaxFields; i++ {
		fields[fmt.Sprintf("field_%d", i)] = i
	}

	_, err := New("doc-1", fields)
	if err == nil {
		t.Fatal("expected error for too many fields")
	}
}

func TestNew_CopiesFields(t *testing.T) {
	fields := map[string]any{"title": "original"}
	doc, err := New("doc-1", fields)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fields["title"] = "mutated"
	if v, _ := doc.Field("title"); v != "original" {
		t.Errorf("document shares caller's map: title = %v", v)
	}
}

func TestWithField_LeavesReceiverUntouched(t *testing.T) {
	doc, err := New("doc-1", map[string]any{"author": "u1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	derived := doc.WithField("author", map[string]any{"id": "u1", "name": "Ada"})

	if v, _ := doc.Field("author"); v != "u1" {
		t.Errorf("receiver mutated: author = %v", v)
	}
	if _, ok := derived.Field("author"); !ok {
		t.Error("derived copy missing replaced field")
	}
	if derived.Revision() != doc.Revision() {
		t.Errorf("revision changed: %d != %d", derived.Revision(), doc.Revision())
	}
}

func TestWithField_NilFields(t *testing.T) {
	doc := Reconstruct("doc-1", nil, 1)
	derived := doc.WithField("author", nil)
	if v, ok := derived.Field("author"); !ok || v != nil {
		t.Errorf("expected nil field set, got %v (ok=%v)", v, ok)
	}
}

func TestField_Lookup(t *testing.T) {
	doc := Reconstruct("doc-1", map[string]any{"set": "x", "null": nil}, 1)

	if v, ok := doc.Field("set"); !ok || v != "x" {
		t.Errorf("set field: got %v (ok=%v)", v, ok)
	}
	if v, ok := doc.Field("null"); !ok || v != nil {
		t.Errorf("null field must be present: got %v (ok=%v)", v, ok)
	}
	if _, ok := doc.Field("missing"); ok {
		t.Error("missing field reported as present")
	}
}
