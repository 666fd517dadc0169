package domain

import (
	"encoding/json"
	"testing"
)

func TestDocument_JSONFieldNames(t *testing.T) {
	doc := Document{
		Path:     "notes/todo.txt",
		Encoding: "windows-1252",
		Content:  "café au lait",
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	// Bleve resolves field names through the json tags
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Failed to unmarshal to map: %v", err)
	}

	expectedFields := map[string]string{
		FieldPath:     "notes/todo.txt",
		FieldEncoding: "windows-1252",
		FieldContent:  "café au lait",
	}

	for field, expected := range expectedFields {
		if val, ok := raw[field]; !ok {
			t.Errorf("Missing field %q in JSON output", field)
		} else if val != expected {
			t.Errorf("Field %q = %v, want %v", field, val, expected)
		}
	}
}

func TestFieldConstants(t *testing.T) {
	tests := []struct {
		name     string
		constant string
		expected string
	}{
		{"FieldPath", FieldPath, "path"},
		{"FieldEncoding", FieldEncoding, "encoding"},
		{"FieldContent", FieldContent, "content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.constant != tt.expected {
				t.Errorf("%s = %q, want %q", tt.name, tt.constant, tt.expected)
			}
		})
	}
}
