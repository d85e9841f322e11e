package ai

import (
	"errors"
	"testing"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestUnmarshalFlexible(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    sample
		wantErr bool
	}{
		{
			name:  "standard json",
			input: `{"name": "test", "count": 2}`,
			want:  sample{Name: "test", Count: 2},
		},
		{
			name:  "double encoded",
			input: `"{\"name\": \"test\", \"count\": 1}"`,
			want:  sample{Name: "test", Count: 1},
		},
		{
			name:  "malformed but repairable",
			input: `{name: "test", count: 3}`,
			want:  sample{Name: "test", Count: 3},
		},
		{
			name:  "duplicate leading brace",
			input: `{{"name": "test", "count": 4}`,
			want:  sample{Name: "test", Count: 4},
		},
		{
			name:  "surrounding whitespace",
			input: "\n  {\"name\": \"test\", \"count\": 5}  \n",
			want:  sample{Name: "test", Count: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got sample
			err := UnmarshalFlexible(tt.input, &got)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestUnmarshalFlexibleSchemaError(t *testing.T) {
	var got sample
	err := UnmarshalFlexible(`{"name": ["not", "a", "string"]}`, &got)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaError, got %T", err)
	}
	if schemaErr.Raw == "" {
		t.Error("expected raw response to be preserved")
	}
}

func TestGenerateSchema(t *testing.T) {
	schema := GenerateSchema(sample{})
	if schema == nil {
		t.Fatal("expected schema, got nil")
	}
	schema = GenerateSchema(&sample{})
	if schema == nil {
		t.Fatal("expected schema from pointer type, got nil")
	}
}
