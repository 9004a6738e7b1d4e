package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	categories := Default()
	if len(categories) != 13 {
		t.Fatalf("expected 13 categories, got %d", len(categories))
	}

	if categories[0].ID != "VC" {
		t.Errorf("expected VC first, got %s", categories[0].ID)
	}
	if categories[12].ID != "Other_Matters" {
		t.Errorf("expected Other_Matters last, got %s", categories[12].ID)
	}

	if err := Validate(categories); err != nil {
		t.Errorf("built-in table should validate: %v", err)
	}

	for _, c := range categories {
		if len(c.Phrases) == 0 {
			t.Errorf("category %s has no phrases", c.ID)
		}
		for _, p := range c.Phrases {
			if p == "" {
				t.Errorf("category %s has an empty phrase", c.ID)
			}
		}
	}
}

func TestDefaultSplitsJoinedPhrases(t *testing.T) {
	var mr, related []string
	for _, c := range Default() {
		switch c.ID {
		case "MR":
			mr = c.Phrases
		case "Related_Agreement":
			related = c.Phrases
		}
	}

	if !contains(mr, "regulatory approval") || !contains(mr, "state approval") {
		t.Errorf("MR phrases not split: %v", mr)
	}
	if !contains(related, "lease agreement") || !contains(related, "financing agreement") {
		t.Errorf("Related_Agreement phrases not split: %v", related)
	}
}

func TestDefaultReturnsCopy(t *testing.T) {
	a := Default()
	a[0].Phrases[0] = "mutated"
	a[0].ID = "X"

	b := Default()
	if b[0].ID != "VC" || b[0].Phrases[0] != "tier price" {
		t.Error("Default should not share state between calls")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    int
		wantErr bool
	}{
		{
			name: "valid table",
			yaml: `
categories:
  - id: Payment
    name: Payment Term
    phrases: [payment, invoice, "  "]
  - id: Tax
    name: Tax
    phrases: [tax]
`,
			want: 2,
		},
		{
			name:    "missing id",
			yaml:    "categories:\n  - name: Payment\n    phrases: [payment]\n",
			wantErr: true,
		},
		{
			name:    "missing name",
			yaml:    "categories:\n  - id: Payment\n    phrases: [payment]\n",
			wantErr: true,
		},
		{
			name:    "duplicate id",
			yaml:    "categories:\n  - {id: A, name: A}\n  - {id: A, name: B}\n",
			wantErr: true,
		},
		{
			name: "empty table",
			yaml: "categories: []\n",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			categories, err := Parse([]byte(tt.yaml))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCatalog) {
					t.Fatalf("expected ErrInvalidCatalog, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(categories) != tt.want {
				t.Errorf("expected %d categories, got %d", tt.want, len(categories))
			}
		})
	}
}

func TestParseDropsBlankPhrases(t *testing.T) {
	categories, err := Parse([]byte("categories:\n  - {id: P, name: Payment, phrases: [payment, '', ' invoice ']}\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := categories[0].Phrases
	if len(got) != 2 || got[0] != "payment" || got[1] != "invoice" {
		t.Errorf("unexpected phrases: %q", got)
	}
}

func TestLoad(t *testing.T) {
	categories, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(categories) != 13 {
		t.Errorf("empty path should return built-in table, got %d", len(categories))
	}

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte("categories:\n  - {id: P, name: Payment, phrases: [payment]}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	categories, err = Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(categories) != 1 || categories[0].ID != "P" {
		t.Errorf("unexpected override table: %+v", categories)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
