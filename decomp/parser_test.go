package decomp

import (
	"strings"
	"testing"
)

const sampleTD = `c decomposition of a small formula
s td 3 2 3
b 1 1 2
b 2 2 3
b 3
1 2
2 3
`

func TestParseTD(t *testing.T) {
	d, err := ParseTD(strings.NewReader(sampleTD))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(d.Bags) != 3 {
		t.Fatalf("expected 3 bags, got %d", len(d.Bags))
	}
	if d.NbVars != 3 {
		t.Errorf("expected 3 vars, got %d", d.NbVars)
	}
	if d.Width != 2 {
		t.Errorf("expected width 2, got %d", d.Width)
	}
	if len(d.Bags[0]) != 2 || d.Bags[0][0] != 1 || d.Bags[0][1] != 2 {
		t.Errorf("wrong bag 1: %v", d.Bags[0])
	}
	if len(d.Bags[2]) != 0 {
		t.Errorf("bag 3 should be empty, got %v", d.Bags[2])
	}
	if len(d.Edges) != 2 {
		t.Errorf("expected 2 edges, got %v", d.Edges)
	}
}

func TestParseTDErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no header", "b 1 1 2\n"},
		{"duplicate header", "s td 1 1 1\ns td 1 1 1\n"},
		{"bad bag id", "s td 1 1 1\nb 7 1\n"},
		{"duplicate bag", "s td 1 1 1\nb 1 1\nb 1 1\n"},
		{"bad variable", "s td 1 1 1\nb 1 x\n"},
		{"bad edge", "s td 2 1 1\nb 1 1\nb 2 1\n1 2 3\n"},
		{"edge out of range", "s td 2 1 1\nb 1 1\nb 2 1\n1 5\n"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTD(strings.NewReader(tt.input)); err == nil {
				t.Errorf("expected an error for %q", tt.input)
			}
		})
	}
}
