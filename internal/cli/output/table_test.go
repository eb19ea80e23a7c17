package output

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestTable_Render(t *testing.T) {
	tbl := NewTable("IDENTIFIER", "DAYS")
	tbl.AddRow("example_com", "12")
	tbl.AddRow("wildcard_example_org", "3")

	var buf bytes.Buffer
	if err := tbl.Render(&buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "IDENTIFIER") {
		t.Errorf("header = %q", lines[0])
	}
	// Columns are aligned: DAYS starts at the same offset in every line.
	col := strings.Index(lines[0], "DAYS")
	if strings.Index(lines[1], "12") != col || strings.Index(lines[2], "3") != col {
		t.Errorf("columns not aligned:\n%s", buf.String())
	}
}

func TestTable_RenderWithOptions_NoHeaders(t *testing.T) {
	tbl := NewTable("A")
	tbl.AddRow("x")

	var buf bytes.Buffer
	if err := tbl.RenderWithOptions(&buf, true); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "x\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestTable_RenderNoRows(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTable("A", "B").Render(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "A  B\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestTableFormatter_Format(t *testing.T) {
	tbl := NewTable("K")
	tbl.AddRow("v")

	var buf bytes.Buffer
	f := &TableFormatter{}
	if err := f.Format(&buf, tbl); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "K\nv\n" {
		t.Errorf("pointer table = %q", buf.String())
	}

	buf.Reset()
	if err := f.Format(&buf, *tbl); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "K\nv\n" {
		t.Errorf("value table = %q", buf.String())
	}

	buf.Reset()
	if err := f.Format(&buf, nil); err != nil || buf.Len() != 0 {
		t.Errorf("nil: err = %v output = %q", err, buf.String())
	}

	buf.Reset()
	if err := f.Format(&buf, map[string]int{"count": 2}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "count: 2\n" {
		t.Errorf("fallback = %q", buf.String())
	}
}

func TestCell(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 30, 0, 0, time.Local)
	empty := ""

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "-"},
		{"string", "abc", "abc"},
		{"empty string", "", "-"},
		{"nil string pointer", (*string)(nil), "-"},
		{"empty string pointer", &empty, "-"},
		{"true", true, "yes"},
		{"false", false, "no"},
		{"time", ts, "2026-03-01 12:30"},
		{"zero time", time.Time{}, "-"},
		{"time pointer", &ts, "2026-03-01 12:30"},
		{"nil time pointer", (*time.Time)(nil), "-"},
		{"strings", []string{"a", "b"}, "a,b"},
		{"no strings", []string{}, "-"},
		{"float", 1.5, "1.50"},
		{"int", 42, "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cell(tt.in); got != tt.want {
				t.Errorf("Cell(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
