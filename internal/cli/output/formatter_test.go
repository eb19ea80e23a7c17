package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"", FormatTable, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON).(*JSONFormatter); !ok {
		t.Error("expected JSONFormatter")
	}
	if _, ok := NewFormatter(FormatYAML).(*YAMLFormatter); !ok {
		t.Error("expected YAMLFormatter")
	}
	if _, ok := NewFormatter("unknown").(*TableFormatter); !ok {
		t.Error("expected TableFormatter as the default")
	}
}

type sample struct {
	DaysUntilExpiry int      `json:"days_until_expiry"`
	DomainNames     []string `json:"domain_names"`
}

func TestJSONFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONFormatter{}).Format(&buf, sample{DaysUntilExpiry: 5, DomainNames: []string{"a.example.com"}}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	if !strings.Contains(buf.String(), "\n  \"days_until_expiry\": 5") {
		t.Errorf("expected indented JSON, got:\n%s", buf.String())
	}
	var back sample
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
}

func TestYAMLFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLFormatter{}).Format(&buf, sample{DaysUntilExpiry: 5, DomainNames: []string{"a.example.com"}}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "days_until_expiry: 5") {
		t.Errorf("expected json key names in YAML, got:\n%s", out)
	}
	var back map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if names, ok := back["domain_names"].([]any); !ok || len(names) != 1 {
		t.Errorf("domain_names = %v", back["domain_names"])
	}
}

func TestPrint(t *testing.T) {
	data := map[string]any{"status": "healthy"}
	table := func() *Table {
		tbl := NewTable("STATUS")
		tbl.AddRow("healthy")
		return tbl
	}

	var buf bytes.Buffer
	if err := Print(&buf, FormatTable, data, table); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "STATUS\nhealthy\n" {
		t.Errorf("table output = %q", buf.String())
	}

	buf.Reset()
	if err := Print(&buf, FormatTable, data, nil); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "status: healthy\n" {
		t.Errorf("fallback output = %q", buf.String())
	}

	buf.Reset()
	if err := Print(&buf, FormatJSON, data, table); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"status": "healthy"`) {
		t.Errorf("json output = %q", buf.String())
	}
}
