package render

import (
	"bytes"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"YAML", FormatYAML, false},
		{"table", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRender(t *testing.T) {
	data := struct {
		OldID int64 `json:"old_id" yaml:"old_id"`
		Code  string `json:"code" yaml:"code"`
	}{OldID: 7, Code: "10"}

	var buf bytes.Buffer
	if err := NewRenderer(&buf).Render(FormatJSON, data); err != nil {
		t.Fatal(err)
	}
	if want := "{\n  \"old_id\": 7,\n  \"code\": \"10\"\n}\n"; buf.String() != want {
		t.Errorf("json = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	if err := NewRenderer(&buf).Render(FormatYAML, data); err != nil {
		t.Fatal(err)
	}
	if want := "old_id: 7\ncode: \"10\"\n"; buf.String() != want {
		t.Errorf("yaml = %q, want %q", buf.String(), want)
	}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)
	err := r.RenderTable([]string{"CODE", "ID", "SUBJECT"}, [][]string{
		{"10", "551", "Air Law"},
		{"21", "560", "Aircraft General Knowledge"},
	})
	if err != nil {
		t.Fatal(err)
	}

	want := "CODE  ID   SUBJECT\n" +
		"----  ---  --------------------------\n" +
		"10    551  Air Law\n" +
		"21    560  Aircraft General Knowledge\n"
	if buf.String() != want {
		t.Errorf("table =\n%s\nwant\n%s", buf.String(), want)
	}

	buf.Reset()
	if err := r.RenderTable([]string{"CODE"}, nil); err != nil || buf.Len() != 0 {
		t.Errorf("empty table should render nothing, got %q", buf.String())
	}
}
