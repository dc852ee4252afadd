package report

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Part", "Sheets", "Util"}
	rows := [][]string{
		{"Bracket", "3", "61.5%"},
		{"Strip", "12", "8.0%"},
	}
	right := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, right)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if lines[0] != "Part     Sheets   Util" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "-------  ------  -----" {
		t.Fatalf("unexpected rule line: %q", lines[1])
	}
	if lines[2] != "Bracket       3  61.5%" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
	if lines[3] != "Strip        12   8.0%" {
		t.Fatalf("unexpected row line: %q", lines[3])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"Name", "N"}, [][]string{{"部品", "1"}}, nil)
	// Two double-width runes occupy four columns, the same as "Name".
	if lines[2] != "部品  1" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableEmpty(t *testing.T) {
	if lines := formatTable(nil, nil, nil); lines != nil {
		t.Fatalf("expected nil, got %v", lines)
	}
}
