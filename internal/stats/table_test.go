package stats

import "testing"

func TestTableAlignsColumns(t *testing.T) {
	tbl := newTable(
		column{header: "Group"},
		column{header: "Recall", align: alignRight},
		column{header: "Seen", align: alignRight},
	)
	tbl.addRow("m2", "97%", "12")
	tbl.addRow("String 6 (E)", "8%", "3")

	lines := tbl.lines()
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Group        Recall Seen" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "m2              97%   12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "String 6 (E)     8%    3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestTableCountsAccidentalsAsOneCell(t *testing.T) {
	tbl := newTable(column{header: "Key"}, column{header: "N", align: alignRight})
	tbl.addRow("F♯", "1")
	tbl.addRow("C", "2")

	lines := tbl.lines()
	if lines[1] != "F♯  1" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "C   2" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestTableWithoutHeadersTrimsTrailingPadding(t *testing.T) {
	tbl := newTable(column{}, column{})
	tbl.addRow("All", "x")
	tbl.addRow("m2")

	lines := tbl.lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", lines)
	}
	if lines[0] != "All x" || lines[1] != "m2" {
		t.Fatalf("unexpected lines: %q", lines)
	}
}

func TestTableTruncatesToMaxWidth(t *testing.T) {
	tbl := newTable(column{header: "Group", maxWidth: 6})
	tbl.addRow("String 6 (E)")

	lines := tbl.lines()
	if lines[1] != "Strin…" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
}

func TestTableEmpty(t *testing.T) {
	if lines := newTable().lines(); lines != nil {
		t.Fatalf("expected no lines, got %q", lines)
	}
}
