package converter

import "testing"

func TestNaming(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"compressed", CompressedName("report.pdf"), "report-compressed.pdf"},
		{"compressed upper ext", CompressedName("/tmp/Scan.PDF"), "Scan-compressed.pdf"},
		{"compressed other ext", CompressedName("notes.txt"), "notes.txt-compressed.pdf"},
		{"split", SplitName("report.pdf", []int{1, 3}), "report-pages-1-3.pdf"},
		{"split single", SplitName("a/b/deck.pdf", []int{12}), "deck-pages-12.pdf"},
		{"empty base", CompressedName(".pdf"), "document-compressed.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
