package converter

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// MergedName is the file name of a merge result.
	MergedName = "merged-document.pdf"
	// ImagesName is the file name of an image collection.
	ImagesName = "images-to-pdf.pdf"
)

// BaseName strips directories and a trailing ".pdf" in any case.
func BaseName(name string) string {
	base := filepath.Base(name)
	if strings.EqualFold(filepath.Ext(base), ".pdf") {
		base = base[:len(base)-4]
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "document"
	}
	return base
}

// CompressedName returns "<base>-compressed.pdf".
func CompressedName(source string) string {
	return BaseName(source) + "-compressed.pdf"
}

// SplitName returns "<base>-pages-<n1>-<n2>...pdf" for 1-based page numbers.
func SplitName(source string, pages []int) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = fmt.Sprint(p)
	}
	return BaseName(source) + "-pages-" + strings.Join(parts, "-") + ".pdf"
}
