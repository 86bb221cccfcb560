package quota

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

func init() {
	// Keep pdfcpu from creating a config directory in the user's home.
	model.ConfigPath = "disable"
}

const (
	labelDesc = "fontname:Helvetica, points:9, position:br, offset:-10 8, scalefactor:1 abs, rotation:0, fillcolor:#B4B4B4, opacity:1"
	markDesc  = "fontname:Helvetica, points:54, position:c, scalefactor:1 abs, rotation:45, fillcolor:#787878, opacity:0.06"
)

// PDFStamper draws a small corner label and a faint diagonal mark on every
// page of an assembled PDF.
type PDFStamper struct {
	Label string
	Mark  string
}

func NewPDFStamper(label, mark string) *PDFStamper {
	return &PDFStamper{Label: label, Mark: mark}
}

func (s *PDFStamper) Stamp(doc []byte) ([]byte, error) {
	conf := model.NewDefaultConfiguration()

	pages, err := api.PageCount(bytes.NewReader(doc), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read page count: %w", err)
	}

	label, err := api.TextWatermark(s.Label, labelDesc, true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("failed to build corner label: %w", err)
	}
	mark, err := api.TextWatermark(s.Mark, markDesc, true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("failed to build diagonal mark: %w", err)
	}

	marks := make(map[int][]*model.Watermark, pages)
	for p := 1; p <= pages; p++ {
		marks[p] = []*model.Watermark{label, mark}
	}

	var out bytes.Buffer
	if err := api.AddWatermarksSliceMap(bytes.NewReader(doc), &out, marks, conf); err != nil {
		return nil, fmt.Errorf("failed to add watermarks: %w", err)
	}
	return out.Bytes(), nil
}
