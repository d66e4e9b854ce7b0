package models

import (
	"fmt"
	"strconv"
)

// PageRange is a contiguous, ascending, 1-based inclusive run of pages.
type PageRange struct {
	Start int
	End   int
}

// SinglePage returns the range holding only page n.
func SinglePage(n int) PageRange {
	return PageRange{Start: n, End: n}
}

// Len returns the number of pages in the range.
func (r PageRange) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// Pages lists the page numbers in ascending order.
func (r PageRange) Pages() []int {
	pages := make([]int, 0, r.Len())
	for p := r.Start; p <= r.End; p++ {
		pages = append(pages, p)
	}
	return pages
}

// Within reports whether the range is well formed for a document of pageCount pages.
func (r PageRange) Within(pageCount int) bool {
	return r.Start >= 1 && r.Start <= r.End && r.End <= pageCount
}

func (r PageRange) String() string {
	if r.Start == r.End {
		return strconv.Itoa(r.Start)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// MergeResult is the single output of a merge.
type MergeResult struct {
	Output    ConversionResult
	Inputs    []string // input names in the order they were merged
	PageCount int
}

// SplitMode selects how a document is split.
type SplitMode int

const (
	SplitIndividual SplitMode = iota
	SplitRanges
)

func (m SplitMode) String() string {
	switch m {
	case SplitIndividual:
		return "individual"
	case SplitRanges:
		return "ranges"
	default:
		return "unknown"
	}
}

// SplitOutput is either a produced document (Result set) or a failure (Err set).
type SplitOutput struct {
	Range  PageRange
	Result *ConversionResult
	Err    error
}

// OK reports whether the output was produced.
func (o SplitOutput) OK() bool {
	return o.Err == nil && o.Result != nil
}

// SplitResult collects split outputs in range order.
type SplitResult struct {
	Source  string
	Mode    SplitMode
	Outputs []SplitOutput
}

// Succeeded returns the produced documents in range order.
func (r *SplitResult) Succeeded() []*ConversionResult {
	var out []*ConversionResult
	for _, o := range r.Outputs {
		if o.OK() {
			out = append(out, o.Result)
		}
	}
	return out
}

// Failed returns the outputs that could not be produced.
func (r *SplitResult) Failed() []SplitOutput {
	var out []SplitOutput
	for _, o := range r.Outputs {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// TransformKind names a single-document transform.
type TransformKind string

const (
	TransformRotate      TransformKind = "rotate"
	TransformCompress    TransformKind = "compress"
	TransformRasterize   TransformKind = "rasterize"
	TransformExtractText TransformKind = "extract-text"
	TransformImageToPDF  TransformKind = "image-to-pdf"
)

// TransformResult is the outcome of one transform over one input
// (or, for combined image conversion, over the whole batch).
type TransformResult struct {
	Kind       TransformKind
	Source     string
	Outputs    []ConversionResult
	InputSize  int64
	OutputSize int64
	TextFound  bool // extract-text only
}

// SizeDelta is InputSize minus OutputSize; negative when the output grew.
func (r *TransformResult) SizeDelta() int64 {
	return r.InputSize - r.OutputSize
}

// ReductionPercent reports how much smaller the output is, in percent.
// It is zero or negative when nothing was saved.
func (r *TransformResult) ReductionPercent() float64 {
	if r.InputSize == 0 {
		return 0
	}
	return float64(r.SizeDelta()) / float64(r.InputSize) * 100
}
