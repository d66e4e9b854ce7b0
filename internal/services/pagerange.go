package services

import (
	"strconv"
	"strings"

	"github.com/Lllllllleong/pdfworkbench/internal/models"
)

// ParseRanges parses a comma-separated list of page numbers and "a-b" ranges
// against a document of pageCount pages. Tokens that are malformed or out of
// bounds are dropped; the rest keep their textual order. Duplicates and
// overlaps are kept.
func ParseRanges(expr string, pageCount int) []models.PageRange {
	var ranges []models.PageRange
	for _, tok := range strings.Split(expr, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		r, ok := parseRangeToken(tok)
		if !ok || !r.Within(pageCount) {
			continue
		}
		ranges = append(ranges, r)
	}
	return ranges
}

func parseRangeToken(tok string) (models.PageRange, bool) {
	lo, hi, isRange := strings.Cut(tok, "-")
	if !isRange {
		n, ok := parsePage(tok)
		if !ok {
			return models.PageRange{}, false
		}
		return models.SinglePage(n), true
	}
	start, ok := parsePage(strings.TrimSpace(lo))
	if !ok {
		return models.PageRange{}, false
	}
	end, ok := parsePage(strings.TrimSpace(hi))
	if !ok {
		return models.PageRange{}, false
	}
	return models.PageRange{Start: start, End: end}, true
}

// parsePage accepts unsigned decimal digits only; "+3" is not a page.
func parsePage(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}
