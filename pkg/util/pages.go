package util

import (
	"fmt"

	"github.com/bradfitz/slice"
	mapset "github.com/deckarep/golang-set"
	"github.com/pkg/errors"
)

var (
	// ErrMissingPage is returned when a page sequence has a gap
	ErrMissingPage = errors.New("Page data is corrupted! Reason: a page is missing")
	// ErrDuplicatePage is returned when a page index repeats
	ErrDuplicatePage = errors.New("Page data is corrupted! Reason: a page index repeats")
	// ErrNoPages is returned when joining an empty sequence
	ErrNoPages = errors.New("Page data is corrupted! Reason: no pages")
)

// Page is one contiguous fragment of a payload
type Page struct {
	Index int
	Data  []byte
}

// PageBudgetError reports a payload that needs more pages than are available
type PageBudgetError struct {
	Length   int
	Required int
	Budget   int
}

func (e *PageBudgetError) Error() string {
	return fmt.Sprintf("payload of %d bytes needs %d pages, only %d available", e.Length, e.Required, e.Budget)
}

// PageCount returns the number of pages needed for length bytes.
// A payload that fits the first page (including an empty one) still takes exactly one page.
func PageCount(length, firstCap, pageCap int) int {
	if length <= firstCap {
		return 1
	}
	rest := length - firstCap
	return (rest+pageCap-1)/pageCap + 1
}

// SplitPages splits data into a first page of up to firstCap bytes followed by pages of up to pageCap bytes.
// Pages alias data.
func SplitPages(data []byte, firstCap, pageCap, maxPages int) ([]Page, error) {
	if firstCap <= 0 || pageCap <= 0 {
		return nil, errors.Errorf("invalid page capacities %d/%d", firstCap, pageCap)
	}
	required := PageCount(len(data), firstCap, pageCap)
	if required > maxPages {
		return nil, &PageBudgetError{Length: len(data), Required: required, Budget: maxPages}
	}
	pages := make([]Page, 0, required)
	lim := firstCap
	for i := 0; i < required; i++ {
		if lim > len(data) {
			lim = len(data)
		}
		pages = append(pages, Page{Index: i, Data: data[:lim]})
		data = data[lim:]
		lim = pageCap
	}
	return pages, nil
}

// JoinPages concatenates pages in index order. Indexes must be unique and contiguous from 0.
func JoinPages(pages []Page) ([]byte, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	sorted := make([]Page, len(pages))
	copy(sorted, pages)
	slice.Sort(sorted, func(i, j int) bool {
		return sorted[i].Index < sorted[j].Index
	})
	indexes := mapset.NewSet()
	for _, p := range sorted {
		if !indexes.Add(p.Index) {
			return nil, ErrDuplicatePage
		}
	}
	ret := []byte{}
	for i, p := range sorted {
		if p.Index != i {
			return nil, errors.Wrapf(ErrMissingPage, "page %d", i)
		}
		ret = append(ret, p.Data...)
	}
	return ret, nil
}
