// Package pagination slices ordered listings into fixed-size numbered pages.
package pagination

import (
	"errors"
	"strconv"
)

// PageSize is the number of posts shown per listing page.
const PageSize = 10

// Page is one page of a listing. Number is 1-based and always within
// [1, NumPages]; NumPages is at least 1 even for an empty listing.
type Page[T any] struct {
	Items    []T
	Number   int
	NumPages int
	Total    int64
	Size     int
}

// NumPagesFor returns how many pages total items fill at size per page.
func NumPagesFor(total int64, size int) int {
	if size <= 0 {
		size = PageSize
	}
	if total <= 0 {
		return 1
	}
	return int((total + int64(size) - 1) / int64(size))
}

// Clamp turns the raw ?page= value into a valid page number and its row
// offset. Missing or non-numeric values give page 1, values below 1 clamp
// to 1 and values past the end, including ones too large for an int, clamp
// to the last page.
func Clamp(requested string, total int64, size int) (number, offset int) {
	if size <= 0 {
		size = PageSize
	}
	last := NumPagesFor(total, size)
	number, err := strconv.Atoi(requested)
	switch {
	case errors.Is(err, strconv.ErrRange) && number > 0:
		number = last
	case err != nil || number < 1:
		number = 1
	case number > last:
		number = last
	}
	return number, (number - 1) * size
}

// New assembles a page from the already sliced items.
func New[T any](items []T, total int64, number, size int) Page[T] {
	if size <= 0 {
		size = PageSize
	}
	if items == nil {
		items = []T{}
	}
	numPages := NumPagesFor(total, size)
	if number < 1 {
		number = 1
	}
	if number > numPages {
		number = numPages
	}
	return Page[T]{Items: items, Number: number, NumPages: numPages, Total: total, Size: size}
}

func (p Page[T]) Len() int { return len(p.Items) }

func (p Page[T]) HasNext() bool { return p.Number < p.NumPages }

func (p Page[T]) HasPrevious() bool { return p.Number > 1 }

func (p Page[T]) HasOtherPages() bool { return p.NumPages > 1 }

func (p Page[T]) NextPageNumber() int {
	if p.HasNext() {
		return p.Number + 1
	}
	return p.Number
}

func (p Page[T]) PreviousPageNumber() int {
	if p.HasPrevious() {
		return p.Number - 1
	}
	return p.Number
}

// PageRange lists every page number, for rendering page links.
func (p Page[T]) PageRange() []int {
	out := make([]int, p.NumPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
