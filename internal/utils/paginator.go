package utils

import (
	"strconv"

	"gorm.io/gorm"
)

// Page 分页信息, 只依赖总数、每页条数和请求的页码
type Page struct {
	Number   int   // 当前页, 从 1 开始
	NumPages int   // 总页数, 空集合时为 1
	Count    int64 // 总条数
	PerPage  int
}

// NewPage resolves the raw "page" query value against a collection of count items.
// A missing or non-numeric value selects page 1; anything outside 1..NumPages
// selects the last page.
func NewPage(count int64, perPage int, raw string) Page {
	if perPage <= 0 {
		perPage = 1
	}
	numPages := int((count + int64(perPage) - 1) / int64(perPage))
	if numPages < 1 {
		numPages = 1
	}

	number, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		number = 1
	case number < 1 || number > numPages:
		number = numPages
	}

	return Page{
		Number:   number,
		NumPages: numPages,
		Count:    count,
		PerPage:  perPage,
	}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// Len is the number of items on this page.
func (p Page) Len() int {
	remaining := p.Count - int64(p.Offset())
	if remaining <= 0 {
		return 0
	}
	if remaining > int64(p.PerPage) {
		return p.PerPage
	}
	return int(remaining)
}

func (p Page) HasNext() bool {
	return p.Number < p.NumPages
}

func (p Page) HasPrevious() bool {
	return p.Number > 1
}

func (p Page) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}

func (p Page) NextPageNumber() int {
	if !p.HasNext() {
		return p.Number
	}
	return p.Number + 1
}

func (p Page) PreviousPageNumber() int {
	if !p.HasPrevious() {
		return p.Number
	}
	return p.Number - 1
}

// PageRange lists every page number, for the paginator template.
func (p Page) PageRange() []int {
	pages := make([]int, p.NumPages)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// Scope limits a gorm query to the rows of this page.
func (p Page) Scope() func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Offset(p.Offset()).Limit(p.PerPage)
	}
}
