package gallery

import (
	"strings"
	"time"

	"github.com/camden-git/photomscompanion/api"
)

// PageSize is the fixed collection page size, matching the server default.
const PageSize = 20

// dateLayout is the wire format for filter dates.
const dateLayout = "2006-01-02"

// FilterState is the raw gallery filter state as driven by UI events.
// SearchInput holds uncommitted keystrokes; the committed free-text value
// lives in the Debouncer. Page resets to 1 whenever any other field changes.
type FilterState struct {
	SearchInput string `json:"searchInput"`
	Tag         string `json:"tag"`
	StartDate   string `json:"startDate"` // YYYY-MM-DD, empty = unset
	EndDate     string `json:"endDate"`   // YYYY-MM-DD, empty = unset
	Page        int    `json:"page"`
	FiltersOpen bool   `json:"filtersOpen"`
}

// NewFilterState returns the initial filter state.
func NewFilterState() FilterState {
	return FilterState{Page: 1}
}

// SetTag updates the exact-tag filter. A no-op when the value is unchanged.
func (f *FilterState) SetTag(tag string) {
	if f.Tag == tag {
		return
	}
	f.Tag = tag
	f.Page = 1
}

// SetStartDate updates the lower date bound.
func (f *FilterState) SetStartDate(date string) {
	if f.StartDate == date {
		return
	}
	f.StartDate = date
	f.Page = 1
}

// SetEndDate updates the upper date bound.
func (f *FilterState) SetEndDate(date string) {
	if f.EndDate == date {
		return
	}
	f.EndDate = date
	f.Page = 1
}

// ShowRecent is the "recent uploads" shortcut: photos from the last seven
// days, end date open, filter panel visible.
func (f *FilterState) ShowRecent(now time.Time) {
	f.StartDate = now.AddDate(0, 0, -7).Format(dateLayout)
	f.EndDate = ""
	f.FiltersOpen = true
	f.Page = 1
}

// ClearFilters resets tag and date bounds but leaves the search text alone.
func (f *FilterState) ClearFilters() {
	f.Tag = ""
	f.StartDate = ""
	f.EndDate = ""
	f.Page = 1
}

// ResetAll clears every filter including the search input and closes the
// filter panel. The caller must also reset the debouncer so the committed
// free-text value is dropped with it.
func (f *FilterState) ResetAll() {
	f.ClearFilters()
	f.SearchInput = ""
	f.FiltersOpen = false
}

// Key builds the canonical query key for this state combined with the
// committed free-text value. Structurally equal states produce equal keys.
func (f FilterState) Key(committedText string) QueryKey {
	return QueryKey{
		Page:      f.Page,
		Limit:     PageSize,
		FreeText:  committedText,
		Tag:       f.Tag,
		StartDate: f.StartDate,
		EndDate:   f.EndDate,
	}
}

// QueryKey is the canonical, debounced tuple identifying one server-side
// collection query. It doubles as the cache key; comparability matters.
type QueryKey struct {
	Page      int
	Limit     int
	FreeText  string
	Tag       string
	StartDate string
	EndDate   string
}

// ListQuery converts the key into remote request parameters.
func (k QueryKey) ListQuery() api.ListQuery {
	return api.ListQuery{
		Page:      k.Page,
		Limit:     k.Limit,
		FreeText:  k.FreeText,
		Tag:       k.Tag,
		StartDate: k.StartDate,
		EndDate:   k.EndDate,
	}
}

// TotalPages computes the page count for a collection of the given size,
// never less than one.
func TotalPages(total int64) int {
	pages := int((total + PageSize - 1) / PageSize)
	if pages < 1 {
		return 1
	}
	return pages
}

// CanPrev reports whether backward pagination is possible.
func (f FilterState) CanPrev() bool {
	return f.Page > 1
}

// CanNext reports whether forward pagination is possible given the
// authoritative total from the last fetched page.
func (f FilterState) CanNext(total int64) bool {
	return f.Page < TotalPages(total)
}

// Prev moves one page back; out-of-bounds navigation is a no-op.
func (f *FilterState) Prev() {
	if f.CanPrev() {
		f.Page--
	}
}

// Next moves one page forward; out-of-bounds navigation is a no-op.
func (f *FilterState) Next(total int64) {
	if f.CanNext(total) {
		f.Page++
	}
}

// ValidDate reports whether a filter date is acceptable on the wire: empty,
// date-only, or full RFC3339 (the server accepts both).
func ValidDate(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return true
	}
	if _, err := time.Parse(dateLayout, value); err == nil {
		return true
	}
	if _, err := time.Parse(time.RFC3339, value); err == nil {
		return true
	}
	return false
}
