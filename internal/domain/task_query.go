package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TaskPageSize is the fixed number of tasks returned per page.
const TaskPageSize = 10

// SortDirection orders task listings by creation time.
type SortDirection string

// Supported sort directions.
const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection converts raw input into a SortDirection.
// An empty value selects the default, newest first.
func ParseSortDirection(raw string) (SortDirection, error) {
	switch SortDirection(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return SortDesc, nil
	case SortAsc:
		return SortAsc, nil
	case SortDesc:
		return SortDesc, nil
	}
	return "", fmt.Errorf("%w: sort direction %q", ErrInvalidFormat, raw)
}

// TaskQuery holds the filters, ordering and page for listing a user's tasks.
// The owner is never part of the query; it always comes from the
// authenticated request.
type TaskQuery struct {
	// Search matches tasks whose name contains it as a literal substring.
	Search string
	// Status filters by equality when non-empty.
	Status TaskStatus
	// DueFrom and DueTo are applied only when both are set.
	DueFrom *time.Time
	DueTo   *time.Time
	Sort    SortDirection
	// Page is 1-based.
	Page int
}

// Normalize returns a copy of q with defaults applied: sort falls back to
// descending, pages below 1 become 1, and the due date range is widened to
// whole UTC days or dropped entirely when only one bound is present.
func (q TaskQuery) Normalize() TaskQuery {
	n := q
	if n.Sort != SortAsc {
		n.Sort = SortDesc
	}
	if n.Page < 1 {
		n.Page = 1
	}

	if n.DueFrom == nil || n.DueTo == nil {
		n.DueFrom, n.DueTo = nil, nil
		return n
	}

	from := startOfDay(*n.DueFrom)
	to := endOfDay(*n.DueTo)
	n.DueFrom, n.DueTo = &from, &to
	return n
}

// HasDueRange reports whether a complete due date range is present.
func (q TaskQuery) HasDueRange() bool {
	return q.DueFrom != nil && q.DueTo != nil
}

// Offset returns the row offset of the page. Pages too large to address
// saturate at math.MaxInt, which lies past any real result set.
func (q TaskQuery) Offset() int {
	page := q.Page
	if page < 1 {
		page = 1
	}
	if page-1 > math.MaxInt/TaskPageSize {
		return math.MaxInt
	}
	return (page - 1) * TaskPageSize
}

// CacheKey returns a stable digest of the normalized query. Two queries that
// list the same rows always produce the same key.
func (q TaskQuery) CacheKey() string {
	n := q.Normalize()

	var b strings.Builder
	b.WriteString("search=")
	b.WriteString(strconv.Quote(n.Search))
	b.WriteString("&status=")
	b.WriteString(strconv.Quote(string(n.Status)))
	if n.HasDueRange() {
		b.WriteString("&from=")
		b.WriteString(n.DueFrom.Format(time.RFC3339Nano))
		b.WriteString("&to=")
		b.WriteString(n.DueTo.Format(time.RFC3339Nano))
	}
	b.WriteString("&sort=")
	b.WriteString(string(n.Sort))
	b.WriteString("&page=")
	b.WriteString(strconv.Itoa(n.Page))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	CurrentPage  int  `json:"current_page"`
	PerPage      int  `json:"per_page"`
	Total        int  `json:"total"`
	TotalPages   int  `json:"total_pages"`
	HasMorePages bool `json:"has_more_pages"`
}

// NewPagination computes page metadata for total matching rows.
func NewPagination(page, total int) Pagination {
	if page < 1 {
		page = 1
	}
	if total < 0 {
		total = 0
	}
	totalPages := (total + TaskPageSize - 1) / TaskPageSize
	return Pagination{
		CurrentPage:  page,
		PerPage:      TaskPageSize,
		Total:        total,
		TotalPages:   totalPages,
		HasMorePages: page < totalPages,
	}
}

// TaskPage is one page of a task listing.
type TaskPage struct {
	Tasks      []*Task    `json:"tasks"`
	Pagination Pagination `json:"pagination"`
}

func startOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).Add(24*time.Hour - time.Nanosecond)
}
