// Package listing holds an admin's fetched registrations and derives the
// searched, sorted and paginated views from them.
package listing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"agriedge/internal/model"
)

const PageSize = 10

var (
	ErrLoad       = errors.New("registrations could not be loaded")
	ErrUnknownKey = errors.New("unknown sort key")
)

type State int

const (
	Empty State = iota
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "empty"
	}
}

type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// Lister is the one-shot fetch, ordered by timestamp descending.
type Lister interface {
	ListRegistrations(ctx context.Context) ([]model.Registration, error)
}

// sortKeys maps a key to the compared value of a record.
var sortKeys = map[string]func(r *model.Registration) string{
	"fullName":     func(r *model.Registration) string { return strings.ToLower(r.FullName) },
	"email":        func(r *model.Registration) string { return r.Email },
	"company":      func(r *model.Registration) string { return strings.ToLower(r.Company) },
	"position":     func(r *model.Registration) string { return strings.ToLower(r.Position) },
	"phone":        func(r *model.Registration) string { return r.Phone },
	"country":      func(r *model.Registration) string { return strings.ToLower(r.Country) },
	"interests":    func(r *model.Registration) string { return strings.ToLower(strings.Join(r.Interests, ", ")) },
	"timestamp":    func(r *model.Registration) string { return r.Timestamp },
	"registeredBy": func(r *model.Registration) string { return strings.ToLower(r.SubmitterLabel()) },
}

func SortKeys() []string {
	keys := make([]string, 0, len(sortKeys))
	for k := range sortKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Engine never reorders the fetched set. The sort key, direction and query
// are explicit state and every view is derived from them.
type Engine struct {
	mu      sync.RWMutex
	state   State
	fetched []model.Registration
	query   string
	sortKey string
	sortDir Direction
	view    []int
}

func NewEngine() *Engine {
	return &Engine{sortKey: "timestamp", sortDir: Desc}
}

// Load replaces the held set with a fresh fetch. On failure the engine holds
// nothing and reports Failed.
func (e *Engine) Load(ctx context.Context, l Lister) error {
	regs, err := l.ListRegistrations(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.state = Failed
		e.fetched = nil
		e.view = nil
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}
	e.state = Loaded
	e.fetched = regs
	e.query = ""
	e.sortKey = "timestamp"
	e.sortDir = Desc
	e.rebuild()
	return nil
}

func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Search sets the query and returns the matching records in the current order.
func (e *Engine) Search(q string) []model.Registration {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.query = strings.TrimSpace(q)
	e.rebuild()
	return e.collect(e.view)
}

// Sort chooses a key. The same key again flips the direction; a new key
// starts ascending.
func (e *Engine) Sort(key string) ([]model.Registration, error) {
	if _, ok := sortKeys[key]; !ok {
		return nil, ErrUnknownKey
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if key == e.sortKey {
		if e.sortDir == Asc {
			e.sortDir = Desc
		} else {
			e.sortDir = Asc
		}
	} else {
		e.sortKey = key
		e.sortDir = Asc
	}
	e.rebuild()
	return e.collect(e.view), nil
}

func (e *Engine) SortState() (string, Direction) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sortKey, e.sortDir
}

func (e *Engine) Query() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.query
}

// Page returns page n (1-based) of the current view. Pages outside
// [1, PageCount] are empty.
func (e *Engine) Page(n int) []model.Registration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if n < 1 {
		return []model.Registration{}
	}
	start := (n - 1) * PageSize
	if start >= len(e.view) {
		return []model.Registration{}
	}
	end := min(start+PageSize, len(e.view))
	return e.collect(e.view[start:end])
}

func (e *Engine) PageCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return pageCount(len(e.view))
}

// ClampPage moves n into [1, PageCount]; an empty view clamps to 1.
func (e *Engine) ClampPage(n int) int {
	count := e.PageCount()
	switch {
	case n < 1 || count == 0:
		return 1
	case n > count:
		return count
	default:
		return n
	}
}

// View is the current searched and sorted set.
func (e *Engine) View() []model.Registration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.collect(e.view)
}

// All is the full set in fetch order, ignoring search and sort.
func (e *Engine) All() []model.Registration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]model.Registration(nil), e.fetched...)
}

func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.fetched)
}

func (e *Engine) rebuild() {
	view := make([]int, 0, len(e.fetched))
	q := strings.ToLower(e.query)
	for i := range e.fetched {
		if q == "" || Matches(&e.fetched[i], q) {
			view = append(view, i)
		}
	}

	value := sortKeys[e.sortKey]
	desc := e.sortDir == Desc
	sort.SliceStable(view, func(a, b int) bool {
		va, vb := value(&e.fetched[view[a]]), value(&e.fetched[view[b]])
		if desc {
			return va > vb
		}
		return va < vb
	})
	e.view = view
}

func (e *Engine) collect(idx []int) []model.Registration {
	out := make([]model.Registration, 0, len(idx))
	for _, i := range idx {
		out = append(out, e.fetched[i])
	}
	return out
}

// Matches reports whether any searchable field contains the lower-cased query.
func Matches(r *model.Registration, lowerQuery string) bool {
	for _, f := range []string{r.FullName, r.Email, r.Company, r.Country, r.TeamMember, r.CreatorEmail} {
		if strings.Contains(strings.ToLower(f), lowerQuery) {
			return true
		}
	}
	return false
}

func pageCount(n int) int {
	return (n + PageSize - 1) / PageSize
}
