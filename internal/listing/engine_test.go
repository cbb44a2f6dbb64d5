package listing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"agriedge/internal/model"
)

type staticLister struct {
	regs []model.Registration
	err  error
}

func (l staticLister) ListRegistrations(context.Context) ([]model.Registration, error) {
	return l.regs, l.err
}

// records returns n registrations in timestamp-descending order.
func records(n int) []model.Registration {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]model.Registration, n)
	for i := range out {
		out[i] = model.Registration{
			ID:        fmt.Sprintf("r%02d", i),
			FullName:  fmt.Sprintf("Person %02d", i),
			Email:     fmt.Sprintf("p%02d@x.com", i),
			Company:   []string{"Acme", "Globex", "Initech"}[i%3],
			Country:   []string{"Morocco", "France"}[i%2],
			Interests: []string{"AquaEdge"},
			Timestamp: model.FormatTimestamp(base.Add(-time.Duration(i) * time.Minute)),
		}
	}
	return out
}

func loaded(t *testing.T, regs []model.Registration) *Engine {
	t.Helper()
	e := NewEngine()
	require.NoError(t, e.Load(context.Background(), staticLister{regs: regs}))
	return e
}

func ids(regs []model.Registration) []string {
	out := make([]string, len(regs))
	for i, r := range regs {
		out[i] = r.ID
	}
	return out
}

func TestPaginationOf23Records(t *testing.T) {
	regs := records(23)
	e := loaded(t, regs)

	assert.Equal(t, 3, e.PageCount())
	assert.Equal(t, ids(regs[0:10]), ids(e.Page(1)))
	assert.Equal(t, ids(regs[10:20]), ids(e.Page(2)))
	assert.Equal(t, ids(regs[20:23]), ids(e.Page(3)))
	assert.Empty(t, e.Page(4))
	assert.Empty(t, e.Page(0))

	assert.Equal(t, 3, e.ClampPage(4))
	assert.Equal(t, 1, e.ClampPage(-2))
	assert.Equal(t, 2, e.ClampPage(2))
}

func TestLoadFailureIsDistinctFromEmpty(t *testing.T) {
	e := NewEngine()
	err := e.Load(context.Background(), staticLister{err: errors.New("unavailable")})
	require.ErrorIs(t, err, ErrLoad)
	assert.Equal(t, Failed, e.State())
	assert.Zero(t, e.Len())

	empty := loaded(t, nil)
	assert.Equal(t, Loaded, empty.State())
	assert.Zero(t, empty.Len())
	assert.Equal(t, 1, empty.ClampPage(5))
}

func TestFailedReloadDropsPreviousSet(t *testing.T) {
	e := loaded(t, records(5))
	require.Error(t, e.Load(context.Background(), staticLister{err: errors.New("boom")}))
	assert.Empty(t, e.All())
	assert.Empty(t, e.View())
}

func TestSearchFields(t *testing.T) {
	regs := records(4)
	regs[1].TeamMember = "Sam Staff"
	regs[2].CreatorEmail = "boss@agriedge.ma"
	e := loaded(t, regs)

	assert.Len(t, e.Search(""), 4)
	assert.Len(t, e.Search("   "), 4)
	assert.Equal(t, []string{"r01"}, ids(e.Search("sam staff")))
	assert.Equal(t, []string{"r02"}, ids(e.Search("BOSS@")))
	assert.Equal(t, []string{"r00", "r03"}, ids(e.Search("acme")))
	assert.Len(t, e.Search("france"), 2)
	assert.Empty(t, e.Search("nobody"))
}

func TestSortToggles(t *testing.T) {
	e := loaded(t, records(5))

	asc, err := e.Sort("fullName")
	require.NoError(t, err)
	assert.Equal(t, []string{"r00", "r01", "r02", "r03", "r04"}, ids(asc))
	key, dir := e.SortState()
	assert.Equal(t, "fullName", key)
	assert.Equal(t, Asc, dir)

	desc, err := e.Sort("fullName")
	require.NoError(t, err)
	assert.Equal(t, []string{"r04", "r03", "r02", "r01", "r00"}, ids(desc))

	_, err = e.Sort("email")
	require.NoError(t, err)
	_, dir = e.SortState()
	assert.Equal(t, Asc, dir)

	_, err = e.Sort("salary")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestSortKeepsFetchOrder(t *testing.T) {
	regs := records(6)
	e := loaded(t, regs)
	_, err := e.Sort("company")
	require.NoError(t, err)
	assert.Equal(t, ids(regs), ids(e.All()))
}

func TestSortIsStableForTies(t *testing.T) {
	e := loaded(t, records(6))
	view, err := e.Sort("company")
	require.NoError(t, err)
	assert.Equal(t, []string{"r00", "r03", "r01", "r04", "r02", "r05"}, ids(view))
}

func TestSearchAndSortCompose(t *testing.T) {
	e := loaded(t, records(12))
	e.Search("morocco")
	view, err := e.Sort("timestamp")
	require.NoError(t, err)
	// timestamp starts descending, so choosing it again flips to ascending
	assert.Equal(t, []string{"r10", "r08", "r06", "r04", "r02", "r00"}, ids(view))
	assert.Equal(t, 1, e.PageCount())
}

func genRecords(t *rapid.T) []model.Registration {
	n := rapid.IntRange(0, 45).Draw(t, "n")
	regs := records(n)
	for i := range regs {
		regs[i].Company = rapid.SampledFrom([]string{"Acme", "acme", "Globex", "Zeta"}).Draw(t, "company")
		regs[i].Country = rapid.SampledFrom([]string{"Morocco", "France", "Côte d'Ivoire"}).Draw(t, "country")
	}
	return regs
}

func TestPagesCoverViewExactlyOnce(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := NewEngine()
		require.NoError(t, e.Load(context.Background(), staticLister{regs: genRecords(t)}))
		e.Search(rapid.SampledFrom([]string{"", "acme", "fr", "person 1", "zzz"}).Draw(t, "q"))
		if rapid.Bool().Draw(t, "sort") {
			_, err := e.Sort(rapid.SampledFrom(SortKeys()).Draw(t, "key"))
			require.NoError(t, err)
		}

		var pages []model.Registration
		for p := 1; p <= e.PageCount(); p++ {
			page := e.Page(p)
			require.LessOrEqual(t, len(page), PageSize)
			pages = append(pages, page...)
		}
		assert.Equal(t, ids(e.View()), ids(pages))
		assert.Empty(t, e.Page(e.PageCount()+1))
	})
}

func TestSearchOnlyFilters(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		regs := genRecords(t)
		e := NewEngine()
		require.NoError(t, e.Load(context.Background(), staticLister{regs: regs}))
		q := rapid.StringMatching(`[a-zA-Z@. ]{0,4}`).Draw(t, "q")

		got := e.Search(q)
		require.LessOrEqual(t, len(got), len(regs))
		lq := strings.ToLower(strings.TrimSpace(q))
		for i := range got {
			assert.True(t, lq == "" || Matches(&got[i], lq))
		}
	})
}

func TestSortTwiceReverses(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := NewEngine()
		require.NoError(t, e.Load(context.Background(), staticLister{regs: genRecords(t)}))
		key := rapid.SampledFrom(SortKeys()).Draw(t, "key")
		if key == "timestamp" {
			_, err := e.Sort("fullName")
			require.NoError(t, err)
		}
		value := sortKeys[key]

		first, err := e.Sort(key)
		require.NoError(t, err)
		_, dir := e.SortState()
		require.Equal(t, Asc, dir)
		second, err := e.Sort(key)
		require.NoError(t, err)

		require.Len(t, second, len(first))
		for i := range first {
			assert.Equal(t, value(&first[i]), value(&second[len(second)-1-i]))
		}
	})
}
