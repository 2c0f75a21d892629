package graph

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeAccounts(prefix string, from, n int) []Account {
	accounts := make([]Account, n)
	for i := range accounts {
		id := strconv.Itoa(from + i)
		accounts[i] = Account{ID: id, Handle: prefix + id}
	}
	return accounts
}

// pagedSource serves all in pages of size per, using the page index as cursor
func pagedSource(all []Account, per int, calls *int32, cursors *[]string) PageSource {
	return func(ctx context.Context, cursor string) (*Page, error) {
		atomic.AddInt32(calls, 1)
		if cursors != nil {
			*cursors = append(*cursors, cursor)
		}
		start := 0
		if cursor != "" {
			start, _ = strconv.Atoi(cursor)
		}
		end := min(start+per, len(all))
		page := &Page{Accounts: all[start:end]}
		if end < len(all) {
			page.NextCursor = strconv.Itoa(end)
		}
		return page, nil
	}
}

type countingLimiter struct {
	waits int
}

func (c *countingLimiter) Wait(ctx context.Context) error {
	c.waits++
	return ctx.Err()
}

func TestFetchAllConcatenatesPages(t *testing.T) {
	all := makeAccounts("user", 1, 110)
	var calls int32
	var cursors []string
	limiter := &countingLimiter{}

	var seen []int
	list, err := FetchAll(context.Background(), Followers, pagedSource(all, 50, &calls, &cursors), FetchOptions{
		PageDelay: limiter,
		OnPage:    func(l *ConnectionList) { seen = append(seen, l.Len()) },
	})
	require.NoError(t, err)

	assert.Equal(t, int32(3), calls)
	assert.Equal(t, 3, list.Pages)
	assert.Equal(t, Followers, list.Relation)
	assert.Equal(t, []string{"", "50", "100"}, cursors)
	assert.Equal(t, 2, limiter.waits, "delay only between requests")
	assert.Equal(t, []int{50, 100, 110}, seen)
	if diff := cmp.Diff(all, list.Accounts); diff != "" {
		t.Errorf("accounts mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchAllSinglePage(t *testing.T) {
	var calls int32
	limiter := &countingLimiter{}

	list, err := FetchAll(context.Background(), Following, pagedSource(makeAccounts("u", 1, 10), 50, &calls, nil), FetchOptions{PageDelay: limiter})
	require.NoError(t, err)
	assert.Equal(t, 10, list.Len())
	assert.Equal(t, int32(1), calls)
	assert.Zero(t, limiter.waits)
}

func TestFetchAllEmptyList(t *testing.T) {
	var calls int32
	list, err := FetchAll(context.Background(), Followers, pagedSource(nil, 50, &calls, nil), FetchOptions{})
	require.NoError(t, err)
	assert.Zero(t, list.Len())
	assert.Equal(t, 1, list.Pages)
}

func TestFetchAllEmptyPageWithCursorContinues(t *testing.T) {
	pages := map[string]*Page{
		"":  {NextCursor: "a"},
		"a": {Accounts: makeAccounts("u", 1, 2)},
	}
	source := func(ctx context.Context, cursor string) (*Page, error) {
		return pages[cursor], nil
	}

	list, err := FetchAll(context.Background(), Following, source, FetchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Len())
	assert.Equal(t, 2, list.Pages)
}

func TestFetchAllPageErrorDiscardsPartialList(t *testing.T) {
	boom := errors.New("connection reset")
	source := func(ctx context.Context, cursor string) (*Page, error) {
		if cursor == "" {
			return &Page{Accounts: makeAccounts("u", 1, 50), NextCursor: "next"}, nil
		}
		return nil, boom
	}

	list, err := FetchAll(context.Background(), Followers, source, FetchOptions{})
	assert.Nil(t, list)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "followers page 2")
}

func TestFetchAllMaxPages(t *testing.T) {
	neverEnding := func(ctx context.Context, cursor string) (*Page, error) {
		next := strconv.Itoa(len(cursor) + 1)
		return &Page{Accounts: makeAccounts("u", len(cursor), 1), NextCursor: cursor + next}, nil
	}

	list, err := FetchAll(context.Background(), Following, neverEnding, FetchOptions{MaxPages: 5})
	assert.Nil(t, list)
	assert.ErrorIs(t, err, ErrPageLimit)
}

func TestFetchAllMaxItems(t *testing.T) {
	var calls int32
	_, err := FetchAll(context.Background(), Followers, pagedSource(makeAccounts("u", 1, 120), 50, &calls, nil), FetchOptions{MaxItems: 100})
	assert.ErrorIs(t, err, ErrPageLimit)
	assert.Equal(t, int32(3), calls)

	calls = 0
	list, err := FetchAll(context.Background(), Followers, pagedSource(makeAccounts("u", 1, 100), 50, &calls, nil), FetchOptions{MaxItems: 100})
	require.NoError(t, err)
	assert.Equal(t, 100, list.Len(), "exactly MaxItems is allowed")
}

func TestFetchAllCursorLoop(t *testing.T) {
	var calls int32
	stuck := func(ctx context.Context, cursor string) (*Page, error) {
		atomic.AddInt32(&calls, 1)
		return &Page{Accounts: makeAccounts("u", 1, 1), NextCursor: "same"}, nil
	}

	_, err := FetchAll(context.Background(), Following, stuck, FetchOptions{})
	assert.ErrorIs(t, err, ErrCursorLoop)
	assert.Equal(t, int32(2), calls)
}

func TestFetchAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	source := func(ctx context.Context, cursor string) (*Page, error) {
		cancel()
		return &Page{Accounts: makeAccounts("u", 1, 1), NextCursor: cursor + "x"}, nil
	}

	_, err := FetchAll(ctx, Followers, source, FetchOptions{PageDelay: &countingLimiter{}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchAllDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	slow := func(ctx context.Context, cursor string) (*Page, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
			return &Page{}, nil
		}
	}

	_, err := FetchAll(ctx, Following, slow, FetchOptions{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetchAllNilPage(t *testing.T) {
	_, err := FetchAll(context.Background(), Followers, func(context.Context, string) (*Page, error) { return nil, nil }, FetchOptions{})
	require.Error(t, err)

	_, err = FetchAll(context.Background(), Followers, nil, FetchOptions{})
	require.Error(t, err)
}

func TestNotFollowingBack(t *testing.T) {
	a := Account{ID: "1", Handle: "a"}
	b := Account{ID: "2", Handle: "b"}
	c := Account{ID: "3", Handle: "c"}
	d := Account{ID: "4", Handle: "d"}

	tests := []struct {
		name      string
		followers []Account
		following []Account
		want      []Account
	}{
		{"basic", []Account{a, b}, []Account{a, b, c}, []Account{c}},
		{"identical", []Account{a, b}, []Account{b, a}, []Account{}},
		{"no followers", nil, []Account{d, c, b}, []Account{d, c, b}},
		{"following nobody", []Account{a}, nil, []Account{}},
		{"keeps following order", []Account{b}, []Account{d, b, a, c}, []Account{d, a, c}},
		{"matches on id not handle", []Account{{ID: "3", Handle: "renamed"}}, []Account{c}, []Account{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NotFollowingBack(tt.followers, tt.following)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("NotFollowingBack mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNotFollowingBackLarge(t *testing.T) {
	followers := makeAccounts("f", 0, 5000)
	following := makeAccounts("f", 2500, 5000)

	got := NotFollowingBack(followers, following)
	require.Len(t, got, 2500)
	assert.Equal(t, "5000", got[0].ID)
	assert.Equal(t, "7499", got[len(got)-1].ID)
}

func TestDedupe(t *testing.T) {
	in := []Account{{ID: "1", Handle: "a"}, {ID: "2", Handle: "b"}, {ID: "1", Handle: "a2"}}
	got, dropped := Dedupe(in)
	assert.Equal(t, 1, dropped)
	if diff := cmp.Diff([]Account{{ID: "1", Handle: "a"}, {ID: "2", Handle: "b"}}, got); diff != "" {
		t.Errorf("Dedupe mismatch (-want +got):\n%s", diff)
	}
}

func TestCountDuplicates(t *testing.T) {
	assert.Equal(t, 0, CountDuplicates(nil))
	assert.Equal(t, 0, CountDuplicates(makeAccounts("u", 0, 10)))

	in := []Account{{ID: "1"}, {ID: "2"}, {ID: "1"}, {ID: "1"}, {ID: "3"}, {ID: "2"}}
	assert.Equal(t, 3, CountDuplicates(in))

	_, dropped := Dedupe(in)
	assert.Equal(t, dropped, CountDuplicates(in))
}

func TestIDSetAndHandles(t *testing.T) {
	accounts := makeAccounts("h", 1, 3)
	set := IDSet(accounts)
	assert.Len(t, set, 3)
	for i := 1; i <= 3; i++ {
		assert.Contains(t, set, fmt.Sprint(i))
	}
	assert.Equal(t, []string{"h1", "h2", "h3"}, Handles(accounts))
}
