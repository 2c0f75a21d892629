package graph

import (
	"context"
	"errors"
	"fmt"

	"igunfollow/pkg/ratelimit"
)

var (
	// ErrPageLimit is returned when a listing exceeds MaxPages or MaxItems
	// before the server reports the last page
	ErrPageLimit = errors.New("page limit exceeded")

	// ErrCursorLoop is returned when the server hands back the cursor that
	// was just requested
	ErrCursorLoop = errors.New("pagination cursor did not advance")
)

// FetchOptions bounds and paces FetchAll
type FetchOptions struct {
	// PageDelay is waited on between requests, never before the first
	PageDelay ratelimit.Limiter

	// MaxPages and MaxItems stop runaway pagination. Zero means unlimited.
	MaxPages int
	MaxItems int

	// OnPage, when set, is called after every page with the list so far
	OnPage func(list *ConnectionList)
}

// FetchAll walks source from the empty cursor until a page comes back with no
// next cursor, and returns every account in server order. Any failure
// discards the partial list.
func FetchAll(ctx context.Context, relation Relation, source PageSource, opts FetchOptions) (*ConnectionList, error) {
	if source == nil {
		return nil, fmt.Errorf("fetch %s: nil page source", relation)
	}
	delay := opts.PageDelay
	if delay == nil {
		delay = ratelimit.None()
	}

	list := &ConnectionList{Relation: relation}
	cursor := ""

	for {
		if opts.MaxPages > 0 && list.Pages >= opts.MaxPages {
			return nil, fmt.Errorf("fetch %s: %w after %d pages", relation, ErrPageLimit, list.Pages)
		}

		if list.Pages > 0 {
			if err := delay.Wait(ctx); err != nil {
				return nil, fmt.Errorf("fetch %s: %w", relation, err)
			}
		}

		page, err := source(ctx, cursor)
		if err != nil {
			return nil, fmt.Errorf("fetch %s page %d: %w", relation, list.Pages+1, err)
		}
		if page == nil {
			return nil, fmt.Errorf("fetch %s page %d: empty response", relation, list.Pages+1)
		}

		list.Pages++
		list.Accounts = append(list.Accounts, page.Accounts...)

		if opts.MaxItems > 0 && len(list.Accounts) > opts.MaxItems {
			return nil, fmt.Errorf("fetch %s: %w with %d accounts", relation, ErrPageLimit, len(list.Accounts))
		}

		if opts.OnPage != nil {
			opts.OnPage(list)
		}

		if page.NextCursor == "" {
			return list, nil
		}
		if page.NextCursor == cursor {
			return nil, fmt.Errorf("fetch %s page %d: %w (%q)", relation, list.Pages, ErrCursorLoop, cursor)
		}
		cursor = page.NextCursor
	}
}
