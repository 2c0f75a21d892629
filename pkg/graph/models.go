package graph

import "context"

// Relation names one of the two connection lists of an account
type Relation string

const (
	Followers Relation = "followers"
	Following Relation = "following"
)

// Account is a remote identity as returned by the API. It is never modified
// after decoding.
type Account struct {
	ID       string `json:"id"`
	Handle   string `json:"handle"`
	FullName string `json:"full_name,omitempty"`
}

// Page is one server response of a paginated connection listing.
// An empty NextCursor marks the final page.
type Page struct {
	Accounts   []Account
	NextCursor string
}

// ConnectionList is the ordered accumulation of every page for one relation
type ConnectionList struct {
	Relation Relation
	Accounts []Account
	Pages    int
}

// Len returns the number of accounts collected so far
func (c *ConnectionList) Len() int {
	return len(c.Accounts)
}

// PageSource fetches the page that starts at cursor. The first page has an
// empty cursor.
type PageSource func(ctx context.Context, cursor string) (*Page, error)
