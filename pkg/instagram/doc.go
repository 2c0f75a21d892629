// Package instagram is a client for the handful of Instagram web API calls
// the unfollow workflow needs.
//
// The client is built on go-resty over a cookie jar seeded with the
// caller's browser session, so every request looks like it came from the
// logged-in web app:
//
//	session, _ := auth.NewSession(account)
//	client, err := instagram.NewClient(session, instagram.ClientOptions{}, log)
//
//	user, err := client.ResolveUser(ctx, "someone")
//	page, err := client.FetchFollowing(ctx, user.ID, "", instagram.DefaultPageSize)
//	result, err := client.Unfollow(ctx, page.Accounts[0].ID)
//
// Read calls map non-2xx statuses to typed errors from pkg/errors:
//
//	if errors.IsType(err, errors.ErrorTypeRateLimit) {
//	    // back off and run again later
//	}
//
// Unfollow is different: any HTTP response comes back as a FriendshipResult
// and only transport failures are errors. The X-CSRFToken header is read
// from the cookie jar on every call, so a token the server rotates is used
// for the next mutation.
package instagram
