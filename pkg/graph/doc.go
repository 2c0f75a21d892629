// Package graph holds the social-graph data model and the two pure pieces of
// logic igunfollow is built on: draining a cursor-paginated connection list
// and diffing followers against following.
//
// FetchAll requests pages one at a time starting from the empty cursor and
// stops only when a page carries no next cursor. MaxPages and MaxItems bound
// the walk, and a cursor that repeats fails fast with ErrCursorLoop.
//
//	list, err := graph.FetchAll(ctx, graph.Following, client.FollowingSource(id, 50), graph.FetchOptions{
//	    PageDelay: ratelimit.Fixed(time.Second),
//	    MaxPages:  400,
//	})
//
// NotFollowingBack keeps the order of the following list, so mutations are
// issued in the order the server listed the accounts.
package graph
