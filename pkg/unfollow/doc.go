// Package unfollow runs the unfollow workflow: resolve the account, fetch
// its followers and following, diff them, then unfollow every account that
// does not follow back.
//
// The mutation stage is a strictly sequential Loop. Each account is tried
// exactly once and ends in one of three terminal states:
//
//   - succeeded: the server answered 2xx
//   - failed-response: the server answered with any other status
//   - failed-error: no response arrived
//
// Failures are recorded and the loop moves on. Between two mutations the
// loop waits on a ratelimit.Limiter, by default a random 3 to 6 second delay.
//
// Unfollower ties the stages together and reports progress to an Observer:
//
//	u := unfollow.New(client, unfollow.OptionsFromConfig(cfg), log)
//	result, err := u.Run(ctx, "someone")
//	fmt.Println(result.Report.Succeeded, "unfollowed")
package unfollow
