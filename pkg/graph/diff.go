package graph

// IDSet returns the set of account IDs
func IDSet(accounts []Account) map[string]struct{} {
	set := make(map[string]struct{}, len(accounts))
	for _, a := range accounts {
		set[a.ID] = struct{}{}
	}
	return set
}

// NotFollowingBack returns the accounts in following whose ID does not appear
// in followers, in the order of following. Membership is decided by ID only.
func NotFollowingBack(followers, following []Account) []Account {
	followerIDs := IDSet(followers)

	result := make([]Account, 0)
	for _, a := range following {
		if _, ok := followerIDs[a.ID]; !ok {
			result = append(result, a)
		}
	}
	return result
}

// CountDuplicates reports how many entries repeat an ID seen earlier in the
// slice
func CountDuplicates(accounts []Account) int {
	seen := make(map[string]struct{}, len(accounts))
	dupes := 0
	for _, a := range accounts {
		if _, ok := seen[a.ID]; ok {
			dupes++
			continue
		}
		seen[a.ID] = struct{}{}
	}
	return dupes
}

// Dedupe keeps the first occurrence of each ID and reports how many entries
// were dropped
func Dedupe(accounts []Account) ([]Account, int) {
	seen := make(map[string]struct{}, len(accounts))
	result := make([]Account, 0, len(accounts))
	for _, a := range accounts {
		if _, ok := seen[a.ID]; ok {
			continue
		}
		seen[a.ID] = struct{}{}
		result = append(result, a)
	}
	return result, len(accounts) - len(result)
}

// Handles returns the handle of every account, in order
func Handles(accounts []Account) []string {
	handles := make([]string, len(accounts))
	for i, a := range accounts {
		handles[i] = a.Handle
	}
	return handles
}
