package instagram

import (
	"fmt"
	"net/url"
	"strings"

	"igunfollow/pkg/graph"
)

const (
	// BaseURL is the origin the web client talks to
	BaseURL = "https://www.instagram.com"

	// AppID is the identifier the web client sends in X-IG-App-ID
	AppID = "936619743392459"

	// DefaultUserAgent is sent when the session does not carry its own
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

	// ProfileEndpoint resolves a username to its profile record
	ProfileEndpoint = "/api/v1/users/web_profile_info/"

	// DefaultPageSize is the page size the web client requests
	DefaultPageSize = 50

	// MaxPageSize is the largest count the friendships endpoints honour
	MaxPageSize = 200
)

// ProfileURL returns the public profile page for a username
func ProfileURL(username string) string {
	if username == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/", BaseURL, url.PathEscape(username))
}

// FriendshipsPath returns the listing path for one relation of userID
func FriendshipsPath(userID string, relation graph.Relation) string {
	return fmt.Sprintf("/api/v1/friendships/%s/%s/", url.PathEscape(userID), relation)
}

// DestroyPath returns the unfollow mutation path for userID
func DestroyPath(userID string) string {
	return fmt.Sprintf("/api/v1/friendships/destroy/%s/", url.PathEscape(userID))
}

// clampPageSize keeps count within what the listing endpoints accept
func clampPageSize(count int) int {
	switch {
	case count <= 0:
		return DefaultPageSize
	case count > MaxPageSize:
		return MaxPageSize
	default:
		return count
	}
}

// IsValidUsername checks a handle against Instagram's rules: up to 30
// letters, digits, periods and underscores
func IsValidUsername(username string) bool {
	if username == "" || len(username) > 30 {
		return false
	}

	for _, char := range username {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '.' || char == '_') {
			return false
		}
	}
	return true
}

// SanitizeUsername accepts the forms a user is likely to paste: "@name",
// "name/" or a full profile URL
func SanitizeUsername(username string) string {
	username = strings.TrimSpace(username)
	for _, prefix := range []string{"https://", "http://", "www.", "instagram.com/"} {
		username = strings.TrimPrefix(username, prefix)
	}
	username = strings.TrimPrefix(username, "@")
	if i := strings.IndexAny(username, "?#"); i >= 0 {
		username = username[:i]
	}
	return strings.Trim(username, "/ ")
}
