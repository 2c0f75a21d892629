package instagram

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"igunfollow/pkg/graph"
)

func TestPaths(t *testing.T) {
	assert.Equal(t, "/api/v1/friendships/123/followers/", FriendshipsPath("123", graph.Followers))
	assert.Equal(t, "/api/v1/friendships/123/following/", FriendshipsPath("123", graph.Following))
	assert.Equal(t, "/api/v1/friendships/destroy/456/", DestroyPath("456"))
	assert.Equal(t, "https://www.instagram.com/some.user/", ProfileURL("some.user"))
	assert.Empty(t, ProfileURL(""))
}

func TestClampPageSize(t *testing.T) {
	assert.Equal(t, DefaultPageSize, clampPageSize(0))
	assert.Equal(t, DefaultPageSize, clampPageSize(-3))
	assert.Equal(t, 12, clampPageSize(12))
	assert.Equal(t, MaxPageSize, clampPageSize(10000))
}

func TestIsValidUsername(t *testing.T) {
	tests := []struct {
		username string
		valid    bool
	}{
		{"validuser", true},
		{"valid_user", true},
		{"valid.user", true},
		{"ValidUser123", true},
		{"", false},
		{"invalid-user", false},
		{"invalid user", false},
		{"invalid@user", false},
		{"abcdefghijklmnopqrstuvwxyz12345", false},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidUsername(tt.username))
		})
	}
}

func TestSanitizeUsername(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"username", "username"},
		{"@username", "username"},
		{"username/", "username"},
		{"  @username  ", "username"},
		{"https://www.instagram.com/username/", "username"},
		{"instagram.com/username?hl=en", "username"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeUsername(tt.input))
		})
	}
}
