package auth

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	_, err := NewSession(nil)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = NewSession(&Account{Username: "u", SessionID: "s"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	s, err := NewSession(&Account{Username: "u", SessionID: "s", CSRFToken: "c", DSUserID: "1"})
	require.NoError(t, err)
	assert.Equal(t, "u", s.Username)
	assert.Equal(t, "1", s.DSUserID)
}

func TestSessionCookies(t *testing.T) {
	s := &Session{SessionID: "sid", CSRFToken: "tok"}
	cookies := s.Cookies()
	require.Len(t, cookies, 2)
	assert.Equal(t, CookieSessionID, cookies[0].Name)
	assert.Equal(t, CookieCSRFToken, cookies[1].Name)

	s.DSUserID = "42"
	assert.Len(t, s.Cookies(), 3)
}

func TestSessionTokenPrefersRotatedCookie(t *testing.T) {
	u, err := url.Parse("https://www.instagram.com/")
	require.NoError(t, err)

	s := &Session{SessionID: "sid", CSRFToken: "original"}
	assert.Equal(t, "original", s.Token(nil, u))

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	assert.Equal(t, "original", s.Token(jar, u))

	jar.SetCookies(u, []*http.Cookie{{Name: CookieCSRFToken, Value: "rotated", Path: "/"}})
	assert.Equal(t, "rotated", s.Token(jar, u))
}

func TestParseCookieHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   Account
	}{
		{
			name:   "full header",
			header: `Cookie: mid=abc; csrftoken=tok123; ds_user_id=42; sessionid=42%3Aabc%3A1; rur="x"`,
			want:   Account{SessionID: "42%3Aabc%3A1", CSRFToken: "tok123", DSUserID: "42"},
		},
		{
			name:   "bare pairs",
			header: "sessionid=s;csrftoken=c",
			want:   Account{SessionID: "s", CSRFToken: "c"},
		},
		{
			name:   "quoted value",
			header: `csrftoken="quoted"`,
			want:   Account{CSRFToken: "quoted"},
		},
		{
			name:   "garbage",
			header: "not a cookie header",
			want:   Account{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCookieHeader(tt.header)
			assert.Equal(t, tt.want, *got)
		})
	}
}
