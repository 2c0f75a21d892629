package instagram

import (
	"encoding/json"
	"fmt"
)

// FlexID decodes an identifier or cursor sent either as a JSON string or as
// a JSON number. null decodes to the empty string.
type FlexID string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("identifier is neither string nor number: %s", data)
	}
	*f = FlexID(n.String())
	return nil
}

// String returns the identifier text
func (f FlexID) String() string {
	return string(f)
}

// ProfileResponse is the body of the web profile lookup
type ProfileResponse struct {
	RequiresToLogin bool        `json:"requires_to_login"`
	Data            ProfileData `json:"data"`
	Status          string      `json:"status"`
}

// ProfileData wraps the user record
type ProfileData struct {
	User *ProfileUser `json:"user"`
}

// ProfileUser is the subset of the profile record the tool reads
type ProfileUser struct {
	ID       FlexID `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

// UserInfo is a resolved identity
type UserInfo struct {
	ID       string
	Username string
	FullName string
}

// FriendshipsResponse is one page of the followers or following listing
type FriendshipsResponse struct {
	Users     []FriendshipUser `json:"users"`
	NextMaxID FlexID           `json:"next_max_id"`
	PageSize  int              `json:"page_size"`
	Status    string           `json:"status"`
}

// FriendshipUser is one entry of a listing page. Older responses carry only
// pk, newer ones pk_id as well.
type FriendshipUser struct {
	PK       FlexID `json:"pk"`
	PKID     FlexID `json:"pk_id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

// ID returns the account identifier, preferring pk
func (u FriendshipUser) ID() string {
	if u.PK != "" {
		return u.PK.String()
	}
	return u.PKID.String()
}

// destroyResponse is the body returned by the unfollow mutation
type destroyResponse struct {
	FriendshipStatus struct {
		Following bool `json:"following"`
	} `json:"friendship_status"`
	Status string `json:"status"`
}

// FriendshipResult is the server's answer to an unfollow request. Any HTTP
// response produces one, whatever its status code.
type FriendshipResult struct {
	StatusCode int
	Status     string
	Following  bool
}

// OK reports whether the server answered with a 2xx status
func (r *FriendshipResult) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}
