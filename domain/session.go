package domain

import "fmt"

// Session is the authenticated identity carried by the running client.
// Empty strings mean the field is absent.
type Session struct {
	LoggedIn bool
	Token    string
	Username string
	Avatar   string
}

// User is the identity returned by the backend on login and in
// follower/following lists. Token is only set on login.
type User struct {
	Token    string `json:"token,omitempty"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// HasToken reports whether a token is present at all.
func (s Session) HasToken() bool {
	return s.Token != ""
}

func (s Session) ToString() string {
	return fmt.Sprintf("\n\tUsername: %s \n\tLoggedIn: %t \n\tAvatar: %s", s.Username, s.LoggedIn, s.Avatar)
}
