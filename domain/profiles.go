package domain

const PlaceholderAvatar = "https://gravatar.com/avatar/placeholder?s=128"

type Counts struct {
	PostCount      int `json:"postCount"`
	FollowerCount  int `json:"followerCount"`
	FollowingCount int `json:"followingCount"`
}

// ProfileSummary is fetched per profile view and never cached across views.
type ProfileSummary struct {
	ProfileUsername string `json:"profileUsername"`
	ProfileAvatar   string `json:"profileAvatar"`
	IsFollowing     bool   `json:"isFollowing"`
	Counts          Counts `json:"counts"`
}

// PlaceholderProfile is shown while the real summary is loading.
func PlaceholderProfile() ProfileSummary {
	return ProfileSummary{
		ProfileUsername: "...",
		ProfileAvatar:   PlaceholderAvatar,
	}
}
