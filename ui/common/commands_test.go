package common

import "testing"

func TestParseRoute(t *testing.T) {
	tests := []struct {
		path  string
		state SessionState
		param string
	}{
		{path: "/", state: HomeView},
		{path: "", state: HomeView},
		{path: "/create-post", state: CreatePostView},
		{path: "/post/42", state: PostView, param: "42"},
		{path: "/post/42/", state: PostView, param: "42"},
		{path: "/post/42/edit", state: EditPostView, param: "42"},
		{path: "/profile/alice", state: ProfileView, param: "alice"},
		{path: "/login", state: LoginView},
		{path: "/post/", state: HomeView},
		{path: "/post/42/delete", state: HomeView},
		{path: "/nowhere", state: HomeView},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r := ParseRoute(tt.path)
			if r.State != tt.state {
				t.Errorf("Expected state %s, got %s", tt.state, r.State)
			}
			if r.Param != tt.param {
				t.Errorf("Expected param '%s', got '%s'", tt.param, r.Param)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	if got := EditPath("7"); got != "/post/7/edit" {
		t.Errorf("Expected '/post/7/edit', got '%s'", got)
	}
	if ParseRoute(PostPath("7")).Param != "7" {
		t.Error("Expected PostPath to round trip through ParseRoute")
	}
	if ParseRoute(ProfilePath("bob")).State != ProfileView {
		t.Error("Expected ProfilePath to parse as a profile route")
	}
}

func TestRefreshCallsNotify(t *testing.T) {
	calls := 0
	l := Refresh[int](func() { calls++ })
	l(1, 2)
	l(2, 3)
	if calls != 2 {
		t.Errorf("Expected 2 calls, got %d", calls)
	}

	// a nil notify is allowed
	Refresh[int](nil)(0, 1)
}
