package app

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/deemkeen/postbox/db"
	"github.com/deemkeen/postbox/domain"
	"github.com/deemkeen/postbox/state"
	"github.com/deemkeen/postbox/util"
)

func testConf(t *testing.T, apiUrl string) *util.AppConfig {
	t.Helper()
	conf, err := util.DefaultConf()
	if err != nil {
		t.Fatalf("DefaultConf failed: %v", err)
	}
	conf.Conf.ApiUrl = apiUrl
	conf.Conf.ChatUrl = ""
	conf.Conf.Database = filepath.Join(t.TempDir(), "session.db")
	return conf
}

func seedSession(t *testing.T, path string, s domain.Session) {
	t.Helper()
	store, err := db.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()
	if err := store.SaveSession(s); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}
}

func storedSession(t *testing.T, path string) *domain.Session {
	t.Helper()
	store, err := db.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()
	s, err := store.LoadSession()
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	return s
}

func TestStartWithExpiredSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/checkToken" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "false")
	}))
	defer server.Close()

	conf := testConf(t, server.URL)
	seedSession(t, conf.Conf.Database, domain.Session{Token: "old", Username: "al", Avatar: "a.png"})

	a, err := New(conf, Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if !a.Global.GetState().Session.LoggedIn {
		t.Fatal("Expected the stored session to start logged in")
	}

	h := a.Start()
	if h == nil {
		t.Fatal("Expected a session check request")
	}
	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session check did not settle")
	}

	s := a.Global.GetState()
	if s.Session.LoggedIn {
		t.Error("Expected the session to be logged out")
	}
	if len(s.FlashMessages) != 1 || s.FlashMessages[0] != "Your session has expired." {
		t.Errorf("Unexpected flash messages %v", s.FlashMessages)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if stored := storedSession(t, conf.Conf.Database); stored != nil {
		t.Errorf("Expected storage to be cleared, got %+v", stored)
	}
}

func TestStartLoggedOutMakesNoRequest(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	a, err := New(testConf(t, server.URL), Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	if h := a.Start(); h != nil {
		t.Error("Expected no session check without a stored session")
	}
	if calls != 0 {
		t.Errorf("Expected no requests, got %d", calls)
	}
}

func TestLoginPersistsAcrossRestart(t *testing.T) {
	conf := testConf(t, "http://127.0.0.1:1")

	a, err := New(conf, Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	a.Do(func() {
		a.Global.Dispatch(state.Login{Data: domain.User{Token: "tok", Username: "bo"}})
	})
	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	stored := storedSession(t, conf.Conf.Database)
	if stored == nil || stored.Token != "tok" || stored.Username != "bo" {
		t.Errorf("Expected bo's session in storage, got %+v", stored)
	}
}
