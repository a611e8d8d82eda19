package state

import (
	"github.com/deemkeen/postbox/domain"
	"github.com/deemkeen/postbox/store"
	"github.com/deemkeen/postbox/util"
)

// SessionStorage is the durable home of the three session entries.
type SessionStorage interface {
	SaveSession(s domain.Session) error
	ClearSession() error
}

// PersistSession returns the listener that mirrors LoggedIn transitions into
// storage: a login writes the whole group, a logout removes it.
func PersistSession(storage SessionStorage) store.Listener[State] {
	log := util.NewLogger("session")
	return func(prev, next State) {
		if prev.Session.LoggedIn == next.Session.LoggedIn {
			return
		}
		if next.Session.LoggedIn {
			if err := storage.SaveSession(next.Session); err != nil {
				log.Errorf("Could not persist session for %s: %v", next.Session.Username, err)
				return
			}
			log.Debugf("Persisted session for %s", next.Session.Username)
			return
		}
		if err := storage.ClearSession(); err != nil {
			log.Errorf("Could not clear persisted session: %v", err)
			return
		}
		log.Debug("Cleared persisted session")
	}
}
