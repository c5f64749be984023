package auth

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/kamikazebr/iskra-desktop/internal/client/storage"
	"github.com/kamikazebr/iskra-desktop/pkg/models"
)

// State is the persisted token/profile pair. Both are empty when logged out.
type State struct {
	Token string
	User  *models.User
}

// Authenticated reports whether both halves of the pair are present.
func (s State) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// LoadState reads the pair from the store. A missing or malformed profile is
// treated as absent.
func LoadState(store storage.Store, log logrus.FieldLogger) State {
	var st State
	if token, ok := store.Get(storage.KeyToken); ok {
		st.Token = token
	}

	raw, ok := store.Get(storage.KeyUser)
	if !ok || raw == "" {
		return st
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		log.WithError(err).Debug("Ignoring malformed cached profile")
		return st
	}
	st.User = &u
	return st
}

// SaveState writes token and profile in a single store update.
func SaveState(store storage.Store, st State) error {
	data, err := json.Marshal(st.User)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	if err := store.Set(map[string]string{
		storage.KeyToken: st.Token,
		storage.KeyUser:  string(data),
	}); err != nil {
		return fmt.Errorf("failed to save auth state: %w", err)
	}
	return nil
}

func ClearState(store storage.Store) error {
	if err := store.Remove(storage.KeyToken, storage.KeyUser); err != nil {
		return fmt.Errorf("failed to clear auth state: %w", err)
	}
	return nil
}
