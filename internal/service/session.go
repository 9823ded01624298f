package service

import (
	"go.uber.org/zap"

	"github.com/atinyakov/ShopKeeper/internal/models"
)

const currentUserKey = "current_user"

// CurrentUser returns the signed-in user, if any. The session always lives
// in the local store.
func (s *Storage) CurrentUser() (models.User, bool) {
	var u models.User
	ok, err := s.codec.Lookup(currentUserKey, &u)
	if err != nil {
		s.log.Error("failed to read current user", zap.Error(err))
		return models.User{}, false
	}
	return u, ok
}

// SetCurrentUser replaces the session record.
func (s *Storage) SetCurrentUser(u models.User) error {
	return s.codec.Set(currentUserKey, u)
}

// Logout removes the session record.
func (s *Storage) Logout() error {
	return s.codec.Remove(currentUserKey)
}

// IsLoggedIn reports whether a session record exists.
func (s *Storage) IsLoggedIn() bool {
	_, ok := s.CurrentUser()
	return ok
}
