// Package auth keeps the signed-in session of the device.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Dang-Huynh/FoodOrderingService/internal/logger"
	"github.com/Dang-Huynh/FoodOrderingService/internal/models"
	"github.com/Dang-Huynh/FoodOrderingService/internal/storage"
)

var ErrNotLoggedIn = errors.New("not logged in")

// Authenticator is the remote auth service
type Authenticator interface {
	Login(ctx context.Context, creds models.Credentials) (models.TokenPair, error)
	Register(ctx context.Context, reg models.Registration) (models.TokenPair, error)
}

// User is what the access token says about its owner. The token is decoded
// without verifying the signature; the order service is the authority.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// ParseUser decodes the user claims of an access token
func ParseUser(token string) (User, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return User{}, fmt.Errorf("failed to decode access token: %w", err)
	}

	u := User{}
	if email, ok := claims["email"].(string); ok {
		u.Email = email
	}
	switch id := claims["user_id"].(type) {
	case float64:
		u.ID = int64(id)
	case string:
		u.ID, _ = strconv.ParseInt(id, 10, 64)
	}
	return u, nil
}

type Session struct {
	client Authenticator
	writer *storage.Writer
	logger *logger.Logger

	mu      sync.RWMutex
	access  string
	refresh string
	user    *User
}

// NewSession restores the stored session. A stored token that does not
// decode is removed.
func NewSession(ctx context.Context, client Authenticator, w *storage.Writer, log *logger.Logger) *Session {
	s := &Session{client: client, writer: w, logger: log}

	token, ok := storage.ReadString(ctx, w.Store(), storage.KeyAccessToken)
	if !ok || token == "" {
		return s
	}
	u, err := ParseUser(token)
	if err != nil {
		log.Info("session_discarded", "stored access token is malformed", "", map[string]interface{}{
			"reason": err.Error(),
		})
		w.Delete(ctx, storage.KeyAccessToken)
		w.Delete(ctx, storage.KeyRefreshToken)
		return s
	}

	s.access = token
	s.refresh, _ = storage.ReadString(ctx, w.Store(), storage.KeyRefreshToken)
	s.user = &u
	return s
}

func (s *Session) Login(ctx context.Context, creds models.Credentials) (User, error) {
	pair, err := s.client.Login(ctx, creds)
	if err != nil {
		return User{}, err
	}
	return s.store(ctx, pair)
}

// Register creates the account and signs in. When the service does not
// hand out a token on registration the credentials are used to log in.
func (s *Session) Register(ctx context.Context, reg models.Registration) (User, error) {
	pair, err := s.client.Register(ctx, reg)
	if err != nil {
		return User{}, err
	}
	if pair.Access == "" {
		return s.Login(ctx, models.Credentials{Email: reg.Email, Password: reg.Password})
	}
	return s.store(ctx, pair)
}

func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	s.access, s.refresh, s.user = "", "", nil
	s.mu.Unlock()

	s.writer.Delete(ctx, storage.KeyAccessToken)
	s.writer.Delete(ctx, storage.KeyRefreshToken)
}

// AccessToken returns the bearer token, or "" when signed out
func (s *Session) AccessToken(context.Context) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

func (s *Session) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access != ""
}

// User returns the signed-in user
func (s *Session) User() (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, ErrNotLoggedIn
	}
	return *s.user, nil
}

func (s *Session) store(ctx context.Context, pair models.TokenPair) (User, error) {
	u, err := ParseUser(pair.Access)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	s.access, s.refresh, s.user = pair.Access, pair.Refresh, &u
	s.mu.Unlock()

	s.writer.SetString(ctx, storage.KeyAccessToken, pair.Access)
	if pair.Refresh != "" {
		s.writer.SetString(ctx, storage.KeyRefreshToken, pair.Refresh)
	}

	s.logger.Info("user_logged_in", "session started", "", map[string]interface{}{
		"user_id": u.ID,
	})
	return u, nil
}
