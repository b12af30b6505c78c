// Package session owns the signed-in identity: where it is kept, how it is
// established against the backend and how it survives a restart.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/example/ridepool-client/internal/models"
)

const (
	TokenKey = "ridepool_token"
	UserKey  = "ridepool_user"
)

var ErrIncompleteIdentity = errors.New("identity needs a token and a user id")

type userRecord struct {
	models.User
	Demo bool `json:"demo,omitempty"`
}

// Store persists exactly one identity as a token/user pair. A half-written
// pair is never returned: Load clears it instead.
type Store struct {
	kv  KV
	log zerolog.Logger
}

func NewStore(kv KV, log zerolog.Logger) *Store {
	return &Store{kv: kv, log: log}
}

func (s *Store) Save(ctx context.Context, id models.Identity) error {
	if id.AuthToken == "" || id.UserID() == "" {
		return ErrIncompleteIdentity
	}
	raw, err := json.Marshal(userRecord{User: id.User, Demo: id.Demo})
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.kv.Put(ctx, map[string]string{TokenKey: id.AuthToken, UserKey: string(raw)}); err != nil {
		return fmt.Errorf("save identity: %w", err)
	}
	return nil
}

// Load returns nil, nil when nobody is signed in.
func (s *Store) Load(ctx context.Context) (*models.Identity, error) {
	vals, err := s.kv.Get(ctx, TokenKey, UserKey)
	if err != nil {
		return nil, fmt.Errorf("load identity: %w", err)
	}
	token, hasToken := vals[TokenKey]
	rawUser, hasUser := vals[UserKey]
	if !hasToken && !hasUser {
		return nil, nil
	}
	if !hasToken || !hasUser || token == "" {
		s.log.Warn().Bool("token", hasToken).Bool("user", hasUser).Msg("partial session found, clearing")
		return nil, s.Clear(ctx)
	}
	var rec userRecord
	if err := json.Unmarshal([]byte(rawUser), &rec); err != nil || rec.ID == "" {
		s.log.Warn().Err(err).Msg("unreadable session user, clearing")
		return nil, s.Clear(ctx)
	}
	return &models.Identity{User: rec.User, AuthToken: token, Demo: rec.Demo}, nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, TokenKey, UserKey); err != nil {
		return fmt.Errorf("clear identity: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.kv.Close() }
