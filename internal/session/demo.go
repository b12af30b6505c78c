package session

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/ridepool-client/internal/models"
)

const (
	DemoPassword = "password123"
	demoTokenTTL = 24 * time.Hour
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type demoClaims struct {
	Role models.Role `json:"role"`
	Demo bool        `json:"demo"`
	jwt.RegisteredClaims
}

type demoAccount struct {
	user models.User
	hash []byte
}

// DemoDirectory accepts the fixed demo accounts while the backend is down
// and mints locally signed tokens for them.
type DemoDirectory struct {
	accounts map[string]demoAccount
	secret   []byte
	now      func() time.Time
}

func NewDemoDirectory(users []models.User, password string) (*DemoDirectory, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("demo signing key: %w", err)
	}
	d := &DemoDirectory{accounts: make(map[string]demoAccount, len(users)), secret: secret, now: time.Now}
	for _, u := range users {
		d.accounts[normalizeEmail(u.Email)] = demoAccount{user: u, hash: hash}
	}
	return d, nil
}

func (d *DemoDirectory) Authenticate(email, password string) (models.Identity, error) {
	acct, ok := d.accounts[normalizeEmail(email)]
	if !ok {
		return models.Identity{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acct.hash, []byte(password)); err != nil {
		return models.Identity{}, ErrInvalidCredentials
	}
	token, err := d.mint(acct.user)
	if err != nil {
		return models.Identity{}, err
	}
	return models.Identity{User: acct.user, AuthToken: token, Demo: true}, nil
}

func (d *DemoDirectory) mint(u models.User) (string, error) {
	now := d.now()
	claims := demoClaims{
		Role: u.Role,
		Demo: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(demoTokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(d.secret)
	if err != nil {
		return "", fmt.Errorf("sign demo token: %w", err)
	}
	return signed, nil
}

// TokenExpired reads exp without verifying the signature; the backend does
// the real check. Tokens that are not JWTs or carry no exp never expire here.
func TokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
