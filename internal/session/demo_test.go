package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/example/ridepool-client/internal/models"
)

var demoUsers = []models.User{
	{ID: "user-001", Name: "Ahmed Khan", Email: "user1@ridepool.pk", Role: models.RoleRider},
	{ID: "driver-001", Name: "Ali Raza", Email: "driver1@ridepool.pk", Role: models.RoleDriver},
	{ID: "admin-001", Name: "Usman Ahmed", Email: "admin1@ridepool.pk", Role: models.RoleAdmin},
}

func TestDemoAuthenticate(t *testing.T) {
	d, err := NewDemoDirectory(demoUsers, DemoPassword)
	if err != nil {
		t.Fatalf("NewDemoDirectory: %v", err)
	}

	id, err := d.Authenticate(" Driver1@RidePool.pk ", DemoPassword)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if id.UserID() != "driver-001" || id.Role() != models.RoleDriver || !id.Demo {
		t.Fatalf("unexpected identity %+v", id)
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(id.AuthToken, claims); err != nil {
		t.Fatalf("demo token is not a JWT: %v", err)
	}
	if claims["demo"] != true || claims["sub"] != "driver-001" || claims["role"] != "driver" {
		t.Fatalf("unexpected claims %v", claims)
	}
	if TokenExpired(id.AuthToken, time.Now()) {
		t.Fatalf("fresh demo token reported expired")
	}
	if !TokenExpired(id.AuthToken, time.Now().Add(25*time.Hour)) {
		t.Fatalf("expected demo token to expire after a day")
	}
}

func TestDemoAuthenticateRejects(t *testing.T) {
	d, err := NewDemoDirectory(demoUsers, DemoPassword)
	if err != nil {
		t.Fatalf("NewDemoDirectory: %v", err)
	}
	if _, err := d.Authenticate("user1@ridepool.pk", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := d.Authenticate("nobody@ridepool.pk", DemoPassword); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestTokenExpiredOpaqueToken(t *testing.T) {
	if TokenExpired("not-a-jwt", time.Now()) {
		t.Fatalf("opaque tokens must not be treated as expired")
	}
}
