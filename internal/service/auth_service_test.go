package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// authUserRepo extends the ticket-test fake with username lookups and
// create-side effects, which the auth flow needs.
type authUserRepo struct {
	memUserRepo
	byUsername map[string]*domain.User
}

func (r *authUserRepo) Create(ctx context.Context, u *domain.User) error {
	u.ID = "u-" + u.Username
	r.byUsername[u.Username] = u
	return nil
}

func (r *authUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, ok := r.byUsername[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func authFixture(seed ...*domain.User) (*AuthService, *authUserRepo) {
	repo := &authUserRepo{byUsername: map[string]*domain.User{}}
	for _, u := range seed {
		repo.byUsername[u.Username] = u
	}
	svc := NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            4,
	}, repo)
	return svc, repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := authFixture()

	user, err := svc.Register(context.Background(), RegisterInput{
		Username: "  Alice  ",
		Password: "s3cret",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("username = %q, want lowercase trimmed", user.Username)
	}
	if user.PasswordHash == "" || user.PasswordHash == "s3cret" {
		t.Fatal("password not hashed")
	}

	result, err := svc.Login(context.Background(), "ALICE", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Token == "" {
		t.Fatal("no token issued")
	}
	claims, err := svc.TokenManager().ParseToken(result.Token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("token uid = %s, want %s", claims.UserID, user.ID)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := authFixture(&domain.User{Username: "alice", Active: true})

	_, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Password: "x"})
	if code := apperrors.ToDomainError(err).Code; code != "CONFLICT" {
		t.Fatalf("code = %s, want CONFLICT", code)
	}
}

func TestLoginFailures(t *testing.T) {
	svc, _ := authFixture()
	if _, err := svc.Register(context.Background(), RegisterInput{Username: "bob", Password: "pw"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	tests := []struct {
		name     string
		mutate   func(*authUserRepo)
		username string
		password string
		code     string
	}{
		{"unknown user", nil, "nobody", "pw", "UNAUTHORIZED"},
		{"wrong password", nil, "bob", "wrong", "UNAUTHORIZED"},
		{
			"disabled account",
			func(r *authUserRepo) { r.byUsername["bob"].Active = false },
			"bob", "pw", "FORBIDDEN",
		},
		{
			"ldap account has no local login",
			func(r *authUserRepo) {
				r.byUsername["bob"].Active = true
				r.byUsername["bob"].IsLDAP = true
			},
			"bob", "pw", "UNAUTHORIZED",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc2, repo := authFixture()
			if _, err := svc2.Register(context.Background(), RegisterInput{Username: "bob", Password: "pw"}); err != nil {
				t.Fatalf("register: %v", err)
			}
			if tc.mutate != nil {
				tc.mutate(repo)
			}
			_, err := svc2.Login(context.Background(), tc.username, tc.password)
			if code := apperrors.ToDomainError(err).Code; code != tc.code {
				t.Fatalf("code = %s, want %s", code, tc.code)
			}
		})
	}
}
