package users

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/catatan/catatan/internal/database"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newSQLiteUsers(t *testing.T) UserRepository {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	repo, err := NewSQLUserRepository(context.Background(), db, database.DialectSQLite)
	require.NoError(t, err)
	return repo
}

var backends = map[string]func(t *testing.T) UserRepository{
	"memory": func(t *testing.T) UserRepository { return NewMemoryUserRepository() },
	"sqlite": newSQLiteUsers,
}

func TestService_RegisterAndLogin(t *testing.T) {
	for name, newRepo := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc := NewService(newRepo(t))

			u, err := svc.Register(ctx, " Ana ", " Ana@Example.com ", "hunter22")
			require.NoError(t, err)
			require.NotEmpty(t, u.ID)
			require.Equal(t, "Ana", u.Name)
			require.Equal(t, "ana@example.com", u.Email)
			require.NotEqual(t, "hunter22", u.PasswordHash)
			cost, err := bcrypt.Cost([]byte(u.PasswordHash))
			require.NoError(t, err)
			require.Equal(t, HashCost, cost)

			got, err := svc.Login(ctx, "ANA@example.com", "hunter22")
			require.NoError(t, err)
			require.Equal(t, u.ID, got.ID)

			byID, err := svc.GetByID(ctx, u.ID)
			require.NoError(t, err)
			require.Equal(t, u.Email, byID.Email)

			_, err = svc.GetByID(ctx, "missing")
			require.ErrorIs(t, err, ErrUserNotFound)
		})
	}
}

func TestService_DuplicateEmail(t *testing.T) {
	for name, newRepo := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc := NewService(newRepo(t))
			_, err := svc.Register(ctx, "Ana", "ana@example.com", "pw1")
			require.NoError(t, err)
			_, err = svc.Register(ctx, "Other", "ANA@example.com", "pw2")
			require.ErrorIs(t, err, ErrEmailTaken)
		})
	}
}

func TestService_LoginFailuresLookAlike(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryUserRepository())
	_, err := svc.Register(ctx, "Ana", "ana@example.com", "right")
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, "ana@example.com", "wrong")
	_, unknownEmail := svc.Login(ctx, "nobody@example.com", "right")
	require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	require.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestService_RegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryUserRepository())
	cases := []struct{ name, email, password string }{
		{"", "a@b.c", "pw"},
		{"Ana", "", "pw"},
		{"Ana", "a@b.c", ""},
		{"Ana", "not-an-email", "pw"},
		{"Ana", "a@b.c", strings.Repeat("x", 80)},
	}
	for _, c := range cases {
		_, err := svc.Register(ctx, c.name, c.email, c.password)
		require.ErrorIs(t, err, ErrInvalidInput, "%+v", c)
	}
}
