package users

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestPGRepoCreateMapsUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	user := User{
		ID:             "user-1",
		Username:       "alice",
		Email:          "alice@example.com",
		HashedPassword: "hash",
		CreatedAt:      time.Now().UTC(),
	}

	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	mock.ExpectExec("INSERT INTO users").
		WithArgs(user.ID, user.Username, user.Email, user.HashedPassword, user.CreatedAt).
		WillReturnError(fmt.Errorf("exec: %w", pgErr))

	if err := repo.Create(context.Background(), user); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreatePassesOtherErrorsThrough(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	user := User{
		ID:             "user-1",
		Username:       "alice",
		Email:          "alice@example.com",
		HashedPassword: "hash",
		CreatedAt:      time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO users").
		WithArgs(user.ID, user.Username, user.Email, user.HashedPassword, user.CreatedAt).
		WillReturnError(errors.New("connection reset containing 23505 in text only"))

	if err := repo.Create(context.Background(), user); errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("plain errors must not map to ErrDuplicateEmail")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
