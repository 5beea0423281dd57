package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is an account row.
type User struct {
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// UserStore looks up and creates accounts.
type UserStore interface {
	Get(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, user *User) error
	Count(ctx context.Context) (int64, error)
}

// UserRepository stores accounts in postgres.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository constructs a repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Get returns one account or ErrUserNotFound.
func (r *UserRepository) Get(ctx context.Context, username string) (*User, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("user repo: nil db")
	}
	user := &User{}
	var role string
	err := r.db.QueryRowContext(ctx, `
SELECT username, password_hash, role, created_at FROM users WHERE username = $1`, username).
		Scan(&user.Username, &user.PasswordHash, &role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.Role, _ = NormalizeRole(role)
	return user, nil
}

// Create inserts an account.
func (r *UserRepository) Create(ctx context.Context, user *User) error {
	if r == nil || r.db == nil {
		return errors.New("user repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (username, password_hash, role, created_at) VALUES ($1,$2,$3,$4)`,
		user.Username, user.PasswordHash, string(user.Role), user.CreatedAt)
	return err
}

// Count returns the number of accounts.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("user repo: nil db")
	}
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

// SeedAccount describes one account to create on first start.
type SeedAccount struct {
	Username string
	Password string
	Role     Role
}

// SeedUsers creates the configured accounts when the user table is
// empty. Passwords are hashed with bcrypt before they touch the store.
func SeedUsers(ctx context.Context, store UserStore, accounts []SeedAccount) error {
	count, err := store.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, account := range accounts {
		if account.Username == "" || account.Password == "" {
			continue
		}
		role := account.Role
		if _, ok := NormalizeRole(string(role)); !ok {
			role = RoleViewer
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(account.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		err = store.Create(ctx, &User{
			Username:     account.Username,
			PasswordHash: string(hash),
			Role:         role,
			CreatedAt:    time.Now().UTC(),
		})
		if err != nil {
			return err
		}
	}
	return nil
}
