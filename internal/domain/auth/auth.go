package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Claims struct {
	UserID     string `json:"uid"`
	EmployeeID string `json:"eid"`
	RoleName   string `json:"role"`
	jwt.RegisteredClaims
}

// UserContext is what the middleware attaches to the request context.
type UserContext struct {
	UserID     string `json:"userId"`
	EmployeeID string `json:"employeeId,omitempty"`
	RoleName   string `json:"role"`
}

func IssueToken(secret, userID, employeeID, roleName string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:     userID,
		EmployeeID: employeeID,
		RoleName:   roleName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func ParseToken(secret, token string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidCredentials
	}
	return claims, nil
}

type User struct {
	ID           string
	Email        string
	EmployeeID   string
	RoleName     string
	PasswordHash string
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	var employeeID *string
	err := s.DB.QueryRow(ctx, `
    SELECT u.id, u.email, u.role_name, u.password_hash, e.id
    FROM users u
    LEFT JOIN employees e ON e.user_id = u.id
    WHERE u.email = $1
  `, email).Scan(&u.ID, &u.Email, &u.RoleName, &u.PasswordHash, &employeeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if employeeID != nil {
		u.EmployeeID = *employeeID
	}
	return u, nil
}

// FindEmployeeEmail resolves the login email for an employee, for
// notification delivery. Employees without a linked user have no address.
func (s *Store) FindEmployeeEmail(ctx context.Context, employeeID string) (string, error) {
	var email string
	err := s.DB.QueryRow(ctx, `
    SELECT u.email
    FROM employees e
    JOIN users u ON u.id = e.user_id
    WHERE e.id = $1
  `, employeeID).Scan(&email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return email, nil
}

// FindRoleEmails lists login emails of every user holding the role, for
// submission notifications to the HR group.
func (s *Store) FindRoleEmails(ctx context.Context, roleName string) ([]string, error) {
	rows, err := s.DB.Query(ctx, `SELECT email FROM users WHERE role_name = $1`, roleName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		out = append(out, email)
	}
	return out, rows.Err()
}

func CheckPassword(hash, password string) error {
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
