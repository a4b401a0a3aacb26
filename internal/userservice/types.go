package userservice

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sushihentaime/blogauth/internal/common"
)

type tokenName string

const (
	TokenNameLogin   tokenName = "login"
	TokenNameRefresh tokenName = "refresh"

	AccessTokenTime time.Duration = 7 * 24 * time.Hour
)

var (
	AnonymousUser = User{}
)

type UserService struct {
	m      *DBModel
	tokens *TokenIssuer
	mb     common.MessageProducer
	logger *slog.Logger
}

type DBModel struct {
	db *sql.DB
}

type User struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Password    Password  `json:"-"`
	PhoneNumber *string   `json:"phone_number"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Password struct {
	Plain string `json:"-"`
	hash  []byte `json:"-"`
}

// AccessToken is a bearer credential. Plain is the signed JWT handed to the
// client; ID is its jti and the primary key of the access_tokens row.
type AccessToken struct {
	ID     uuid.UUID `json:"-"`
	Plain  string    `json:"token"`
	UserID int       `json:"-"`
	Name   tokenName `json:"-"`
	Expiry time.Time `json:"expiry"`
}

type RegisterRequest struct {
	Name                 string  `json:"name"`
	Email                string  `json:"email"`
	Password             string  `json:"password"`
	PasswordConfirmation string  `json:"password_confirmation"`
	PhoneNumber          *string `json:"phone_number"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
