package userservice

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/sushihentaime/blogauth/internal/common"
)

var (
	ErrPasswordMismatch = errors.New("password mismatch")
)

// NewUserService wires the user store, token issuer and an optional producer
// for registration events. A nil producer disables the events.
func NewUserService(db *sql.DB, mb common.MessageProducer, tokens *TokenIssuer, logger *slog.Logger) *UserService {
	return &UserService{
		m:      newUserModel(db),
		tokens: tokens,
		mb:     mb,
		logger: logger,
	}
}

// Register creates a user account and publishes a user.registered event. No
// token is issued; the client has to log in.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	v := common.NewValidator()
	validateName(v, req.Name)
	validateEmail(v, req.Email)
	validatePassword(v, req.Password)
	validatePasswordConfirmation(v, req.Password, req.PasswordConfirmation)
	validatePhoneNumber(v, req.PhoneNumber)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	u := User{
		Name:  req.Name,
		Email: req.Email,
	}

	if req.PhoneNumber != nil && *req.PhoneNumber != "" {
		u.PhoneNumber = req.PhoneNumber
	}

	err := u.Password.set(req.Password)
	if err != nil {
		return nil, err
	}

	err = s.m.insertUser(ctx, &u)
	if err != nil {
		return nil, err
	}

	s.publishRegistered(ctx, &u)

	return &u, nil
}

// publishRegistered is best effort. The account already exists at this point
// and a broker outage must not turn a successful registration into an error.
func (s *UserService) publishRegistered(ctx context.Context, u *User) {
	if s.mb == nil {
		return
	}

	body, err := common.UserRegisteredEvent{Name: u.Name, Email: u.Email}.Marshal()
	if err != nil {
		s.logger.Error("could not marshal user registered event", slog.String("error", err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = s.mb.Publish(ctx, body, common.UserRegisteredKey, common.UserExchange)
	if err != nil {
		s.logger.Error("could not publish user registered event", slog.Int("user_id", u.ID), slog.String("error", err.Error()))
	}
}

// Login checks the credentials and issues a new access token. Unknown emails
// return ErrUserNotFound and wrong passwords ErrPasswordMismatch.
func (s *UserService) Login(ctx context.Context, req LoginRequest) (*AccessToken, error) {
	v := common.NewValidator()
	validateEmail(v, req.Email)
	v.Check(req.Password != "", "password", "must be provided")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	user, err := s.m.getUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	ok, err := user.Password.compare(req.Password)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrPasswordMismatch
	}

	return s.issueToken(ctx, user.ID, TokenNameLogin)
}

// Profile returns the user identified by the authenticated principal.
func (s *UserService) Profile(ctx context.Context, userID int) (*User, error) {
	v := common.NewValidator()
	validateID(v, userID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getUserByID(ctx, userID)
}

// RefreshToken issues an additional token. Tokens issued earlier stay valid.
func (s *UserService) RefreshToken(ctx context.Context, userID int) (*AccessToken, error) {
	v := common.NewValidator()
	validateID(v, userID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.issueToken(ctx, userID, TokenNameRefresh)
}

// Logout revokes every token of the user, not only the one used for the
// request.
func (s *UserService) Logout(ctx context.Context, userID int) error {
	v := common.NewValidator()
	validateID(v, userID, "user_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	_, err := s.m.deleteTokensForUser(ctx, userID)
	return err
}

// Authenticate resolves a bearer token to its user. Malformed, expired and
// revoked tokens all return ErrInvalidToken.
func (s *UserService) Authenticate(ctx context.Context, plain string) (*User, error) {
	if plain == "" {
		return nil, ErrInvalidToken
	}

	id, userID, err := s.tokens.parse(plain)
	if err != nil {
		return nil, err
	}

	return s.m.getUserForToken(ctx, id, userID)
}

func (s *UserService) issueToken(ctx context.Context, userID int, name tokenName) (*AccessToken, error) {
	token, err := s.tokens.issue(userID, name)
	if err != nil {
		return nil, err
	}

	err = s.m.insertToken(ctx, token)
	if err != nil {
		return nil, err
	}

	return token, nil
}
