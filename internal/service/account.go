package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"tugas-go/internal/models"
	"tugas-go/internal/repository"
	"tugas-go/internal/token"
)

const (
	msgUserExists         = "User already exists"
	msgEmailTaken         = "Email already in use"
	msgInvalidCredentials = "Invalid email or password"
	msgInvalidUserID      = "Invalid user ID format"
	msgUserNotFound       = "User not found"
)

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id string) error
}

type TokenIssuer interface {
	Issue(id token.Identity) (string, error)
}

// OwnerPurger removes everything a user owns before the user goes away.
type OwnerPurger interface {
	PurgeOwner(ctx context.Context, ownerID string) error
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// UpdateUserInput holds the fields to change; nil means untouched.
type UpdateUserInput struct {
	Username *string
	Email    *string
	Password *string
}

type AuthResult struct {
	User  models.PublicUser
	Token string
}

type AccountService struct {
	users     UserStore
	tokens    TokenIssuer
	owned     OwnerPurger
	validate  *validator.Validate
	cost      int
	dummyHash []byte
}

func NewAccountService(users UserStore, tokens TokenIssuer, owned OwnerPurger, validate *validator.Validate, bcryptCost int) (*AccountService, error) {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	// dipakai saat email tidak ditemukan supaya waktu respon login sama
	dummy, err := bcrypt.GenerateFromPassword([]byte("placeholder-password"), bcryptCost)
	if err != nil {
		return nil, err
	}
	return &AccountService{
		users:     users,
		tokens:    tokens,
		owned:     owned,
		validate:  validate,
		cost:      bcryptCost,
		dummyHash: dummy,
	}, nil
}

func (s *AccountService) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", validationError("Password must not exceed 72 bytes")
		}
		return "", internalError(err)
	}
	return string(hashed), nil
}

func (s *AccountService) authResult(u *models.User) (*AuthResult, error) {
	tok, err := s.tokens.Issue(token.Identity{ID: u.ID, Username: u.Username, Email: u.Email})
	if err != nil {
		return nil, internalError(err)
	}
	return &AuthResult{User: u.Public(), Token: tok}, nil
}

// Register creates a user and returns its public projection with a fresh token.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	email := normalizeEmail(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return nil, validationError(msgAllFieldsRequired)
	}
	if err := check(s.validate, userRules{Username: &username, Email: &email, Password: &in.Password}); err != nil {
		return nil, err
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, conflictError(msgUserExists)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, internalError(err)
	}

	hashed, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	u := &models.User{Username: username, Email: email, PasswordHash: hashed}
	if err := s.users.Create(ctx, u); err != nil {
		// pendaftaran bersamaan dengan email sama: constraint unik yang menolak
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, conflictError(msgUserExists)
		}
		return nil, internalError(err)
	}
	return s.authResult(u)
}

// Login checks the credentials. Unknown email and wrong password fail identically.
func (s *AccountService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, validationError(msgAllFieldsRequired)
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, unauthorizedError(msgInvalidCredentials)
		}
		return nil, internalError(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, unauthorizedError(msgInvalidCredentials)
	}
	return s.authResult(u)
}

// Update applies the supplied fields, re-hashing the password if present.
func (s *AccountService) Update(ctx context.Context, id string, in UpdateUserInput) (*models.PublicUser, error) {
	if !validID(id) {
		return nil, validationError(msgInvalidUserID)
	}

	rules := userRules{Password: in.Password}
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		rules.Username = &username
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		rules.Email = &email
	}
	if err := check(s.validate, rules); err != nil {
		return nil, err
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError(msgUserNotFound)
		}
		return nil, internalError(err)
	}

	if rules.Username != nil {
		u.Username = *rules.Username
	}
	if rules.Email != nil {
		u.Email = *rules.Email
	}
	if rules.Password != nil {
		hashed, err := s.hash(*rules.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hashed
	}

	if err := s.users.Update(ctx, u); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, notFoundError(msgUserNotFound)
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, conflictError(msgEmailTaken)
		}
		return nil, internalError(err)
	}
	pub := u.Public()
	return &pub, nil
}

// Remove deletes the user together with the tasks it owns.
func (s *AccountService) Remove(ctx context.Context, id string) error {
	if !validID(id) {
		return validationError(msgInvalidUserID)
	}
	if _, err := s.users.FindByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError(msgUserNotFound)
		}
		return internalError(err)
	}
	if err := s.owned.PurgeOwner(ctx, id); err != nil {
		return internalError(err)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError(msgUserNotFound)
		}
		return internalError(err)
	}
	return nil
}
