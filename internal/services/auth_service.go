package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"bookmybus/internal/auth"
	"bookmybus/internal/domain"
	"bookmybus/internal/domain/models"
	"bookmybus/internal/utils"
)

type AuthService struct {
	Users     UserStore
	Tokens    auth.TokenService
	AdminKey  string
	Now       func() time.Time
	RequestID string
}

type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	AdminKey string
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

var (
	errBadCredentials = domain.ValidationError{Msg: "Invalid credentials"}
	errUserExists     = domain.ValidationError{Msg: "User already exists"}
)

func (s AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (in RegisterInput) validate() error {
	var fields []domain.FieldError
	if strings.TrimSpace(in.Name) == "" {
		fields = append(fields, domain.FieldError{Field: "name", Msg: "Name is required"})
	}
	if !validEmail(in.Email) {
		fields = append(fields, domain.FieldError{Field: "email", Msg: "Please include a valid email"})
	}
	if strings.TrimSpace(in.Phone) == "" {
		fields = append(fields, domain.FieldError{Field: "phone", Msg: "Phone number is required"})
	}
	if len(in.Password) < auth.MinPasswordLen {
		fields = append(fields, domain.FieldError{Field: "password", Msg: fmt.Sprintf("Please enter a password with %d or more characters", auth.MinPasswordLen)})
	}
	if len(fields) > 0 {
		return domain.ValidationError{Msg: "Validation failed", Fields: fields}
	}
	return nil
}

func (s AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	return s.register(ctx, in, domain.RoleUser)
}

// CreateAdmin registers an admin account when the caller knows the
// configured admin key. An empty configured key disables the operation.
func (s AuthService) CreateAdmin(ctx context.Context, in RegisterInput) (AuthResult, error) {
	if s.AdminKey == "" || subtle.ConstantTimeCompare([]byte(in.AdminKey), []byte(s.AdminKey)) != 1 {
		return AuthResult{}, domain.UnauthorizedError{Msg: "Invalid admin key"}
	}
	return s.register(ctx, in, domain.RoleAdmin)
}

func (s AuthService) register(ctx context.Context, in RegisterInput, role domain.Role) (AuthResult, error) {
	if err := in.validate(); err != nil {
		return AuthResult{}, err
	}
	users := userStore(s.Users)
	if _, err := users.GetByEmail(ctx, in.Email); err == nil {
		return AuthResult{}, errUserExists
	} else if !domain.IsNotFound(err) {
		return AuthResult{}, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return AuthResult{}, domain.InternalError{Msg: "failed to hash password", Err: err}
	}
	u, err := users.Create(ctx, models.User{
		Name:         utils.NormalizeSpace(in.Name),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now(),
	})
	if domain.IsConflict(err) {
		// Lost a race with a concurrent registration for the same email.
		return AuthResult{}, errUserExists
	}
	if err != nil {
		return AuthResult{}, err
	}
	utils.LogEvent(s.RequestID, "auth", "register", fmt.Sprintf("user_id=%d role=%s", u.ID, u.Role))
	return s.issue(u)
}

func (s AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return AuthResult{}, domain.ValidationError{Msg: "Email and password are required"}
	}
	u, err := userStore(s.Users).GetByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return AuthResult{}, errBadCredentials
		}
		return AuthResult{}, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return AuthResult{}, errBadCredentials
	}
	utils.LogEvent(s.RequestID, "auth", "login", fmt.Sprintf("user_id=%d", u.ID))
	return s.issue(u)
}

func (s AuthService) issue(u models.User) (AuthResult, error) {
	tok, err := s.Tokens.Issue(u.ID, u.Role)
	if err != nil {
		return AuthResult{}, domain.InternalError{Msg: "failed to sign token", Err: err}
	}
	return AuthResult{Token: tok, User: u}, nil
}

// CurrentUser loads the account behind a verified token.
func (s AuthService) CurrentUser(ctx context.Context, r domain.Requester) (models.User, error) {
	if r.UserID <= 0 {
		return models.User{}, domain.UnauthorizedError{Msg: "No token, authorization denied"}
	}
	return userStore(s.Users).GetByID(ctx, r.UserID)
}

func (s AuthService) UpdateProfile(ctx context.Context, r domain.Requester, name, phone *string) (models.User, error) {
	if r.UserID <= 0 {
		return models.User{}, domain.UnauthorizedError{Msg: "No token, authorization denied"}
	}
	if name != nil {
		n := utils.NormalizeSpace(*name)
		if n == "" {
			return models.User{}, domain.ValidationError{Field: "name", Msg: "Name cannot be empty"}
		}
		name = &n
	}
	if phone != nil {
		p := strings.TrimSpace(*phone)
		if p == "" {
			return models.User{}, domain.ValidationError{Field: "phone", Msg: "Phone cannot be empty"}
		}
		phone = &p
	}
	return userStore(s.Users).UpdateProfile(ctx, r.UserID, name, phone)
}
