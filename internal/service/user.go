package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"restaurant-booking/internal/domain"
	"restaurant-booking/pkg/utils"
)

const (
	minPasswordLen = 8
	// bcrypt refuses longer input
	maxPasswordBytes = 72
)

var validate = validator.New()

type TokenIssuer interface {
	Issue(uid, role string) (string, error)
}

type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

type UserService struct {
	users   domain.UserRepository
	tokens  TokenIssuer
	revoker TokenRevoker
	log     *zap.Logger
}

func NewUserService(users domain.UserRepository, tokens TokenIssuer, revoker TokenRevoker, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{users: users, tokens: tokens, revoker: revoker, log: log}
}

type Session struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type ProfileInput struct {
	Name     string
	Email    string
	Password string // empty keeps the current password
}

type UserUpdateInput struct {
	Name  string
	Email string
	Role  domain.Role
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Var(email, "required,email,max=191"); err != nil {
		return "", domain.Validation("a valid email address is required")
	}
	return email, nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := validate.Var(name, "required,max=255"); err != nil {
		return "", domain.Validation("name is required and must be at most 255 characters")
	}
	return name, nil
}

func checkPassword(pw string) error {
	if len(pw) < minPasswordLen {
		return domain.Validation(fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	if len(pw) > maxPasswordBytes {
		return domain.Validation(fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))
	}
	return nil
}

func (s *UserService) session(u *domain.User) (*Session, error) {
	tok, err := s.tokens.Issue(u.ID, string(u.Role))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: tok, User: u}, nil
}

// Register creates a customer account and signs it in.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*Session, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	if email, err = normalizeEmail(email); err != nil {
		return nil, err
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{ID: utils.NewID(), Email: email, Name: name, PasswordHash: hash, Role: domain.RoleCustomer}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.String("user_id", u.ID))
	return s.session(u)
}

func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return nil, domain.Unauthorized("invalid credentials")
	}
	return s.session(u)
}

// Logout revokes the token id for the rest of its lifetime.
func (s *UserService) Logout(ctx context.Context, jti string, remaining time.Duration) error {
	if s.revoker == nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, jti, remaining); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *UserService) find(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFound(fmt.Sprintf("user %s not found", id))
	}
	return u, nil
}

func (s *UserService) Me(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.find(ctx, actor.ID)
}

func (s *UserService) UpdateMe(ctx context.Context, actor domain.Actor, in ProfileInput) (*domain.User, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	u, err := s.find(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if !domain.Can(actor, domain.ActUserUpdate, u) {
		return nil, domain.Forbidden("you may not update this profile")
	}
	if u.Name, err = normalizeName(in.Name); err != nil {
		return nil, err
	}
	if u.Email, err = normalizeEmail(in.Email); err != nil {
		return nil, err
	}
	if in.Password != "" {
		if err := checkPassword(in.Password); err != nil {
			return nil, err
		}
		if u.PasswordHash, err = utils.HashPassword(in.Password); err != nil {
			return nil, err
		}
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

type UserPage struct {
	Total int64         `json:"total"`
	Items []domain.User `json:"items"`
}

func (s *UserService) List(ctx context.Context, actor domain.Actor, offset, limit int) (*UserPage, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !domain.Can(actor, domain.ActUserList, nil) {
		return nil, domain.Forbidden("only administrators can list users")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset = max(offset, 0)
	items, total, err := s.users.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.User{}
	}
	return &UserPage{Total: total, Items: items}, nil
}

// Update lets an administrator change a user's profile and role.
func (s *UserService) Update(ctx context.Context, actor domain.Actor, id string, in UserUpdateInput) (*domain.User, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	u, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.Can(actor, domain.ActUserUpdate, u) {
		return nil, domain.Forbidden("you may not update this user")
	}
	if in.Role != "" && in.Role != u.Role {
		if !domain.Can(actor, domain.ActUserChangeRole, u) {
			return nil, domain.Forbidden("only administrators can change roles")
		}
		if !in.Role.Valid() {
			return nil, domain.Validation(fmt.Sprintf("unknown role %q", in.Role))
		}
		u.Role = in.Role
	}
	if u.Name, err = normalizeName(in.Name); err != nil {
		return nil, err
	}
	if u.Email, err = normalizeEmail(in.Email); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user updated", zap.String("user_id", u.ID), zap.String("by", actor.ID), zap.String("role", string(u.Role)))
	return u, nil
}

// EnsureAdmin creates the bootstrap administrator when no account uses the
// email yet. An existing account is left untouched.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password, name string) (created bool, err error) {
	if strings.TrimSpace(email) == "" {
		return false, nil
	}
	if email, err = normalizeEmail(email); err != nil {
		return false, err
	}
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil || existing != nil {
		return false, err
	}
	if err := checkPassword(password); err != nil {
		return false, err
	}
	if name == "" {
		name = "Administrator"
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return false, err
	}
	u := &domain.User{ID: utils.NewID(), Email: email, Name: name, PasswordHash: hash, Role: domain.RoleAdmin}
	if err := s.users.Create(ctx, u); err != nil {
		return false, err
	}
	s.log.Info("bootstrap admin created", zap.String("email", email))
	return true, nil
}
