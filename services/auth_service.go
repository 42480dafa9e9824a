package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/cppla/aiblog/config"
	"github.com/cppla/aiblog/models"
	"github.com/cppla/aiblog/utils"
)

// AuthService owns accounts: registration, login, logout and role changes.
type AuthService struct {
	db        *gorm.DB
	cfg       config.AppConfig
	tokens    *utils.TokenManager
	blacklist *utils.TokenBlacklist
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func NewAuthService(db *gorm.DB, cfg config.AppConfig, tokens *utils.TokenManager, blacklist *utils.TokenBlacklist) *AuthService {
	return &AuthService{db: db, cfg: cfg, tokens: tokens, blacklist: blacklist}
}

// NormalizeEmail trims and lower-cases an address before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkPasswordInput(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) > utils.MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

// Register creates a USER account, or an ADMIN one for configured admin emails.
func (s *AuthService) Register(ctx context.Context, email, password string) (models.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return models.User{}, ErrEmailRequired
	}
	if err := checkPasswordInput(password); err != nil {
		return models.User{}, err
	}

	db := s.db.WithContext(ctx)
	var existing int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return models.User{}, utils.Internal(50001, "failed to check email", err)
	}
	if existing > 0 {
		return models.User{}, ErrEmailTaken
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return models.User{}, utils.Internal(50002, "failed to hash password", err)
	}

	user := models.User{Email: email, PasswordHash: hash, Role: models.RoleUser}
	if s.cfg.IsAdminEmail(email) {
		user.Role = models.RoleAdmin
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, utils.Internal(50003, "failed to create user", err)
	}

	utils.Sugar.Infof("user registered id=%d role=%s", user.ID, user.Role)
	return user, nil
}

// Login checks credentials and issues a session token. Unknown emails and wrong
// passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, utils.Internal(50004, "failed to load user", err)
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return LoginResult{}, utils.Internal(50005, "failed to issue token", err)
	}
	return LoginResult{Token: token, User: user}, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(token string, claims *utils.Claims) error {
	if err := s.blacklist.Revoke(token, s.tokens.ExpiresAt(claims)); err != nil {
		return utils.Internal(50006, "failed to revoke token", err)
	}
	return nil
}

// Me loads the caller's account.
func (s *AuthService) Me(ctx context.Context, id models.Identity) (models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, ErrUserNotFound
		}
		return user, utils.Internal(50004, "failed to load user", err)
	}
	return user, nil
}

// ChangePassword replaces the caller's password after checking the current one.
// Tokens issued before the change stop working.
func (s *AuthService) ChangePassword(ctx context.Context, id models.Identity, current, next string) error {
	if err := checkPasswordInput(next); err != nil {
		return err
	}
	user, err := s.Me(ctx, id)
	if err != nil {
		return err
	}
	if !utils.CheckPassword(user.PasswordHash, current) {
		return ErrWrongPassword
	}

	hash, err := utils.HashPassword(next)
	if err != nil {
		return utils.Internal(50002, "failed to hash password", err)
	}
	if err := s.db.WithContext(ctx).Model(&user).Update("password_hash", hash).Error; err != nil {
		return utils.Internal(50007, "failed to update password", err)
	}
	if err := s.blacklist.RevokeUser(user.ID); err != nil {
		return utils.Internal(50009, "failed to end existing sessions", err)
	}
	return nil
}

// SetRole changes another account's role. Only callers whose stored role is ADMIN may use it.
func (s *AuthService) SetRole(ctx context.Context, id models.Identity, userID uint, role models.Role) (models.User, error) {
	id, err := currentIdentity(ctx, s.db, id)
	if err != nil {
		return models.User{}, err
	}
	if !id.IsAdmin() {
		return models.User{}, ErrAdminOnly
	}
	if !role.Valid() {
		return models.User{}, ErrInvalidRole
	}

	var user models.User
	db := s.db.WithContext(ctx)
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, ErrUserNotFound
		}
		return user, utils.Internal(50004, "failed to load user", err)
	}
	if user.Role == role {
		return user, nil
	}
	if err := db.Model(&user).Update("role", role).Error; err != nil {
		return user, utils.Internal(50008, "failed to update role", err)
	}
	user.Role = role
	utils.Sugar.Infof("role changed user=%d role=%s by=%d", user.ID, role, id.UserID)
	return user, nil
}
