package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/config"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/models"
)

// ErrInvalidToken is returned when a JWT cannot be parsed or has expired.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the JWT payload. OrgID scopes every request the token makes.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	OrgID  string `json:"org"`
	Role   string `json:"role"`
}

type AuthService struct {
	db  *gorm.DB
	cfg config.Config
}

// NewAuthService returns an AuthService using the provided DB and config
func NewAuthService(db *gorm.DB, cfg config.Config) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return &AuthService{db: db, cfg: cfg}
}

// Register creates a user in orgID. The first user of an organization
// becomes its admin regardless of the requested role; an empty role means
// member.
func (s *AuthService) Register(ctx context.Context, orgID, email, password, name, role string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if role == "" {
		role = models.RoleMember
	}
	if strings.TrimSpace(orgID) == "" || !strings.Contains(email, "@") || len(password) < 8 || !models.ValidRole(role) {
		return nil, ErrInvalidUser
	}

	var taken int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&taken).Error; err != nil {
		return nil, storageErr("check email", err)
	}
	if taken > 0 {
		return nil, ErrEmailTaken
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("org_id = ?", orgID).Count(&count).Error; err != nil {
		return nil, storageErr("count users", err)
	}
	if count == 0 {
		role = models.RoleAdmin
	}

	user := &models.User{OrgID: orgID, Email: email, Name: strings.TrimSpace(name), Role: role, Enabled: true}
	if err := user.SetPassword(password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, storageErr("create user", err)
	}
	return user, nil
}

// ListUsers returns the users of orgID ordered by email.
func (s *AuthService) ListUsers(ctx context.Context, orgID string) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Where("org_id = ?", orgID).Order("email").Find(&users).Error; err != nil {
		return nil, storageErr("list users", err)
	}
	return users, nil
}

// Login verifies credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var user models.User
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", storageErr("load user", err)
	}
	if !user.CheckPassword(password) {
		return "", ErrInvalidCredentials
	}
	if !user.Enabled {
		return "", ErrAccountDisabled
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login", now).Error; err != nil {
		return "", storageErr("update last login", err)
	}

	return s.GenerateToken(&user)
}

// GenerateToken signs a token for user.
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
			Issuer:    "ik-crm",
		},
		UserID: user.ID,
		OrgID:  user.OrgID,
		Role:   user.Role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a token string.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.OrgID == "" || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GetUser loads a user of orgID.
func (s *AuthService) GetUser(ctx context.Context, orgID, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("org_id = ? AND id = ?", orgID, id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntityNotFound
		}
		return nil, storageErr("load user", err)
	}
	return &user, nil
}
