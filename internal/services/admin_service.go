package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"notes-marketplace-api/internal/config"
	"notes-marketplace-api/internal/database"
	"notes-marketplace-api/internal/models"
	"notes-marketplace-api/pkg/logging"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const adminTokenIssuer = "notes-marketplace"

// AdminClaims are the claims of an admin session token
type AdminClaims struct {
	AdminID string `json:"admin_id"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

// AdminSession is an issued session token
type AdminSession struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	Admin     *models.AdminUser `json:"admin"`
}

// AdminService manages admin accounts and their session tokens
type AdminService struct {
	db          *gorm.DB
	revocations *RedisService
	jwtSecret   []byte
	adminSecret string
	sessionTTL  time.Duration
	now         func() time.Time
}

// NewAdminService creates an admin service from the application config
func NewAdminService() *AdminService {
	return NewAdminServiceWith(
		database.GetDB(),
		NewRedisService(),
		config.AppConfig.JWTSecret,
		config.AppConfig.AdminSecretKey,
		time.Duration(config.AppConfig.AdminSessionHours)*time.Hour,
	)
}

// NewAdminServiceWith creates an admin service with explicit settings
func NewAdminServiceWith(db *gorm.DB, revocations *RedisService, jwtSecret, adminSecret string, sessionTTL time.Duration) *AdminService {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AdminService{
		db:          db,
		revocations: revocations,
		jwtSecret:   []byte(jwtSecret),
		adminSecret: adminSecret,
		sessionTTL:  sessionTTL,
		now:         time.Now,
	}
}

// CheckAdminSecret compares the supplied secret in constant time.
// An unset secret rejects everything.
func (s *AdminService) CheckAdminSecret(secret string) error {
	if s.adminSecret == "" || subtle.ConstantTimeCompare([]byte(s.adminSecret), []byte(secret)) != 1 {
		return ErrInvalidAdminSecret
	}
	return nil
}

// Register creates an admin account
func (s *AdminService) Register(ctx context.Context, email, password string) (*models.AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.AdminUser{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check admin: %w", err)
	}
	if count > 0 {
		return nil, ErrAdminExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.AdminUser{Email: email, PasswordHash: string(hash)}
	if err := db.Create(admin).Error; err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	logging.Infof("Admin %s registered", email)
	return admin, nil
}

// Delete removes an admin account
func (s *AdminService) Delete(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ErrMissingFields
	}
	result := s.db.WithContext(ctx).Unscoped().Where("email = ?", email).Delete(&models.AdminUser{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete admin: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAdminNotFound
	}
	logging.Infof("Admin %s deleted", email)
	return nil
}

// Login checks the password and issues a session token
func (s *AdminService) Login(ctx context.Context, email, password string) (*AdminSession, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	var admin models.AdminUser
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load admin: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		logging.Warnf("Failed admin login for %s", email)
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.issueToken(&admin)
	if err != nil {
		return nil, err
	}
	return &AdminSession{Token: token, ExpiresAt: expiresAt, Admin: &admin}, nil
}

func (s *AdminService) issueToken(admin *models.AdminUser) (string, time.Time, error) {
	if len(s.jwtSecret) == 0 {
		return "", time.Time{}, fmt.Errorf("JWT_SECRET is not set")
	}
	now := s.now()
	expiresAt := now.Add(s.sessionTTL)

	claims := AdminClaims{
		AdminID: admin.ID,
		Email:   admin.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   admin.ID,
			Issuer:    adminTokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken verifies signature, expiry and revocation, and that the
// admin account still exists
func (s *AdminService) ValidateToken(ctx context.Context, tokenString string) (*AdminClaims, error) {
	if tokenString == "" || len(s.jwtSecret) == 0 {
		return nil, ErrInvalidSession
	}

	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSession
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(adminTokenIssuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, ErrInvalidSession
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, ErrInvalidSession
	}

	revoked, err := s.revocations.IsSessionRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}
	if revoked {
		return nil, ErrSessionRevoked
	}

	// Sessions die with their account.
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.AdminUser{}).Where("id = ?", claims.AdminID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check admin: %w", err)
	}
	if count == 0 {
		return nil, ErrSessionRevoked
	}
	return claims, nil
}

// Logout revokes the session until its natural expiry
func (s *AdminService) Logout(ctx context.Context, claims *AdminClaims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if err := s.revocations.RevokeSession(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	logging.Infof("Admin %s logged out", claims.Email)
	return nil
}

// SessionTTL is how long issued tokens stay valid
func (s *AdminService) SessionTTL() time.Duration {
	return s.sessionTTL
}
