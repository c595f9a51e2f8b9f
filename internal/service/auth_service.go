package service

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/optrack-next/internal/cache"
	"github.com/optrack-next/internal/config"
	"github.com/optrack-next/internal/models"
	"github.com/optrack-next/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 认证服务
type AuthService struct {
	cfg          *config.Config
	operatorRepo repository.OperatorRepository
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg *config.Config, operatorRepo repository.OperatorRepository) *AuthService {
	return &AuthService{
		cfg:          cfg,
		operatorRepo: operatorRepo,
	}
}

// HashPassword 使用 bcrypt 加密密码
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 验证密码
func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// ValidatePassword 校验密码是否符合策略
func (s *AuthService) ValidatePassword(password string) error {
	if s == nil || s.cfg == nil {
		return nil
	}
	policy := s.cfg.Security.PasswordPolicy
	if policy.MinLength > 0 && len(password) < policy.MinLength {
		return ErrWeakPassword
	}
	var hasUpper, hasLower, hasNumber bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasNumber = true
		}
	}
	if policy.RequireUpper && !hasUpper {
		return ErrWeakPassword
	}
	if policy.RequireLower && !hasLower {
		return ErrWeakPassword
	}
	if policy.RequireNumber && !hasNumber {
		return ErrWeakPassword
	}
	return nil
}

// JWTClaims JWT 声明
type JWTClaims struct {
	OperatorID   uint   `json:"operator_id"`
	Email        string `json:"email"`
	Sector       string `json:"sector"`
	IsAdmin      bool   `json:"is_admin"`
	TokenVersion int    `json:"token_version"`
	jwt.RegisteredClaims
}

// GenerateJWT 生成 JWT Token
func (s *AuthService) GenerateJWT(operator *models.Operator) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(s.cfg.JWT.ExpireHours) * time.Hour)

	claims := JWTClaims{
		OperatorID:   operator.ID,
		Email:        operator.Email,
		Sector:       operator.Sector,
		IsAdmin:      operator.IsAdmin,
		TokenVersion: operator.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ParseJWT 解析 JWT Token
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrTokenInvalid
}

// Login 操作员登录
func (s *AuthService) Login(email, password string) (*models.Operator, string, time.Time, error) {
	operator, err := s.operatorRepo.GetByEmail(email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if operator == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if err := s.VerifyPassword(operator.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if !operator.Active {
		return nil, "", time.Time{}, ErrOperatorDisabled
	}

	token, expiresAt, err := s.GenerateJWT(operator)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	if err := s.operatorRepo.UpdateFields(operator.ID, map[string]interface{}{
		"last_login_at": now,
		"updated_at":    now,
	}); err != nil {
		return nil, "", time.Time{}, err
	}
	operator.LastLoginAt = &now
	_ = cache.SetOperatorAuthState(context.Background(), cache.BuildOperatorAuthState(operator))

	return operator, token, expiresAt, nil
}

// ChangePassword 修改操作员密码。旧令牌通过 token_version 递增整体失效。
func (s *AuthService) ChangePassword(operatorID uint, oldPassword, newPassword string) error {
	operator, err := s.operatorRepo.GetByID(operatorID)
	if err != nil {
		return err
	}
	if operator == nil {
		return ErrOperatorNotFound
	}
	if err := s.VerifyPassword(operator.PasswordHash, oldPassword); err != nil {
		return ErrInvalidCredentials
	}
	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.operatorRepo.UpdateFields(operator.ID, map[string]interface{}{
		"password_hash": hash,
		"token_version": operator.TokenVersion + 1,
		"updated_at":    time.Now(),
	}); err != nil {
		return err
	}
	_ = cache.DelOperatorAuthState(context.Background(), operator.ID)
	return nil
}

// AuthState 获取操作员鉴权快照，优先走缓存
func (s *AuthService) AuthState(ctx context.Context, operatorID uint) (*cache.OperatorAuthState, error) {
	state, hit, err := cache.GetOperatorAuthState(ctx, operatorID)
	if err == nil && hit {
		return state, nil
	}
	operator, err := s.operatorRepo.GetByID(operatorID)
	if err != nil {
		return nil, err
	}
	if operator == nil {
		return nil, ErrOperatorNotFound
	}
	state = cache.BuildOperatorAuthState(operator)
	_ = cache.SetOperatorAuthState(ctx, state)
	return state, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
