// Package auth 提供注册、登录与账户资料服务
package auth

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dumeirei/foodstay-backend/internal/common/crypto"
	"github.com/dumeirei/foodstay-backend/internal/common/errors"
	"github.com/dumeirei/foodstay-backend/internal/common/jwt"
	"github.com/dumeirei/foodstay-backend/internal/common/logger"
	"github.com/dumeirei/foodstay-backend/internal/common/utils"
	"github.com/dumeirei/foodstay-backend/internal/models"
	"github.com/dumeirei/foodstay-backend/internal/repository"
)

// AuthService 认证服务
type AuthService struct {
	userRepo   *repository.UserRepository
	jwtManager *jwt.Manager
	bcryptCost int
}

// NewAuthService 创建认证服务
func NewAuthService(userRepo *repository.UserRepository, jwtManager *jwt.Manager, bcryptCost int) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		bcryptCost: bcryptCost,
	}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30,alphanum_username"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ProfileInput 资料修改字段，nil 表示不修改
type ProfileInput struct {
	FirstName *string `json:"firstName" binding:"omitempty,max=50"`
	LastName  *string `json:"lastName" binding:"omitempty,max=50"`
	Phone     *string `json:"phone" binding:"omitempty,max=30"`
	Address   *string `json:"address" binding:"omitempty,max=255"`
}

// UpdateProfileRequest 修改资料请求
type UpdateProfileRequest struct {
	Username *string      `json:"username" binding:"omitempty,min=3,max=30,alphanum_username"`
	Profile  ProfileInput `json:"profile"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

// AuthResponse 注册与登录响应
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// Register 注册新用户并签发令牌
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := utils.NormalizeEmail(req.Email)

	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if exists {
		return nil, errors.ErrUserExists
	}

	hash, err := crypto.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// 并发注册时由唯一索引兜底
		if repository.IsDuplicateKey(err) {
			return nil, errors.ErrUserExists
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	return s.issue(user)
}

// Login 邮箱密码登录
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	email := utils.NormalizeEmail(req.Email)
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			logger.Warn("login failed: unknown email", zap.String("email", crypto.MaskEmail(email)))
			return nil, errors.ErrInvalidCredentials
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	// 停用账户与错误密码返回相同错误，避免泄露账户状态
	if !user.IsActive || !crypto.VerifyPassword(req.Password, user.PasswordHash) {
		logger.Warn("login failed",
			logger.UserID(user.ID),
			zap.String("email", crypto.MaskEmail(email)),
			zap.Bool("active", user.IsActive),
		)
		return nil, errors.ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*AuthResponse, error) {
	token, expiresAt, err := s.jwtManager.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}
	return &AuthResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Me 获取当前用户
func (s *AuthService) Me(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrUserNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return user, nil
}

// UpdateProfile 修改用户名与资料
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*models.User, error) {
	if _, err := s.Me(ctx, userID); err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		taken, err := s.userRepo.ExistsByUsernameExcept(ctx, username, userID)
		if err != nil {
			return nil, errors.ErrDatabaseError.WithError(err)
		}
		if taken {
			return nil, errors.ErrUserExists.WithMessage("Username is already taken")
		}
		fields["username"] = username
	}

	p := req.Profile
	setIfPresent(fields, "profile_first_name", p.FirstName)
	setIfPresent(fields, "profile_last_name", p.LastName)
	setIfPresent(fields, "profile_phone", p.Phone)
	setIfPresent(fields, "profile_address", p.Address)

	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(ctx, userID, fields); err != nil {
			if repository.IsDuplicateKey(err) {
				return nil, errors.ErrUserExists.WithMessage("Username is already taken")
			}
			return nil, errors.ErrDatabaseError.WithError(err)
		}
	}

	return s.Me(ctx, userID)
}

func setIfPresent(fields map[string]interface{}, column string, value *string) {
	if value != nil {
		fields[column] = strings.TrimSpace(*value)
	}
}

// ChangePassword 校验当前密码后修改密码
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req *ChangePasswordRequest) error {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if !crypto.VerifyPassword(req.CurrentPassword, user.PasswordHash) {
		return errors.ErrPasswordIncorrect
	}

	hash, err := crypto.HashPassword(req.NewPassword, s.bcryptCost)
	if err != nil {
		return errors.ErrInternalError.WithError(err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	return nil
}
