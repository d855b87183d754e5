package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Oskru/study-smart/config"
	"github.com/Oskru/study-smart/internal/dto"
	"github.com/Oskru/study-smart/internal/model"
	"github.com/Oskru/study-smart/internal/repository"
	"github.com/Oskru/study-smart/pkg/jwt"
)

var (
	ErrInvalidCredentials   = errors.New("邮箱或密码错误")
	ErrUserNotFound         = errors.New("用户不存在")
	ErrEmailTaken           = errors.New("邮箱已被注册")
	ErrLecturerNotConfirmed = errors.New("讲师账号尚未通过管理员确认")
	ErrNotLecturer          = errors.New("目标用户不是讲师")
	ErrInvalidRefreshToken  = errors.New("Refresh Token 无效或已过期")
)

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, claims *jwt.Claims) error
	Me(ctx context.Context, userID string) (*dto.UserResponse, error)
	ConfirmLecturer(ctx context.Context, lecturerID string) (*dto.UserResponse, error)
}

type authService struct {
	cfg    *config.AuthConfig
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	tokens TokenStore
	logger *zap.Logger
}

// NewAuthService 创建 AuthService 实例；tokens 为 nil 时登出不写黑名单
func NewAuthService(
	cfg *config.AuthConfig,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	tokens TokenStore,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:    cfg,
		repo:   repo,
		jwtMgr: jwtMgr,
		tokens: tokens,
		logger: logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询用户
	user, err := s.repo.User.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. 未确认的讲师不能登录
	if !user.Confirmed {
		return nil, ErrLecturerNotConfirmed
	}

	return s.issueTokens(user)
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	email := normalizeEmail(req.Email)

	_, err := s.repo.User.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         req.Role,
		IndexNumber:  req.IndexNumber,
		Major:        req.Major,
		Confirmed:    req.Role != model.RoleLecturer,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("用户注册成功",
		zap.String("user_id", user.UserID),
		zap.String("role", user.Role),
		zap.Bool("confirmed", user.Confirmed),
	)
	return toUserResponse(user), nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	if !user.Confirmed {
		return nil, ErrLecturerNotConfirmed
	}

	// 轮换：旧 Refresh Token 作废
	if s.tokens != nil {
		if err := s.tokens.BlacklistToken(ctx, claims.ID, claims.Remaining()); err != nil {
			s.logger.Warn("Refresh Token 加入黑名单失败", zap.Error(err))
		}
	}

	return s.issueTokens(user)
}

func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if s.tokens == nil || claims == nil {
		return nil
	}
	if err := s.tokens.BlacklistToken(ctx, claims.ID, claims.Remaining()); err != nil {
		s.logger.Error("Token 加入黑名单失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *authService) ConfirmLecturer(ctx context.Context, lecturerID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, lecturerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.Role != model.RoleLecturer {
		return nil, ErrNotLecturer
	}
	if user.Confirmed {
		return toUserResponse(user), nil
	}

	user.Confirmed = true
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("确认讲师失败", zap.String("user_id", lecturerID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("讲师已确认", zap.String("user_id", lecturerID))
	return toUserResponse(user), nil
}

// issueTokens 生成 Token 对并构造响应
func (s *authService) issueTokens(user *model.User) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Role)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.cfg.AccessTokenTTL.Seconds()),
		User:         *toUserResponse(user),
	}, nil
}

// ── 内部辅助方法 ──

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// toUserResponse 将 model.User 转换为 dto.UserResponse
func toUserResponse(user *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:          user.UserID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        user.Role,
		IndexNumber: user.IndexNumber,
		Major:       user.Major,
		Confirmed:   user.Confirmed,
	}
}
