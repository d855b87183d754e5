package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Oskru/study-smart/config"
	"github.com/Oskru/study-smart/internal/dto"
	"github.com/Oskru/study-smart/internal/model"
	"github.com/Oskru/study-smart/pkg/jwt"
)

// ── 测试辅助 ──

func setupTestAuthService() (AuthService, *mockRepos, *mockTokenStore, *jwt.Manager) {
	cfg := &config.AuthConfig{
		JWTSecret:       "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	}
	repo, mocks := newMockRepos()
	tokens := newMockTokenStore()
	jwtMgr := jwt.NewManager(cfg)

	svc := NewAuthService(cfg, repo, jwtMgr, tokens, zap.NewNop())
	return svc, mocks, tokens, jwtMgr
}

func createTestUser(mocks *mockRepos, id, role, password string, confirmed bool) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	u := mocks.addUser(id, role, confirmed)
	u.PasswordHash = string(hash)
	return u
}

// ── 登录测试 ──

func TestLogin_Success(t *testing.T) {
	svc, mocks, _, jwtMgr := setupTestAuthService()
	createTestUser(mocks, "stu1", model.RoleStudent, "Password123", true)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "  STU1@uni.edu ",
		Password: "Password123",
	})
	if err != nil {
		t.Fatalf("期望登录成功，但返回错误: %v", err)
	}
	if resp.User.ID != "stu1" || resp.ExpiresIn != 900 {
		t.Errorf("响应不符: %+v", resp)
	}

	claims, err := jwtMgr.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("AccessToken 无法解析: %v", err)
	}
	if claims.TokenType != jwt.TokenTypeAccess || claims.Role != model.RoleStudent {
		t.Errorf("AccessToken 声明不符: %+v", claims)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, mocks, _, _ := setupTestAuthService()
	createTestUser(mocks, "stu1", model.RoleStudent, "Password123", true)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "stu1@uni.edu", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "nobody@uni.edu", Password: "x"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestLogin_UnconfirmedLecturer(t *testing.T) {
	svc, mocks, _, _ := setupTestAuthService()
	createTestUser(mocks, "lec1", model.RoleLecturer, "Password123", false)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "lec1@uni.edu", Password: "Password123"})
	if !errors.Is(err, ErrLecturerNotConfirmed) {
		t.Errorf("期望 ErrLecturerNotConfirmed，实际: %v", err)
	}
}

// ── 注册测试 ──

func TestRegister_StudentConfirmedLecturerPending(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()
	ctx := context.Background()

	stu, err := svc.Register(ctx, &dto.RegisterRequest{
		Name: "学生", Email: "s@uni.edu", Password: "Password123", Role: model.RoleStudent, IndexNumber: "123456",
	})
	if err != nil {
		t.Fatalf("学生注册失败: %v", err)
	}
	if !stu.Confirmed {
		t.Error("学生注册后应立即可用")
	}

	lec, err := svc.Register(ctx, &dto.RegisterRequest{
		Name: "讲师", Email: "L@uni.edu", Password: "Password123", Role: model.RoleLecturer,
	})
	if err != nil {
		t.Fatalf("讲师注册失败: %v", err)
	}
	if lec.Confirmed {
		t.Error("讲师注册后应等待确认")
	}
	if lec.Email != "l@uni.edu" {
		t.Errorf("邮箱应规范化为小写，实际 %q", lec.Email)
	}

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "l@uni.edu", Password: "Password123"})
	if !errors.Is(err, ErrLecturerNotConfirmed) {
		t.Errorf("未确认讲师登录期望 ErrLecturerNotConfirmed，实际: %v", err)
	}
}

func TestRegister_EmailTaken(t *testing.T) {
	svc, mocks, _, _ := setupTestAuthService()
	mocks.addUser("stu1", model.RoleStudent, true)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name: "重复", Email: "stu1@uni.edu", Password: "Password123", Role: model.RoleStudent,
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("期望 ErrEmailTaken，实际: %v", err)
	}
}

// ── 讲师确认 ──

func TestConfirmLecturer(t *testing.T) {
	svc, mocks, _, _ := setupTestAuthService()
	createTestUser(mocks, "lec1", model.RoleLecturer, "Password123", false)
	mocks.addUser("stu1", model.RoleStudent, true)
	ctx := context.Background()

	if _, err := svc.ConfirmLecturer(ctx, "stu1"); !errors.Is(err, ErrNotLecturer) {
		t.Errorf("确认非讲师期望 ErrNotLecturer，实际: %v", err)
	}
	if _, err := svc.ConfirmLecturer(ctx, "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("确认不存在用户期望 ErrUserNotFound，实际: %v", err)
	}

	resp, err := svc.ConfirmLecturer(ctx, "lec1")
	if err != nil || !resp.Confirmed {
		t.Fatalf("确认讲师失败: %+v, %v", resp, err)
	}
	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "lec1@uni.edu", Password: "Password123"}); err != nil {
		t.Errorf("确认后应能登录: %v", err)
	}
}

// ── Token 刷新与登出 ──

func TestRefresh_RotatesAndBlacklists(t *testing.T) {
	svc, mocks, tokens, jwtMgr := setupTestAuthService()
	createTestUser(mocks, "stu1", model.RoleStudent, "Password123", true)
	ctx := context.Background()

	login, err := svc.Login(ctx, &dto.LoginRequest{Email: "stu1@uni.edu", Password: "Password123"})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}

	refreshed, err := svc.Refresh(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("刷新失败: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Error("刷新后应签发新的 Refresh Token")
	}

	old, _ := jwtMgr.ParseToken(login.RefreshToken)
	if _, ok := tokens.blacklisted[old.ID]; !ok {
		t.Error("旧 Refresh Token 应加入黑名单")
	}
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	svc, mocks, _, _ := setupTestAuthService()
	createTestUser(mocks, "stu1", model.RoleStudent, "Password123", true)
	ctx := context.Background()

	login, _ := svc.Login(ctx, &dto.LoginRequest{Email: "stu1@uni.edu", Password: "Password123"})
	if _, err := svc.Refresh(ctx, login.AccessToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("用 Access Token 刷新期望 ErrInvalidRefreshToken，实际: %v", err)
	}
	if _, err := svc.Refresh(ctx, "garbage"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("非法 Token 期望 ErrInvalidRefreshToken，实际: %v", err)
	}
}

func TestLogout_Blacklists(t *testing.T) {
	svc, mocks, tokens, jwtMgr := setupTestAuthService()
	createTestUser(mocks, "stu1", model.RoleStudent, "Password123", true)
	ctx := context.Background()

	login, _ := svc.Login(ctx, &dto.LoginRequest{Email: "stu1@uni.edu", Password: "Password123"})
	claims, _ := jwtMgr.ParseToken(login.AccessToken)

	if err := svc.Logout(ctx, claims); err != nil {
		t.Fatalf("登出失败: %v", err)
	}
	if ttl, ok := tokens.blacklisted[claims.ID]; !ok || ttl <= 0 {
		t.Errorf("登出后 Token 应以正 TTL 加入黑名单，实际 %v (ok=%v)", ttl, ok)
	}
}

func TestMe(t *testing.T) {
	svc, mocks, _, _ := setupTestAuthService()
	mocks.addUser("stu1", model.RoleStudent, true)

	resp, err := svc.Me(context.Background(), "stu1")
	if err != nil || resp.ID != "stu1" {
		t.Fatalf("Me 结果不符: %+v, %v", resp, err)
	}
	if _, err := svc.Me(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}
