package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"dwreport/backend/config"
	"dwreport/backend/internal/dto"
	"dwreport/backend/internal/model"
	"dwreport/backend/internal/repository"
	"dwreport/backend/pkg/jwt"
)

func setupTestAuthService() (AuthService, *mockAuthUserRepo, *mockProfileRepo) {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret-key-for-unit-testing-2026",
			AccessTokenTTL:          15 * time.Minute,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 30 * 24 * time.Hour,
		},
	}
	authRepo := newMockAuthUserRepo()
	profileRepo := newMockProfileRepo()
	repo := &repository.Repository{
		AuthUser: authRepo,
		Profile:  profileRepo,
		Report:   newMockReportRepo(),
	}
	jwtMgr := jwt.NewManager(&cfg.Auth)
	// rdb 传 nil：降级模式，登出/刷新不查黑名单
	svc := NewAuthService(cfg, repo, jwtMgr, nil, zap.NewNop())
	return svc, authRepo, profileRepo
}

// seedAccount 种一个可登录账号，返回 auth_user_id
func seedAccount(authRepo *mockAuthUserRepo, profileRepo *mockProfileRepo, email, password string, active bool) string {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	authRepo.users["au-1"] = &model.AuthUser{
		UserID:       "au-1",
		Email:        email,
		PasswordHash: string(hash),
	}
	profileRepo.profiles["p-1"] = &model.Profile{
		ProfileID:  "p-1",
		AuthUserID: "au-1",
		Email:      email,
		Name:       "Alice",
		Role:       model.RoleStaff,
		IsActive:   active,
	}
	return "au-1"
}

// ── 登录 ──

func TestLogin_Success(t *testing.T) {
	svc, authRepo, profileRepo := setupTestAuthService()
	seedAccount(authRepo, profileRepo, "alice@example.com", "secret123", true)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("登录应成功: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("Token 对不应为空")
	}
	if resp.ExpiresIn != 900 {
		t.Errorf("ExpiresIn 期望 900，实际=%d", resp.ExpiresIn)
	}
	if resp.User.ID != "p-1" || resp.User.Role != "staff" {
		t.Errorf("用户信息错误: %+v", resp.User)
	}
	if authRepo.users["au-1"].LastSignInAt == nil {
		t.Error("登录成功应更新最近登录时间")
	}
}

func TestLogin_EmailCaseInsensitive(t *testing.T) {
	svc, authRepo, profileRepo := setupTestAuthService()
	seedAccount(authRepo, profileRepo, "alice@example.com", "secret123", true)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "ALICE@Example.COM",
		Password: "secret123",
	})
	if err != nil {
		t.Errorf("邮箱大小写不应影响登录: %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, authRepo, profileRepo := setupTestAuthService()
	seedAccount(authRepo, profileRepo, "alice@example.com", "secret123", true)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _, _ := setupTestAuthService()

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("未知邮箱与错误密码应返回同一错误: %v", err)
	}
}

func TestLogin_DisabledAccount(t *testing.T) {
	svc, authRepo, profileRepo := setupTestAuthService()
	seedAccount(authRepo, profileRepo, "alice@example.com", "secret123", false)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	})
	if !errors.Is(err, ErrAccountDisabled) {
		t.Errorf("期望 ErrAccountDisabled，实际: %v", err)
	}
}

func TestLogin_MissingProfile(t *testing.T) {
	svc, authRepo, _ := setupTestAuthService()
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	authRepo.users["au-orphan"] = &model.AuthUser{
		UserID:       "au-orphan",
		Email:        "orphan@example.com",
		PasswordHash: string(hash),
	}

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "orphan@example.com",
		Password: "secret123",
	})
	if !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("期望 ErrProfileNotFound，实际: %v", err)
	}
}

// ── Token 刷新 ──

func TestRefreshToken_Success(t *testing.T) {
	svc, authRepo, profileRepo := setupTestAuthService()
	seedAccount(authRepo, profileRepo, "alice@example.com", "secret123", true)

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("登录应成功: %v", err)
	}

	resp, err := svc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("刷新应成功: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("刷新后的 Token 对不应为空")
	}
}

func TestRefreshToken_RejectsAccessToken(t *testing.T) {
	svc, authRepo, profileRepo := setupTestAuthService()
	seedAccount(authRepo, profileRepo, "alice@example.com", "secret123", true)

	login, _ := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	})

	// 用 access token 冒充 refresh token
	_, err := svc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
		RefreshToken: login.AccessToken,
	})
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("access token 不应能刷新，实际: %v", err)
	}
}

func TestRefreshToken_DisabledAccount(t *testing.T) {
	svc, authRepo, profileRepo := setupTestAuthService()
	seedAccount(authRepo, profileRepo, "alice@example.com", "secret123", true)

	login, _ := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	})

	// 登录后停用账号，refresh token 应立即失效
	profileRepo.profiles["p-1"].IsActive = false

	_, err := svc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	if !errors.Is(err, ErrAccountDisabled) {
		t.Errorf("期望 ErrAccountDisabled，实际: %v", err)
	}
}

func TestRefreshToken_Garbage(t *testing.T) {
	svc, _, _ := setupTestAuthService()

	_, err := svc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
		RefreshToken: "not-a-jwt",
	})
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("期望 ErrInvalidRefreshToken，实际: %v", err)
	}
}

// ── 登出 ──

func TestLogout_NilRedisDegraded(t *testing.T) {
	svc, authRepo, profileRepo := setupTestAuthService()
	seedAccount(authRepo, profileRepo, "alice@example.com", "secret123", true)

	login, _ := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	})

	jwtMgr := jwt.NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL: 15 * time.Minute,
	})
	claims, err := jwtMgr.ParseToken(login.AccessToken)
	if err != nil {
		t.Fatalf("解析自己签发的 token 应成功: %v", err)
	}

	// Redis 降级模式下登出不报错
	if err := svc.Logout(context.Background(), claims); err != nil {
		t.Errorf("降级模式登出应成功: %v", err)
	}
}

// ── 修改密码 ──

func TestChangePassword_Success(t *testing.T) {
	svc, authRepo, profileRepo := setupTestAuthService()
	id := seedAccount(authRepo, profileRepo, "alice@example.com", "secret123", true)

	err := svc.ChangePassword(context.Background(), id, &dto.ChangePasswordRequest{
		OldPassword: "secret123",
		NewPassword: "brand-new-pass",
	})
	if err != nil {
		t.Fatalf("修改密码应成功: %v", err)
	}

	// 新密码可登录
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "brand-new-pass",
	}); err != nil {
		t.Errorf("新密码应可登录: %v", err)
	}
	// 旧密码失效
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("旧密码应失效，实际: %v", err)
	}
}

func TestChangePassword_WrongOldPassword(t *testing.T) {
	svc, authRepo, profileRepo := setupTestAuthService()
	id := seedAccount(authRepo, profileRepo, "alice@example.com", "secret123", true)

	err := svc.ChangePassword(context.Background(), id, &dto.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "brand-new-pass",
	})
	if !errors.Is(err, ErrWrongOldPassword) {
		t.Errorf("期望 ErrWrongOldPassword，实际: %v", err)
	}
}

func TestChangePassword_UnknownUser(t *testing.T) {
	svc, _, _ := setupTestAuthService()

	err := svc.ChangePassword(context.Background(), "no-such-id", &dto.ChangePasswordRequest{
		OldPassword: "x",
		NewPassword: "brand-new-pass",
	})
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

// ── 当前用户 ──

func TestGetCurrentUser(t *testing.T) {
	svc, authRepo, profileRepo := setupTestAuthService()
	seedAccount(authRepo, profileRepo, "alice@example.com", "secret123", true)

	resp, err := svc.GetCurrentUser(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("查询应成功: %v", err)
	}
	if resp.Name != "Alice" || resp.Email != "alice@example.com" {
		t.Errorf("档案信息错误: %+v", resp)
	}

	if _, err := svc.GetCurrentUser(context.Background(), "missing"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("档案缺失应返回 ErrProfileNotFound，实际: %v", err)
	}
}
