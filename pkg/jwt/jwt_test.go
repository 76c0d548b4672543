package jwt

import (
	"errors"
	"testing"
	"time"

	"dwreport/backend/config"
)

func testManager(accessTTL time.Duration) *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:               "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL:          accessTTL,
		RefreshTokenTTLDefault:  24 * time.Hour,
		RefreshTokenTTLRemember: 7 * 24 * time.Hour,
	})
}

func TestGenerateAndParseAccessToken(t *testing.T) {
	m := testManager(15 * time.Minute)

	token, err := m.GenerateAccessToken("auth-1", "profile-1", "staff")
	if err != nil {
		t.Fatalf("生成应成功: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("解析应成功: %v", err)
	}
	if claims.AuthUserID != "auth-1" {
		t.Errorf("期望 AuthUserID=auth-1，实际=%s", claims.AuthUserID)
	}
	if claims.ProfileID != "profile-1" {
		t.Errorf("期望 ProfileID=profile-1，实际=%s", claims.ProfileID)
	}
	if claims.Role != "staff" {
		t.Errorf("期望 Role=staff，实际=%s", claims.Role)
	}
	if claims.TokenType != "access" {
		t.Errorf("期望 TokenType=access，实际=%s", claims.TokenType)
	}
	if claims.ID == "" {
		t.Error("jti 不应为空")
	}
}

func TestGenerateRefreshToken_RememberMe(t *testing.T) {
	m := testManager(15 * time.Minute)

	short, err := m.GenerateRefreshToken("auth-1", "profile-1", "staff", false)
	if err != nil {
		t.Fatalf("生成应成功: %v", err)
	}
	long, err := m.GenerateRefreshToken("auth-1", "profile-1", "staff", true)
	if err != nil {
		t.Fatalf("生成应成功: %v", err)
	}

	cs, _ := m.ParseToken(short)
	cl, _ := m.ParseToken(long)
	if cs.TokenType != "refresh" || cl.TokenType != "refresh" {
		t.Error("TokenType 应为 refresh")
	}
	if !cl.RememberMe {
		t.Error("remember_me 声明应为 true")
	}
	if !cl.ExpiresAt.Time.After(cs.ExpiresAt.Time) {
		t.Error("RememberMe 的有效期应更长")
	}
}

func TestParseToken_Expired(t *testing.T) {
	m := testManager(-1 * time.Minute)

	token, err := m.GenerateAccessToken("auth-1", "profile-1", "staff")
	if err != nil {
		t.Fatalf("生成应成功: %v", err)
	}

	_, err = m.ParseToken(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("期望 ErrTokenExpired，实际: %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	m1 := testManager(15 * time.Minute)
	m2 := NewManager(&config.AuthConfig{
		JWTSecret:               "another-secret-key-entirely-diff",
		AccessTokenTTL:          15 * time.Minute,
		RefreshTokenTTLDefault:  24 * time.Hour,
		RefreshTokenTTLRemember: 7 * 24 * time.Hour,
	})

	token, _ := m1.GenerateAccessToken("auth-1", "profile-1", "staff")
	if _, err := m2.ParseToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	m := testManager(15 * time.Minute)
	if _, err := m.ParseToken("not.a.token"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}
