package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"dwreport/backend/internal/model"
)

// ── Mock AuthUserRepository ──

type mockAuthUserRepo struct {
	users      map[string]*model.AuthUser // key: user_id
	failCreate bool
	deleted    []string // 补偿删除留痕，测试断言用
}

func newMockAuthUserRepo() *mockAuthUserRepo {
	return &mockAuthUserRepo{users: make(map[string]*model.AuthUser)}
}

func (m *mockAuthUserRepo) Create(_ context.Context, user *model.AuthUser) error {
	if m.failCreate {
		return errors.New("mock: 创建失败")
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockAuthUserRepo) GetByID(_ context.Context, id string) (*model.AuthUser, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAuthUserRepo) GetByEmail(_ context.Context, email string) (*model.AuthUser, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAuthUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	u, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *mockAuthUserRepo) UpdateEmail(_ context.Context, id, email string) error {
	u, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Email = email
	return nil
}

func (m *mockAuthUserRepo) TouchSignIn(_ context.Context, id string) error {
	u, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	u.LastSignInAt = &now
	return nil
}

func (m *mockAuthUserRepo) Delete(_ context.Context, id string) error {
	delete(m.users, id)
	m.deleted = append(m.deleted, id)
	return nil
}

// ── Mock ProfileRepository ──

type mockProfileRepo struct {
	profiles   map[string]*model.Profile // key: profile_id
	failCreate bool
	createErr  error // failCreate 时返回的错误，缺省为普通错误
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[string]*model.Profile)}
}

func (m *mockProfileRepo) Create(_ context.Context, profile *model.Profile) error {
	if m.failCreate {
		if m.createErr != nil {
			return m.createErr
		}
		return errors.New("mock: 创建档案失败")
	}
	m.profiles[profile.ProfileID] = profile
	return nil
}

func (m *mockProfileRepo) GetByID(_ context.Context, id string) (*model.Profile, error) {
	if p, ok := m.profiles[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfileRepo) GetByAuthUserID(_ context.Context, authUserID string) (*model.Profile, error) {
	for _, p := range m.profiles {
		if p.AuthUserID == authUserID {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfileRepo) Update(_ context.Context, profile *model.Profile) error {
	if _, ok := m.profiles[profile.ProfileID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.profiles[profile.ProfileID] = profile
	return nil
}

func (m *mockProfileRepo) List(_ context.Context) ([]model.Profile, error) {
	var result []model.Profile
	for _, p := range m.profiles {
		result = append(result, *p)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// ── Mock ReportRepository ──

type mockReportRepo struct {
	reports         []model.Report            // CreateBatch 落库的行
	viewRows        []model.ReportWithProfile // 查询返回的视图行
	failCreateBatch bool
}

func newMockReportRepo() *mockReportRepo {
	return &mockReportRepo{}
}

func (m *mockReportRepo) CreateBatch(_ context.Context, reports []model.Report) error {
	if m.failCreateBatch {
		return errors.New("mock: 批量写入失败")
	}
	m.reports = append(m.reports, reports...)
	return nil
}

func (m *mockReportRepo) ListByWorkDate(_ context.Context, from, to time.Time) ([]model.ReportWithProfile, error) {
	var result []model.ReportWithProfile
	for _, r := range m.viewRows {
		if r.WorkDate == nil {
			continue
		}
		if r.WorkDate.Before(from) || r.WorkDate.After(to) {
			continue
		}
		result = append(result, r)
	}
	return result, nil
}

func (m *mockReportRepo) ListByStartTime(_ context.Context, from, to time.Time) ([]model.ReportWithProfile, error) {
	var result []model.ReportWithProfile
	for _, r := range m.viewRows {
		if r.StartTime == nil {
			continue
		}
		if r.StartTime.Before(from) || r.StartTime.After(to) {
			continue
		}
		result = append(result, r)
	}
	return result, nil
}

func (m *mockReportRepo) ListByUserWorkDate(_ context.Context, userID string, from, to time.Time) ([]model.ReportWithProfile, error) {
	var result []model.ReportWithProfile
	for _, r := range m.viewRows {
		if r.UserID == nil || *r.UserID != userID {
			continue
		}
		if r.WorkDate == nil || r.WorkDate.Before(from) || r.WorkDate.After(to) {
			continue
		}
		result = append(result, r)
	}
	return result, nil
}
