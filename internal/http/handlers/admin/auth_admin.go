package admin

import (
	"errors"

	"github.com/optrack-next/internal/http/response"
	"github.com/optrack-next/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token     string                 `json:"token"`
	Operator  map[string]interface{} `json:"operator"`
	ExpiresAt string                 `json:"expires_at"`
}

// Login 操作员登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	operator, token, expiresAt, err := h.AuthService.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, response.CodeUnauthorized, "invalid email or password", nil)
		case errors.Is(err, service.ErrOperatorDisabled):
			respondError(c, response.CodeUnauthorized, "operator disabled", nil)
		default:
			respondError(c, response.CodeInternal, "login failed", err)
		}
		return
	}

	response.Success(c, LoginResponse{
		Token: token,
		Operator: map[string]interface{}{
			"id":       operator.ID,
			"email":    operator.Email,
			"name":     operator.Name,
			"sector":   operator.Sector,
			"is_admin": operator.IsAdmin,
		},
		ExpiresAt: expiresAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// UpdatePasswordRequest 修改密码请求
type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UpdatePassword 修改当前操作员密码
func (h *Handler) UpdatePassword(c *gin.Context) {
	id, ok := getOperatorID(c)
	if !ok {
		return
	}

	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if err := h.AuthService.ChangePassword(id, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, response.CodeBadRequest, "old password invalid", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, response.CodeBadRequest, "password too weak", nil)
		case errors.Is(err, service.ErrOperatorNotFound):
			respondError(c, response.CodeNotFound, "operator not found", nil)
		default:
			respondError(c, response.CodeInternal, "password update failed", err)
		}
		return
	}

	response.Success(c, nil)
}

// Me 当前操作员信息
func (h *Handler) Me(c *gin.Context) {
	id, ok := getOperatorID(c)
	if !ok {
		return
	}
	operator, err := h.OperatorService.GetOperator(id)
	if err != nil {
		if errors.Is(err, service.ErrOperatorNotFound) {
			respondError(c, response.CodeNotFound, "operator not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "operator fetch failed", err)
		return
	}
	response.Success(c, operator)
}
