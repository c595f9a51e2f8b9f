package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/optrack-next/internal/http/response"
	"github.com/optrack-next/internal/repository"
	"github.com/optrack-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ListOperators 操作员列表
func (h *Handler) ListOperators(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.OperatorListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  strings.TrimSpace(c.Query("keyword")),
		Sector:   strings.TrimSpace(c.Query("sector")),
	}
	if raw := strings.TrimSpace(c.Query("active")); raw != "" {
		active := raw == "true" || raw == "1"
		filter.Active = &active
	}

	operators, total, err := h.OperatorService.ListOperators(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "operator fetch failed", err)
		return
	}

	response.SuccessWithPage(c, operators, response.NewPagination(page, pageSize, total))
}

// GetOperator 操作员详情
func (h *Handler) GetOperator(c *gin.Context) {
	operatorID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || operatorID == 0 {
		respondError(c, response.CodeBadRequest, "operator id invalid", nil)
		return
	}

	operator, err := h.OperatorService.GetOperator(uint(operatorID))
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

// CreateOperatorRequest 创建操作员请求
type CreateOperatorRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Nickname string `json:"nickname"`
	Sector   string `json:"sector"`
	Password string `json:"password" binding:"required"`
	IsAdmin  bool   `json:"is_admin"`
}

// CreateOperator 创建操作员
func (h *Handler) CreateOperator(c *gin.Context) {
	var req CreateOperatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	operator, err := h.OperatorService.CreateOperator(service.CreateOperatorInput{
		Email:    req.Email,
		Name:     req.Name,
		Nickname: req.Nickname,
		Sector:   req.Sector,
		Password: req.Password,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOperatorInvalid):
			respondError(c, response.CodeBadRequest, "operator invalid", nil)
		case errors.Is(err, service.ErrOperatorExists):
			respondError(c, response.CodeBadRequest, "email already registered", nil)
		case errors.Is(err, service.ErrUnknownStage):
			respondError(c, response.CodeBadRequest, "sector unknown", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, response.CodeBadRequest, "password too weak", nil)
		default:
			respondError(c, response.CodeInternal, "operator create failed", err)
		}
		return
	}

	response.Success(c, operator)
}

// UpdateOperatorRequest 编辑操作员请求（nil 字段不修改）
type UpdateOperatorRequest struct {
	Name     *string `json:"name"`
	Nickname *string `json:"nickname"`
	Sector   *string `json:"sector"`
	Active   *bool   `json:"active"`
	IsAdmin  *bool   `json:"is_admin"`
	Password *string `json:"password"`
}

// UpdateOperator 编辑操作员
func (h *Handler) UpdateOperator(c *gin.Context) {
	operatorID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || operatorID == 0 {
		respondError(c, response.CodeBadRequest, "operator id invalid", nil)
		return
	}

	var req UpdateOperatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	operator, err := h.OperatorService.UpdateOperator(uint(operatorID), service.UpdateOperatorInput{
		Name:     req.Name,
		Nickname: req.Nickname,
		Sector:   req.Sector,
		Active:   req.Active,
		IsAdmin:  req.IsAdmin,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOperatorNotFound):
			respondError(c, response.CodeNotFound, "operator not found", nil)
		case errors.Is(err, service.ErrOperatorInvalid):
			respondError(c, response.CodeBadRequest, "operator invalid", nil)
		case errors.Is(err, service.ErrUnknownStage):
			respondError(c, response.CodeBadRequest, "sector unknown", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, response.CodeBadRequest, "password too weak", nil)
		default:
			respondError(c, response.CodeInternal, "operator update failed", err)
		}
		return
	}

	response.Success(c, operator)
}

// DeleteOperator 删除操作员
func (h *Handler) DeleteOperator(c *gin.Context) {
	operatorID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || operatorID == 0 {
		respondError(c, response.CodeBadRequest, "operator id invalid", nil)
		return
	}

	if err := h.OperatorService.DeleteOperator(uint(operatorID)); err != nil {
		if errors.Is(err, service.ErrOperatorNotFound) {
			respondError(c, response.CodeNotFound, "operator not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "operator delete failed", err)
		return
	}

	response.Success(c, nil)
}
