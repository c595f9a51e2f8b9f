package admin

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/optrack-next/internal/http/response"
	"github.com/optrack-next/internal/logger"
	"github.com/optrack-next/internal/service"

	"github.com/gin-gonic/gin"
)

type authzRolePayload struct {
	Role string `json:"role" binding:"required"`
}

type authzPolicyPayload struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

type authzSetOperatorRolesPayload struct {
	Roles []string `json:"roles"`
}

// ListAuthzRoles 获取角色列表
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "role fetch failed", err)
		return
	}
	response.Success(c, roles)
}

// CreateAuthzRole 创建角色
func (h *Handler) CreateAuthzRole(c *gin.Context) {
	var req authzRolePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	role, err := h.AuthzService.EnsureRole(req.Role)
	if err != nil {
		respondError(c, response.CodeBadRequest, "role invalid", err)
		return
	}

	operatorID, _ := getOperatorID(c)
	logger.Infow("admin_authz_role_created",
		"operator_id", operatorID,
		"role", role,
	)

	response.Success(c, gin.H{"role": role})
}

// DeleteAuthzRole 删除角色
func (h *Handler) DeleteAuthzRole(c *gin.Context) {
	role := decodeRoleParam(c.Param("role"))
	if strings.TrimSpace(role) == "" {
		respondError(c, response.CodeBadRequest, "role is required", nil)
		return
	}

	if err := h.AuthzService.DeleteRole(role); err != nil {
		respondError(c, response.CodeBadRequest, "role delete failed", err)
		return
	}

	operatorID, _ := getOperatorID(c)
	logger.Infow("admin_authz_role_deleted",
		"operator_id", operatorID,
		"role", role,
	)

	response.Success(c, nil)
}

// GetAuthzRolePolicies 获取角色策略
func (h *Handler) GetAuthzRolePolicies(c *gin.Context) {
	role := decodeRoleParam(c.Param("role"))
	if strings.TrimSpace(role) == "" {
		respondError(c, response.CodeBadRequest, "role is required", nil)
		return
	}

	policies, err := h.AuthzService.GetRolePolicies(role)
	if err != nil {
		respondError(c, response.CodeBadRequest, "role policy fetch failed", err)
		return
	}
	response.Success(c, policies)
}

// GrantAuthzPolicy 授予角色策略
func (h *Handler) GrantAuthzPolicy(c *gin.Context) {
	var req authzPolicyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if err := h.AuthzService.GrantRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeBadRequest, "policy grant failed", err)
		return
	}

	operatorID, _ := getOperatorID(c)
	logger.Infow("admin_authz_policy_granted",
		"operator_id", operatorID,
		"role", req.Role,
		"object", req.Object,
		"action", req.Action,
	)

	response.Success(c, nil)
}

// RevokeAuthzPolicy 撤销角色策略
func (h *Handler) RevokeAuthzPolicy(c *gin.Context) {
	var req authzPolicyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if err := h.AuthzService.RevokeRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeBadRequest, "policy revoke failed", err)
		return
	}

	operatorID, _ := getOperatorID(c)
	logger.Infow("admin_authz_policy_revoked",
		"operator_id", operatorID,
		"role", req.Role,
		"object", req.Object,
		"action", req.Action,
	)

	response.Success(c, nil)
}

// GetAuthzOperatorRoles 获取操作员角色
func (h *Handler) GetAuthzOperatorRoles(c *gin.Context) {
	targetID, ok := parseOperatorIDParam(c)
	if !ok {
		return
	}
	if _, err := h.OperatorService.GetOperator(targetID); err != nil {
		if errors.Is(err, service.ErrOperatorNotFound) {
			respondError(c, response.CodeNotFound, "operator not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "operator fetch failed", err)
		return
	}

	roles, err := h.AuthzService.GetOperatorRoles(targetID)
	if err != nil {
		respondError(c, response.CodeInternal, "role fetch failed", err)
		return
	}
	response.Success(c, roles)
}

// SetAuthzOperatorRoles 覆盖设置操作员角色
func (h *Handler) SetAuthzOperatorRoles(c *gin.Context) {
	targetID, ok := parseOperatorIDParam(c)
	if !ok {
		return
	}
	operator, err := h.OperatorService.GetOperator(targetID)
	if err != nil {
		if errors.Is(err, service.ErrOperatorNotFound) {
			respondError(c, response.CodeNotFound, "operator not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "operator fetch failed", err)
		return
	}

	var req authzSetOperatorRolesPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if err := h.AuthzService.SetOperatorRoles(targetID, req.Roles); err != nil {
		respondError(c, response.CodeBadRequest, "role assignment failed", err)
		return
	}

	operatorID, _ := getOperatorID(c)
	logger.Infow("admin_authz_operator_roles_updated",
		"operator_id", operatorID,
		"target_operator_id", targetID,
		"target_email", operator.Email,
		"roles", req.Roles,
	)

	response.Success(c, nil)
}

func parseOperatorIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "operator id invalid", nil)
		return 0, false
	}
	return uint(id), true
}

// decodeRoleParam 角色名可能带 role: 前缀并经过 URL 编码
func decodeRoleParam(value string) string {
	decoded, err := url.QueryUnescape(value)
	if err != nil {
		return strings.TrimSpace(value)
	}
	return strings.TrimSpace(decoded)
}
