package authz

import "fmt"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role      string
	Inherits  []string
	Policies  []Policy
	Immutable bool
}

// BuiltinRoleSeeds 系统预置角色矩阵。
// 车间操作员默认只能看板加流转，监督角色额外获得管理端只读。
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "plant_viewer",
			Policies: []Policy{
				{Object: "/plant/*", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role:     "plant_operator",
			Inherits: []string{"plant_viewer"},
			Policies: []Policy{
				{Object: "/plant/items/:id/advance", Action: "POST"},
				{Object: "/plant/items/:id/return", Action: "POST"},
				{Object: "/plant/items/:id/started", Action: "PUT"},
			},
			Immutable: true,
		},
		{
			Role:     "supervisor",
			Inherits: []string{"plant_operator"},
			Policies: []Policy{
				{Object: "/admin/orders", Action: "GET"},
				{Object: "/admin/orders/:id", Action: "GET"},
				{Object: "/admin/items", Action: "GET"},
				{Object: "/admin/items/:id", Action: "GET"},
				{Object: "/admin/movements", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role:     "expedition",
			Inherits: []string{"plant_operator"},
			Policies: []Policy{
				{Object: "/admin/movements", Action: "GET"},
			},
			Immutable: true,
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}

		exists, err := s.enforcer.HasNamedGroupingPolicy("g", role, roleAnchor)
		if err != nil {
			return fmt.Errorf("check builtin role failed: %w", err)
		}
		if !exists {
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, roleAnchor); err != nil {
				return fmt.Errorf("create builtin role failed: %w", err)
			}
		}

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}

	return nil
}
