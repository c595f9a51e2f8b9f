package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	return svc
}

func TestEnforceOperatorWithRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("planning", "/admin/orders/:id", "GET"); err != nil {
		t.Fatalf("grant role policy failed: %v", err)
	}
	if err := svc.SetOperatorRoles(1, []string{"planning"}); err != nil {
		t.Fatalf("set operator roles failed: %v", err)
	}

	allow, err := svc.EnforceOperator(1, "/api/v1/admin/orders/42", "get")
	if err != nil {
		t.Fatalf("enforce allow failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected allow=true")
	}

	allow, err = svc.EnforceOperator(1, "/api/v1/admin/orders/42", "PUT")
	if err != nil {
		t.Fatalf("enforce deny failed: %v", err)
	}
	if allow {
		t.Fatalf("expected allow=false")
	}
}

func TestSetOperatorRolesOverride(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("planning", "/admin/orders", "GET"); err != nil {
		t.Fatalf("grant planning policy failed: %v", err)
	}
	if err := svc.GrantRolePolicy("logistics", "/admin/movements", "GET"); err != nil {
		t.Fatalf("grant logistics policy failed: %v", err)
	}

	if err := svc.SetOperatorRoles(2, []string{"planning"}); err != nil {
		t.Fatalf("set first role failed: %v", err)
	}
	roles, err := svc.GetOperatorRoles(2)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:planning" {
		t.Fatalf("roles want [role:planning], got=%v", roles)
	}

	if err := svc.SetOperatorRoles(2, []string{"logistics"}); err != nil {
		t.Fatalf("set second role failed: %v", err)
	}
	roles, err = svc.GetOperatorRoles(2)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:logistics" {
		t.Fatalf("roles want [role:logistics], got=%v", roles)
	}

	allow, err := svc.EnforceOperator(2, "/admin/orders", "GET")
	if err != nil {
		t.Fatalf("enforce old role failed: %v", err)
	}
	if allow {
		t.Fatalf("expected old role permission removed")
	}

	allow, err = svc.EnforceOperator(2, "/admin/movements", "GET")
	if err != nil {
		t.Fatalf("enforce new role failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected new role permission granted")
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "/api/v1/plant/items/:id", want: "/plant/items/:id"},
		{in: "/admin/orders/:id", want: "/admin/orders/:id"},
		{in: "admin/orders", want: "/admin/orders"},
		{in: "/api/v1", want: "/"},
		{in: "", want: "/"},
	}
	for _, item := range cases {
		got := NormalizeObject(item.in)
		if got != item.want {
			t.Fatalf("normalize object failed, in=%q want=%q got=%q", item.in, item.want, got)
		}
	}
}

func TestBootstrapBuiltinRoles(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}

	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	wantRoles := map[string]bool{
		"role:plant_viewer":   true,
		"role:plant_operator": true,
		"role:supervisor":     true,
		"role:expedition":     true,
	}
	for _, role := range roles {
		delete(wantRoles, role)
	}
	if len(wantRoles) != 0 {
		t.Fatalf("builtin roles missing: %v", wantRoles)
	}

	if err := svc.SetOperatorRoles(3, []string{"plant_operator"}); err != nil {
		t.Fatalf("set operator roles failed: %v", err)
	}

	allow, err := svc.EnforceOperator(3, "/api/v1/plant/stages/machining/items", "GET")
	if err != nil {
		t.Fatalf("enforce inherited viewer failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected inherited board read permission")
	}

	allow, err = svc.EnforceOperator(3, "/api/v1/plant/items/7/advance", "POST")
	if err != nil {
		t.Fatalf("enforce operator advance failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected advance permission for plant_operator")
	}

	allow, err = svc.EnforceOperator(3, "/api/v1/admin/orders", "GET")
	if err != nil {
		t.Fatalf("enforce admin scope failed: %v", err)
	}
	if allow {
		t.Fatalf("expected plant_operator denied on admin scope")
	}

	if err := svc.SetOperatorRoles(4, []string{"supervisor"}); err != nil {
		t.Fatalf("set supervisor roles failed: %v", err)
	}
	allow, err = svc.EnforceOperator(4, "/api/v1/admin/orders", "GET")
	if err != nil {
		t.Fatalf("enforce supervisor read failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected supervisor admin read permission")
	}
	allow, err = svc.EnforceOperator(4, "/api/v1/admin/orders", "POST")
	if err != nil {
		t.Fatalf("enforce supervisor write failed: %v", err)
	}
	if allow {
		t.Fatalf("expected supervisor denied admin write")
	}
}
