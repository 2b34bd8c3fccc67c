package rbac

import (
	"net/http"
	"testing"

	"stockreceipter/infrastructure/cache"
)

func TestMatchPathWildcardSegments(t *testing.T) {
	cases := []struct {
		pattern string
		path    string
		ok      bool
	}{
		{pattern: "/api/receipts/imports/*", path: "/api/receipts/imports/4b1f", ok: true},
		{pattern: "/api/receipts/checks/*/items/*/count", path: "/api/receipts/checks/1/items/NK00012/count", ok: true},
		{pattern: "/api/receipts/imports/*", path: "/api/receipts/imports/1/print.pdf", ok: true},
		{pattern: "/api/receipts/imports", path: "/api/receipts/imports", ok: true},
		{pattern: "/api/receipts/checks/*/balance", path: "/api/receipts/checks/1/count", ok: false},
		{pattern: "/api/products", path: "/api/products/import", ok: false},
	}

	for _, tc := range cases {
		if got := matchPath(tc.pattern, tc.path); got != tc.ok {
			t.Fatalf("pattern=%s path=%s expected=%v got=%v", tc.pattern, tc.path, tc.ok, got)
		}
	}
}

func TestAllowed(t *testing.T) {
	r := New(cache.NewRbacRolesCache())
	r.Add(RoleStaff, "CHECK_UPDATE", http.MethodPatch, "/api/receipts/checks/*")
	r.Add(RoleManager, "CHECK_BALANCE", http.MethodPost, "/api/receipts/checks/*/balance")

	if !r.Allowed([]string{RoleStaff}, "/api/receipts/checks/1", http.MethodPatch) {
		t.Fatalf("staff should update checks")
	}
	if r.Allowed([]string{RoleStaff}, "/api/receipts/checks/1/balance", http.MethodPost) {
		t.Fatalf("staff must not balance checks")
	}
	if !r.Allowed([]string{RoleStaff, RoleManager}, "/api/receipts/checks/1/balance", http.MethodPost) {
		t.Fatalf("manager should balance checks")
	}
	if r.Allowed(nil, "/api/receipts/checks/1", http.MethodPatch) {
		t.Fatalf("no roles must be denied")
	}
}

func TestParseRoles(t *testing.T) {
	if got := ParseRoles(""); len(got) != 1 || got[0] != RoleStaff {
		t.Fatalf("expected default staff role, got %v", got)
	}
	if got := ParseRoles(" Manager , staff,,"); len(got) != 2 || got[0] != RoleManager || got[1] != RoleStaff {
		t.Fatalf("unexpected roles %v", got)
	}
}
