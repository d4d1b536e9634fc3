package policy

import "testing"

func TestDecideDocumentTable(t *testing.T) {
	const owner = "user-1"
	const other = "user-2"

	cases := []struct {
		name    string
		role    Role
		actorID string
		ownerID string
		op      Operation
		allowed bool
	}{
		{"admin create", RoleAdmin, other, "", OpDocumentCreate, true},
		{"editor create", RoleEditor, owner, "", OpDocumentCreate, true},
		{"viewer create", RoleViewer, owner, "", OpDocumentCreate, true},

		{"admin read other", RoleAdmin, other, owner, OpDocumentRead, true},
		{"editor read own", RoleEditor, owner, owner, OpDocumentRead, true},
		{"editor read other", RoleEditor, other, owner, OpDocumentRead, true},
		{"viewer read own", RoleViewer, owner, owner, OpDocumentRead, true},
		{"viewer read other", RoleViewer, other, owner, OpDocumentRead, false},

		{"admin download other", RoleAdmin, other, owner, OpDocumentDownload, true},
		{"editor download other", RoleEditor, other, owner, OpDocumentDownload, true},
		{"viewer download own", RoleViewer, owner, owner, OpDocumentDownload, true},
		{"viewer download other", RoleViewer, other, owner, OpDocumentDownload, false},

		{"admin update other", RoleAdmin, other, owner, OpDocumentUpdate, true},
		{"editor update own", RoleEditor, owner, owner, OpDocumentUpdate, true},
		{"editor update other", RoleEditor, other, owner, OpDocumentUpdate, false},
		{"viewer update own", RoleViewer, owner, owner, OpDocumentUpdate, false},
		{"viewer update other", RoleViewer, other, owner, OpDocumentUpdate, false},

		{"admin delete other", RoleAdmin, other, owner, OpDocumentDelete, true},
		{"editor delete own", RoleEditor, owner, owner, OpDocumentDelete, true},
		{"editor delete other", RoleEditor, other, owner, OpDocumentDelete, false},
		{"viewer delete own", RoleViewer, owner, owner, OpDocumentDelete, false},
		{"viewer delete other", RoleViewer, other, owner, OpDocumentDelete, false},

		{"admin user admin", RoleAdmin, other, "", OpUserAdmin, true},
		{"editor user admin", RoleEditor, other, "", OpUserAdmin, false},
		{"viewer user admin", RoleViewer, other, "", OpUserAdmin, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Decide(Actor{ID: tc.actorID, Role: tc.role}, tc.ownerID, tc.op)
			if d.Allowed != tc.allowed {
				t.Fatalf("Decide(%s, %s, actor=%s owner=%s) = %v, want %v",
					tc.role, tc.op, tc.actorID, tc.ownerID, d.Allowed, tc.allowed)
			}
			if !d.Allowed && d.Reason == "" {
				t.Fatalf("denial for %s must carry a reason", tc.name)
			}
			if d.Allowed && d.Reason != "" {
				t.Fatalf("allow for %s must not carry a reason, got %q", tc.name, d.Reason)
			}
		})
	}
}

func TestOwnerScoped(t *testing.T) {
	if OwnerScoped(RoleAdmin) {
		t.Fatalf("admin listings must not be owner-scoped")
	}
	if !OwnerScoped(RoleEditor) {
		t.Fatalf("editor listings must be owner-scoped")
	}
	if !OwnerScoped(RoleViewer) {
		t.Fatalf("viewer listings must be owner-scoped")
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleEditor, RoleViewer} {
		if !r.Valid() {
			t.Fatalf("%s should be valid", r)
		}
	}
	if Role("owner").Valid() {
		t.Fatalf("unknown role should be invalid")
	}
}
