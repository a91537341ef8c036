package services

import (
	"testing"

	"github.com/haidang/taskhive/backend/internal/models"
)

func TestCanView(t *testing.T) {
	db := setupTestDB(t)
	access := NewAccessService(db)

	owner := createTestUser(t, db, "owner")
	admin := createTestUser(t, db, "admin")
	member := createTestUser(t, db, "member")
	outsider := createTestUser(t, db, "outsider")

	project := createTestProject(t, db, owner.ID, "alpha")
	addMember(t, db, project.ID, admin.ID, models.RoleAdmin)
	addMember(t, db, project.ID, member.ID, models.RoleMember)

	cases := []struct {
		name   string
		userID uint
		want   bool
	}{
		{"owner", owner.ID, true},
		{"admin member", admin.ID, true},
		{"plain member", member.ID, true},
		{"outsider", outsider.ID, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := access.CanView(tc.userID, project.ID)
			if err != nil {
				t.Fatalf("CanView: %v", err)
			}
			if got != tc.want {
				t.Errorf("CanView = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCanEdit(t *testing.T) {
	db := setupTestDB(t)
	access := NewAccessService(db)

	owner := createTestUser(t, db, "owner")
	admin := createTestUser(t, db, "admin")
	member := createTestUser(t, db, "member")
	outsider := createTestUser(t, db, "outsider")

	project := createTestProject(t, db, owner.ID, "alpha")
	addMember(t, db, project.ID, admin.ID, models.RoleAdmin)
	addMember(t, db, project.ID, member.ID, models.RoleMember)

	cases := []struct {
		name   string
		userID uint
		want   bool
	}{
		{"owner", owner.ID, true},
		{"admin member", admin.ID, true},
		{"plain member", member.ID, false},
		{"outsider", outsider.ID, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := access.CanEdit(tc.userID, project.ID)
			if err != nil {
				t.Fatalf("CanEdit: %v", err)
			}
			if got != tc.want {
				t.Errorf("CanEdit = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPredicates_MissingProject(t *testing.T) {
	db := setupTestDB(t)
	access := NewAccessService(db)

	user := createTestUser(t, db, "user")

	if ok, _ := access.CanView(user.ID, 9999); ok {
		t.Error("CanView should be false for a missing project")
	}
	if ok, _ := access.CanEdit(user.ID, 9999); ok {
		t.Error("CanEdit should be false for a missing project")
	}
}

func TestRequireView_SameErrorForMissingAndForeign(t *testing.T) {
	db := setupTestDB(t)
	access := NewAccessService(db)

	owner := createTestUser(t, db, "owner")
	outsider := createTestUser(t, db, "outsider")
	project := createTestProject(t, db, owner.ID, "alpha")

	errForeign := access.RequireView(outsider.ID, project.ID)
	errMissing := access.RequireView(outsider.ID, 9999)

	wantStatus(t, errForeign, 403)
	wantStatus(t, errMissing, 403)
	if errForeign.Error() != errMissing.Error() {
		t.Errorf("error messages differ: %q vs %q", errForeign.Error(), errMissing.Error())
	}
}

func TestPredicates_FreshOnRoleChange(t *testing.T) {
	db := setupTestDB(t)
	access := NewAccessService(db)

	owner := createTestUser(t, db, "owner")
	user := createTestUser(t, db, "user")
	project := createTestProject(t, db, owner.ID, "alpha")
	addMember(t, db, project.ID, user.ID, models.RoleMember)

	if ok, _ := access.CanEdit(user.ID, project.ID); ok {
		t.Fatal("MEMBER should not have edit access")
	}

	db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", project.ID, user.ID).
		Update("role", models.RoleAdmin)

	if ok, _ := access.CanEdit(user.ID, project.ID); !ok {
		t.Error("promotion to ADMIN should grant edit access on the next check")
	}
}
