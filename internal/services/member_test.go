package services

import (
	"testing"

	"github.com/haidang/taskhive/backend/internal/models"
)

func TestMemberAdd(t *testing.T) {
	db := setupTestDB(t)
	access := NewAccessService(db)
	svc := NewMemberService(db, access)

	owner := createTestUser(t, db, "owner")
	member := createTestUser(t, db, "member")
	outsider := createTestUser(t, db, "outsider")
	project := createTestProject(t, db, owner.ID, "alpha")

	added, err := svc.Add(owner.ID, project.ID, &AddMemberRequest{UserID: member.ID, Role: "MEMBER"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if added.Role != models.RoleMember {
		t.Errorf("role = %s, want MEMBER", added.Role)
	}

	// Duplicate add conflicts.
	_, err = svc.Add(owner.ID, project.ID, &AddMemberRequest{UserID: member.ID, Role: "ADMIN"})
	wantStatus(t, err, 409)

	// OWNER is never assignable.
	_, err = svc.Add(owner.ID, project.ID, &AddMemberRequest{UserID: outsider.ID, Role: "OWNER"})
	wantStatus(t, err, 400)

	// A plain MEMBER cannot add.
	_, err = svc.Add(member.ID, project.ID, &AddMemberRequest{UserID: outsider.ID, Role: "MEMBER"})
	wantStatus(t, err, 403)

	// Unknown user.
	_, err = svc.Add(owner.ID, project.ID, &AddMemberRequest{UserID: 9999, Role: "MEMBER"})
	wantStatus(t, err, 404)
}

func TestMemberUpdateRole(t *testing.T) {
	db := setupTestDB(t)
	access := NewAccessService(db)
	svc := NewMemberService(db, access)

	owner := createTestUser(t, db, "owner")
	admin := createTestUser(t, db, "admin")
	member := createTestUser(t, db, "member")
	project := createTestProject(t, db, owner.ID, "alpha")
	addMember(t, db, project.ID, admin.ID, models.RoleAdmin)
	addMember(t, db, project.ID, member.ID, models.RoleMember)

	updated, err := svc.UpdateRole(owner.ID, project.ID, member.ID, &UpdateMemberRoleRequest{Role: "ADMIN"})
	if err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}
	if updated.Role != models.RoleAdmin {
		t.Errorf("role = %s, want ADMIN", updated.Role)
	}

	// Actors cannot change their own role, even with edit rights.
	_, err = svc.UpdateRole(admin.ID, project.ID, admin.ID, &UpdateMemberRoleRequest{Role: "MEMBER"})
	wantStatus(t, err, 403)

	// The OWNER row is immutable.
	_, err = svc.UpdateRole(admin.ID, project.ID, owner.ID, &UpdateMemberRoleRequest{Role: "MEMBER"})
	wantStatus(t, err, 403)

	var ownerRow models.ProjectMember
	db.Where("project_id = ? AND user_id = ?", project.ID, owner.ID).First(&ownerRow)
	if ownerRow.Role != models.RoleOwner {
		t.Errorf("owner row role = %s after refused update, want OWNER", ownerRow.Role)
	}

	// No such member.
	ghost := createTestUser(t, db, "ghost")
	_, err = svc.UpdateRole(owner.ID, project.ID, ghost.ID, &UpdateMemberRoleRequest{Role: "MEMBER"})
	wantStatus(t, err, 404)
}

func TestMemberRemove_ThenRejoin(t *testing.T) {
	db := setupTestDB(t)
	access := NewAccessService(db)
	svc := NewMemberService(db, access)

	owner := createTestUser(t, db, "owner")
	member := createTestUser(t, db, "member")
	project := createTestProject(t, db, owner.ID, "alpha")
	addMember(t, db, project.ID, member.ID, models.RoleMember)

	if err := svc.Remove(owner.ID, project.ID, member.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if ok, _ := access.CanView(member.ID, project.ID); ok {
		t.Error("removed member should lose view access")
	}

	// Remove-then-add round trip yields a fresh membership.
	added, err := svc.Add(owner.ID, project.ID, &AddMemberRequest{UserID: member.ID, Role: "ADMIN"})
	if err != nil {
		t.Fatalf("re-Add: %v", err)
	}
	if added.Role != models.RoleAdmin {
		t.Errorf("re-added role = %s, want ADMIN", added.Role)
	}
	if ok, _ := access.CanEdit(member.ID, project.ID); !ok {
		t.Error("re-added ADMIN should have edit access")
	}
}

func TestMemberRemove_OwnerProtected(t *testing.T) {
	db := setupTestDB(t)
	access := NewAccessService(db)
	svc := NewMemberService(db, access)

	owner := createTestUser(t, db, "owner")
	admin := createTestUser(t, db, "admin")
	project := createTestProject(t, db, owner.ID, "alpha")
	addMember(t, db, project.ID, admin.ID, models.RoleAdmin)

	wantStatus(t, svc.Remove(admin.ID, project.ID, owner.ID), 403)
	wantStatus(t, svc.Remove(owner.ID, project.ID, owner.ID), 403)
}

func TestMemberRemove_RequiresEdit(t *testing.T) {
	db := setupTestDB(t)
	access := NewAccessService(db)
	svc := NewMemberService(db, access)

	owner := createTestUser(t, db, "owner")
	member := createTestUser(t, db, "member")
	project := createTestProject(t, db, owner.ID, "alpha")
	addMember(t, db, project.ID, member.ID, models.RoleMember)

	// A plain member cannot remove anyone through Remove, themselves
	// included; the row must survive.
	wantStatus(t, svc.Remove(member.ID, project.ID, member.ID), 403)
	if ok, _ := access.CanView(member.ID, project.ID); !ok {
		t.Error("denied removal must not delete the membership")
	}
}

func TestMemberLeave(t *testing.T) {
	db := setupTestDB(t)
	access := NewAccessService(db)
	svc := NewMemberService(db, access)

	owner := createTestUser(t, db, "owner")
	member := createTestUser(t, db, "member")
	outsider := createTestUser(t, db, "outsider")
	project := createTestProject(t, db, owner.ID, "alpha")
	addMember(t, db, project.ID, member.ID, models.RoleMember)

	// A plain member can leave without edit rights.
	if err := svc.Leave(member.ID, project.ID); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if ok, _ := access.CanView(member.ID, project.ID); ok {
		t.Error("member should lose access after leaving")
	}

	// The owner cannot leave, and a non-member has no row to leave.
	wantStatus(t, svc.Leave(owner.ID, project.ID), 403)
	wantStatus(t, svc.Leave(outsider.ID, project.ID), 404)
}

func TestMemberJoin(t *testing.T) {
	db := setupTestDB(t)
	access := NewAccessService(db)
	svc := NewMemberService(db, access)
	projectSvc := NewProjectService(db, access)

	owner := createTestUser(t, db, "owner")
	joiner := createTestUser(t, db, "joiner")
	project := createTestProject(t, db, owner.ID, "alpha")

	member, err := svc.Join(joiner.ID, project.ID)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if member.Role != models.RoleMember {
		t.Errorf("joined role = %s, want MEMBER", member.Role)
	}

	_, err = svc.Join(joiner.ID, project.ID)
	wantStatus(t, err, 409)

	_, err = svc.Join(joiner.ID, 9999)
	wantStatus(t, err, 404)

	archived := createTestProject(t, db, owner.ID, "archived")
	projectSvc.Archive(owner.ID, archived.ID)
	_, err = svc.Join(joiner.ID, archived.ID)
	wantStatus(t, err, 409)
}

func TestTeamWideRoleSweep(t *testing.T) {
	db := setupTestDB(t)
	access := NewAccessService(db)
	svc := NewMemberService(db, access)

	actor := createTestUser(t, db, "actor")
	target := createTestUser(t, db, "target")
	other := createTestUser(t, db, "other")

	// Two projects the actor owns, one owned by the target, one unrelated.
	shared1 := createTestProject(t, db, actor.ID, "shared1")
	shared2 := createTestProject(t, db, actor.ID, "shared2")
	targetOwned := createTestProject(t, db, target.ID, "target-owned")
	foreign := createTestProject(t, db, other.ID, "foreign")

	addMember(t, db, shared1.ID, target.ID, models.RoleMember)
	addMember(t, db, shared2.ID, target.ID, models.RoleMember)
	addMember(t, db, targetOwned.ID, actor.ID, models.RoleMember)
	addMember(t, db, foreign.ID, target.ID, models.RoleMember)

	updated, err := svc.UpdateRoleAcrossSharedProjects(actor.ID, target.ID, &UpdateMemberRoleRequest{Role: "ADMIN"})
	if err != nil {
		t.Fatalf("UpdateRoleAcrossSharedProjects: %v", err)
	}
	if updated != 2 {
		t.Errorf("updated = %d, want 2", updated)
	}

	// The target's own OWNER row survives, as does the foreign membership.
	var ownerRow models.ProjectMember
	db.Where("project_id = ? AND user_id = ?", targetOwned.ID, target.ID).First(&ownerRow)
	if ownerRow.Role != models.RoleOwner {
		t.Errorf("target's OWNER row changed to %s", ownerRow.Role)
	}
	var foreignRow models.ProjectMember
	db.Where("project_id = ? AND user_id = ?", foreign.ID, target.ID).First(&foreignRow)
	if foreignRow.Role != models.RoleMember {
		t.Errorf("foreign membership changed to %s", foreignRow.Role)
	}

	// Self-sweep refused.
	_, err = svc.UpdateRoleAcrossSharedProjects(actor.ID, actor.ID, &UpdateMemberRoleRequest{Role: "MEMBER"})
	wantStatus(t, err, 403)
}

func TestTeamWideRemoveSweep(t *testing.T) {
	db := setupTestDB(t)
	access := NewAccessService(db)
	svc := NewMemberService(db, access)

	actor := createTestUser(t, db, "actor")
	target := createTestUser(t, db, "target")

	shared := createTestProject(t, db, actor.ID, "shared")
	targetOwned := createTestProject(t, db, target.ID, "target-owned")
	addMember(t, db, shared.ID, target.ID, models.RoleAdmin)
	addMember(t, db, targetOwned.ID, actor.ID, models.RoleAdmin)

	removed, err := svc.RemoveAcrossSharedProjects(actor.ID, target.ID)
	if err != nil {
		t.Fatalf("RemoveAcrossSharedProjects: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	// The actor has ADMIN rights in targetOwned, but the target's row there
	// is OWNER and must survive the sweep.
	var count int64
	db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", targetOwned.ID, target.ID).
		Count(&count)
	if count != 1 {
		t.Error("target's OWNER row must survive the removal sweep")
	}

	_, err = svc.RemoveAcrossSharedProjects(actor.ID, actor.ID)
	wantStatus(t, err, 403)
}

func TestListTeam(t *testing.T) {
	db := setupTestDB(t)
	access := NewAccessService(db)
	svc := NewMemberService(db, access)

	actor := createTestUser(t, db, "actor")
	colleague := createTestUser(t, db, "colleague")
	stranger := createTestUser(t, db, "stranger")

	p1 := createTestProject(t, db, actor.ID, "p1")
	p2 := createTestProject(t, db, actor.ID, "p2")
	createTestProject(t, db, stranger.ID, "p3")
	addMember(t, db, p1.ID, colleague.ID, models.RoleMember)
	addMember(t, db, p2.ID, colleague.ID, models.RoleAdmin)

	team, err := svc.ListTeam(actor.ID)
	if err != nil {
		t.Fatalf("ListTeam: %v", err)
	}
	if len(team) != 1 {
		t.Fatalf("expected 1 team member, got %d", len(team))
	}
	if team[0].ID != colleague.ID {
		t.Errorf("team member = %d, want %d", team[0].ID, colleague.ID)
	}
	if team[0].SharedCount != 2 {
		t.Errorf("shared count = %d, want 2", team[0].SharedCount)
	}
	if team[0].HighestRole != "ADMIN" {
		t.Errorf("highest role = %s, want ADMIN", team[0].HighestRole)
	}
}
