package handlers

import (
	"encoding/json"
	"testing"

	"github.com/famride/famride-backend/internal/models"
	"github.com/gin-gonic/gin"
)

func groupParam(id uint) gin.Params {
	return rideParam(id)
}

func TestCreateAndJoinGroup(t *testing.T) {
	db := setupTestDB(t)

	creator := createTestUser(t, db, false, false)
	joiner := createTestUser(t, db, false, false)

	w := perform(CreateGroup(db), creator.ID, "POST", "/api/groups", nil,
		map[string]string{"name": "Family", "description": "weekend rides"})
	if w.Code != 201 {
		t.Fatalf("create group returned %d: %s", w.Code, w.Body.String())
	}

	var created struct {
		Group models.Group `json:"group"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(created.Group.InviteCode) == 0 {
		t.Fatal("group has no invite code")
	}

	// The creator is the group's admin.
	if !isGroupAdmin(db, created.Group.ID, creator.ID) {
		t.Error("creator is not admin")
	}

	joinBody := map[string]string{"invite_code": created.Group.InviteCode}
	if w := perform(JoinGroup(db), joiner.ID, "POST", "/api/groups/join", nil, joinBody); w.Code != 200 {
		t.Fatalf("join returned %d: %s", w.Code, w.Body.String())
	}
	if !isGroupMember(db, created.Group.ID, joiner.ID) {
		t.Error("joiner is not a member")
	}
	if isGroupAdmin(db, created.Group.ID, joiner.ID) {
		t.Error("joiner should not be admin")
	}

	// Joining twice is rejected.
	if w := perform(JoinGroup(db), joiner.ID, "POST", "/api/groups/join", nil, joinBody); w.Code != 409 {
		t.Errorf("second join returned %d, want 409", w.Code)
	}

	badBody := map[string]string{"invite_code": "NOPENOPE"}
	if w := perform(JoinGroup(db), joiner.ID, "POST", "/api/groups/join", nil, badBody); w.Code != 404 {
		t.Errorf("bad invite code returned %d, want 404", w.Code)
	}
}

func TestGetGroupMembersRequiresMembership(t *testing.T) {
	db := setupTestDB(t)

	creator := createTestUser(t, db, false, false)
	outsider := createTestUser(t, db, false, false)
	group := createTestGroup(t, db, creator)

	if w := perform(GetGroupMembers(db), outsider.ID, "GET", "/members", groupParam(group.ID), nil); w.Code != 403 {
		t.Errorf("outsider got %d, want 403", w.Code)
	}
	if w := perform(GetGroupMembers(db), creator.ID, "GET", "/members", groupParam(group.ID), nil); w.Code != 200 {
		t.Errorf("member got %d, want 200", w.Code)
	}
}

func TestDeleteGroup(t *testing.T) {
	db := setupTestDB(t)

	admin := createTestUser(t, db, false, false)
	member := createTestUser(t, db, false, false)
	group := createTestGroup(t, db, admin, member)
	ride := createTestRide(t, db, group, member)

	if w := perform(DeleteGroup(db), member.ID, "DELETE", "/groups", groupParam(group.ID), nil); w.Code != 403 {
		t.Errorf("non-admin delete returned %d, want 403", w.Code)
	}

	if w := perform(DeleteGroup(db), admin.ID, "DELETE", "/groups", groupParam(group.ID), nil); w.Code != 200 {
		t.Fatalf("admin delete returned %d: %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&models.Group{}).Where("id = ?", group.ID).Count(&count)
	if count != 0 {
		t.Error("group still visible after delete")
	}
	db.Model(&models.Ride{}).Where("id = ?", ride.ID).Count(&count)
	if count != 0 {
		t.Error("group rides still visible after delete")
	}
}

func TestTransferAdmin(t *testing.T) {
	db := setupTestDB(t)

	admin := createTestUser(t, db, false, false)
	member := createTestUser(t, db, false, false)
	outsider := createTestUser(t, db, false, false)
	group := createTestGroup(t, db, admin, member)

	body := map[string]uint{"new_admin_id": member.ID}

	if w := perform(TransferAdmin(db), member.ID, "PUT", "/transfer", groupParam(group.ID), body); w.Code != 403 {
		t.Errorf("non-admin transfer returned %d, want 403", w.Code)
	}

	if w := perform(TransferAdmin(db), admin.ID, "PUT", "/transfer", groupParam(group.ID),
		map[string]uint{"new_admin_id": outsider.ID}); w.Code != 400 {
		t.Errorf("transfer to outsider returned %d, want 400", w.Code)
	}

	if w := perform(TransferAdmin(db), admin.ID, "PUT", "/transfer", groupParam(group.ID), body); w.Code != 200 {
		t.Fatalf("transfer returned %d: %s", w.Code, w.Body.String())
	}

	if isGroupAdmin(db, group.ID, admin.ID) {
		t.Error("old admin kept the flag")
	}
	if !isGroupAdmin(db, group.ID, member.ID) {
		t.Error("new admin did not get the flag")
	}
}
