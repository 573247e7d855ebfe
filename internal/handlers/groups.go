package handlers

import (
	"errors"
	"strconv"

	"github.com/famride/famride-backend/internal/models"
	"github.com/famride/famride-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func isGroupMember(db *gorm.DB, groupID, userID uint) bool {
	var member models.GroupMember
	err := db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error
	return err == nil
}

func isGroupAdmin(db *gorm.DB, groupID, userID uint) bool {
	var member models.GroupMember
	err := db.Where("group_id = ? AND user_id = ? AND is_admin = ?", groupID, userID, true).First(&member).Error
	return err == nil
}

// CreateGroup creates a group with a fresh invite code and makes the
// creator its admin.
func CreateGroup(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			Name        string `json:"name" binding:"required"`
			Description string `json:"description"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": "Group name is required"})
			return
		}

		inviteCode, err := utils.GenerateInviteCode()
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to create group"})
			return
		}

		group := models.Group{
			Name:        input.Name,
			Description: input.Description,
			InviteCode:  inviteCode,
			CreatedBy:   userId,
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&group).Error; err != nil {
				return err
			}
			member := models.GroupMember{
				GroupID: group.ID,
				UserID:  userId,
				IsAdmin: true,
			}
			return tx.Create(&member).Error
		})
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to create group"})
			return
		}

		c.JSON(201, gin.H{"group": group})
	}
}

// JoinGroup adds the caller to the group matching the invite code.
func JoinGroup(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			InviteCode string `json:"invite_code" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": "Invite code is required"})
			return
		}

		var group models.Group
		if err := db.Where("invite_code = ?", input.InviteCode).First(&group).Error; err != nil {
			c.JSON(404, gin.H{"error": "Invalid invite code"})
			return
		}

		if isGroupMember(db, group.ID, userId) {
			c.JSON(409, gin.H{"error": "Already a member of this group"})
			return
		}

		member := models.GroupMember{
			GroupID: group.ID,
			UserID:  userId,
			IsAdmin: false,
		}
		if err := db.Create(&member).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to join group"})
			return
		}

		c.JSON(200, gin.H{"success": true, "group": group})
	}
}

// GetGroups lists the caller's groups with member counts and their admin flag.
func GetGroups(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var groups []struct {
			models.Group
			IsAdmin     bool  `json:"is_admin"`
			MemberCount int64 `json:"member_count"`
		}

		err := db.Table("ride_groups").
			Select(`ride_groups.*, gm.is_admin,
				(SELECT COUNT(*) FROM group_members gm2 WHERE gm2.group_id = ride_groups.id AND gm2.deleted_at IS NULL) AS member_count`).
			Joins("JOIN group_members gm ON gm.group_id = ride_groups.id AND gm.deleted_at IS NULL").
			Where("gm.user_id = ? AND ride_groups.deleted_at IS NULL", userId).
			Scan(&groups).Error
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch groups"})
			return
		}

		c.JSON(200, gin.H{"groups": groups})
	}
}

// GetGroupMembers lists a group's members; callers must belong to the group.
func GetGroupMembers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		groupId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid group ID"})
			return
		}

		if !isGroupMember(db, uint(groupId), userId) {
			c.JSON(403, gin.H{"error": "Not authorized to view this group"})
			return
		}

		var members []models.GroupMember
		if err := db.Where("group_id = ?", groupId).
			Preload("User").
			Order("is_admin DESC").
			Find(&members).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch members"})
			return
		}

		response := make([]gin.H, 0, len(members))
		for _, m := range members {
			if m.User == nil {
				continue
			}
			response = append(response, gin.H{
				"id":                   m.User.ID,
				"name":                 m.User.Name,
				"email":                m.User.Email,
				"is_driver":            m.User.IsDriver,
				"is_available":         m.User.IsAvailable,
				"is_admin":             m.IsAdmin,
				"joined_at":            m.CreatedAt,
				"last_latitude":        m.User.LastLatitude,
				"last_longitude":       m.User.LastLongitude,
				"last_location_update": m.User.LastLocationUpdate,
			})
		}

		c.JSON(200, gin.H{"members": response})
	}
}

// DeleteGroup removes a group along with its memberships and rides.
// Admin only.
func DeleteGroup(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		groupId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid group ID"})
			return
		}

		if !isGroupAdmin(db, uint(groupId), userId) {
			c.JSON(403, gin.H{"error": "Only group admins can delete groups"})
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("group_id = ?", groupId).Delete(&models.GroupMember{}).Error; err != nil {
				return err
			}
			if err := tx.Where("group_id = ?", groupId).Delete(&models.Ride{}).Error; err != nil {
				return err
			}
			return tx.Delete(&models.Group{}, groupId).Error
		})
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to delete group"})
			return
		}

		c.JSON(200, gin.H{"success": true})
	}
}

// TransferAdmin moves the admin flag from the caller to another member.
// The swap happens in one transaction so the group never has zero or two
// admins.
func TransferAdmin(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		groupId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid group ID"})
			return
		}

		var input struct {
			NewAdminID uint `json:"new_admin_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": "New admin user ID is required"})
			return
		}

		if !isGroupAdmin(db, uint(groupId), userId) {
			c.JSON(403, gin.H{"error": "Only group admins can transfer admin rights"})
			return
		}

		if !isGroupMember(db, uint(groupId), input.NewAdminID) {
			c.JSON(400, gin.H{"error": "New admin must be a member of this group"})
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.GroupMember{}).
				Where("group_id = ? AND user_id = ?", groupId, userId).
				Update("is_admin", false).Error; err != nil {
				return err
			}
			result := tx.Model(&models.GroupMember{}).
				Where("group_id = ? AND user_id = ?", groupId, input.NewAdminID).
				Update("is_admin", true)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return errors.New("new admin membership vanished")
			}
			return nil
		})
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to transfer admin rights"})
			return
		}

		c.JSON(200, gin.H{"success": true})
	}
}
