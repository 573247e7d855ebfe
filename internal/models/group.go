package models

import (
	"gorm.io/gorm"
)

// Group is a closed circle of users who share ride requests.
// Members join with the group's invite code; the code never expires.
type Group struct {
	gorm.Model
	Name        string `json:"name" gorm:"column:name;not null"`
	Description string `json:"description" gorm:"column:description"`
	InviteCode  string `json:"invite_code" gorm:"column:invite_code;unique;not null"`
	CreatedBy   uint   `json:"created_by" gorm:"column:created_by;not null"`
	Creator     *User  `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
}

// TableName specifies the table name
func (Group) TableName() string {
	return "ride_groups"
}

// GroupMember links a user to a group. Exactly one member per group
// carries the admin flag; transfer-admin swaps it atomically.
type GroupMember struct {
	gorm.Model
	GroupID uint   `json:"group_id" gorm:"column:group_id;not null;uniqueIndex:idx_group_user"`
	UserID  uint   `json:"user_id" gorm:"column:user_id;not null;uniqueIndex:idx_group_user"`
	IsAdmin bool   `json:"is_admin" gorm:"column:is_admin;not null;default:false"`
	Group   *Group `json:"group,omitempty" gorm:"foreignKey:GroupID"`
	User    *User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name
func (GroupMember) TableName() string {
	return "group_members"
}
