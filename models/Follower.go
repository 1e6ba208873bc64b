package models

import (
	"fmt"

	"gorm.io/gorm"
)

// Follower is a directed edge: UserFromID follows UserToID.
type Follower struct {
	ID           uint  `gorm:"primary_key;autoIncrement" json:"id"`
	UserFromID   uint  `gorm:"not null;index;uniqueIndex:unique_follow,priority:1;check:no_self_follow,user_from_id <> user_to_id" json:"user_from_id"`
	UserToID     uint  `gorm:"not null;index;uniqueIndex:unique_follow,priority:2" json:"user_to_id"`
	FollowerUser *User `gorm:"foreignKey:UserFromID" json:"-"`
	FollowedUser *User `gorm:"foreignKey:UserToID" json:"-"`
}

func (Follower) TableName() string { return "follower" }

func (f *Follower) String() string {
	return fmt.Sprintf("<Follower %d -> %d>", f.UserFromID, f.UserToID)
}

func (f *Follower) Serialize() map[string]interface{} {
	return map[string]interface{}{
		"id":           f.ID,
		"user_from_id": f.UserFromID,
		"user_to_id":   f.UserToID,
	}
}

func (f *Follower) SaveFollower(db *gorm.DB) (*Follower, error) {
	if err := db.Create(f).Error; err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Follower) DeleteFollower(db *gorm.DB) (int64, error) {
	result := db.Where("user_from_id = ? AND user_to_id = ?", f.UserFromID, f.UserToID).Delete(&Follower{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
