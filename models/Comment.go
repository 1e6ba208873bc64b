package models

import (
	"fmt"

	"gorm.io/gorm"
)

type Comment struct {
	ID          uint   `gorm:"primary_key;autoIncrement" json:"id"`
	CommentText string `gorm:"type:text;not null;check:comment_text_not_empty,comment_text <> ''" json:"comment_text"`
	AuthorID    uint   `gorm:"not null;index" json:"author_id"`
	Author      *User  `gorm:"foreignKey:AuthorID" json:"-"`
	PostID      uint   `gorm:"not null;index" json:"post_id"`
}

func (Comment) TableName() string { return "comment" }

func (c *Comment) String() string {
	return fmt.Sprintf("<Comment %d>", c.ID)
}

func (c *Comment) Serialize() map[string]interface{} {
	return map[string]interface{}{
		"id":           c.ID,
		"comment_text": c.CommentText,
		"author_id":    c.AuthorID,
		"post_id":      c.PostID,
	}
}

func (c *Comment) SaveComment(db *gorm.DB) (*Comment, error) {
	err := db.Create(&c).Error
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Comment) GetComments(db *gorm.DB, pid uint) ([]Comment, error) {
	comments := []Comment{}
	err := db.Preload("Author").Where("post_id = ?", pid).Order("id").Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *Comment) UpdateAComment(db *gorm.DB) (*Comment, error) {
	err := db.Model(&Comment{ID: c.ID, PostID: c.PostID}).Updates(map[string]interface{}{"comment_text": c.CommentText}).Error
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Comment) DeleteAComment(db *gorm.DB) (int64, error) {
	result := db.Delete(&Comment{ID: c.ID, PostID: c.PostID})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// When a user is deleted, their comments have to go first.
func (c *Comment) DeleteUserComments(db *gorm.DB, uid uint) (int64, error) {
	result := db.Where("author_id = ?", uid).Delete(&Comment{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
