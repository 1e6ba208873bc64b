package models

import (
	"fmt"

	"gorm.io/gorm"
)

type Post struct {
	ID       uint      `gorm:"primary_key;autoIncrement" json:"id"`
	UserID   uint      `gorm:"not null;index" json:"user_id"`
	Author   *User     `gorm:"foreignKey:UserID" json:"-"`
	Media    []Media   `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"media"`
	Comments []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments"`
}

func (Post) TableName() string { return "post" }

func (p *Post) String() string {
	return fmt.Sprintf("<Post %d>", p.ID)
}

// Serialize expands the loaded Media and Comments in their current order.
func (p *Post) Serialize() map[string]interface{} {
	media := make([]map[string]interface{}, 0, len(p.Media))
	for i := range p.Media {
		media = append(media, p.Media[i].Serialize())
	}
	comments := make([]map[string]interface{}, 0, len(p.Comments))
	for i := range p.Comments {
		comments = append(comments, p.Comments[i].Serialize())
	}
	return map[string]interface{}{
		"id":       p.ID,
		"user_id":  p.UserID,
		"media":    media,
		"comments": comments,
	}
}

func (p *Post) SavePost(db *gorm.DB) (*Post, error) {
	if err := db.Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func byID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

// FindPostByID loads the post with its media and comments ordered by id.
func (p *Post) FindPostByID(db *gorm.DB, pid uint) (*Post, error) {
	var post Post
	result := db.Preload("Media", byID).Preload("Comments", byID).First(&post, pid)
	if result.Error != nil {
		return nil, result.Error
	}
	return &post, nil
}

// DeletePost removes the post's media and comments, then the post itself.
// The foreign keys cascade as well, so deletes issued outside this method
// leave no orphans.
func (p *Post) DeletePost(db *gorm.DB) (int64, error) {
	var deleted int64
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", p.ID).Delete(&Media{PostID: p.ID}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", p.ID).Delete(&Comment{PostID: p.ID}).Error; err != nil {
			return err
		}
		result := tx.Delete(&Post{ID: p.ID})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	p.Media = nil
	p.Comments = nil
	return deleted, nil
}
