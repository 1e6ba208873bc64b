package models

import (
	"database/sql/driver"
	"fmt"

	"gorm.io/gorm"
)

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

func (t MediaType) Valid() bool {
	switch t {
	case MediaTypeImage, MediaTypeVideo:
		return true
	}
	return false
}

// Value rejects anything outside the enumeration, the same way a native enum
// column would.
func (t MediaType) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%q is not a valid media type", string(t))
	}
	return string(t), nil
}

func (t *MediaType) Scan(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into MediaType", value)
	}
	if !MediaType(s).Valid() {
		return fmt.Errorf("%q is not a valid media type", s)
	}
	*t = MediaType(s)
	return nil
}

type Media struct {
	ID     uint      `gorm:"primary_key;autoIncrement" json:"id"`
	Type   MediaType `gorm:"type:varchar(5);not null;check:media_type_valid,type IN ('image', 'video')" json:"type"`
	URL    string    `gorm:"column:url;size:255;not null;check:media_url_not_empty,url <> ''" json:"url"`
	PostID uint      `gorm:"not null;index" json:"post_id"`
}

func (Media) TableName() string { return "media" }

func (m *Media) String() string {
	return fmt.Sprintf("<Media %d>", m.ID)
}

func (m *Media) Serialize() map[string]interface{} {
	return map[string]interface{}{
		"id":      m.ID,
		"type":    string(m.Type),
		"url":     m.URL,
		"post_id": m.PostID,
	}
}

func (m *Media) SaveMedia(db *gorm.DB) (*Media, error) {
	if err := db.Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Media) UpdateAMedia(db *gorm.DB) (*Media, error) {
	err := db.Model(&Media{ID: m.ID, PostID: m.PostID}).Updates(map[string]interface{}{
		"type": m.Type,
		"url":  m.URL,
	}).Error
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Media) DeleteMedia(db *gorm.DB) (int64, error) {
	result := db.Delete(&Media{ID: m.ID, PostID: m.PostID})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
