package models

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type User struct {
	ID        uint       `gorm:"primary_key;autoIncrement" json:"id"`
	Username  string     `gorm:"size:50;not null;check:user_username_not_empty,username <> ''" json:"username"`
	Firstname string     `gorm:"size:50;not null;check:user_firstname_not_empty,firstname <> ''" json:"firstname"`
	Lastname  string     `gorm:"size:50;not null;check:user_lastname_not_empty,lastname <> ''" json:"lastname"`
	Email     string     `gorm:"size:120;not null;unique;check:user_email_not_empty,email <> ''" json:"email"`
	Posts     []Post     `gorm:"foreignKey:UserID" json:"-"`
	Comments  []Comment  `gorm:"foreignKey:AuthorID" json:"-"`
	Following []Follower `gorm:"foreignKey:UserFromID" json:"-"`
	Followers []Follower `gorm:"foreignKey:UserToID" json:"-"`
}

func (User) TableName() string { return "user" }

func (u *User) String() string {
	return fmt.Sprintf("<User %s>", u.Username)
}

func (u *User) Serialize() map[string]interface{} {
	return map[string]interface{}{
		"id":        u.ID,
		"username":  u.Username,
		"firstname": u.Firstname,
		"lastname":  u.Lastname,
		"email":     u.Email,
	}
}

func (u *User) SaveUser(db *gorm.DB) (*User, error) {
	err := db.Create(&u).Error
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (u *User) FindUserByID(db *gorm.DB, uid uint) (*User, error) {
	var user User
	err := db.Where("id = ?", uid).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("User not found")
		}
		return nil, err
	}
	return &user, nil
}

// UpdateAUser writes the profile columns as given; empty values reach the
// storage checks rather than being skipped.
func (u *User) UpdateAUser(db *gorm.DB, uid uint) (*User, error) {
	err := db.Model(&User{}).Where("id = ?", uid).Updates(map[string]interface{}{
		"username":  u.Username,
		"firstname": u.Firstname,
		"lastname":  u.Lastname,
		"email":     u.Email,
	}).Error
	if err != nil {
		return nil, err
	}

	var updated User
	err = db.Where("id = ?", uid).Take(&updated).Error
	if err != nil {
		return nil, err
	}
	*u = updated
	return u, nil
}

func (u *User) DeleteAUser(db *gorm.DB, uid uint) (int64, error) {
	result := db.Where("id = ?", uid).Delete(&User{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (u *User) FindUserPosts(db *gorm.DB) ([]Post, error) {
	var posts []Post
	err := db.Where("user_id = ?", u.ID).Order("id").Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// FindFollowing lists the edges where u is the follower.
func (u *User) FindFollowing(db *gorm.DB) ([]Follower, error) {
	var edges []Follower
	err := db.Preload("FollowedUser").Where("user_from_id = ?", u.ID).Order("id").Find(&edges).Error
	if err != nil {
		return nil, err
	}
	return edges, nil
}

// FindFollowers lists the edges where u is the one being followed.
func (u *User) FindFollowers(db *gorm.DB) ([]Follower, error) {
	var edges []Follower
	err := db.Preload("FollowerUser").Where("user_to_id = ?", u.ID).Order("id").Find(&edges).Error
	if err != nil {
		return nil, err
	}
	return edges, nil
}
