package models

// All lists every persisted record in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Post{},
		&Media{},
		&Comment{},
		&Follower{},
	}
}
