package seed

import (
	"fmt"
	"log"

	"Socialgram/models"

	"gorm.io/gorm"
)

var users = []models.User{
	{
		Username:  "steven",
		Firstname: "Steven",
		Lastname:  "Victor",
		Email:     "steven@example.com",
	},
	{
		Username:  "martin",
		Firstname: "Martin",
		Lastname:  "Luther",
		Email:     "luther@example.com",
	},
}

// media per post, indexed like users
var media = [][]models.Media{
	{
		{Type: models.MediaTypeImage, URL: "https://cdn.example.com/steven/cover.jpg"},
		{Type: models.MediaTypeVideo, URL: "s3://socialgram-media/steven/intro.mp4"},
	},
	{
		{Type: models.MediaTypeImage, URL: "s3://socialgram-media/martin/dream.jpg"},
	},
}

var comments = []string{
	"Lorem ipsum dolor sit amet, consectetur adipiscing elit.",
	"Ut enim ad minim veniam, quis nostrud exercitation ullamco laboris.",
}

// Load inserts two users who follow each other, one post each with media,
// and a comment from each user on the other's post. With reset the tables
// are dropped and recreated first.
func Load(db *gorm.DB, reset bool) error {
	if reset {
		if err := db.Migrator().DropTable(models.All()...); err != nil {
			return fmt.Errorf("cannot drop table: %w", err)
		}
		if err := db.AutoMigrate(models.All()...); err != nil {
			return fmt.Errorf("cannot migrate table: %w", err)
		}
	}

	seeded := make([]models.User, len(users))
	copy(seeded, users)
	for i := range seeded {
		if _, err := seeded[i].SaveUser(db); err != nil {
			return fmt.Errorf("cannot seed user table: %w", err)
		}
	}

	posts := make([]*models.Post, len(seeded))
	for i := range seeded {
		post, err := (&models.Post{UserID: seeded[i].ID}).SavePost(db)
		if err != nil {
			return fmt.Errorf("cannot seed post table: %w", err)
		}
		posts[i] = post

		for _, m := range media[i] {
			m.PostID = post.ID
			if _, err := m.SaveMedia(db); err != nil {
				return fmt.Errorf("cannot seed media table: %w", err)
			}
		}
	}

	for i := range seeded {
		other := (i + 1) % len(seeded)
		comment := &models.Comment{
			CommentText: comments[i],
			AuthorID:    seeded[i].ID,
			PostID:      posts[other].ID,
		}
		if _, err := comment.SaveComment(db); err != nil {
			return fmt.Errorf("cannot seed comment table: %w", err)
		}

		edge := &models.Follower{UserFromID: seeded[i].ID, UserToID: seeded[other].ID}
		if _, err := edge.SaveFollower(db); err != nil {
			return fmt.Errorf("cannot seed follower table: %w", err)
		}
	}

	log.Printf("seeded %d users and %d posts", len(seeded), len(posts))
	return nil
}
