package models_test

import (
	"context"
	"testing"

	"Socialgram/config"
	"Socialgram/database"
	"Socialgram/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	c := &config.Config{Env: "test", DBDriver: config.DriverSQLite, SQLitePath: ":memory:"}
	db, err := database.Open(c)
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	if err := database.Migrate(context.Background(), db, c); err != nil {
		t.Fatalf("Failed to migrate in-memory database: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:  username,
		Firstname: "First " + username,
		Lastname:  "Last " + username,
		Email:     username + "@example.com",
	}
	saved, err := user.SaveUser(db)
	require.NoError(t, err)
	return saved
}

func createPost(t *testing.T, db *gorm.DB, author *models.User) *models.Post {
	t.Helper()
	post := &models.Post{UserID: author.ID}
	saved, err := post.SavePost(db)
	require.NoError(t, err)
	return saved
}
