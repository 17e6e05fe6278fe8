package services

import (
	"fmt"
	"testing"
	"votecount/internal/db"
	"votecount/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestDB points the global DB at a fresh in-memory sqlite database.
// Max one open connection, otherwise every pooled connection would see its
// own empty :memory: database.
func setupTestDB(t *testing.T) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gdb.AutoMigrate(&models.User{}, &models.VoteCount{}, &models.Vote{}))
	db.DB = gdb
}

func createTestUser(t *testing.T, name string) *models.User {
	t.Helper()

	user := models.User{
		Username: name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: "x",
	}
	require.NoError(t, db.DB.Create(&user).Error)
	return &user
}

func reloadVoteCount(t *testing.T, id uint) *models.VoteCount {
	t.Helper()

	var vc models.VoteCount
	require.NoError(t, db.DB.First(&vc, id).Error)
	return &vc
}

func countVotes(t *testing.T, voteCountID uint) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.DB.Model(&models.Vote{}).
		Where("vote_count_id = ?", voteCountID).Count(&n).Error)
	return n
}
