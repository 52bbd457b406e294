package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"yatube/internal/config"
	"yatube/internal/models"
)

func TestOpenMigratesSchema(t *testing.T) {
	gdb, err := Open(config.DatabaseConfig{Driver: "sqlite", URL: "file::memory:?_foreign_keys=on"}, zap.NewNop())
	require.NoError(t, err)

	for _, table := range []interface{}{&models.User{}, &models.Group{}, &models.Post{}, &models.Comment{}, &models.Follow{}} {
		assert.True(t, gdb.Migrator().HasTable(table))
	}
	assert.True(t, gdb.Migrator().HasIndex(&models.Follow{}, "unique_follow"))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle", URL: "x"}, zap.NewNop())
	assert.Error(t, err)
}

func TestSeedGroups(t *testing.T) {
	gdb, err := Open(config.DatabaseConfig{Driver: "sqlite", URL: "file::memory:?_foreign_keys=on"}, zap.NewNop())
	require.NoError(t, err)

	groups := []models.Group{
		{Title: "Cats", Slug: "cats", Description: "About cats"},
		{Title: "Dogs", Slug: "dogs", Description: "About dogs"},
	}
	require.NoError(t, SeedGroups(gdb, groups, zap.NewNop()))
	// second run is a no-op
	require.NoError(t, SeedGroups(gdb, []models.Group{{Title: "Birds", Slug: "birds"}}, zap.NewNop()))

	var count int64
	gdb.Model(&models.Group{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestSeedDemo(t *testing.T) {
	gdb, err := Open(config.DatabaseConfig{Driver: "sqlite", URL: "file::memory:?_foreign_keys=on"}, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, SeedDemo(gdb, 4, 12, zap.NewNop()))

	var users, posts, groups int64
	gdb.Model(&models.User{}).Count(&users)
	gdb.Model(&models.Post{}).Count(&posts)
	gdb.Model(&models.Group{}).Count(&groups)
	assert.Equal(t, int64(4), users)
	assert.Equal(t, int64(12), posts)
	assert.Equal(t, int64(len(DefaultGroups)), groups)

	var selfFollows int64
	gdb.Model(&models.Follow{}).Where("user_id = author_id").Count(&selfFollows)
	assert.Zero(t, selfFollows)
}
