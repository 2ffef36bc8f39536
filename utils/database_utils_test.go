package utils

import (
	"os"
	"testing"

	"github.com/reelspirit/backend/model"
	"github.com/reelspirit/backend/utils/dotenv"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	dotenv.LoadDotEnvsInTests()
	os.Exit(m.Run())
}

func TestCreateTempDB(t *testing.T) {
	db, dbName := CreateTempDB(t)

	exists, err := IsDatabaseExist(dbName)
	assert.Nil(t, err)
	assert.True(t, exists)

	// migration ran, posts table is usable
	var count int64
	assert.Nil(t, db.Model(&model.Post{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestIsDatabaseExist(t *testing.T) {
	exists, err := IsDatabaseExist(os.Getenv("DEFAULT_DB_NAME"))
	assert.Nil(t, err)
	assert.True(t, exists)

	exists, err = IsDatabaseExist("does_not_exist")
	assert.Nil(t, err)
	assert.False(t, exists)
}
