package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/socialchat/backend/internal/models"
	"github.com/socialchat/backend/internal/service"
	"github.com/socialchat/backend/internal/testhelpers"
)

func strPtr(s string) *string { return &s }

func createUserWithProfile(t *testing.T, db *gorm.DB, username, email, first, last string) *models.User {
	t.Helper()
	user := models.User{Username: username, Email: email, PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&models.UserProfile{
		UserID:    user.ID,
		FirstName: first,
		LastName:  last,
		Caption:   "This is the caption for this account",
		About:     "Full-stack developer",
	}).Error)
	return &user
}

func TestSplitKeyword(t *testing.T) {
	tests := []struct {
		name    string
		keyword string
		want    []string
	}{
		{"single token", "nguyen", []string{"nguyen"}},
		{"two tokens", "nguyen pham", []string{"nguyen", "pham"}},
		{"quoted phrase", `"nguyen pham"`, []string{"nguyen pham"}},
		{"mixed", `dev "nguyen pham" go`, []string{"dev", "nguyen pham", "go"}},
		{"extra whitespace", "  a \t b  ", []string{"a", "b"}},
		{"empty", "", nil},
		{"unbalanced quote", `"nguyen pham`, []string{"nguyen pham"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.SplitKeyword(tt.keyword))
		})
	}
}

func TestCreateOrUpdateProfile(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	profiles := service.NewProfileService(db, service.NewPresenceService(nil))

	user := models.User{Username: "nguyenfamj1", Email: "nguyenfamj1409@gmail.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)

	created, err := profiles.CreateOrUpdate(user.ID, &service.UpdateProfileRequest{
		FirstName: strPtr("Nguyen"),
		LastName:  strPtr("Pham"),
		Caption:   strPtr("Study, study more, study forever"),
		About:     strPtr("Full stack developer"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Nguyen", created.FirstName)
	assert.Equal(t, "nguyenfamj1", created.User.Username)

	// A second call updates the same row rather than creating another.
	updated, err := profiles.CreateOrUpdate(user.ID, &service.UpdateProfileRequest{
		FirstName: strPtr("Cristiano"),
		LastName:  strPtr("Ronaldo"),
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Cristiano", updated.FirstName)
	// Untouched fields survive partial updates.
	assert.Equal(t, "Study, study more, study forever", updated.Caption)

	var count int64
	require.NoError(t, db.Model(&models.UserProfile{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpdateProfileOwnerOnly(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	profiles := service.NewProfileService(db, service.NewPresenceService(nil))

	owner := createUserWithProfile(t, db, "owner", "owner@gmail.com", "Nguyen", "Pham")
	other := createUserWithProfile(t, db, "other", "other@gmail.com", "User2", "Hopkins")

	var profile models.UserProfile
	require.NoError(t, db.Where("user_id = ?", owner.ID).First(&profile).Error)

	_, err := profiles.Update(profile.ID, other.ID, &service.UpdateProfileRequest{
		FirstName: strPtr("Hacked"),
	})
	assert.ErrorIs(t, err, service.ErrForbidden)

	updated, err := profiles.Update(profile.ID, owner.ID, &service.UpdateProfileRequest{
		FirstName: strPtr("Cristiano"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Cristiano", updated.FirstName)
}

func TestSearchProfiles(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	profiles := service.NewProfileService(db, service.NewPresenceService(nil))

	viewer := createUserWithProfile(t, db, "nguyenfamj1", "nguyenfamj1409@gmail.com", "Nguyen", "Pham")
	createUserWithProfile(t, db, "user2", "user2@gmail.com", "User2", "Hopkins")
	createUserWithProfile(t, db, "user3", "user3@gmail.com", "User3", "Stone")

	ctx := context.Background()

	// Unquoted tokens combine with AND across fields.
	results, err := profiles.Search(ctx, "nguyen pham", viewer.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "nguyenfamj1", results[0].User.Username)

	// A quoted phrase must appear as a literal substring in one field;
	// "Nguyen" and "Pham" live in separate fields here.
	results, err = profiles.Search(ctx, `"nguyen pham"`, viewer.ID)
	require.NoError(t, err)
	assert.Empty(t, results)

	createUserWithProfile(t, db, "user4", "user4@gmail.com", "Nguyen Pham", "Jr")
	results, err = profiles.Search(ctx, `"nguyen pham"`, viewer.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "user4", results[0].User.Username)

	// Matching is case-insensitive substring over username too.
	results, err = profiles.Search(ctx, "USER2", viewer.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "user2", results[0].User.Username)
	assert.Equal(t, int64(0), results[0].Unseen)

	// A token matching nothing yields no results even if others match.
	results, err = profiles.Search(ctx, "user2 zzz", viewer.ID)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchLiteralWildcards(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	profiles := service.NewProfileService(db, service.NewPresenceService(nil))

	viewer := createUserWithProfile(t, db, "viewer", "viewer@gmail.com", "View", "Er")
	createUserWithProfile(t, db, "userx1", "userx1@gmail.com", "User", "X")
	createUserWithProfile(t, db, "user_1", "under_score@gmail.com", "User", "Underscore")
	createUserWithProfile(t, db, "percent", "100%legit@gmail.com", "Hundred", "Percent")

	ctx := context.Background()

	// "_" matches only a literal underscore, not any single character.
	results, err := profiles.Search(ctx, "user_1", viewer.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "user_1", results[0].User.Username)

	// "%" matches only a literal percent sign.
	results, err = profiles.Search(ctx, "100%legit", viewer.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "percent", results[0].User.Username)

	results, err = profiles.Search(ctx, "%", viewer.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "percent", results[0].User.Username)
}

func TestSearchUnseenCounts(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	profiles := service.NewProfileService(db, service.NewPresenceService(nil))

	viewer := createUserWithProfile(t, db, "viewer", "viewer@gmail.com", "View", "Er")
	sender := createUserWithProfile(t, db, "sender", "sender@gmail.com", "Send", "Er")

	msgs := []models.Message{
		{SenderID: sender.ID, ReceiverID: viewer.ID, Message: "hi"},
		{SenderID: sender.ID, ReceiverID: viewer.ID, Message: "hello"},
		{SenderID: sender.ID, ReceiverID: viewer.ID, Message: "seen already", IsRead: true},
		{SenderID: viewer.ID, ReceiverID: sender.ID, Message: "outbound, not counted"},
	}
	require.NoError(t, db.Create(&msgs).Error)

	ctx := context.Background()

	results, err := profiles.Search(ctx, "sender", viewer.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(2), results[0].Unseen)

	// The count is recomputed per request, not cached.
	require.NoError(t, db.Model(&models.Message{}).
		Where("id = ?", msgs[0].ID).Update("is_read", true).Error)

	results, err = profiles.Search(ctx, "sender", viewer.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(1), results[0].Unseen)
}
