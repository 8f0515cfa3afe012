package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/socialchat/backend/internal/models"
)

var ErrProfileNotFound = errors.New("profile not found")

// UpdateProfileRequest carries the mutable profile fields. Pointer fields
// distinguish "not provided" from zero values on partial updates.
type UpdateProfileRequest struct {
	FirstName        *string `json:"first_name"`
	LastName         *string `json:"last_name"`
	Caption          *string `json:"caption"`
	About            *string `json:"about"`
	ProfilePictureID *uint   `json:"profile_picture_id"`
}

// ProfileResult is a search hit: the profile plus the viewer-relative
// unseen message count and the live presence flag.
type ProfileResult struct {
	models.UserProfile
	Unseen   int64 `json:"unseen"`
	IsOnline bool  `json:"is_online"`
}

// ProfileService handles user profile operations
type ProfileService struct {
	db       *gorm.DB
	presence *PresenceService
}

// NewProfileService creates a new ProfileService instance
func NewProfileService(db *gorm.DB, presence *PresenceService) *ProfileService {
	return &ProfileService{
		db:       db,
		presence: presence,
	}
}

// CreateOrUpdate upserts the profile owned by userID.
func (s *ProfileService) CreateOrUpdate(userID uint, req *UpdateProfileRequest) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := s.db.Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = models.UserProfile{UserID: userID}
	} else if err != nil {
		return nil, err
	}

	applyProfileUpdate(&profile, req)

	if err := s.db.Save(&profile).Error; err != nil {
		return nil, err
	}
	return s.Get(profile.ID)
}

// Update applies a partial update to an existing profile. Only the owning
// user may modify it.
func (s *ProfileService) Update(profileID, callerID uint, req *UpdateProfileRequest) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := s.db.First(&profile, profileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	if profile.UserID != callerID {
		return nil, ErrForbidden
	}

	applyProfileUpdate(&profile, req)

	if err := s.db.Save(&profile).Error; err != nil {
		return nil, err
	}
	return s.Get(profile.ID)
}

// Get retrieves a profile by id with its user and picture loaded.
func (s *ProfileService) Get(profileID uint) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := s.db.Preload("User").Preload("ProfilePicture").First(&profile, profileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Search matches profiles against a keyword. The keyword splits on
// whitespace except inside double quotes; every token must match at least
// one of username, first name, last name or email as a case-insensitive
// substring. Each hit carries the number of unread messages from that
// profile's user to the viewer, recomputed per request.
func (s *ProfileService) Search(ctx context.Context, keyword string, viewerID uint) ([]ProfileResult, error) {
	tokens := SplitKeyword(keyword)

	query := s.db.Model(&models.UserProfile{}).
		Joins("JOIN users ON users.id = user_profiles.user_id").
		Preload("User").
		Preload("ProfilePicture")

	for _, token := range tokens {
		pattern := "%" + escapeLike(strings.ToLower(token)) + "%"
		query = query.Where(
			`LOWER(users.username) LIKE ? ESCAPE '\' OR LOWER(user_profiles.first_name) LIKE ? ESCAPE '\' OR LOWER(user_profiles.last_name) LIKE ? ESCAPE '\' OR LOWER(users.email) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern, pattern,
		)
	}

	var profiles []models.UserProfile
	if err := query.Distinct("user_profiles.*").Find(&profiles).Error; err != nil {
		return nil, err
	}

	results := make([]ProfileResult, 0, len(profiles))
	for _, profile := range profiles {
		var unseen int64
		err := s.db.Model(&models.Message{}).
			Where("sender_id = ? AND receiver_id = ? AND is_read = ?", profile.UserID, viewerID, false).
			Count(&unseen).Error
		if err != nil {
			return nil, err
		}
		results = append(results, ProfileResult{
			UserProfile: profile,
			Unseen:      unseen,
			IsOnline:    s.presence.IsOnline(ctx, profile.UserID),
		})
	}
	return results, nil
}

// likeEscaper neutralizes LIKE metacharacters so tokens match as literal
// substrings.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// SplitKeyword tokenizes a search keyword on whitespace, keeping
// double-quoted phrases together as single tokens.
func SplitKeyword(keyword string) []string {
	var tokens []string
	var current strings.Builder
	inQuotes := false

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range keyword {
		switch {
		case r == '"':
			if inQuotes {
				flush()
			}
			inQuotes = !inQuotes
		case !inQuotes && (r == ' ' || r == '\t' || r == '\n'):
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return tokens
}

func applyProfileUpdate(profile *models.UserProfile, req *UpdateProfileRequest) {
	if req.FirstName != nil {
		profile.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		profile.LastName = *req.LastName
	}
	if req.Caption != nil {
		profile.Caption = *req.Caption
	}
	if req.About != nil {
		profile.About = *req.About
	}
	if req.ProfilePictureID != nil {
		profile.ProfilePictureID = req.ProfilePictureID
	}
}
