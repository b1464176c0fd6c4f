package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/kwamebb/devRecruit-sub001/internal/constants"
	"github.com/kwamebb/devRecruit-sub001/internal/models"
	"github.com/kwamebb/devRecruit-sub001/internal/monitor"
	"github.com/kwamebb/devRecruit-sub001/internal/repository"
	"github.com/kwamebb/devRecruit-sub001/internal/utils"
	"github.com/kwamebb/devRecruit-sub001/internal/validation"
)

// ProfileService handles profile reads, onboarding, and profile updates.
// Every string a user controls passes through the validation engine's
// security screen before the domain rules see it.
type ProfileService struct {
	profileRepo repository.ProfileRepository
	engine      *validation.Engine
	mon         *monitor.Monitor
}

// NewProfileService creates a new ProfileService.
func NewProfileService(profileRepo repository.ProfileRepository, engine *validation.Engine, mon *monitor.Monitor) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		engine:      engine,
		mon:         mon,
	}
}

// GetProfile returns a user's own profile.
func (s *ProfileService) GetProfile(ctx context.Context, id int64) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// GetPublicProfile returns the privacy-filtered view of a profile. Profiles
// that are private, or whose account is not active, report not found so the
// response does not reveal whether the username exists.
func (s *ProfileService) GetPublicProfile(ctx context.Context, username string) (*models.PublicProfile, error) {
	profile, err := s.profileRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if profile.AccountStatus != constants.AccountStatusActive {
		return nil, utils.NewNotFoundError("Profile", username)
	}

	view := profile.PublicView()
	if view == nil {
		return nil, utils.NewNotFoundError("Profile", username)
	}
	return view, nil
}

// CompleteOnboarding runs the one-shot onboarding flow: the username is
// claimed, the identity fields are validated and stored, and the profile is
// marked onboarded. Running it twice is a conflict.
func (s *ProfileService) CompleteOnboarding(ctx context.Context, userID int64, req *models.OnboardingRequest) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.OnboardingCompleted {
		return nil, utils.NewConflictError("Onboarding has already been completed")
	}

	username, err := s.screenInput(userID, "username", req.Username)
	if err != nil {
		return nil, err
	}
	fullName, err := s.screenInput(userID, "full_name", req.FullName)
	if err != nil {
		return nil, err
	}

	username = strings.ToLower(username)
	fieldErrors := make(map[string]string)
	collect := func(field string, res validation.Result) {
		if !res.IsValid {
			fieldErrors[field] = strings.Join(res.Errors, "; ")
		}
	}
	collect("username", validation.ValidateUsername(username))
	collect("full_name", validation.ValidateFullName(fullName))
	collect("age", validation.ValidateAge(req.Age))
	collect("education_status", validation.ValidateEducationStatus(req.EducationStatus))
	collect("coding_languages", validation.ValidateCodingLanguages(req.CodingLanguages))
	if len(fieldErrors) > 0 {
		return nil, utils.NewValidationErrorWithDetails("Validation failed", fieldErrors)
	}

	exists, err := s.profileRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username availability: %w", err)
	}
	if exists {
		return nil, utils.NewDuplicateError("Profile", "username", username)
	}

	profile.Username = username
	profile.FullName = validation.FormatFullName(fullName)
	profile.Age = req.Age
	profile.EducationStatus = req.EducationStatus
	profile.CodingLanguages = trimEach(req.CodingLanguages)
	profile.OnboardingCompleted = true

	// The unique index backs up the availability pre-check, so a racing
	// claim of the same username surfaces here as a duplicate.
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	log.Info().
		Int64("user_id", userID).
		Str("username", username).
		Msg("Onboarding completed")

	return profile, nil
}

// UpdateProfile applies a partial profile update. Only fields present in the
// update are touched; each one is screened and validated before anything is
// written.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID int64, update *models.ProfileUpdate) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	fieldErrors := make(map[string]string)
	sanitized := &models.ProfileUpdate{}

	if update.FullName != nil {
		value, err := s.screenInput(userID, "full_name", *update.FullName)
		if err != nil {
			return nil, err
		}
		if res := validation.ValidateFullName(value); !res.IsValid {
			fieldErrors["full_name"] = strings.Join(res.Errors, "; ")
		} else {
			formatted := validation.FormatFullName(value)
			sanitized.FullName = &formatted
		}
	}

	if update.AboutMe != nil {
		value, err := s.screenInput(userID, "about_me", *update.AboutMe)
		if err != nil {
			return nil, err
		}
		if res := validation.ValidateAboutMe(value); !res.IsValid {
			fieldErrors["about_me"] = strings.Join(res.Errors, "; ")
		} else {
			sanitized.AboutMe = &value
		}
	}

	if update.EducationStatus != nil {
		if res := validation.ValidateEducationStatus(*update.EducationStatus); !res.IsValid {
			fieldErrors["education_status"] = strings.Join(res.Errors, "; ")
		} else {
			sanitized.EducationStatus = update.EducationStatus
		}
	}

	if update.CodingLanguages != nil {
		if res := validation.ValidateCodingLanguages(update.CodingLanguages); !res.IsValid {
			fieldErrors["coding_languages"] = strings.Join(res.Errors, "; ")
		} else {
			sanitized.CodingLanguages = trimEach(update.CodingLanguages)
		}
	}

	if update.GithubHandle != nil {
		value, err := s.screenInput(userID, "github_handle", *update.GithubHandle)
		if err != nil {
			return nil, err
		}
		if value != "" && !validation.GithubHandlePattern.MatchString(value) {
			fieldErrors["github_handle"] = "Must be a valid GitHub handle"
		} else {
			sanitized.GithubHandle = &value
		}
	}

	if len(fieldErrors) > 0 {
		return nil, utils.NewValidationErrorWithDetails("Validation failed", fieldErrors)
	}

	profile.Apply(sanitized)
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	log.Info().
		Int64("user_id", userID).
		Msg("Profile updated")

	return profile, nil
}

// CheckUsername reports whether a username can be claimed. An invalid or
// reserved username is unavailable with the validation message as the
// reason; availability itself comes from a case-insensitive lookup.
func (s *ProfileService) CheckUsername(ctx context.Context, username string) (bool, string, error) {
	candidate := strings.ToLower(strings.TrimSpace(username))

	if res := validation.ValidateUsername(candidate); !res.IsValid {
		return false, res.Errors[0], nil
	}

	exists, err := s.profileRepo.ExistsByUsername(ctx, candidate)
	if err != nil {
		return false, "", fmt.Errorf("failed to check username availability: %w", err)
	}
	if exists {
		return false, "This username is already taken", nil
	}
	return true, "", nil
}

// screenInput runs a value through the engine's security screen. A
// dangerous-pattern hit records a suspicious_activity security event and
// rejects the field with a generic message; matched suspicious terms are
// recorded at low severity without failing anything. The returned value is
// the sanitized form.
func (s *ProfileService) screenInput(userID int64, field, value string) (string, error) {
	res := s.engine.ValidateField(value, field, validation.Rule{})

	if threats := res.Threats(); len(threats) > 0 {
		s.mon.LogSecurityEvent(monitor.SecuritySuspiciousActivity, monitor.SeverityMedium, map[string]any{
			"user_id":  userID,
			"field":    field,
			"patterns": threats,
		})
		return "", utils.NewValidationError(field, fmt.Sprintf("%s contains invalid characters", field))
	}

	if len(res.Warnings) > 0 {
		s.mon.LogSecurityEvent(monitor.SecuritySuspiciousActivity, monitor.SeverityLow, map[string]any{
			"user_id": userID,
			"field":   field,
			"reason":  "flagged terms",
		})
	}

	return res.SanitizedValue, nil
}

// trimEach returns a copy of the slice with every entry trimmed.
func trimEach(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}
