package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"lunchbox/internal/domain"
	"lunchbox/internal/storage"
)

var ErrProfileInvalidInput = errors.New("profile invalid input")

// ProfileService maneja el perfil local de cada cliente sobre un unico slot de storage.
type ProfileService struct {
	store  storage.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewProfileService(store storage.Store, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Load devuelve nil si no hay perfil o si el guardado no se puede leer.
func (s *ProfileService) Load(ctx context.Context, clientID string) *domain.UserProfile {
	raw, err := s.store.Get(ctx, clientID, storage.KeyUserProfile)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("load profile failed", zap.String("client_id", clientID), zap.Error(err))
		}
		return nil
	}
	var profile domain.UserProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		s.logger.Warn("parse profile failed", zap.String("client_id", clientID), zap.Error(err))
		return nil
	}
	return &profile
}

// Save pisa el slot con el perfil y actualiza LastActive.
func (s *ProfileService) Save(ctx context.Context, clientID string, profile domain.UserProfile) (*domain.UserProfile, error) {
	now := s.now()
	profile.LastActive = now
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	if profile.Interests.OtherInterests == nil {
		profile.Interests.OtherInterests = []string{}
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}
	if err := s.store.Set(ctx, clientID, storage.KeyUserProfile, string(raw)); err != nil {
		s.logger.Error("save profile failed", zap.String("client_id", clientID), zap.Error(err))
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return &profile, nil
}

// Update aplica los campos no nil sobre el perfil existente. Sin perfil devuelve nil, nil.
func (s *ProfileService) Update(ctx context.Context, clientID string, upd domain.ProfileUpdate) (*domain.UserProfile, error) {
	current := s.Load(ctx, clientID)
	if current == nil {
		return nil, nil
	}
	if upd.Email != nil {
		current.Email = *upd.Email
	}
	if upd.ExternalID != nil {
		current.ExternalID = *upd.ExternalID
	}
	if upd.Interests != nil {
		current.Interests = *upd.Interests
	}
	if upd.OnboardingComplete != nil {
		current.OnboardingComplete = *upd.OnboardingComplete
	}
	return s.Save(ctx, clientID, *current)
}

// CompleteOnboarding crea un perfil nuevo con el onboarding terminado.
func (s *ProfileService) CompleteOnboarding(ctx context.Context, clientID string, interests domain.Interests) (*domain.UserProfile, error) {
	interests.OtherInterests = append([]string{}, interests.OtherInterests...)
	return s.Save(ctx, clientID, domain.UserProfile{
		Interests:          interests,
		OnboardingComplete: true,
		CreatedAt:          s.now(),
	})
}

func (s *ProfileService) Clear(ctx context.Context, clientID string) error {
	if err := s.store.Delete(ctx, clientID, storage.KeyUserProfile); err != nil {
		return fmt.Errorf("clear profile: %w", err)
	}
	return nil
}

// AddConnection guarda el email o el id externo de una cuenta conectada.
func (s *ProfileService) AddConnection(ctx context.Context, clientID string, kind domain.ConnectionKind, value string) (*domain.UserProfile, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, ErrProfileInvalidInput
	}
	switch kind {
	case domain.ConnectionEmail:
		return s.Update(ctx, clientID, domain.ProfileUpdate{Email: &value})
	case domain.ConnectionExternal:
		return s.Update(ctx, clientID, domain.ProfileUpdate{ExternalID: &value})
	default:
		return nil, ErrProfileInvalidInput
	}
}

func (s *ProfileService) IsOnboardingComplete(ctx context.Context, clientID string) bool {
	profile := s.Load(ctx, clientID)
	return profile != nil && profile.OnboardingComplete
}

// Interests devuelve nil si no hay perfil.
func (s *ProfileService) Interests(ctx context.Context, clientID string) *domain.Interests {
	profile := s.Load(ctx, clientID)
	if profile == nil {
		return nil
	}
	return &profile.Interests
}
