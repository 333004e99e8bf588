package domain

import "time"

type Interests struct {
	Sports         bool     `json:"sports"`
	Socializing    bool     `json:"socializing"`
	Gaming         bool     `json:"gaming"`
	OtherInterests []string `json:"other_interests"`
}

// UserProfile es el unico perfil local de un cliente.
// OnboardingComplete=true implica que los tres flags de Interests fueron definidos.
type UserProfile struct {
	Email              string    `json:"email,omitempty"`
	ExternalID         string    `json:"external_id,omitempty"`
	Interests          Interests `json:"interests"`
	OnboardingComplete bool      `json:"onboarding_complete"`
	CreatedAt          time.Time `json:"created_at"`
	LastActive         time.Time `json:"last_active"`
}

// ProfileUpdate describe un merge superficial: solo se aplican los campos no nil.
type ProfileUpdate struct {
	Email              *string
	ExternalID         *string
	Interests          *Interests
	OnboardingComplete *bool
}

// ConnectionKind identifica que dato de una cuenta externa se guarda en el perfil.
type ConnectionKind string

const (
	ConnectionEmail    ConnectionKind = "email"
	ConnectionExternal ConnectionKind = "external"
)
