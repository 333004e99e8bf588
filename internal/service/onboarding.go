package service

import (
	"strings"

	"lunchbox/internal/domain"
)

// OnboardingStep es el estado explicito del dialogo de bienvenida.
// El valor cero no es un paso valido y cae en la pregunta inicial.
type OnboardingStep int

const (
	StepUnknown OnboardingStep = iota
	StepSports
	StepSocializing
	StepGaming
	StepOther
	StepDone
)

func (s OnboardingStep) String() string {
	switch s {
	case StepSports:
		return "sports"
	case StepSocializing:
		return "socializing"
	case StepGaming:
		return "gaming"
	case StepOther:
		return "other"
	case StepDone:
		return "done"
	default:
		return "unknown"
	}
}

// OnboardingReply es el resultado de una transicion.
type OnboardingReply struct {
	Text      string
	Interests domain.Interests
	Complete  bool
	Next      OnboardingStep
}

var affirmatives = []string{"yes", "yeah", "sure"}

// isAffirmative busca por substring, asi que "yesterday" cuenta como si.
func isAffirmative(input string) bool {
	lower := strings.ToLower(input)
	for _, word := range affirmatives {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// NextOnboarding es la funcion de transicion. No tiene efectos.
// Desde el paso de sociabilidad sports queda en true sin importar la primera respuesta.
func NextOnboarding(step OnboardingStep, input string) OnboardingReply {
	yes := isAffirmative(input)
	switch step {
	case StepSports:
		text := "Got it. Do you like to go out with friends?"
		if yes {
			text = "Cool! Do you like to go out with friends?"
		}
		return OnboardingReply{
			Text:      text,
			Interests: domain.Interests{Sports: yes, OtherInterests: []string{}},
			Next:      StepSocializing,
		}
	case StepSocializing:
		text := "Got it. Do you play games with friends?"
		if yes {
			text = "Nice! Do you play games with friends?"
		}
		return OnboardingReply{
			Text:      text,
			Interests: domain.Interests{Sports: true, Socializing: yes, OtherInterests: []string{}},
			Next:      StepGaming,
		}
	case StepGaming:
		return OnboardingReply{
			Text:      "Anything else you like?",
			Interests: domain.Interests{Sports: true, Socializing: true, Gaming: yes, OtherInterests: []string{}},
			Next:      StepOther,
		}
	case StepOther:
		return OnboardingReply{
			Text:      "Got it! What's on your plate today?",
			Interests: domain.Interests{Sports: true, Socializing: true, Gaming: true, OtherInterests: []string{input}},
			Complete:  true,
			Next:      StepDone,
		}
	default:
		return OnboardingReply{
			Text:      "Do you play sports?",
			Interests: domain.Interests{OtherInterests: []string{}},
			Next:      StepSports,
		}
	}
}
