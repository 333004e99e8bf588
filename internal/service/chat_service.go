package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lunchbox/internal/domain"
	"lunchbox/internal/llm"
	"lunchbox/internal/music"
)

var ErrEmptyMessage = errors.New("message text is empty")

const (
	greetingReturning  = "Welcome back! What's on your plate today?"
	greetingNew        = "Hey! I'm your Lunchbox.ai buddy. Let me get to know you first. Do you play sports?"
	onboardingFinished = "Perfect! Now what's on your plate today?"
	onboardingRetry    = "Sorry, I couldn't save your answers. Let's try that again."

	musicNotConnected = "Connect your Spotify account and I can suggest some music for that."
	musicWrongAccount = "You're signed in with Google, but music needs Spotify. Connect your Spotify account to get suggestions."
	musicNoResults    = "I couldn't find any tracks for that. Try another vibe?"
	musicFailed       = "Sorry, I couldn't get music suggestions right now."
	musicHeader       = "Here are some tracks for you:"
)

// MusicSuggester busca tracks para el texto libre del usuario.
type MusicSuggester interface {
	Suggest(ctx context.Context, tok domain.ProviderToken, input string) ([]domain.Track, error)
}

// MusicTokenSource entrega el token de musica de un cliente.
type MusicTokenSource interface {
	MusicToken(ctx context.Context, clientID string) (domain.ProviderToken, error)
}

// ChatService orquesta cada turno: onboarding, sugerencias de musica y completion.
type ChatService struct {
	logger   *zap.Logger
	profiles *ProfileService
	llm      llm.ChatClient
	music    MusicSuggester
	tokens   MusicTokenSource
	convs    *conversationStore
	now      func() time.Time
}

func NewChatService(profiles *ProfileService, chat llm.ChatClient, suggester MusicSuggester, tokens MusicTokenSource, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		logger:   logger,
		profiles: profiles,
		llm:      chat,
		music:    suggester,
		tokens:   tokens,
		convs:    newConversationStore(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start reinicia la conversacion del cliente y devuelve el saludo.
func (s *ChatService) Start(ctx context.Context, clientID string) []domain.Message {
	conv := s.convs.reset(clientID)

	text := greetingNew
	step := StepSports
	if s.profiles.IsOnboardingComplete(ctx, clientID) {
		text = greetingReturning
		step = StepDone
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()
	conv.step = step
	conv.interests = domain.Interests{OtherInterests: []string{}}
	greeting := s.newMessage(text, domain.SenderAssistant, nil)
	conv.messages = append(conv.messages, greeting)
	return []domain.Message{greeting}
}

// Send procesa un mensaje del usuario y devuelve los mensajes agregados en este turno.
func (s *ChatService) Send(ctx context.Context, clientID, text string) ([]domain.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}
	conv := s.convs.get(clientID)

	userMsg := s.newMessage(text, domain.SenderUser, nil)
	conv.mu.Lock()
	conv.messages = append(conv.messages, userMsg)
	history := toChatHistory(conv.messages)
	step := conv.step
	conv.mu.Unlock()

	added := []domain.Message{userMsg}

	if !s.profiles.IsOnboardingComplete(ctx, clientID) {
		return append(added, s.onboardingTurn(ctx, clientID, conv, step, text)...), nil
	}

	if music.IsMusicRequest(text) {
		msg := s.musicTurn(ctx, clientID, text)
		conv.append(msg)
		added = append(added, msg)
	}

	conv.setTyping(true)
	reply := s.llm.Chat(ctx, history)
	conv.setTyping(false)

	replyMsg := s.newMessage(reply, domain.SenderAssistant, nil)
	conv.append(replyMsg)
	return append(added, replyMsg), nil
}

func (s *ChatService) onboardingTurn(ctx context.Context, clientID string, conv *conversation, step OnboardingStep, text string) []domain.Message {
	reply := NextOnboarding(step, text)

	conv.mu.Lock()
	conv.step = reply.Next
	conv.interests = reply.Interests
	conv.mu.Unlock()

	added := []domain.Message{s.newMessage(reply.Text, domain.SenderAssistant, nil)}
	conv.append(added[0])
	if !reply.Complete {
		return added
	}

	if _, err := s.profiles.CompleteOnboarding(ctx, clientID, reply.Interests); err != nil {
		s.logger.Error("complete onboarding failed", zap.String("client_id", clientID), zap.Error(err))
		conv.mu.Lock()
		conv.step = StepUnknown
		conv.mu.Unlock()
		retry := s.newMessage(onboardingRetry, domain.SenderAssistant, nil)
		conv.append(retry)
		return append(added, retry)
	}
	s.logger.Info("onboarding completed", zap.String("client_id", clientID))
	done := s.newMessage(onboardingFinished, domain.SenderAssistant, nil)
	conv.append(done)
	return append(added, done)
}

// musicTurn arma el mensaje de sugerencias. Los errores se vuelven texto para el usuario.
func (s *ChatService) musicTurn(ctx context.Context, clientID, text string) domain.Message {
	if s.music == nil || s.tokens == nil {
		return s.newMessage(musicNotConnected, domain.SenderAssistant, nil)
	}

	tok, err := s.tokens.MusicToken(ctx, clientID)
	if err == nil {
		var tracks []domain.Track
		tracks, err = s.music.Suggest(ctx, tok, text)
		if err == nil {
			if len(tracks) == 0 {
				return s.newMessage(musicNoResults, domain.SenderAssistant, nil)
			}
			return s.newMessage(formatTracks(tracks), domain.SenderAssistant, tracks)
		}
	}

	switch {
	case errors.Is(err, domain.ErrWrongProviderToken):
		return s.newMessage(musicWrongAccount, domain.SenderAssistant, nil)
	case errors.Is(err, domain.ErrNotAuthenticated):
		return s.newMessage(musicNotConnected, domain.SenderAssistant, nil)
	default:
		s.logger.Warn("music suggestions failed", zap.String("query", music.QueryFor(text)), zap.Error(err))
		return s.newMessage(musicFailed, domain.SenderAssistant, nil)
	}
}

// SuggestTasks propone hasta tres tareas para el texto del usuario.
func (s *ChatService) SuggestTasks(ctx context.Context, text string) []string {
	return llm.SuggestTasks(ctx, s.llm, text)
}

// Messages devuelve una copia de la conversacion y si hay una respuesta en curso.
func (s *ChatService) Messages(clientID string) ([]domain.Message, bool) {
	conv, ok := s.convs.lookup(clientID)
	if !ok {
		return []domain.Message{}, false
	}
	conv.mu.Lock()
	defer conv.mu.Unlock()
	return append([]domain.Message{}, conv.messages...), conv.typing > 0
}

func (s *ChatService) Typing(clientID string) bool {
	_, typing := s.Messages(clientID)
	return typing
}

// OnboardingState expone el paso actual y los intereses parciales del dialogo.
func (s *ChatService) OnboardingState(clientID string) (OnboardingStep, domain.Interests) {
	conv, ok := s.convs.lookup(clientID)
	if !ok {
		return StepUnknown, domain.Interests{OtherInterests: []string{}}
	}
	conv.mu.Lock()
	defer conv.mu.Unlock()
	return conv.step, conv.interests
}

func (s *ChatService) Reset(clientID string) {
	s.convs.remove(clientID)
}

func (s *ChatService) newMessage(text string, sender domain.Sender, tracks []domain.Track) domain.Message {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return domain.Message{
		ID:        id.String(),
		Text:      text,
		Sender:    sender,
		Tracks:    tracks,
		Timestamp: s.now(),
	}
}

func toChatHistory(messages []domain.Message) []domain.ChatMessage {
	out := make([]domain.ChatMessage, 0, len(messages))
	for _, m := range messages {
		role := domain.RoleAssistant
		if m.Sender == domain.SenderUser {
			role = domain.RoleUser
		}
		out = append(out, domain.ChatMessage{Role: role, Content: m.Text})
	}
	return out
}

func formatTracks(tracks []domain.Track) string {
	var b strings.Builder
	b.WriteString(musicHeader)
	for _, t := range tracks {
		fmt.Fprintf(&b, "\n%s - %s", t.Name, t.Artist)
	}
	return b.String()
}

type conversation struct {
	mu        sync.Mutex
	messages  []domain.Message
	step      OnboardingStep
	interests domain.Interests
	typing    int
}

func (c *conversation) append(msg domain.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

func (c *conversation) setTyping(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if on {
		c.typing++
	} else if c.typing > 0 {
		c.typing--
	}
}

// conversationStore guarda las conversaciones en memoria; se pierden al reiniciar.
type conversationStore struct {
	mu    sync.Mutex
	items map[string]*conversation
}

func newConversationStore() *conversationStore {
	return &conversationStore{items: make(map[string]*conversation)}
}

func (s *conversationStore) get(clientID string) *conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.items[clientID]
	if !ok {
		conv = &conversation{interests: domain.Interests{OtherInterests: []string{}}}
		s.items[clientID] = conv
	}
	return conv
}

func (s *conversationStore) lookup(clientID string) (*conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.items[clientID]
	return conv, ok
}

func (s *conversationStore) reset(clientID string) *conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv := &conversation{}
	s.items[clientID] = conv
	return conv
}

func (s *conversationStore) remove(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, clientID)
}
