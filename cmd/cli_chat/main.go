package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"lunchbox/internal/config"
	"lunchbox/internal/domain"
	"lunchbox/internal/llm"
	"lunchbox/internal/service"
	"lunchbox/internal/storage"
)

const cliClientID = "cli"

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	// La CLI no emite cookies, el secreto solo satisface la validacion.
	if os.Getenv("SESSION_SECRET") == "" {
		_ = os.Setenv("SESSION_SECRET", uuid.NewString())
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	store := storage.NewMemoryStore(0)
	profileSvc := service.NewProfileService(store, logger)
	llmClient := llm.NewHTTPClient(cfg.GroqBaseURL, cfg.GroqAPIKey, cfg.GroqModel, logger)
	chatSvc := service.NewChatService(profileSvc, llmClient, nil, nil, logger)

	fmt.Println("===== Lunchbox.ai =====")
	fmt.Println("Comandos: /tareas <texto>, /perfil, /reiniciar, salir")
	printMessages(chatSvc.Start(ctx, cliClientID))

	for {
		fmt.Print("Tu > ")
		text, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		text = strings.TrimSpace(text)

		switch {
		case text == "":
			continue
		case strings.EqualFold(text, "salir"):
			return
		case text == "/reiniciar":
			printMessages(chatSvc.Start(ctx, cliClientID))
		case text == "/perfil":
			printProfile(profileSvc.Load(ctx, cliClientID))
		case strings.HasPrefix(text, "/tareas"):
			tasks := chatSvc.SuggestTasks(ctx, strings.TrimSpace(strings.TrimPrefix(text, "/tareas")))
			if len(tasks) == 0 {
				fmt.Println("(sin tareas sugeridas)")
			}
			for i, task := range tasks {
				fmt.Printf("  %d. %s\n", i+1, task)
			}
		default:
			added, err := chatSvc.Send(ctx, cliClientID, text)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			printMessages(added)
		}
	}
}

func printMessages(msgs []domain.Message) {
	for _, m := range msgs {
		if m.Sender == domain.SenderAssistant {
			fmt.Printf("Lunchbox > %s\n", m.Text)
		}
	}
}

func printProfile(p *domain.UserProfile) {
	if p == nil {
		fmt.Println("(sin perfil, termina el onboarding primero)")
		return
	}
	fmt.Printf("sports=%v socializing=%v gaming=%v otros=%v onboarding=%v\n",
		p.Interests.Sports, p.Interests.Socializing, p.Interests.Gaming,
		p.Interests.OtherInterests, p.OnboardingComplete)
}
