package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"lunchbox/internal/domain"
)

const maxTaskSuggestions = 3

const taskPromptTemplate = `Based on this user input: "%s", suggest 2-3 specific, actionable tasks that would help them. Format as a simple list.`

// SuggestTasks pide tareas concretas para el texto del usuario y devuelve como mucho tres.
// Si el cliente respondio con un texto de disculpa no hay tareas.
func SuggestTasks(ctx context.Context, client ChatClient, input string) []string {
	if client == nil || strings.TrimSpace(input) == "" {
		return []string{}
	}
	reply := client.Chat(ctx, []domain.ChatMessage{{
		Role:    domain.RoleUser,
		Content: fmt.Sprintf(taskPromptTemplate, strings.TrimSpace(input)),
	}})
	if IsFallbackReply(reply) {
		return []string{}
	}
	return parseTaskList(reply)
}

// IsFallbackReply indica si el texto es uno de los reemplazos de error de Chat.
func IsFallbackReply(reply string) bool {
	return reply == ApologyMessage || reply == EmptyReplyMessage
}

var listMarker = regexp.MustCompile(`^(?:[-*•]+|\d+[.)])\s*`)

// parseTaskList toma una linea por tarea, sin viñetas, numeracion ni fences de markdown.
func parseTaskList(reply string) []string {
	reply = strings.TrimPrefix(strings.TrimSpace(reply), "\uFEFF")
	tasks := make([]string, 0, maxTaskSuggestions)
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "```") {
			continue
		}
		line = strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		tasks = append(tasks, line)
		if len(tasks) == maxTaskSuggestions {
			break
		}
	}
	return tasks
}
