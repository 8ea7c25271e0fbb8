// Package prompt turns a chat context into role-tagged model messages.
package prompt

import (
	"fmt"
	"strings"

	"teamcollab-be/internal/entity"
	"teamcollab-be/pkg/llm"
	"teamcollab-be/pkg/orchestration"
)

// Sender returns the display name of the message author.
func Sender(m *entity.Message) string {
	switch a := m.Author.(type) {
	case entity.AssistantAuthor:
		if a.Name == "" {
			return DefaultAssistantName
		}
		return a.Name
	case entity.UserAuthor:
		if a.Username == "" {
			return DefaultUserName
		}
		return a.Username
	default:
		return DefaultUserName
	}
}

// BuildReply lays out the context, the history without recent, then recent as the last user turn.
func BuildReply(c *orchestration.ChatContext, recent *entity.Message) []llm.Message {
	system := fmt.Sprintf(ContextTemplate, c.Purpose, c.ProjectOverview)
	if r := c.Responder; r != nil && r.Assistant != nil {
		system += fmt.Sprintf(ResponderTemplate, r.Assistant.Name, r.Assistant.ExpertisePrompt)
		if r.Tone != nil && r.Tone.Prompt != "" {
			system += fmt.Sprintf(ToneTemplate, r.Tone.Prompt)
		}
	}

	messages := make([]llm.Message, 0, len(c.Messages)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})

	for _, m := range c.Messages {
		if m.Id == recent.Id {
			continue
		}
		role := llm.RoleUser
		if m.IsAssistant() {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: m.Content})
	}

	return append(messages, llm.Message{Role: llm.RoleUser, Content: recent.Content})
}

func BuildTopics(c *orchestration.ChatContext) []llm.Message {
	return withHistory(c,
		llm.Message{Role: llm.RoleSystem, Content: TopicsSystemPrompt},
		llm.Message{Role: llm.RoleUser, Content: fmt.Sprintf(TopicsUserTemplate, c.Purpose, c.ProjectOverview)},
	)
}

func BuildTopicSummaries(c *orchestration.ChatContext) []llm.Message {
	return withHistory(c,
		llm.Message{Role: llm.RoleSystem, Content: TopicSummariesSystemPrompt},
		llm.Message{Role: llm.RoleUser, Content: fmt.Sprintf(TopicSummariesUserTemplate, c.Purpose, c.ProjectOverview)},
	)
}

func BuildAssistantSummaries(c *orchestration.ChatContext) []llm.Message {
	var roster strings.Builder
	roster.WriteString(AssistantsHeader)
	for _, a := range c.Assistants {
		roster.WriteString(fmt.Sprintf(AssistantLineTemplate, a.Name, a.Expertise))
	}

	return withHistory(c,
		llm.Message{Role: llm.RoleSystem, Content: AssistantSummariesSystemPrompt},
		llm.Message{Role: llm.RoleUser, Content: fmt.Sprintf(AssistantSummariesUserTemplate, c.Purpose, c.ProjectOverview, roster.String())},
	)
}

// withHistory appends every context message as a "sender: content" user turn.
func withHistory(c *orchestration.ChatContext, head ...llm.Message) []llm.Message {
	messages := make([]llm.Message, 0, len(head)+len(c.Messages))
	messages = append(messages, head...)
	for _, m := range c.Messages {
		messages = append(messages, llm.Message{
			Role:    llm.RoleUser,
			Content: fmt.Sprintf(HistoryLineTemplate, Sender(m), m.Content),
		})
	}
	return messages
}
