package prompt_test

import (
	"strings"
	"testing"

	"teamcollab-be/internal/entity"
	"teamcollab-be/pkg/llm"
	"teamcollab-be/pkg/orchestration"
	"teamcollab-be/pkg/orchestration/prompt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userMsg(id int64, name, content string) *entity.Message {
	return &entity.Message{Id: id, Content: content, Author: entity.UserAuthor{UserId: 1, Username: name}}
}

func assistantMsg(id int64, name, content string) *entity.Message {
	return &entity.Message{Id: id, Content: content, Author: entity.AssistantAuthor{AssistantId: 9, Name: name}}
}

func newContext(messages ...*entity.Message) *orchestration.ChatContext {
	return &orchestration.ChatContext{
		Purpose:         "Plan the launch",
		ProjectOverview: "Ship the lunar lander",
		Messages:        messages,
		Assistants: []*entity.Assistant{
			{Id: 9, Name: "Nova", Expertise: "Rocketry"},
			{Id: 10, Name: "Orbit", Expertise: "Navigation"},
		},
	}
}

func TestSender(t *testing.T) {
	tests := []struct {
		name    string
		message *entity.Message
		want    string
	}{
		{"assistant with name", assistantMsg(1, "Nova", ""), "Nova"},
		{"assistant without name", assistantMsg(1, "", ""), "Assistant"},
		{"user with name", userMsg(1, "alice", ""), "alice"},
		{"user without name", userMsg(1, "", ""), "User"},
		{"no author", &entity.Message{Id: 1}, "User"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, prompt.Sender(tt.message))
		})
	}
}

func TestBuildReply_SkipsRecentAndAppendsItLast(t *testing.T) {
	m1 := userMsg(1, "alice", "What fuel should we use?")
	m2 := assistantMsg(2, "Nova", "Liquid hydrogen.")
	m3 := userMsg(3, "alice", "How much of it?")

	got := prompt.BuildReply(newContext(m1, m2, m3), m2)

	require.Len(t, got, 4)
	assert.Equal(t, llm.Message{Role: llm.RoleSystem, Content: "Conversation Purpose: Plan the launch\nProject Overview: Ship the lunar lander"}, got[0])
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: m1.Content}, got[1])
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: m3.Content}, got[2])
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: m2.Content}, got[3])

	occurrences := 0
	for _, m := range got {
		if m.Content == m2.Content {
			occurrences++
		}
	}
	assert.Equal(t, 1, occurrences)
}

func TestBuildReply_AssistantHistoryBecomesAssistantTurns(t *testing.T) {
	m1 := userMsg(1, "alice", "Hi")
	m2 := assistantMsg(2, "Nova", "Hello")
	m3 := userMsg(3, "alice", "Status?")

	got := prompt.BuildReply(newContext(m1, m2, m3), m3)

	require.Len(t, got, 4)
	assert.Equal(t, llm.RoleUser, got[1].Role)
	assert.Equal(t, llm.RoleAssistant, got[2].Role)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "Status?"}, got[3])
}

func TestBuildReply_IncludesResponderPersona(t *testing.T) {
	recent := userMsg(1, "alice", "Go/no-go?")
	c := newContext(recent).WithResponder(orchestration.Responder{
		Assistant: &entity.Assistant{Name: "Nova", ExpertisePrompt: "You know rockets."},
		Tone:      &entity.AssistantTone{Prompt: "Be brief."},
	})

	got := prompt.BuildReply(c, recent)

	require.Len(t, got, 2)
	assert.True(t, strings.HasPrefix(got[0].Content, "Conversation Purpose: Plan the launch\nProject Overview: Ship the lunar lander"))
	assert.Contains(t, got[0].Content, "You are Nova. You know rockets.")
	assert.Contains(t, got[0].Content, "Tone: Be brief.")
}

func TestBuildTopics(t *testing.T) {
	got := prompt.BuildTopics(newContext(userMsg(1, "alice", "Fuel?"), assistantMsg(2, "", "Hydrogen")))

	require.Len(t, got, 4)
	assert.Equal(t, llm.Message{Role: llm.RoleSystem, Content: prompt.TopicsSystemPrompt}, got[0])
	assert.Equal(t, "Conversation Purpose: Plan the launch\nProject Overview: Ship the lunar lander\n\n"+
		"Please analyze the following conversation and extract the main topics and key points:", got[1].Content)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "alice: Fuel?"}, got[2])
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "Assistant: Hydrogen"}, got[3])
}

func TestBuildTopicSummaries(t *testing.T) {
	got := prompt.BuildTopicSummaries(newContext(userMsg(1, "alice", "Fuel?")))

	require.Len(t, got, 3)
	assert.Equal(t, prompt.TopicSummariesSystemPrompt, got[0].Content)
	assert.True(t, strings.HasSuffix(got[1].Content, "Please summarize the following conversation by topic:"))
	assert.Equal(t, "alice: Fuel?", got[2].Content)
}

func TestBuildAssistantSummaries(t *testing.T) {
	got := prompt.BuildAssistantSummaries(newContext(assistantMsg(1, "Nova", "Use hydrogen")))

	require.Len(t, got, 3)
	assert.Equal(t, prompt.AssistantSummariesSystemPrompt, got[0].Content)
	assert.Equal(t, "Conversation Purpose: Plan the launch\nProject Overview: Ship the lunar lander\n\n"+
		"Assistants in this conversation:\n- Nova: Rocketry\n- Orbit: Navigation\n\n\n"+
		"Please summarize the contributions of each assistant:", got[1].Content)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "Nova: Use hydrogen"}, got[2])
}
