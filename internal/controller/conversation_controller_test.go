package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"teamcollab-be/internal/dto"
	"teamcollab-be/internal/pkg/serverutils"
	"teamcollab-be/internal/service"
	"teamcollab-be/pkg/orchestration"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConversationService struct {
	service.IConversationService

	posted  []string
	muted   *bool
	added   []int64
	removed []int64
	tone    string
	err     error
}

func (f *fakeConversationService) PostMessage(_ context.Context, userId, conversationId int64, req *dto.PostMessageRequest) (*dto.MessageResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.posted = append(f.posted, req.Content)
	return &dto.MessageResponse{Id: 1, ConversationId: conversationId, SenderId: userId, Content: req.Content}, nil
}

func (f *fakeConversationService) SetAssistantMuted(_ context.Context, _, _, assistantId int64, muted bool) (*dto.ConversationAssistantResponse, error) {
	f.muted = &muted
	return &dto.ConversationAssistantResponse{AssistantId: assistantId, Muted: muted}, nil
}

func (f *fakeConversationService) AddAssistant(_ context.Context, _, _, assistantId int64) (*dto.ConversationAssistantResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.added = append(f.added, assistantId)
	return &dto.ConversationAssistantResponse{AssistantId: assistantId, Tone: "FORMAL"}, nil
}

func (f *fakeConversationService) RemoveAssistant(_ context.Context, _, _, assistantId int64) error {
	if f.err != nil {
		return f.err
	}
	f.removed = append(f.removed, assistantId)
	return nil
}

func (f *fakeConversationService) SetAssistantTone(_ context.Context, _, _, assistantId int64, tone string) (*dto.ConversationAssistantResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tone = tone
	return &dto.ConversationAssistantResponse{AssistantId: assistantId, Tone: strings.ToUpper(tone)}, nil
}

func newApp(t *testing.T, svc service.IConversationService) *fiber.App {
	t.Setenv("JWT_SECRET", "test-secret")
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewConversationController(svc).RegisterRoutes(app.Group("/api"))
	return app
}

func bearer(t *testing.T, userId int64) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userId,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return "Bearer " + token
}

func TestPostMessage(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		auth   bool
		svcErr error
		code   int
	}{
		{"accepted", "/api/conversation/v1/7/messages", `{"content":"hello"}`, true, nil, fiber.StatusAccepted},
		{"missing content", "/api/conversation/v1/7/messages", `{}`, true, nil, fiber.StatusBadRequest},
		{"too long", "/api/conversation/v1/7/messages", `{"content":"` + strings.Repeat("a", 10001) + `"}`, true, nil, fiber.StatusBadRequest},
		{"bad id", "/api/conversation/v1/abc/messages", `{"content":"hello"}`, true, nil, fiber.StatusBadRequest},
		{"no token", "/api/conversation/v1/7/messages", `{"content":"hello"}`, false, nil, fiber.StatusUnauthorized},
		{"forbidden", "/api/conversation/v1/7/messages", `{"content":"hello"}`, true, serverutils.ErrForbidden, fiber.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeConversationService{err: tt.svcErr}
			app := newApp(t, svc)

			req := httptest.NewRequest("POST", tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.auth {
				req.Header.Set("Authorization", bearer(t, 3))
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.code, resp.StatusCode)

			if tt.code == fiber.StatusAccepted {
				raw, _ := io.ReadAll(resp.Body)
				var body serverutils.Response[dto.MessageResponse]
				require.NoError(t, json.Unmarshal(raw, &body))
				assert.Equal(t, int64(7), body.Data.ConversationId)
				assert.Equal(t, int64(3), body.Data.SenderId)
				assert.Equal(t, []string{"hello"}, svc.posted)
			}
		})
	}
}

func TestMuteAssistant(t *testing.T) {
	svc := &fakeConversationService{}
	app := newApp(t, svc)

	req := httptest.NewRequest("PUT", "/api/conversation/v1/7/assistants/5/mute", strings.NewReader(`{"muted":false}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, 3))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotNil(t, svc.muted)
	assert.False(t, *svc.muted)

	req = httptest.NewRequest("PUT", "/api/conversation/v1/7/assistants/5/mute", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, 3))

	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAssistantRosterRoutes(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		svcErr error
		code   int
	}{
		{"add", "POST", "/api/conversation/v1/7/assistants", `{"assistant_id":5}`, nil, fiber.StatusCreated},
		{"add without id", "POST", "/api/conversation/v1/7/assistants", `{}`, nil, fiber.StatusBadRequest},
		{"add foreign assistant", "POST", "/api/conversation/v1/7/assistants", `{"assistant_id":5}`, serverutils.ErrNotFound, fiber.StatusNotFound},
		{"remove", "DELETE", "/api/conversation/v1/7/assistants/5", "", nil, fiber.StatusNoContent},
		{"remove bad id", "DELETE", "/api/conversation/v1/7/assistants/x", "", nil, fiber.StatusBadRequest},
		{"remove absent", "DELETE", "/api/conversation/v1/7/assistants/5", "", serverutils.ErrNotFound, fiber.StatusNotFound},
		{"tone", "PUT", "/api/conversation/v1/7/assistants/5/tone", `{"tone":"casual"}`, nil, fiber.StatusOK},
		{"tone missing", "PUT", "/api/conversation/v1/7/assistants/5/tone", `{}`, nil, fiber.StatusBadRequest},
		{"unknown tone", "PUT", "/api/conversation/v1/7/assistants/5/tone", `{"tone":"sarcastic"}`, orchestration.NewInvalidArgument("tone", "unknown tone sarcastic"), fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeConversationService{err: tt.svcErr}
			app := newApp(t, svc)

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", bearer(t, 3))

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.code, resp.StatusCode)

			if tt.svcErr == nil && tt.code < fiber.StatusBadRequest {
				switch tt.method {
				case "POST":
					assert.Equal(t, []int64{5}, svc.added)
				case "DELETE":
					assert.Equal(t, []int64{5}, svc.removed)
				case "PUT":
					assert.Equal(t, "casual", svc.tone)
				}
			}
		})
	}
}
