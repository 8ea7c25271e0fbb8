// Package decider asks the model which assistants should answer a user message.
package decider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"teamcollab-be/internal/entity"
	"teamcollab-be/internal/pkg/logger"
	"teamcollab-be/pkg/llm"
	"teamcollab-be/pkg/orchestration"
	"teamcollab-be/pkg/orchestration/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const logModule = "DECIDER"

const systemPrompt = `You are an expert at routing messages to the correct assistants. Analyze the user message and output a JSON array of objects, one for each assistant that should respond. An assistant should respond if:

- It's mentioned by name.
- The message contains a question (not a statement) related to its expertise.
- The message contains a question directed to everyone.

Output format (only include assistants triggered to respond):

[ { "assistantId": <assistant_id>, "triggered": true},
...
]
`

var errNoArray = errors.New("no JSON array in response")

type Decider struct {
	providers orchestration.ProviderResolver
	settings  orchestration.SettingsProvider
	recorder  metrics.Recorder
	logger    logger.ILogger
	timeout   time.Duration
}

func NewDecider(
	providers orchestration.ProviderResolver,
	settings orchestration.SettingsProvider,
	recorder metrics.Recorder,
	log logger.ILogger,
	timeout time.Duration,
) *Decider {
	return &Decider{
		providers: providers,
		settings:  settings,
		recorder:  recorder,
		logger:    log,
		timeout:   timeout,
	}
}

// Decide returns the ids of the assistants that should respond to message.
// Any failure of the decision step answers with every active assistant.
func (d *Decider) Decide(ctx context.Context, conversation *entity.Conversation, message *entity.Message, active []*entity.Assistant) []int64 {
	if len(active) == 0 {
		return []int64{}
	}

	ctx, span := otel.Tracer("teamcollab/decider").Start(ctx, "decider.Decide")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("conversation.id", conversation.Id),
		attribute.Int("assistants.active", len(active)),
	)

	ids, err := d.decide(ctx, conversation, message, active)
	if err != nil {
		d.logger.Warn(logModule, "Decision failed, every active assistant will respond", map[string]interface{}{
			"conversation_id": conversation.Id,
			"message_id":      message.Id,
			"error":           err.Error(),
		})
		span.SetAttributes(attribute.Bool("decider.fail_open", true))
		return allIds(active)
	}

	span.SetAttributes(attribute.Int("assistants.triggered", len(ids)))
	return ids
}

func (d *Decider) decide(ctx context.Context, conversation *entity.Conversation, message *entity.Message, active []*entity.Assistant) ([]int64, error) {
	settings, err := d.settings.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	model := settings.AssistantInteractionLlmModel

	provider, err := d.providers.ForModel(model)
	if err != nil {
		return nil, err
	}

	callCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	completion, err := provider.Chat(callCtx, BuildPrompt(message, active), llm.WithModel(model))
	if err != nil {
		return nil, fmt.Errorf("decision call: %w", err)
	}

	usage := metrics.Usage{
		Duration:     time.Since(start),
		InputTokens:  completion.Usage.PromptTokens,
		OutputTokens: completion.Usage.CompletionTokens,
		Provider:     provider.Name(),
		Model:        model,
		Info:         metrics.InfoDecision,
	}
	if err := d.recorder.RecordUsage(ctx, conversation.Id, usage); err != nil {
		d.logger.Error(logModule, "Failed to record decision usage", map[string]interface{}{
			"conversation_id": conversation.Id,
			"error":           err.Error(),
		})
	}

	return Parse(completion.Content, active)
}

// BuildPrompt renders the routing instruction and the user turn listing the candidates.
func BuildPrompt(message *entity.Message, active []*entity.Assistant) []llm.Message {
	var user strings.Builder
	user.WriteString("User message: ")
	user.WriteString(message.Content)
	user.WriteString("\n\nAvailable assistants:\n")
	for _, a := range active {
		fmt.Fprintf(&user, "- ID: %d, Name: %s, Expertise: %s\n", a.Id, a.Name, a.Expertise)
	}

	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: user.String()},
	}
}

// Parse extracts the triggered ids from a model response. Ids outside active and
// repeated ids are dropped.
func Parse(response string, active []*entity.Assistant) ([]int64, error) {
	start := strings.IndexByte(response, '[')
	end := strings.LastIndexByte(response, ']')
	if start < 0 || end <= start {
		return nil, errNoArray
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(response[start : end+1])))
	dec.UseNumber()

	var entries []map[string]interface{}
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("parse decision: %w", err)
	}

	allowed := make(map[int64]bool, len(active))
	for _, a := range active {
		allowed[a.Id] = true
	}

	ids := make([]int64, 0, len(entries))
	seen := make(map[int64]bool, len(entries))
	for _, entry := range entries {
		if triggered, ok := entry["triggered"].(bool); !ok || !triggered {
			continue
		}
		id, ok, err := coerceId(entry["assistantId"])
		if err != nil {
			return nil, err
		}
		if !ok || !allowed[id] || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

// coerceId accepts a JSON number or a numeric string. A missing id is skipped.
func coerceId(v interface{}) (int64, bool, error) {
	switch id := v.(type) {
	case json.Number:
		n, err := id.Int64()
		if err != nil {
			return 0, false, fmt.Errorf("assistant id %q: %w", id, err)
		}
		return n, true, nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		if err != nil {
			return 0, false, fmt.Errorf("assistant id %q: %w", id, err)
		}
		return n, true, nil
	default:
		return 0, false, nil
	}
}

func allIds(active []*entity.Assistant) []int64 {
	ids := make([]int64, len(active))
	for i, a := range active {
		ids[i] = a.Id
	}
	return ids
}
