// Package assistant implements Maple, the conversational layer that grounds a
// local model in household state and executes the actions it proposes.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hometrackerhq/hometracker/internal/action"
	"github.com/hometrackerhq/hometracker/internal/homectx"
	"github.com/hometrackerhq/hometracker/internal/ollama"
	"github.com/hometrackerhq/hometracker/internal/storage"
)

const (
	// contextTokenBudget bounds how much of the prompt the home snapshot may
	// occupy; the serialization tier degrades until it fits.
	contextTokenBudget = 1500

	historyLimit = 10

	chatTimeout = 2 * time.Minute
)

// Chatter is the subset of the Ollama client Maple needs.
type Chatter interface {
	Chat(ctx context.Context, model string, messages []ollama.Message, jsonSchema *ollama.Schema) (string, error)
}

// ProfileSummarizer provides the household one-liner for the system prompt.
// Implemented by household.Manager.
type ProfileSummarizer interface {
	GetSummary() (string, error)
}

// ChatStore persists the conversation transcript.
// Implemented by storage.Store.
type ChatStore interface {
	SaveChatMessage(m storage.ChatMessage) error
	RecentChatMessages(limit int) ([]storage.ChatMessage, error)
}

// Reply is one turn of Maple output. Action is set when the model proposed a
// directive that was executed; NavigateTo carries its route hint.
type Reply struct {
	Message    string         `json:"message"`
	Action     *action.Result `json:"action,omitempty"`
	NavigateTo string         `json:"navigate_to,omitempty"`
}

// Assistant wires the context builder, household profile, transcript store,
// model client, and action dispatcher into one chat pipeline.
type Assistant struct {
	builder    *homectx.Builder
	profile    ProfileSummarizer
	chats      ChatStore
	engine     Chatter
	dispatcher *action.Dispatcher
	model      string
	log        *slog.Logger

	now func() time.Time
}

// New creates an Assistant using the given model for conversation.
func New(builder *homectx.Builder, profile ProfileSummarizer, chats ChatStore, engine Chatter, dispatcher *action.Dispatcher, model string, log *slog.Logger) *Assistant {
	return &Assistant{
		builder:    builder,
		profile:    profile,
		chats:      chats,
		engine:     engine,
		dispatcher: dispatcher,
		model:      model,
		log:        log,
		now:        time.Now,
	}
}

// Chat runs one conversation turn: ground the model in current home state,
// send the user message with recent transcript, execute any directive the
// response carries, and persist both sides of the exchange.
func (a *Assistant) Chat(ctx context.Context, userMessage string) (Reply, error) {
	userMessage = strings.TrimSpace(userMessage)
	if userMessage == "" {
		return Reply{}, fmt.Errorf("message is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, chatTimeout)
	defer cancel()

	system, err := a.systemPrompt(ctx)
	if err != nil {
		return Reply{}, err
	}

	messages := []ollama.Message{{Role: "system", Content: system}}
	messages = append(messages, a.recentTranscript()...)
	messages = append(messages, ollama.Message{Role: "user", Content: userMessage})

	resp, err := a.engine.Chat(ctx, a.model, messages, nil)
	if err != nil {
		return Reply{}, fmt.Errorf("chat with model: %w", err)
	}

	reply := a.interpret(resp)

	a.persistTurn(userMessage, resp, reply)
	return reply, nil
}

func (a *Assistant) systemPrompt(ctx context.Context) (string, error) {
	summary, err := a.profile.GetSummary()
	if err != nil {
		a.log.Warn("household summary unavailable", "error", err)
		summary = ""
	}

	hc, err := a.builder.Build(ctx, a.now())
	if err != nil {
		return "", fmt.Errorf("building home context: %w", err)
	}

	contextText, tier := selectContextTier(hc, contextTokenBudget)
	a.log.Debug("context tier selected", "tier", tier, "tokens", homectx.EstimateTokens(contextText))

	return buildSystemPrompt(summary, contextText), nil
}

// selectContextTier renders the snapshot at the richest tier that fits the
// token budget, degrading from full markdown through prose and compact JSON
// down to the one-liner.
func selectContextTier(hc homectx.HomeContext, budget int) (string, string) {
	if full := hc.ToPrompt(0); homectx.EstimateTokens(full) <= budget {
		return full, "full"
	}
	if prose := hc.ToNaturalLanguage(); homectx.EstimateTokens(prose) <= budget {
		return prose, "prose"
	}
	if compact, err := hc.ToCompactJSON(); err == nil && homectx.EstimateTokens(compact) <= budget {
		return compact, "compact"
	}
	return hc.SummaryLine(), "summary"
}

func (a *Assistant) recentTranscript() []ollama.Message {
	history, err := a.chats.RecentChatMessages(historyLimit)
	if err != nil {
		a.log.Warn("loading chat history failed", "error", err)
		return nil
	}
	msgs := make([]ollama.Message, 0, len(history))
	for _, m := range history {
		msgs = append(msgs, ollama.Message{Role: m.Role, Content: m.Content})
	}
	return msgs
}

// interpret decodes and executes a directive out of the model response. A
// response with no directive is a plain conversational reply; a malformed or
// unknown directive is reported to the user rather than silently dropped.
func (a *Assistant) interpret(resp string) Reply {
	dir, err := action.DecodeDirective(resp)
	switch {
	case err == nil:
		res := a.dispatcher.Execute(dir)
		return Reply{
			Message:    displayText(resp, res),
			Action:     &res,
			NavigateTo: res.NavigateTo,
		}
	case errors.Is(err, action.ErrNoDirective):
		return Reply{Message: strings.TrimSpace(resp)}
	default:
		a.log.Warn("directive rejected", "error", err)
		res := action.Result{Message: "I could not apply that action, the directive was malformed."}
		return Reply{Message: displayText(resp, res), Action: &res}
	}
}

// displayText strips the fenced directive block from the response so the user
// sees prose, falling back to the action message when nothing else remains.
func displayText(resp string, res action.Result) string {
	text := resp
	if start := strings.Index(text, "```"); start != -1 {
		rest := text[start+3:]
		if end := strings.Index(rest, "```"); end != -1 {
			text = text[:start] + rest[end+3:]
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return res.Message
	}
	return text
}

func (a *Assistant) persistTurn(userMessage, rawResponse string, reply Reply) {
	now := a.now()

	var actionJSON string
	if reply.Action != nil {
		b, err := json.Marshal(reply.Action)
		if err == nil {
			actionJSON = string(b)
		}
	}

	turns := []storage.ChatMessage{
		{ID: uuid.NewString(), Role: "user", Content: userMessage, CreatedAt: now},
		{ID: uuid.NewString(), Role: "assistant", Content: rawResponse, ActionJSON: actionJSON, CreatedAt: now},
	}
	for _, m := range turns {
		if err := a.chats.SaveChatMessage(m); err != nil {
			a.log.Warn("persisting chat message failed", "role", m.Role, "error", err)
		}
	}
}

// History returns the recent transcript, oldest first.
func (a *Assistant) History(limit int) ([]storage.ChatMessage, error) {
	if limit <= 0 {
		limit = historyLimit
	}
	return a.chats.RecentChatMessages(limit)
}
