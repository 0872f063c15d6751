package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driven"
	"github.com/notegraph-labs/notegraph-cli/internal/logger"
)

// Ensure RevisionSession can use customised prompts.
var _ driven.PromptStoreAware = (*RevisionSession)(nil)

// RevisionSession applies free-form user instructions to a single note
// while recording the conversation. Per document the session is a
// single-threaded state machine: idle, then awaiting the model's response,
// then idle again. A revision's blast radius is exactly one note - it never
// touches the topic's span ownership or any other note.
type RevisionSession struct {
	llm         driven.LanguageModel
	promptStore driven.PromptStore

	mu       sync.Mutex
	awaiting map[string]bool
}

// NewRevisionSession creates a revision session service.
func NewRevisionSession(llm driven.LanguageModel) *RevisionSession {
	return &RevisionSession{
		llm:      llm,
		awaiting: make(map[string]bool),
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (r *RevisionSession) SetPromptStore(store driven.PromptStore) {
	r.promptStore = store
}

// RevisionOutcome is the result of one revision turn. Turns are returned
// even on failure so the caller can append the error to the chat log and
// the user sees the failure in context rather than silent loss.
type RevisionOutcome struct {
	// Note is the revised note. Nil when the turn failed; the prior note
	// content is unchanged in that case.
	Note *domain.Note

	// Turns is the user/assistant pair to append to the chat log.
	Turns []domain.ChatTurn
}

// defaultRevisePrompt is the fallback system prompt when no PromptStore is configured.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
const defaultRevisePrompt = `You are revising a single study note at the user's direction. You will receive the current note content and an instruction.

Apply the instruction to the note and return ONLY the complete revised note content in the same format it was given in. Do not add commentary before or after the note. Do not change the note's title unless asked.`

// Revise runs one turn: validates the note is still bound to the live
// topic version, sends the instruction with the conversation history to
// the model, and produces the revised note plus the chat turn pair.
//
// Fails with ErrStaleTarget when the topic's version has advanced past the
// note (regenerate first), and with ErrRevisionInFlight when another turn
// for the document is still awaiting a response. On collaborator failure
// the returned outcome carries an error turn and the note is untouched.
func (r *RevisionSession) Revise(
	ctx context.Context,
	topic *domain.Topic,
	note *domain.Note,
	history []domain.ChatTurn,
	instruction string,
) (*RevisionOutcome, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return nil, fmt.Errorf("%w: empty instruction", domain.ErrInvalidInput)
	}
	if r.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if note.StaleAgainst(topic) {
		return nil, fmt.Errorf("%w: note was generated for topic version %d, current is %d; regenerate the note first",
			domain.ErrStaleTarget, note.TopicVersion, topic.Version)
	}

	if err := r.enter(note.DocumentID); err != nil {
		return nil, err
	}
	defer r.leave(note.DocumentID)

	now := time.Now()
	userTurn := domain.ChatTurn{
		ID:           uuid.New().String(),
		DocumentID:   note.DocumentID,
		TopicKey:     note.TopicKey,
		Role:         domain.RoleUser,
		Content:      instruction,
		NoteRevision: note.Revision,
		CreatedAt:    now,
	}

	messages := r.buildMessages(note, history, instruction)
	revised, err := r.llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   4096,
		Temperature: 0.4,
	})
	if err != nil {
		cerr := domain.NewCollaboratorError("llm", "revise", domain.IsRetriable(err), err)
		logger.Warn("revision for topic %s failed: %v", note.TopicKey, cerr)
		outcome := &RevisionOutcome{
			Turns: []domain.ChatTurn{userTurn, {
				ID:           uuid.New().String(),
				DocumentID:   note.DocumentID,
				TopicKey:     note.TopicKey,
				Role:         domain.RoleAssistant,
				Content:      "The revision could not be applied: " + cerr.Error(),
				NoteRevision: note.Revision,
				IsError:      true,
				CreatedAt:    time.Now(),
			}},
		}
		return outcome, cerr
	}

	revised = strings.TrimSpace(revised)
	if revised == "" {
		cerr := domain.NewCollaboratorError("llm", "revise", false, fmt.Errorf("empty response"))
		outcome := &RevisionOutcome{
			Turns: []domain.ChatTurn{userTurn, {
				ID:           uuid.New().String(),
				DocumentID:   note.DocumentID,
				TopicKey:     note.TopicKey,
				Role:         domain.RoleAssistant,
				Content:      "The revision could not be applied: the model returned an empty note.",
				NoteRevision: note.Revision,
				IsError:      true,
				CreatedAt:    time.Now(),
			}},
		}
		return outcome, cerr
	}

	// Same topic binding, same spans, new content revision.
	updated := *note
	updated.Rendered = revised
	updated.Body.Sections = []domain.Section{{
		Content:    revised,
		Provenance: domain.ProvenancePrimary,
	}}
	updated.Revision = note.Revision + 1
	updated.GeneratedAt = time.Now()

	assistantTurn := domain.ChatTurn{
		ID:           uuid.New().String(),
		DocumentID:   note.DocumentID,
		TopicKey:     note.TopicKey,
		Role:         domain.RoleAssistant,
		Content:      revised,
		NoteRevision: updated.Revision,
		CreatedAt:    time.Now(),
	}

	return &RevisionOutcome{
		Note:  &updated,
		Turns: []domain.ChatTurn{userTurn, assistantTurn},
	}, nil
}

// buildMessages assembles the chat: system prompt, prior turns, then the
// current note and instruction.
func (r *RevisionSession) buildMessages(note *domain.Note, history []domain.ChatTurn, instruction string) []driven.ChatMessage {
	system := defaultRevisePrompt
	if r.promptStore != nil {
		if p, err := r.promptStore.Load(driven.PromptRevise); err == nil {
			system = p
		}
	}

	messages := []driven.ChatMessage{{Role: "system", Content: system}}
	for _, turn := range history {
		if turn.IsError {
			continue
		}
		messages = append(messages, driven.ChatMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}
	messages = append(messages, driven.ChatMessage{
		Role:    "user",
		Content: fmt.Sprintf("CURRENT NOTE:\n%s\n\nINSTRUCTION: %s", note.Rendered, instruction),
	})
	return messages
}

func (r *RevisionSession) enter(documentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.awaiting[documentID] {
		return domain.ErrRevisionInFlight
	}
	r.awaiting[documentID] = true
	return nil
}

func (r *RevisionSession) leave(documentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.awaiting, documentID)
}
