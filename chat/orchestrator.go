package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"scrapingai/extract"
	"scrapingai/model"
	"scrapingai/provider"
)

// State is the orchestrator's position in the chat lifecycle.
type State int

const (
	StateIdle State = iota
	StateAwaitingCredential
	StateStreaming
	StateCompleted
	StateExtractionOffered
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingCredential:
		return "awaiting_credential"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateExtractionOffered:
		return "extraction_offered"
	}
	return "unknown"
}

// StreamTimeout is the upper bound on one streamed completion. A stream
// still running after this is cancelled and its partial turn discarded.
const StreamTimeout = 30 * time.Second

// ErrStreamInFlight is returned when a submission arrives while a stream is
// already active for the session. Transcript append order is significant;
// concurrent streams would corrupt it.
var ErrStreamInFlight = errors.New("a response is already streaming for this session")

// Resolver maps a model identifier and credential to a provider.
// *provider.Router satisfies it.
type Resolver interface {
	Resolve(modelID, apiKey string) (model.Provider, error)
}

// KeyStore looks up stored credentials by user and service name.
// *storage.Store satisfies it.
type KeyStore interface {
	GetAPIKey(ctx context.Context, userID, serviceName string) (string, error)
}

// Orchestrator runs the chat lifecycle for a single session. It owns the
// transcript exclusively: no other component appends to or mutates it.
// Independent sessions get independent orchestrators and share nothing.
type Orchestrator struct {
	sessionID string
	userID    string

	resolver     Resolver
	keys         KeyStore
	materializer *Materializer
	logger       *slog.Logger

	mu           sync.Mutex
	state        State
	transcript   []model.Message
	pendingFiles []extract.File
}

// NewOrchestrator creates an orchestrator for one session. history seeds the
// transcript with previously persisted turns and may be nil.
func NewOrchestrator(sessionID, userID string, resolver Resolver, keys KeyStore, materializer *Materializer, logger *slog.Logger, history []model.Message) *Orchestrator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{
		sessionID:    sessionID,
		userID:       userID,
		resolver:     resolver,
		keys:         keys,
		materializer: materializer,
		logger:       logger.With("session", sessionID),
		state:        StateIdle,
		transcript:   append([]model.Message(nil), history...),
	}
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Transcript returns a copy of the transcript.
func (o *Orchestrator) Transcript() []model.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]model.Message(nil), o.transcript...)
}

// PendingFiles returns the files extracted from the last completed turn,
// still awaiting materialization.
func (o *Orchestrator) PendingFiles() []extract.File {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]extract.File(nil), o.pendingFiles...)
}

// Send submits user input and streams the assistant reply through onChunk.
// It returns the full reply text once the stream ends.
//
// When apiKey is empty the stored key for (userID, service) is tried; if
// none exists the orchestrator parks in AwaitingCredential and returns
// model.ErrMissingAPIKey without dispatching anything. A second Send while
// one is streaming fails with ErrStreamInFlight. On stream failure or
// timeout the partial turn is discarded and the transcript keeps only fully
// received turns.
func (o *Orchestrator) Send(ctx context.Context, modelID, apiKey, input string, onChunk model.StreamCallback) (string, error) {
	key, err := o.credential(ctx, modelID, apiKey)
	if err != nil {
		return "", err
	}

	o.mu.Lock()
	if o.state == StateStreaming {
		o.mu.Unlock()
		return "", ErrStreamInFlight
	}
	o.state = StateStreaming
	o.pendingFiles = nil
	o.transcript = append(o.transcript, model.Message{Role: model.RoleUser, Content: input})
	transcript := append([]model.Message(nil), o.transcript...)
	o.mu.Unlock()

	p, err := o.resolver.Resolve(modelID, key)
	if err != nil {
		o.rollback()
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, StreamTimeout)
	defer cancel()

	var reply strings.Builder
	err = p.Chat(ctx, transcript, func(chunk string) error {
		reply.WriteString(chunk)
		if onChunk != nil {
			return onChunk(chunk)
		}
		return nil
	})
	if err != nil {
		o.logger.Warn("stream failed", "model", modelID, "error", err)
		o.rollback()
		return "", err
	}

	text := reply.String()

	o.mu.Lock()
	o.transcript = append(o.transcript, model.Message{Role: model.RoleAssistant, Content: text})
	o.state = StateCompleted
	o.pendingFiles = extract.Files(text)
	if len(o.pendingFiles) > 0 {
		o.state = StateExtractionOffered
	} else {
		o.state = StateIdle
	}
	o.mu.Unlock()

	return text, nil
}

// MaterializePending persists the files extracted from the last turn.
// Success or failure, the orchestrator returns to Idle: a failed save is
// reported but never blocks further chat.
func (o *Orchestrator) MaterializePending(ctx context.Context) MaterializeResult {
	o.mu.Lock()
	files := o.pendingFiles
	o.pendingFiles = nil
	o.state = StateIdle
	o.mu.Unlock()

	if len(files) == 0 {
		return MaterializeResult{}
	}
	return o.materializer.Materialize(ctx, o.sessionID, files)
}

// credential resolves the key to use for this request: the caller-supplied
// key first, then the stored key for the model's service family.
func (o *Orchestrator) credential(ctx context.Context, modelID, apiKey string) (string, error) {
	if apiKey != "" {
		return apiKey, nil
	}

	if o.keys != nil && o.userID != "" {
		stored, err := o.keys.GetAPIKey(ctx, o.userID, provider.ServiceName(modelID))
		if err != nil {
			return "", err
		}
		if stored != "" {
			return stored, nil
		}
	}

	o.mu.Lock()
	o.state = StateAwaitingCredential
	o.mu.Unlock()
	return "", model.ErrMissingAPIKey
}

// rollback discards the turn in progress: the submitted user message is
// removed so a resubmission starts from the last complete turn.
func (o *Orchestrator) rollback() {
	o.mu.Lock()
	if n := len(o.transcript); n > 0 && o.transcript[n-1].Role == model.RoleUser {
		o.transcript = o.transcript[:n-1]
	}
	o.state = StateIdle
	o.mu.Unlock()
}
