package services

import (
	"context"
	"fmt"
	"time"

	"vslim/internal/core"
	"vslim/internal/dialog"
	"vslim/internal/log"
	"vslim/internal/metrics"
	"vslim/internal/nlu"
	"vslim/internal/session"
)

const (
	// fallbackConfidence is the extraction confidence below which an
	// intent-less first turn is treated as an add.
	fallbackConfidence = 0.3
	// pendingTurns is how many further turns an incomplete frame waits.
	pendingTurns = 1
)

// Executor runs doable frames against the ledger.
type Executor interface {
	Execute(ctx context.Context, userID string, frames []core.Frame) (ExecutionResults, error)
}

// TurnResult is the outcome of one chat turn.
type TurnResult struct {
	DoableFrames     []core.Frame     `json:"doableFrames"`
	IncompleteFrames []core.Frame     `json:"incompleteFrames"`
	Message          *string          `json:"message"`
	ExecutionResults ExecutionResults `json:"executionResults"`
}

// ChatService drives the slot-filling dialog for each conversation.
// Turns for one conversation must not run concurrently.
type ChatService struct {
	parser   nlu.Parser
	sessions session.Store
	executor Executor
	metrics  *metrics.Metrics
	logger   *log.Logger
}

func NewChatService(parser nlu.Parser, sessions session.Store, executor Executor, m *metrics.Metrics, logger *log.Logger) *ChatService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ChatService{
		parser:   parser,
		sessions: sessions,
		executor: executor,
		metrics:  m,
		logger:   logger.WithComponent(log.ComponentChat),
	}
}

// HandleTurn merges utterance into the conversation's pending frames,
// executes what became doable and stores what is still incomplete.
// The conversation id doubles as the ledger user id.
func (s *ChatService) HandleTurn(ctx context.Context, conversationID, utterance string) (res TurnResult, err error) {
	started := time.Now()
	var pendingCount int
	defer func() {
		s.metrics.ObserveTurn(started, err)
		log.LogTurn(ctx, s.logger, conversationID, pendingCount, len(res.DoableFrames), len(res.IncompleteFrames), err)
	}()

	stored, found, err := s.sessions.Get(ctx, conversationID)
	if err != nil {
		return TurnResult{}, fmt.Errorf("load pending frames: %w", err)
	}
	pending := agePending(stored)
	pendingCount = len(pending)

	parsed, err := s.parser.Parse(ctx, utterance)
	if err != nil {
		return TurnResult{}, fmt.Errorf("parse utterance: %w", err)
	}
	s.logger.DebugContext(ctx, "Utterance parsed",
		log.FieldConversationID, conversationID,
		log.FieldIntents, parsed.Intents,
		log.FieldEntities, len(parsed.Entities),
		log.FieldConfidence, parsed.Confidence)
	if !found {
		parsed = applyFallback(parsed)
	}

	merged := dialog.Merge(pending, parsed)
	doable := make([]core.Frame, 0, len(merged.Doable))
	for _, f := range merged.Doable {
		f.TTL = nil
		doable = append(doable, f)
		s.metrics.CountFrame(string(f.Intent), "doable")
	}
	incomplete := make([]core.Frame, 0, len(merged.Incomplete))
	for _, f := range merged.Incomplete {
		if f.TTL == nil {
			f = f.WithTTL(pendingTurns)
		}
		if *f.TTL <= 0 {
			s.metrics.CountFrame(string(f.Intent), "expired")
			continue
		}
		incomplete = append(incomplete, f)
		s.metrics.CountFrame(string(f.Intent), "incomplete")
	}

	results, err := s.executor.Execute(ctx, conversationID, doable)
	if err != nil {
		return TurnResult{}, fmt.Errorf("execute frames: %w", err)
	}

	res = TurnResult{
		DoableFrames:     doable,
		IncompleteFrames: incomplete,
		ExecutionResults: results,
	}

	if err := s.sessions.Delete(ctx, conversationID); err != nil {
		return res, fmt.Errorf("clear pending frames: %w", err)
	}
	if len(incomplete) > 0 {
		if err := s.sessions.Set(ctx, conversationID, incomplete); err != nil {
			return res, fmt.Errorf("store pending frames: %w", err)
		}
		if msg, ok := dialog.MissingInfoMessage(incomplete); ok {
			res.Message = &msg
		}
	}
	return res, nil
}

// agePending keeps the stored frames that still have turns left and
// spends one turn of each.
func agePending(stored []core.Frame) []core.Frame {
	out := make([]core.Frame, 0, len(stored))
	for _, f := range stored {
		if f.TTL == nil || *f.TTL <= 0 {
			continue
		}
		out = append(out, f.WithTTL(*f.TTL-1))
	}
	return out
}

// applyFallback treats a low-confidence utterance without intents as an add.
func applyFallback(u core.Utterance) core.Utterance {
	if u.Confidence >= fallbackConfidence || len(u.Intents) > 0 {
		return u
	}
	entities := make([]core.Entity, len(u.Entities))
	for i, e := range u.Entities {
		e.Intent = core.IntentAddExpense
		entities[i] = e
	}
	u.Intents = []core.Intent{core.IntentAddExpense}
	u.Entities = entities
	return u
}
