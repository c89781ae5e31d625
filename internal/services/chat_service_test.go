package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vslim/internal/core"
	"vslim/internal/nlu"
	"vslim/internal/session"
)

type scriptedParser map[string]core.Utterance

func (p scriptedParser) Parse(_ context.Context, utterance string) (core.Utterance, error) {
	u, ok := p[utterance]
	if !ok {
		return core.Utterance{}, nlu.ErrParseFailed
	}
	return u, nil
}

type recordingExecutor struct {
	calls [][]core.Frame
	err   error
}

func (r *recordingExecutor) Execute(_ context.Context, _ string, frames []core.Frame) (ExecutionResults, error) {
	r.calls = append(r.calls, frames)
	if r.err != nil {
		return ExecutionResults{}, r.err
	}
	var res ExecutionResults
	for _, f := range frames {
		if f.Intent == core.IntentAddExpense {
			res.AddExpense = &core.AddResult{InsertedCount: 1}
		}
	}
	return res, nil
}

func add(key, text string) core.Entity {
	return core.Entity{Key: key, Text: text, Intent: core.IntentAddExpense}
}

func newTestChat(t *testing.T, parser scriptedParser) (*ChatService, *session.MemoryStore, *recordingExecutor) {
	t.Helper()
	sessions := session.NewMemoryStore(100, time.Hour)
	exec := &recordingExecutor{}
	return NewChatService(parser, sessions, exec, nil, nil), sessions, exec
}

func TestHandleTurnEndToEnd(t *testing.T) {
	x, _ := newTestExecutor(t)
	ctx := context.Background()
	parser := scriptedParser{
		"bánh mì 25000": {
			Intents:    []core.Intent{core.IntentAddExpense},
			Entities:   []core.Entity{add("description", "bánh mì"), add("amount", "25000")},
			Confidence: 0.9,
		},
	}
	sessions := session.NewMemoryStore(100, time.Hour)
	chat := NewChatService(parser, sessions, x, nil, nil)

	res, err := chat.HandleTurn(ctx, "u1", "bánh mì 25000")
	require.NoError(t, err)

	require.Len(t, res.DoableFrames, 1)
	f := res.DoableFrames[0]
	assert.Equal(t, core.IntentAddExpense, f.Intent)
	assert.Equal(t, "bánh mì", f.Text(core.SlotDescription))
	assert.Equal(t, "25000", f.Text(core.SlotPrice))
	assert.Nil(t, f.TTL)
	assert.Empty(t, res.IncompleteFrames)
	assert.Nil(t, res.Message)

	require.NotNil(t, res.ExecutionResults.AddExpense)
	assert.Equal(t, 1, res.ExecutionResults.AddExpense.InsertedCount)
	assert.Nil(t, res.ExecutionResults.DeleteExpense)
	assert.Nil(t, res.ExecutionResults.UpdateExpense)
	assert.Nil(t, res.ExecutionResults.SearchExpense)
	assert.Nil(t, res.ExecutionResults.StatExpense)

	_, found, err := sessions.Get(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestHandleTurnCompletesPendingFrame(t *testing.T) {
	chat, sessions, exec := newTestChat(t, scriptedParser{
		"ăn phở": {
			Intents:    []core.Intent{core.IntentAddExpense},
			Entities:   []core.Entity{add("description", "phở")},
			Confidence: 0.9,
		},
		"50k": {
			Intents:    []core.Intent{core.IntentAddExpense},
			Entities:   []core.Entity{add("price", "50k")},
			Confidence: 0.9,
		},
	})
	ctx := context.Background()

	first, err := chat.HandleTurn(ctx, "u1", "ăn phở")
	require.NoError(t, err)
	assert.Empty(t, first.DoableFrames)
	require.Len(t, first.IncompleteFrames, 1)
	require.NotNil(t, first.IncompleteFrames[0].TTL)
	assert.Equal(t, 1, *first.IncompleteFrames[0].TTL)
	require.NotNil(t, first.Message)
	assert.Equal(t, "Để thêm chi tiêu, bạn vui lòng cung cấp giá tiền nhé!", *first.Message)

	stored, found, err := sessions.Get(ctx, "u1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, stored, 1)

	second, err := chat.HandleTurn(ctx, "u1", "50k")
	require.NoError(t, err)
	require.Len(t, second.DoableFrames, 1)
	assert.Equal(t, "phở", second.DoableFrames[0].Text(core.SlotDescription))
	assert.Equal(t, "50k", second.DoableFrames[0].Text(core.SlotPrice))
	assert.Nil(t, second.DoableFrames[0].TTL)
	assert.Empty(t, second.IncompleteFrames)
	assert.Nil(t, second.Message)
	assert.Len(t, exec.calls, 2)

	_, found, err = sessions.Get(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestHandleTurnPendingFrameExpires(t *testing.T) {
	chat, sessions, _ := newTestChat(t, scriptedParser{
		"ăn phở": {
			Intents:    []core.Intent{core.IntentAddExpense},
			Entities:   []core.Entity{add("description", "phở")},
			Confidence: 0.9,
		},
		"chào": {Confidence: 0.9},
	})
	ctx := context.Background()

	_, err := chat.HandleTurn(ctx, "u1", "ăn phở")
	require.NoError(t, err)

	res, err := chat.HandleTurn(ctx, "u1", "chào")
	require.NoError(t, err)
	assert.Empty(t, res.IncompleteFrames, "frame waits exactly one further turn")
	assert.Nil(t, res.Message)

	_, found, err := sessions.Get(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestHandleTurnLowConfidenceFallback(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		intents    []core.Intent
		wantDoable bool
	}{
		{"low confidence without intents becomes add", 0.1, nil, true},
		{"confident utterance is left alone", 0.8, nil, false},
		{"detected intents are left alone", 0.1, []core.Intent{core.IntentSearchExpense}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			chat, _, _ := newTestChat(t, scriptedParser{
				"cơm 30k": {
					Intents: tc.intents,
					Entities: []core.Entity{
						{Key: "description", Text: "cơm", Intent: core.IntentNone},
						{Key: "price", Text: "30k", Intent: core.IntentNone},
					},
					Confidence: tc.confidence,
				},
			})

			res, err := chat.HandleTurn(context.Background(), "u1", "cơm 30k")
			require.NoError(t, err)
			if tc.wantDoable {
				require.Len(t, res.DoableFrames, 1)
				assert.Equal(t, core.IntentAddExpense, res.DoableFrames[0].Intent)
			} else {
				assert.Empty(t, res.DoableFrames)
			}
		})
	}
}

func TestHandleTurnFallbackSkippedWithPendingEntry(t *testing.T) {
	chat, sessions, _ := newTestChat(t, scriptedParser{
		"hmm": {
			Entities:   []core.Entity{{Key: "description", Text: "cơm", Intent: core.IntentNone}},
			Confidence: 0.1,
		},
	})
	ctx := context.Background()
	pending := core.NewFrame(core.IntentSearchExpense).WithTTL(1)
	require.NoError(t, sessions.Set(ctx, "u1", []core.Frame{pending}))

	res, err := chat.HandleTurn(ctx, "u1", "hmm")
	require.NoError(t, err)
	assert.Empty(t, res.DoableFrames)
	assert.Empty(t, res.IncompleteFrames)
}

func TestHandleTurnIntentWithoutEntities(t *testing.T) {
	chat, sessions, _ := newTestChat(t, scriptedParser{
		"thống kê": {Intents: []core.Intent{core.IntentStatExpense}, Confidence: 0.9},
	})
	ctx := context.Background()

	res, err := chat.HandleTurn(ctx, "u1", "thống kê")
	require.NoError(t, err)
	require.Len(t, res.IncompleteFrames, 1)
	assert.Equal(t, core.IntentStatExpense, res.IncompleteFrames[0].Intent)
	require.NotNil(t, res.Message)
	assert.Equal(t, "Để thống kê chi tiêu, bạn vui lòng cung cấp khoảng thời gian cần thống kê nhé!", *res.Message)

	stored, found, err := sessions.Get(ctx, "u1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, stored, 1)
}

func TestHandleTurnErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("parse failure", func(t *testing.T) {
		chat, _, exec := newTestChat(t, scriptedParser{})
		_, err := chat.HandleTurn(ctx, "u1", "???")
		assert.ErrorIs(t, err, nlu.ErrParseFailed)
		assert.Empty(t, exec.calls)
	})

	t.Run("execution failure keeps pending frames", func(t *testing.T) {
		chat, sessions, exec := newTestChat(t, scriptedParser{
			"phở 50k": {
				Intents:    []core.Intent{core.IntentAddExpense},
				Entities:   []core.Entity{add("description", "phở"), add("price", "50k")},
				Confidence: 0.9,
			},
		})
		pending := core.NewFrame(core.IntentDeleteExpense).WithTTL(1)
		require.NoError(t, sessions.Set(ctx, "u1", []core.Frame{pending}))
		boom := errors.New("ledger down")
		exec.err = boom

		_, err := chat.HandleTurn(ctx, "u1", "phở 50k")
		assert.ErrorIs(t, err, boom)

		stored, found, err := sessions.Get(ctx, "u1")
		require.NoError(t, err)
		require.True(t, found)
		assert.Len(t, stored, 1)
	})

	t.Run("invalid conversation", func(t *testing.T) {
		chat, _, _ := newTestChat(t, scriptedParser{})
		_, err := chat.HandleTurn(ctx, " ", "hi")
		assert.ErrorIs(t, err, session.ErrInvalidConversation)
	})
}

func TestAgePending(t *testing.T) {
	frames := []core.Frame{
		core.NewFrame(core.IntentAddExpense).WithTTL(1),
		core.NewFrame(core.IntentDeleteExpense).WithTTL(0),
		core.NewFrame(core.IntentSearchExpense),
		core.NewFrame(core.IntentStatExpense).WithTTL(3),
	}

	out := agePending(frames)
	require.Len(t, out, 2)
	assert.Equal(t, 0, *out[0].TTL)
	assert.Equal(t, 2, *out[1].TTL)
	assert.Equal(t, 1, *frames[0].TTL, "stored frames are not mutated")
}
