package summarizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/doc-summarizer/internal/domain/document"
	apperrors "github.com/yanqian/doc-summarizer/pkg/errors"
	"github.com/yanqian/doc-summarizer/pkg/metrics"
)

type stubGenerator struct {
	prompts []Prompt
	respond func(p Prompt) (Generation, error)
}

func (s *stubGenerator) Generate(_ context.Context, p Prompt) (Generation, error) {
	s.prompts = append(s.prompts, p)
	if s.respond == nil {
		return Generation{Text: "summary"}, nil
	}
	return s.respond(p)
}

func (s *stubGenerator) synthesisPrompts() []Prompt {
	var out []Prompt
	for _, p := range s.prompts {
		if p.System == synthesisSystemPrompt {
			out = append(out, p)
		}
	}
	return out
}

type stubChunker struct {
	calls  int
	chunks []string
	err    error
}

func (s *stubChunker) Split(_ string, _ ProcessingConfig) ([]Chunk, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]Chunk, len(s.chunks))
	for i, text := range s.chunks {
		out[i] = Chunk{Index: i, Text: text}
	}
	return out, nil
}

type waitRecorder struct {
	waits int
	err   error
}

func (w *waitRecorder) wait(_ context.Context, _ time.Duration) error {
	w.waits++
	return w.err
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPipeline(gen Generator, chunker Chunker, w *waitRecorder) *Pipeline {
	log := newTestLogger()
	return NewPipeline(chunker, NewClient(gen, nil, log), nil, log, WithWaiter(w.wait))
}

func longText() document.Document {
	return document.Document{Filename: "paper.txt", Text: strings.Repeat("a", SingleChunkThreshold+1)}
}

func collectStates(events *[]Progress) ProgressFunc {
	return func(p Progress) { *events = append(*events, p) }
}

func stateSequence(events []Progress) []State {
	var states []State
	for _, ev := range events {
		if len(states) == 0 || states[len(states)-1] != ev.State {
			states = append(states, ev.State)
		}
	}
	return states
}

func TestPipelineShortTextUsesSingleCall(t *testing.T) {
	gen := &stubGenerator{respond: func(Prompt) (Generation, error) {
		return Generation{Text: "**TITLE & AUTHORS**: Short", Usage: metrics.TokenUsage{PromptTokens: 10, TotalTokens: 12}}, nil
	}}
	chunker := &stubChunker{}
	waits := &waitRecorder{}
	var events []Progress

	doc := document.Document{Text: strings.Repeat("b", SingleChunkThreshold)}
	summary, err := newTestPipeline(gen, chunker, waits).Run(context.Background(), doc, DefaultProcessingConfig(), collectStates(&events))
	require.NoError(t, err)
	require.Equal(t, PathSingle, summary.Path)
	require.Equal(t, "**TITLE & AUTHORS**: Short", summary.Text)
	require.Equal(t, 12, summary.Usage.TotalTokens)
	require.Len(t, gen.prompts, 1)
	require.Equal(t, chunkSystemPrompt, gen.prompts[0].System)
	require.Zero(t, chunker.calls)
	require.Zero(t, waits.waits)
	require.Equal(t, []State{StateExtracting, StateSingleChunkSummarizing, StateDone}, stateSequence(events))
	require.Equal(t, 100, events[len(events)-1].Percent)
}

func TestPipelineSingleCallFailure(t *testing.T) {
	gen := &stubGenerator{respond: func(Prompt) (Generation, error) {
		return Generation{}, errors.New("quota exceeded")
	}}
	var events []Progress

	_, err := newTestPipeline(gen, &stubChunker{}, &waitRecorder{}).Run(context.Background(), document.Document{Text: "short"}, DefaultProcessingConfig(), collectStates(&events))
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, CodeGenerationFailure))
	require.Equal(t, StateFailed, events[len(events)-1].State)
}

func TestPipelineSkipsFailedChunksAndKeepsOrder(t *testing.T) {
	gen := &stubGenerator{respond: func(p Prompt) (Generation, error) {
		switch {
		case p.System == synthesisSystemPrompt:
			return Generation{Text: "final"}, nil
		case strings.Contains(p.User, "chunk-two"):
			return Generation{}, errors.New("boom")
		case strings.Contains(p.User, "chunk-one"):
			return Generation{Text: "summary-one"}, nil
		default:
			return Generation{Text: "summary-three"}, nil
		}
	}}
	chunker := &stubChunker{chunks: []string{"chunk-one", "chunk-two", "chunk-three"}}
	waits := &waitRecorder{}
	var events []Progress

	summary, err := newTestPipeline(gen, chunker, waits).Run(context.Background(), longText(), DefaultProcessingConfig(), collectStates(&events))
	require.NoError(t, err)
	require.Equal(t, PathMulti, summary.Path)
	require.Equal(t, "final", summary.Text)
	require.Equal(t, 3, summary.Chunks)
	require.Equal(t, 2, summary.Summarized)
	require.Equal(t, []int{1}, summary.FailedChunks)
	require.Equal(t, 1, chunker.calls)
	require.Equal(t, 2, waits.waits)

	synth := gen.synthesisPrompts()
	require.Len(t, synth, 1)
	require.Contains(t, synth[0].User, "summary-one"+SectionBreak+"summary-three")
	require.Equal(t,
		[]State{StateExtracting, StateMultiChunkSummarizing, StateSynthesizing, StateDone},
		stateSequence(events),
	)
}

func TestPipelineAllChunksFailed(t *testing.T) {
	gen := &stubGenerator{respond: func(Prompt) (Generation, error) {
		return Generation{}, errors.New("unavailable")
	}}
	chunker := &stubChunker{chunks: []string{"one", "two", "three"}}
	var events []Progress

	_, err := newTestPipeline(gen, chunker, &waitRecorder{}).Run(context.Background(), longText(), DefaultProcessingConfig(), collectStates(&events))
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, CodeEmptyResult))
	require.Len(t, gen.prompts, 3)
	require.Empty(t, gen.synthesisPrompts())
	require.Equal(t, StateFailed, events[len(events)-1].State)
}

func TestPipelineSynthesisFailure(t *testing.T) {
	gen := &stubGenerator{respond: func(p Prompt) (Generation, error) {
		if p.System == synthesisSystemPrompt {
			return Generation{}, errors.New("timeout")
		}
		return Generation{Text: "partial"}, nil
	}}
	chunker := &stubChunker{chunks: []string{"one", "two"}}
	var events []Progress

	_, err := newTestPipeline(gen, chunker, &waitRecorder{}).Run(context.Background(), longText(), DefaultProcessingConfig(), collectStates(&events))
	require.True(t, apperrors.IsCode(err, CodeGenerationFailure))
	require.Equal(t,
		[]State{StateExtracting, StateMultiChunkSummarizing, StateSynthesizing, StateFailed},
		stateSequence(events),
	)
}

func TestPipelineSkipsBlankChunks(t *testing.T) {
	gen := &stubGenerator{}
	chunker := &stubChunker{chunks: []string{"alpha", " \n\t ", "omega"}}
	waits := &waitRecorder{}

	summary, err := newTestPipeline(gen, chunker, waits).Run(context.Background(), longText(), DefaultProcessingConfig(), nil)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Summarized)
	require.Len(t, gen.prompts, 3)
	require.Equal(t, 1, waits.waits)
}

func TestPipelineStopsWhenWaitIsCancelled(t *testing.T) {
	gen := &stubGenerator{}
	chunker := &stubChunker{chunks: []string{"one", "two", "three"}}
	waits := &waitRecorder{err: context.Canceled}
	var events []Progress

	_, err := newTestPipeline(gen, chunker, waits).Run(context.Background(), longText(), DefaultProcessingConfig(), collectStates(&events))
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, gen.prompts, 1)
	require.Equal(t, StateFailed, events[len(events)-1].State)
}

func TestPipelineChunkerErrorIsInvalidInput(t *testing.T) {
	chunker := &stubChunker{err: errors.New("overlap must be smaller than size")}

	_, err := newTestPipeline(&stubGenerator{}, chunker, &waitRecorder{}).Run(context.Background(), longText(), DefaultProcessingConfig(), nil)
	require.True(t, apperrors.IsCode(err, CodeInvalidInput))
}

func TestPipelineProgressPercentages(t *testing.T) {
	chunker := &stubChunker{chunks: []string{"a", "b", "c", "d"}}
	var events []Progress

	_, err := newTestPipeline(&stubGenerator{}, chunker, &waitRecorder{}).Run(context.Background(), longText(), DefaultProcessingConfig(), collectStates(&events))
	require.NoError(t, err)

	last := 0
	for _, ev := range events {
		require.GreaterOrEqual(t, ev.Percent, last, fmt.Sprintf("state %s", ev.State))
		last = ev.Percent
	}
	require.Equal(t, 100, last)
	require.Contains(t, percentsOf(events), 75)
	require.Contains(t, percentsOf(events), 90)
}

func percentsOf(events []Progress) []int {
	out := make([]int, len(events))
	for i, ev := range events {
		out[i] = ev.Percent
	}
	return out
}

func TestCanTransition(t *testing.T) {
	require.True(t, canTransition(StateIdle, StateExtracting))
	require.True(t, canTransition(StateMultiChunkSummarizing, StateSynthesizing))
	require.False(t, canTransition(StateSingleChunkSummarizing, StateSynthesizing))
	require.False(t, canTransition(StateDone, StateFailed))
	require.False(t, canTransition(StateFailed, StateDone))
}
