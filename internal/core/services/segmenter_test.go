package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
)

// segmentContent is long enough to clear the minimum content check.
var segmentContent = strings.Repeat("The cell is the basic structural unit of all living organisms. ", 8)

func segmentHint() domain.SegmentationHint {
	return domain.MapGranularity(50)
}

func validSegmentJSON(contentLen int) string {
	half := contentLen / 2
	return fmt.Sprintf(`{"topics": [
		{"name": "Cell Structure", "description": "Organelles", "spans": [{"start": 0, "end": %d}]},
		{"name": "Cell Function", "description": "Metabolism", "spans": [{"start": %d, "end": %d}]}
	]}`, half, half, contentLen)
}

func TestSegmenter_Segment(t *testing.T) {
	contentLen := len([]rune(segmentContent))
	llm := &mockLLM{generateFunc: func(string) (string, error) {
		return validSegmentJSON(contentLen), nil
	}}
	seg := NewSegmenter(llm)

	result, err := seg.Segment(context.Background(), segmentContent, segmentHint())
	require.NoError(t, err)
	require.Len(t, result.Proposals, 2)
	assert.Equal(t, "Cell Structure", result.Proposals[0].Name)
	assert.Equal(t, "Organelles", result.Proposals[0].Description)
	assert.Equal(t, contentLen, result.Proposals[1].Spans[0].End)
	assert.Equal(t, 1, llm.generateCalls)
}

func TestSegmenter_Segment_InsufficientContent(t *testing.T) {
	seg := NewSegmenter(&mockLLM{})

	_, err := seg.Segment(context.Background(), "too short", segmentHint())
	assert.ErrorIs(t, err, domain.ErrInsufficientContent)

	_, err = seg.Segment(context.Background(), "   \n\t  ", segmentHint())
	assert.ErrorIs(t, err, domain.ErrInsufficientContent)
}

func TestSegmenter_Segment_NoLLM(t *testing.T) {
	seg := NewSegmenter(nil)

	_, err := seg.Segment(context.Background(), segmentContent, segmentHint())
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestSegmenter_Segment_RepairsOverlappingResponse(t *testing.T) {
	contentLen := len([]rune(segmentContent))
	overlapping := fmt.Sprintf(`{"topics": [
		{"name": "A", "spans": [{"start": 0, "end": %d}]},
		{"name": "B", "spans": [{"start": %d, "end": %d}]}
	]}`, contentLen/2+10, contentLen/2, contentLen)

	calls := 0
	llm := &mockLLM{generateFunc: func(prompt string) (string, error) {
		calls++
		if calls == 1 {
			return overlapping, nil
		}
		// The repair prompt names the violation.
		assert.Contains(t, prompt, "overlap")
		return validSegmentJSON(contentLen), nil
	}}
	seg := NewSegmenter(llm)

	result, err := seg.Segment(context.Background(), segmentContent, segmentHint())
	require.NoError(t, err)
	assert.Len(t, result.Proposals, 2)
	assert.Equal(t, 2, calls)
}

func TestSegmenter_Segment_RepairsMalformedJSON(t *testing.T) {
	contentLen := len([]rune(segmentContent))
	calls := 0
	llm := &mockLLM{generateFunc: func(string) (string, error) {
		calls++
		if calls == 1 {
			return "I could not find any topics, sorry.", nil
		}
		return validSegmentJSON(contentLen), nil
	}}
	seg := NewSegmenter(llm)

	result, err := seg.Segment(context.Background(), segmentContent, segmentHint())
	require.NoError(t, err)
	assert.Len(t, result.Proposals, 2)
}

func TestSegmenter_Segment_GivesUpAfterRetries(t *testing.T) {
	llm := &mockLLM{generateFunc: func(string) (string, error) {
		return `{"topics": []}`, nil
	}}
	seg := NewSegmenter(llm)

	_, err := seg.Segment(context.Background(), segmentContent, segmentHint())
	assert.ErrorIs(t, err, domain.ErrSegmentationUpstream)
	assert.Equal(t, maxSegmentRetries+1, llm.generateCalls)
}

func TestSegmenter_Segment_NonRetriableErrorStops(t *testing.T) {
	llm := &mockLLM{generateFunc: func(string) (string, error) {
		return "", domain.NewCollaboratorError("llm", "generate", false, errors.New("invalid api key"))
	}}
	seg := NewSegmenter(llm)

	_, err := seg.Segment(context.Background(), segmentContent, segmentHint())
	assert.ErrorIs(t, err, domain.ErrSegmentationUpstream)
	assert.Equal(t, 1, llm.generateCalls)
}

func TestSegmenter_Segment_FlagsReducedTopicCount(t *testing.T) {
	contentLen := len([]rune(segmentContent))
	llm := &mockLLM{generateFunc: func(string) (string, error) {
		return fmt.Sprintf(`{"topics": [{"name": "Only One", "spans": [{"start": 0, "end": %d}]}]}`, contentLen), nil
	}}
	seg := NewSegmenter(llm)

	hint := domain.MapGranularity(90)
	require.Greater(t, hint.MinTopics, 1)

	result, err := seg.Segment(context.Background(), segmentContent, hint)
	require.NoError(t, err)
	assert.True(t, result.Reduced)
	assert.Len(t, result.Proposals, 1)
}

func TestSegmenter_Segment_ClampsOvershootingSpan(t *testing.T) {
	contentLen := len([]rune(segmentContent))
	llm := &mockLLM{generateFunc: func(string) (string, error) {
		return fmt.Sprintf(`{"topics": [{"name": "Whole Thing", "spans": [{"start": 0, "end": %d}]}]}`, contentLen+5), nil
	}}
	seg := NewSegmenter(llm)

	result, err := seg.Segment(context.Background(), segmentContent, segmentHint())
	require.NoError(t, err)
	assert.Equal(t, contentLen, result.Proposals[0].Spans[0].End)
}

func TestSegmenter_Segment_UsesPromptStore(t *testing.T) {
	contentLen := len([]rune(segmentContent))
	llm := &mockLLM{generateFunc: func(string) (string, error) {
		return validSegmentJSON(contentLen), nil
	}}
	seg := NewSegmenter(llm)
	seg.SetPromptStore(&mockPromptStore{prompts: map[string]string{
		"segment": "CUSTOM %s %d %d %d %s",
	}})

	_, err := seg.Segment(context.Background(), segmentContent, segmentHint())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(llm.lastPrompt, "CUSTOM "))
}

func TestSegmenter_WithMinContentChars(t *testing.T) {
	llm := &mockLLM{generateFunc: func(string) (string, error) {
		return `{"topics": [{"name": "Tiny", "spans": [{"start": 0, "end": 10}]}]}`, nil
	}}
	seg := NewSegmenter(llm, WithMinContentChars(5))

	result, err := seg.Segment(context.Background(), "ten runes!", domain.SegmentationHint{MinTopics: 1, MaxTopics: 3})
	require.NoError(t, err)
	assert.Len(t, result.Proposals, 1)
}

func TestParseProposals_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no json", "plain text"},
		{"empty topics", `{"topics": []}`},
		{"unnamed topic", `{"topics": [{"name": "", "spans": [{"start": 0, "end": 10}]}]}`},
		{"no spans", `{"topics": [{"name": "A", "spans": []}]}`},
		{"inverted span", `{"topics": [{"name": "A", "spans": [{"start": 10, "end": 5}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseProposals(tt.raw, 100)
			assert.Error(t, err)
		})
	}
}

func TestExtractJSON_StripsCodeFence(t *testing.T) {
	raw := "Here you go:\n```json\n{\"topics\": []}\n```\nDone."
	jsonStr, err := extractJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, `{"topics": []}`, jsonStr)
}
