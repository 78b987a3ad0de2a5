package services

import (
	"testing"

	"github.com/pronounce/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptsCompleted(t *testing.T) {
	prompts := []models.Prompt{{ID: 1}, {ID: 2}, {ID: 3}}

	tests := []struct {
		name              string
		audio             []models.AudioRecord
		expectedCompleted int
		expectedComplete  bool
	}{
		{
			name:              "no audio",
			expectedCompleted: 0,
		},
		{
			name: "prefix of two",
			audio: []models.AudioRecord{
				{PromptID: 1, PassedValidation: boolPtr(true)},
				{PromptID: 2, PassedValidation: boolPtr(true)},
			},
			expectedCompleted: 2,
		},
		{
			name: "streak stops at first unmet prompt",
			audio: []models.AudioRecord{
				{PromptID: 1, PassedValidation: boolPtr(true)},
				{PromptID: 3, PassedValidation: boolPtr(true)},
			},
			expectedCompleted: 1,
		},
		{
			name: "rejected and pending do not count",
			audio: []models.AudioRecord{
				{PromptID: 1, PassedValidation: boolPtr(false)},
				{PromptID: 1},
			},
			expectedCompleted: 0,
		},
		{
			name: "complete with retries",
			audio: []models.AudioRecord{
				{PromptID: 1, PassedValidation: boolPtr(false)},
				{PromptID: 1, PassedValidation: boolPtr(true)},
				{PromptID: 2, PassedValidation: boolPtr(true)},
				{PromptID: 3, PassedValidation: boolPtr(true)},
			},
			expectedCompleted: 3,
			expectedComplete:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedCompleted, PromptsCompleted(prompts, tt.audio))
			assert.Equal(t, tt.expectedComplete, IsComplete(prompts, tt.audio))
		})
	}
}

func TestPromptsCompleted_Monotonic(t *testing.T) {
	prompts := []models.Prompt{{ID: 1}, {ID: 2}, {ID: 3}}
	audio := []models.AudioRecord{{PromptID: 1, PassedValidation: boolPtr(true)}}
	require.Equal(t, 1, PromptsCompleted(prompts, audio))

	audio = append(audio, models.AudioRecord{PromptID: 1, PassedValidation: boolPtr(true)})
	assert.Equal(t, 1, PromptsCompleted(prompts, audio), "satisfied prompt does not change the count")

	audio = append(audio, models.AudioRecord{PromptID: 2, PassedValidation: boolPtr(true)})
	assert.Equal(t, 2, PromptsCompleted(prompts, audio), "first unmet prompt advances the count by one")
}

func TestSelectReference(t *testing.T) {
	audio := []models.AudioRecord{
		{ID: "a", PromptID: 1, PassedValidation: boolPtr(true)},
		{ID: "b", PromptID: 2, PassedValidation: boolPtr(true)},
		{ID: "c", PromptID: 1, PassedValidation: boolPtr(true)},
		{ID: "d", PromptID: 1, PassedValidation: boolPtr(false)},
	}

	ref := SelectReference(audio, 1)
	require.NotNil(t, ref)
	assert.Equal(t, "c", ref.ID)

	assert.Nil(t, SelectReference(audio, 3))
	assert.Nil(t, SelectReference(nil, 1))
}
