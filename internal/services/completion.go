package services

import "github.com/pronounce/backend/internal/models"

// PromptsCompleted counts the leading prompts that have a passing audio record.
// The count stops at the first prompt without one even when later prompts pass.
func PromptsCompleted(prompts []models.Prompt, audio []models.AudioRecord) int {
	completed := 0
	for _, prompt := range prompts {
		if !hasPassing(prompt.ID, audio) {
			break
		}
		completed++
	}
	return completed
}

// IsComplete reports whether every prompt has a passing audio record
func IsComplete(prompts []models.Prompt, audio []models.AudioRecord) bool {
	return PromptsCompleted(prompts, audio) == len(prompts)
}

// SelectReference returns the most recently appended passing audio record for a prompt, or nil
func SelectReference(audio []models.AudioRecord, promptID int64) *models.AudioRecord {
	for i := len(audio) - 1; i >= 0; i-- {
		if audio[i].PromptID == promptID && audio[i].Passed() {
			return &audio[i]
		}
	}
	return nil
}

// passingOnly keeps the audio records with a passing verdict, preserving order
func passingOnly(audio []models.AudioRecord) []models.AudioRecord {
	passed := make([]models.AudioRecord, 0, len(audio))
	for _, a := range audio {
		if a.Passed() {
			passed = append(passed, a)
		}
	}
	return passed
}

func hasPassing(promptID int64, audio []models.AudioRecord) bool {
	for i := range audio {
		if audio[i].PromptID == promptID && audio[i].Passed() {
			return true
		}
	}
	return false
}
