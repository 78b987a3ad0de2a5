// Package alignment reduces raw ASR word alignments into one timing per prompt word
package alignment

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pronounce/backend/internal/models"
)

const (
	// UnknownWord is the token the recognizer emits for out-of-vocabulary speech
	UnknownWord = "<UNK>"
	// TruncationMarker marks a word the recognizer cut off
	TruncationMarker = "[TRUNC:]"
)

// WordIndex returns the slot index embedded in an alignment token of the form "word@index".
// Only the field after the first "@" is read.
func WordIndex(token string) (int, error) {
	_, rest, ok := strings.Cut(token, "@")
	if !ok {
		return 0, fmt.Errorf("alignment token %q has no word index", token)
	}
	field, _, _ := strings.Cut(rest, "@")
	index, err := strconv.Atoi(field)
	if err != nil {
		return 0, fmt.Errorf("alignment token %q has invalid word index: %w", token, err)
	}
	return index, nil
}

// ChooseWordAlignments keeps the last alignment entry of every word slot.
//
// Unknown-word and truncated entries are dropped. A later entry for the same
// index overwrites an earlier one. The result is ordered by ascending index.
func ChooseWordAlignments(entries []models.WordAlignment) ([]models.WordAlignment, error) {
	chosen := make(map[int]models.WordAlignment)
	for _, entry := range entries {
		if entry.Word == UnknownWord || strings.Contains(entry.Word, TruncationMarker) {
			continue
		}
		index, err := WordIndex(entry.Word)
		if err != nil {
			return nil, err
		}
		chosen[index] = entry
	}

	indices := make([]int, 0, len(chosen))
	for index := range chosen {
		indices = append(indices, index)
	}
	sort.Ints(indices)

	result := make([]models.WordAlignment, 0, len(indices))
	for _, index := range indices {
		result = append(result, chosen[index])
	}
	return result, nil
}

// ToMillis converts start and length from fractional seconds to whole milliseconds, truncating
func ToMillis(entries []models.WordAlignment) []models.MillisAlignment {
	result := make([]models.MillisAlignment, 0, len(entries))
	for _, entry := range entries {
		result = append(result, models.MillisAlignment{
			Word:   entry.Word,
			Start:  int(1000 * entry.Start),
			Length: int(1000 * entry.Length),
		})
	}
	return result
}

// MatchWords pairs the whitespace separated words of a prompt with alignments by position.
// It returns models.ErrAlignmentMismatch when the two sequences differ in length.
func MatchWords(promptText string, aligns []models.MillisAlignment) ([]models.WordTiming, error) {
	words := strings.Fields(promptText)
	if len(words) != len(aligns) {
		return nil, fmt.Errorf("%w: %d words, %d alignments", models.ErrAlignmentMismatch, len(words), len(aligns))
	}

	result := make([]models.WordTiming, 0, len(words))
	for i, word := range words {
		result = append(result, models.WordTiming{Word: word, Alignment: aligns[i]})
	}
	return result, nil
}

// WordTimings runs the full reduction used by the review surface: choose, convert, match
func WordTimings(promptText string, raw []models.WordAlignment) ([]models.WordTiming, error) {
	chosen, err := ChooseWordAlignments(raw)
	if err != nil {
		return nil, err
	}
	return MatchWords(promptText, ToMillis(chosen))
}
