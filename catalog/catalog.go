// Package catalog parses and validates activity catalog files: JSON lists of
// learning activities that the importer loads into the database.
package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Entry is one activity as written in a catalog file.
type Entry struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	MathTopic   string `json:"math_topic"`
	Difficulty  string `json:"difficulty"`
	XPValue     int    `json:"xp_value"`
	CoinValue   int    `json:"coin_value"`
}

// Problem describes one validation failure, addressable by entry index.
type Problem struct {
	Index int
	Msg   string
}

func (p Problem) String() string {
	return fmt.Sprintf("entry %d: %s", p.Index, p.Msg)
}

var knownTopics = map[string]bool{
	"aritmetica":  true,
	"geometria":   true,
	"algebra":     true,
	"estadistica": true,
	"fracciones":  true,
}

var knownDifficulties = map[string]bool{
	"easy":   true,
	"medium": true,
	"hard":   true,
}

// normalize cleans up text copied from documents: unicode spaces and dash
// variants collapse to plain ASCII.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\u202F", " ")
	s = strings.ReplaceAll(s, "\u00A0", " ")
	s = strings.ReplaceAll(s, "–", "-")
	s = strings.ReplaceAll(s, "—", "-")
	return strings.Join(strings.Fields(s), " ")
}

// Parse decodes a catalog file, normalizes each entry and fills defaults.
// Defaults match the activity model: 10 XP, 5 coins, medium difficulty.
func Parse(data []byte) ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("invalid catalog JSON: %w", err)
	}

	for i := range entries {
		entries[i].Title = normalize(entries[i].Title)
		entries[i].Description = normalize(entries[i].Description)
		entries[i].MathTopic = strings.ToLower(strings.TrimSpace(entries[i].MathTopic))
		entries[i].Difficulty = strings.ToLower(strings.TrimSpace(entries[i].Difficulty))
		if entries[i].Difficulty == "" {
			entries[i].Difficulty = "medium"
		}
		if entries[i].XPValue == 0 {
			entries[i].XPValue = 10
		}
		if entries[i].CoinValue == 0 {
			entries[i].CoinValue = 5
		}
	}

	return entries, nil
}

// Lint checks parsed entries against the catalog rules. The returned problems
// are independent: one broken entry does not hide the rest.
func Lint(entries []Entry) []Problem {
	var problems []Problem
	seen := make(map[string]int)

	for i, e := range entries {
		if e.Title == "" {
			problems = append(problems, Problem{i, "title is required"})
		} else if prev, dup := seen[e.Title]; dup {
			problems = append(problems, Problem{i, fmt.Sprintf("duplicate title (first at entry %d)", prev)})
		} else {
			seen[e.Title] = i
		}

		if e.MathTopic != "" && !knownTopics[e.MathTopic] {
			problems = append(problems, Problem{i, fmt.Sprintf("unknown math_topic %q", e.MathTopic)})
		}
		if !knownDifficulties[e.Difficulty] {
			problems = append(problems, Problem{i, fmt.Sprintf("unknown difficulty %q", e.Difficulty)})
		}
		if e.XPValue < 0 {
			problems = append(problems, Problem{i, "xp_value must not be negative"})
		}
		if e.CoinValue < 0 {
			problems = append(problems, Problem{i, "coin_value must not be negative"})
		}
	}

	return problems
}
