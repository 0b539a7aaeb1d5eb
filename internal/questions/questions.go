// Package questions loads the question bank served to teams. The bank is a
// YAML document of stories, each holding stages, each holding one question
// per phase.
package questions

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/playperu/codexhunt/internal/hunt"
)

//go:embed questions.yaml
var defaultBank []byte

type Question struct {
	Prompt string `yaml:"prompt" json:"prompt"`
	Hint   string `yaml:"hint,omitempty" json:"hint,omitempty"`
	Image  string `yaml:"image,omitempty" json:"image,omitempty"`
	Answer string `yaml:"answer" json:"-"`
}

// Matches reports whether answer is correct, ignoring case and surrounding
// whitespace.
func (q Question) Matches(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(q.Answer))
}

// Bank is indexed [story-1][stage-1][phase-1].
type Bank [][][]Question

// Default returns the bank compiled into the binary.
func Default() (Bank, error) {
	return Parse(defaultBank)
}

// Load reads a bank from path, or the default bank when path is empty.
func Load(path string) (Bank, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading question bank: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a bank. Every story must have exactly the
// stages and phases the progression rules expect, and every question needs a
// prompt and an answer.
func Parse(data []byte) (Bank, error) {
	var b Bank
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decoding question bank: %w", err)
	}

	if len(b) != hunt.StoryCount {
		return nil, fmt.Errorf("question bank has %d stories, want %d", len(b), hunt.StoryCount)
	}
	for si, stages := range b {
		story := si + 1
		if len(stages) != hunt.FinalStage(story) {
			return nil, fmt.Errorf("story %d has %d stages, want %d", story, len(stages), hunt.FinalStage(story))
		}
		for sti, phases := range stages {
			stage := sti + 1
			if want := hunt.LastPhase(story, stage); len(phases) != want {
				return nil, fmt.Errorf("story %d stage %d has %d phases, want %d", story, stage, len(phases), want)
			}
			for pi, q := range phases {
				if strings.TrimSpace(q.Prompt) == "" || strings.TrimSpace(q.Answer) == "" {
					return nil, fmt.Errorf("story %d stage %d phase %d: prompt and answer are required", story, stage, pi+1)
				}
			}
		}
	}
	return b, nil
}

// At returns the question for a position. ok is false outside the bank.
func (b Bank) At(story, stage, phase int) (Question, bool) {
	if story < 1 || story > len(b) {
		return Question{}, false
	}
	stages := b[story-1]
	if stage < 1 || stage > len(stages) {
		return Question{}, false
	}
	phases := stages[stage-1]
	if phase < 1 || phase > len(phases) {
		return Question{}, false
	}
	return phases[phase-1], true
}
