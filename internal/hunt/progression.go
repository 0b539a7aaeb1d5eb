package hunt

import (
	"math"
	"time"
)

// defaultLayout is the number of phases in each stage (index stage-1).
var defaultLayout = []int{4, 2, 4, 3}

// storyLayouts selects the branching rule for each story. All stories
// currently share the same layout.
var storyLayouts = map[int][]int{
	1: defaultLayout,
	2: defaultLayout,
	3: defaultLayout,
}

func layout(story int) []int {
	if l, ok := storyLayouts[story]; ok {
		return l
	}
	return defaultLayout
}

// LastPhase returns the number of phases in stage for story, or 0 for a stage
// outside the layout.
func LastPhase(story, stage int) int {
	l := layout(story)
	if stage < 1 || stage > len(l) {
		return 0
	}
	return l[stage-1]
}

// FinalStage returns the stage whose last phase completes the hunt.
func FinalStage(story int) int {
	return len(layout(story))
}

// Transition is the result of applying an answer to a team's position.
type Transition struct {
	Stage     int
	Phase     int
	Health    float64
	Completed bool
	// EndTime is set exactly when this answer completes the hunt, and nil
	// otherwise. Persisting nil on every other correct answer is intended.
	EndTime *time.Time
}

// Advance applies an answer to (story, stage, phase). A wrong answer costs
// WrongAnswerPenalty health, floored at zero, and leaves the position alone.
// A correct answer moves to the next phase, to phase 1 of the next stage, or
// completes the hunt at the last phase of the final stage.
func Advance(story, stage, phase int, health float64, correct bool, now time.Time) Transition {
	if !correct {
		return Transition{
			Stage:  stage,
			Phase:  phase,
			Health: math.Max(0, health-WrongAnswerPenalty),
		}
	}

	t := Transition{Stage: stage, Phase: phase, Health: health}
	last := LastPhase(story, stage)
	switch {
	case last > 0 && phase == last && stage == FinalStage(story):
		end := now
		t.Completed = true
		t.EndTime = &end
	case last > 0 && phase == last:
		t.Stage = stage + 1
		t.Phase = 1
	default:
		t.Phase = phase + 1
	}
	return t
}

// Restore returns health after redeeming a coupon.
func Restore(health float64) float64 {
	return math.Min(MaxHealth, health+RestoreAmount)
}
