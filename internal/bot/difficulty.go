package bot

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDifficulty is returned when a difficulty name is not recognised.
var ErrInvalidDifficulty = errors.New("invalid difficulty")

// Difficulty selects how many plies the search looks ahead.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

// DefaultDifficulty is used when no difficulty is configured.
const DefaultDifficulty = Medium

// Depth returns the search depth in plies for the difficulty.
func (d Difficulty) Depth() int {
	switch d {
	case Easy:
		return 3
	case Hard:
		return 7
	default:
		return 5
	}
}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return fmt.Sprintf("difficulty(%d)", int(d))
	}
}

// ParseDifficulty accepts easy, medium or hard in any case. An empty name
// yields DefaultDifficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, nil
	case "medium", "":
		return Medium, nil
	case "hard":
		return Hard, nil
	}
	return DefaultDifficulty, fmt.Errorf("%w: %q", ErrInvalidDifficulty, s)
}
