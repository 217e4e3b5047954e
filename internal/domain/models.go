package domain

import "time"

// Operator is the arithmetic operation of a problem. Only addition is supported.
type Operator string

const OpAdd Operator = "+"

// Problem is a single arithmetic question.
type Problem struct {
	ID string   `json:"id"`
	A  int      `json:"a"`
	B  int      `json:"b"`
	Op Operator `json:"op"`
}

// Answer returns the correct result for the problem. Operands are expected to
// stay within half of the int range; beyond that the sum wraps.
func (p Problem) Answer() int {
	return p.A + p.B
}

// SessionConfig describes a drill run.
type SessionConfig struct {
	Min            int  `yaml:"min" json:"min"`
	Max            int  `yaml:"max" json:"max"`
	Count          int  `yaml:"count" json:"count"`
	TimePerProblem int  `yaml:"timePerProblem" json:"timePerProblem"` // seconds, 0 disables the countdown
	AutoNext       bool `yaml:"autoNext" json:"autoNext"`
	Shuffle        bool `yaml:"shuffle" json:"shuffle"`
}

// DefaultSessionConfig mirrors the settings a new user starts with.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Min:      0,
		Max:      20,
		Count:    10,
		AutoNext: true,
	}
}

// Feedback is the outcome of the most recent answer check.
type Feedback struct {
	OK      bool `json:"ok"`
	Correct int  `json:"correct"`
	Expired bool `json:"expired,omitempty"`
}

// Reason explains why a session ended.
type Reason string

const (
	ReasonUser     Reason = "user"
	ReasonFinished Reason = "finished"

	// ReasonDisconnect marks runs abandoned by a dropped client connection.
	ReasonDisconnect Reason = "disconnect"
)

// SessionRecord is the archived summary of one session.
type SessionRecord struct {
	Date        time.Time `json:"date"`
	Solved      int       `json:"solved"`
	Total       int       `json:"total"`
	DurationSec int       `json:"durationSec"`
	Reason      Reason    `json:"reason"`
}
