// Package votescore packs a vote count and an arrival time into one sortable
// integer: votes*Multiplier + (MaxHorizon - arrival).
//
// Sorting scores in descending order ranks by votes first and, at equal votes,
// puts earlier arrivals ahead of later ones. Arrival is whole seconds since
// Epoch. Scores are kept below 2^53 so that stores holding them as doubles
// (redis sorted sets) round-trip them exactly.
package votescore

import (
	"errors"
	"time"
)

const (
	// Multiplier must stay strictly greater than MaxHorizon, otherwise the
	// residual carries into the vote field.
	Multiplier int64 = 1_000_000_000
	MaxHorizon int64 = Multiplier - 1
	// MaxVotes keeps MaxVotes*Multiplier+MaxHorizon below 2^53.
	MaxVotes = 9_000_000
)

// Epoch is the zero point of the arrival component (2024-01-01T00:00:00Z).
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

var (
	ErrVotesOutOfRange   = errors.New("votes out of range")
	ErrArrivalOutOfRange = errors.New("arrival out of range")
)

type Codec struct{}

func New() Codec {
	return Codec{}
}

// Arrival converts a wall-clock time into the arrival component, clamped to
// [0, MaxHorizon].
func (Codec) Arrival(t time.Time) int64 {
	arrival := int64(t.Sub(Epoch) / time.Second)
	if arrival < 0 {
		return 0
	}
	if arrival > MaxHorizon {
		return MaxHorizon
	}

	return arrival
}

func (Codec) Encode(votes int, arrival int64) (int64, error) {
	if votes < 0 || votes > MaxVotes {
		return 0, ErrVotesOutOfRange
	}
	if arrival < 0 || arrival > MaxHorizon {
		return 0, ErrArrivalOutOfRange
	}

	return int64(votes)*Multiplier + (MaxHorizon - arrival), nil
}

func (Codec) Decode(score int64) (votes int, arrival int64) {
	if score < 0 {
		return 0, 0
	}

	return int(score / Multiplier), MaxHorizon - score%Multiplier
}

// Seed is the score of a track on its first interaction: one vote at arrival.
func (c Codec) Seed(arrival int64) int64 {
	if arrival < 0 {
		arrival = 0
	}
	if arrival > MaxHorizon {
		arrival = MaxHorizon
	}
	score, _ := c.Encode(1, arrival)

	return score
}

// Bump applies delta to the vote field only. Votes are clamped to
// [0, MaxVotes]; the residual of the original score is kept untouched.
func (Codec) Bump(score int64, delta int) int64 {
	if score < 0 {
		score = 0
	}
	votes := score / Multiplier
	residual := score % Multiplier

	votes += int64(delta)
	if votes < 0 {
		votes = 0
	}
	if votes > MaxVotes {
		votes = MaxVotes
	}

	return votes*Multiplier + residual
}

// Votes decodes only the vote field.
func (c Codec) Votes(score int64) int {
	votes, _ := c.Decode(score)
	return votes
}
