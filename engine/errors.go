package engine

import (
	"errors"
	"fmt"
)

var (
	ErrRoomFull              = errors.New("room full")
	ErrMatchInProgress       = errors.New("game in progress")
	ErrAlreadyJoined         = errors.New("already joined")
	ErrUnknownPlayer         = errors.New("not in room")
	ErrMatchNotFinished      = errors.New("match not finished yet")
	ErrInvalidDirection      = errors.New("invalid direction")
	ErrInvalidPlayersPerTeam = errors.New("invalid playersPerTeam")
)

// ValidatePlayersPerTeam checks a requested team size against the settings.
func ValidatePlayersPerTeam(s Settings, n int) error {
	if n < s.MinPlayersPerTeam || n > s.MaxPlayersPerTeam {
		return fmt.Errorf("%w: playersPerTeam must be between %d and %d",
			ErrInvalidPlayersPerTeam, s.MinPlayersPerTeam, s.MaxPlayersPerTeam)
	}
	return nil
}
