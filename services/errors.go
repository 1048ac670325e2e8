package services

import "errors"

// Not-found conditions are expected states, not failures. Callers match them
// with errors.Is and decide whether to skip, retry later, or report.
var (
	ErrNoActiveEvent  = errors.New("no active bingo event")
	ErrBoardNotFound  = errors.New("bingo board not found")
	ErrTaskNotFound   = errors.New("bingo task not found")
	ErrTeamNotFound   = errors.New("bingo team not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrEventNotFound  = errors.New("bingo event not found")
)
