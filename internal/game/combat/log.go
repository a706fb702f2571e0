package combat

import (
	"errors"
	"fmt"
)

// Log is the ordered list of human-readable lines produced by one engine
// operation.
type Log []string

func (l *Log) add(format string, args ...any) {
	*l = append(*l, fmt.Sprintf(format, args...))
}

// Input rejections. A rejected operation returns one of these together with
// a single log line and leaves all state untouched.
var (
	ErrOutOfBounds          = errors.New("out of bounds")
	ErrBlocked              = errors.New("blocked")
	ErrNoMove               = errors.New("already at destination")
	ErrOccupied             = errors.New("cell occupied")
	ErrInsufficientMovement = errors.New("not enough movement")
	ErrOutOfRange           = errors.New("out of range")
	ErrIncapacitated        = errors.New("cannot act")
	ErrClashActive          = errors.New("a clash is in progress")
	ErrNoClash              = errors.New("no clash to resolve")
	ErrInvalidChoice        = errors.New("clash choice must be PRESS or DEFEND")
	ErrUnknownAbility       = errors.New("unknown ability")
	ErrCannotAfford         = errors.New("cannot afford ability")
	ErrInvalidTarget        = errors.New("invalid target")
	ErrNotRegistered        = errors.New("combatant not registered")
)

func reject(err error, format string, args ...any) (Log, error) {
	return Log{fmt.Sprintf(format, args...)}, err
}
