package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Row   int    // 1-based row number, 0 if the ref is a code or id
	Value string // task code or id when Row is 0
}

var (
	// ErrTaskRefRequired indicates no task reference was provided.
	ErrTaskRefRequired = errors.New("task reference required")

	// ErrInvalidTaskRef indicates a malformed task reference.
	ErrInvalidTaskRef = errors.New("invalid task reference")
)

// ParseTaskRef parses a task reference from args.
//
// Parsing rules:
// 1. No args or a blank arg → error: task reference required
// 2. More than one arg → error: invalid task reference
// 3. All digits → row number of the task listing (must be >= 1)
// 4. Otherwise → task code or task id
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 {
		return TaskRef{}, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return TaskRef{}, fmt.Errorf("%w: %s", ErrInvalidTaskRef, strings.Join(args, " "))
	}

	arg := strings.TrimSpace(args[0])
	if arg == "" {
		return TaskRef{}, ErrTaskRefRequired
	}

	if isAllDigits(arg) {
		num, err := strconv.Atoi(arg)
		if err != nil {
			return TaskRef{}, fmt.Errorf("%w: %s", ErrInvalidTaskRef, arg)
		}
		if num < 1 {
			return TaskRef{}, fmt.Errorf("%w: %d", ErrInvalidTaskRef, num)
		}
		return TaskRef{Row: num}, nil
	}

	return TaskRef{Value: arg}, nil
}

func (r TaskRef) String() string {
	if r.Row > 0 {
		return strconv.Itoa(r.Row)
	}
	return r.Value
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
