package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrClosed is returned by operations on a closed service.
	ErrClosed = errors.New("core: service closed")
	// ErrQueueFull reports that a persistence task could not be queued.
	ErrQueueFull = errors.New("core: persistence queue full")
)

// ValidationError lists form problems. Tasks is keyed by task index.
type ValidationError struct {
	Form  string         `json:"form,omitempty"`
	Tasks map[int]string `json:"tasks,omitempty"`
}

func (e *ValidationError) Error() string {
	var parts []string
	if e.Form != "" {
		parts = append(parts, e.Form)
	}
	idx := make([]int, 0, len(e.Tasks))
	for i := range e.Tasks {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	for _, i := range idx {
		parts = append(parts, fmt.Sprintf("task %d: %s", i, e.Tasks[i]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) empty() bool { return e.Form == "" && len(e.Tasks) == 0 }

func (e *ValidationError) task(i int, msg string) {
	if e.Tasks == nil {
		e.Tasks = make(map[int]string)
	}
	e.Tasks[i] = msg
}
