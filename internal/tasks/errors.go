package tasks

import "fmt"

type TaskNotFoundError struct {
	Name string
}

func (e TaskNotFoundError) Error() string {
	return fmt.Sprintf("task '%s' not found", e.Name)
}

type DuplicateTaskError struct {
	Name string
}

func (e DuplicateTaskError) Error() string {
	return fmt.Sprintf("task '%s' is already registered", e.Name)
}
