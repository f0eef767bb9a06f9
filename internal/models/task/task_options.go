package task

import (
	"time"
)

// TaskOption - правки полей задачи до принятия (после принятия текст фиксируется)
type TaskOption func(*Task)

func WithTitle(title string) TaskOption {
	if title == "" {
		return nil
	}
	return func(task *Task) {
		task.Title = title
	}
}

func WithDescription(description string) TaskOption {
	if description == "" {
		return nil
	}
	return func(task *Task) {
		task.Description = description
	}
}

func WithCategory(category Category) TaskOption {
	if category == "" {
		return nil
	}
	return func(task *Task) {
		task.Category = ParseCategory(string(category))
	}
}

func WithDueDate(dueDate time.Time) TaskOption {
	if dueDate.IsZero() {
		return nil
	}
	return func(task *Task) {
		task.DueDate = &dueDate
	}
}
