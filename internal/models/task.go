package models

import "time"

const (
	TitleMaxLength = 300

	// Tasks created without an explicit due date fall due this many
	// days after creation.
	DueDateDefaultDays = 3
)

type Task struct {
	ID          int64
	OwnerID     string
	Title       string
	Description string
	Status      bool
	DueDate     time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
