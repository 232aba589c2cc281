package store

import "time"

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Board struct {
	ID        string
	Title     string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Column struct {
	ID       string
	BoardID  string
	Name     string
	Position int
}

type Task struct {
	ID          string
	ColumnID    string
	Title       string
	Description string
	Status      string
	Position    int
}

// Subtask positions are not part of the wire contract; they only keep
// listings in creation order.
type Subtask struct {
	ID          string
	TaskID      string
	Title       string
	IsCompleted bool
	Position    int
}
