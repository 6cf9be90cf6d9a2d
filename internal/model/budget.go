package model

import "time"

type Budget struct {
	ID          string
	Description string
	UserID      string
	CreatedAt   time.Time
	Documents   []BudgetDocument
}

type BudgetDraft struct {
	Description string
	UserID      string
}

func (d BudgetDraft) Validate() error {
	var v validator
	v.require("description", d.Description)
	v.require("user_id", d.UserID)
	return v.err()
}

func (d BudgetDraft) Entity() Budget {
	return Budget{Description: d.Description, UserID: d.UserID}
}

// BudgetDocument is the metadata row for a file kept in blob storage.
type BudgetDocument struct {
	ID       string
	BudgetID string
	FileName string
	FilePath string
	FileType string
	FileSize int64
	UserID   string
}
