package model

import "time"

// Snapshot is a point-in-time copy of every cached collection, used for exports.
type Snapshot struct {
	GeneratedAt time.Time
	Contracts   []ServiceContract
	Tickets     []SupportTicket
	Visits      []VisitRecord
	Compliance  []ComplianceService
	Budgets     []Budget
}

type Report struct {
	FileName    string
	ContentType string
	Content     []byte
}
