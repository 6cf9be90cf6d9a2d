package model

import "time"

type TicketStatus string

const (
	TicketStatusResolved    TicketStatus = "Resolvido"
	TicketStatusPending     TicketStatus = "Pendente"
	TicketStatusUnderReview TicketStatus = "Análise"
)

func TicketStatuses() []TicketStatus {
	return []TicketStatus{TicketStatusResolved, TicketStatusPending, TicketStatusUnderReview}
}

func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusResolved, TicketStatusPending, TicketStatusUnderReview:
		return true
	}
	return false
}

// SupportTicket is a service call opened with an outside provider. Protocol is
// the provider's own reference and is kept as free text.
type SupportTicket struct {
	ID          string
	OpeningDate time.Time
	Protocol    string
	Area        string
	Problem     string
	Status      TicketStatus
}

type SupportTicketDraft struct {
	OpeningDate time.Time
	Protocol    string
	Area        string
	Problem     string
	Status      TicketStatus
}

func (d SupportTicketDraft) Validate() error {
	var v validator
	v.date("opening_date", d.OpeningDate)
	v.require("protocol", d.Protocol)
	v.require("area", d.Area)
	v.require("problem", d.Problem)
	if !d.Status.Valid() {
		v.fail("status", "must be one of Resolvido, Pendente, Análise")
	}
	return v.err()
}

func (d SupportTicketDraft) Entity() SupportTicket {
	return SupportTicket{
		OpeningDate: d.OpeningDate,
		Protocol:    d.Protocol,
		Area:        d.Area,
		Problem:     d.Problem,
		Status:      d.Status,
	}
}
