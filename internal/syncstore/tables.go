package syncstore

import (
	"time"

	"github.com/nurpe/maintenance-tracker/internal/model"
)

const (
	CollectionContracts       = "companies"
	CollectionTickets         = "service_calls"
	CollectionVisits          = "visits"
	CollectionCompliance      = "avcb_services"
	CollectionBudgets         = "budgets"
	CollectionBudgetDocuments = "budget_documents"
)

func Collections() []string {
	return []string{
		CollectionContracts,
		CollectionTickets,
		CollectionVisits,
		CollectionCompliance,
		CollectionBudgets,
		CollectionBudgetDocuments,
	}
}

var contractCodec = codec[model.ServiceContract]{
	collection: CollectionContracts,
	id:         func(v *model.ServiceContract) *string { return &v.ID },
	fields: []field[model.ServiceContract]{
		stringField("area", func(v *model.ServiceContract) *string { return &v.Area }),
		enumField("periodicity", func(v *model.ServiceContract) *model.Periodicity { return &v.Periodicity }),
		stringField("company", func(v *model.ServiceContract) *string { return &v.ProviderName }),
		optionalStringField("observation", func(v *model.ServiceContract) **string { return &v.Note }),
		dateField("last_maintenance", func(v *model.ServiceContract) *time.Time { return &v.LastMaintenance }),
		dateField("next_maintenance", func(v *model.ServiceContract) *time.Time { return &v.NextMaintenance }),
		stringField("technical_responsible", func(v *model.ServiceContract) *string { return &v.TechnicalResponsible }),
	},
}

var ticketCodec = codec[model.SupportTicket]{
	collection: CollectionTickets,
	id:         func(v *model.SupportTicket) *string { return &v.ID },
	fields: []field[model.SupportTicket]{
		dateField("opening_date", func(v *model.SupportTicket) *time.Time { return &v.OpeningDate }),
		stringField("protocol", func(v *model.SupportTicket) *string { return &v.Protocol }),
		stringField("area", func(v *model.SupportTicket) *string { return &v.Area }),
		stringField("problem", func(v *model.SupportTicket) *string { return &v.Problem }),
		enumField("status", func(v *model.SupportTicket) *model.TicketStatus { return &v.Status }),
	},
}

var visitCodec = codec[model.VisitRecord]{
	collection: CollectionVisits,
	id:         func(v *model.VisitRecord) *string { return &v.ID },
	fields: []field[model.VisitRecord]{
		dateField("date", func(v *model.VisitRecord) *time.Time { return &v.Date }),
		stringField("time", func(v *model.VisitRecord) *string { return &v.Time }),
		stringField("company", func(v *model.VisitRecord) *string { return &v.Company }),
		stringField("description", func(v *model.VisitRecord) *string { return &v.Description }),
		stringField("responsible", func(v *model.VisitRecord) *string { return &v.Responsible }),
	},
}

var complianceCodec = codec[model.ComplianceService]{
	collection: CollectionCompliance,
	id:         func(v *model.ComplianceService) *string { return &v.ID },
	fields: []field[model.ComplianceService]{
		stringField("service", func(v *model.ComplianceService) *string { return &v.Service }),
		enumField("periodicity", func(v *model.ComplianceService) *model.Periodicity { return &v.Periodicity }),
		dateField("last_maintenance", func(v *model.ComplianceService) *time.Time { return &v.LastMaintenance }),
		dateField("next_maintenance", func(v *model.ComplianceService) *time.Time { return &v.NextMaintenance }),
		intField("days_to_expire", func(v *model.ComplianceService) *int { return &v.DaysToExpire }),
	},
}

// Documents are attached separately; see Budgets.
var budgetCodec = codec[model.Budget]{
	collection: CollectionBudgets,
	id:         func(v *model.Budget) *string { return &v.ID },
	fields: []field[model.Budget]{
		stringField("description", func(v *model.Budget) *string { return &v.Description }),
		stringField("user_id", func(v *model.Budget) *string { return &v.UserID }),
		timestampField("created_at", func(v *model.Budget) *time.Time { return &v.CreatedAt }),
	},
}

var budgetDocumentCodec = codec[model.BudgetDocument]{
	collection: CollectionBudgetDocuments,
	id:         func(v *model.BudgetDocument) *string { return &v.ID },
	fields: []field[model.BudgetDocument]{
		stringField("budget_id", func(v *model.BudgetDocument) *string { return &v.BudgetID }),
		stringField("file_name", func(v *model.BudgetDocument) *string { return &v.FileName }),
		stringField("file_path", func(v *model.BudgetDocument) *string { return &v.FilePath }),
		stringField("file_type", func(v *model.BudgetDocument) *string { return &v.FileType }),
		int64Field("file_size", func(v *model.BudgetDocument) *int64 { return &v.FileSize }),
		stringField("user_id", func(v *model.BudgetDocument) *string { return &v.UserID }),
	},
}
