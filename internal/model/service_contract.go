package model

import "time"

// ServiceContract is a specialized-service provider under contract for one area.
// NextMaintenance is typed in by the operator, not derived.
type ServiceContract struct {
	ID                   string
	Area                 string
	Periodicity          Periodicity
	ProviderName         string
	Note                 *string
	LastMaintenance      time.Time
	NextMaintenance      time.Time
	TechnicalResponsible string
}

type ServiceContractDraft struct {
	Area                 string
	Periodicity          Periodicity
	ProviderName         string
	Note                 *string
	LastMaintenance      time.Time
	NextMaintenance      time.Time
	TechnicalResponsible string
}

func (d ServiceContractDraft) Validate() error {
	var v validator
	v.require("area", d.Area)
	v.periodicity("periodicity", d.Periodicity)
	v.require("provider_name", d.ProviderName)
	v.date("last_maintenance", d.LastMaintenance)
	v.date("next_maintenance", d.NextMaintenance)
	v.require("technical_responsible", d.TechnicalResponsible)
	return v.err()
}

func (d ServiceContractDraft) Entity() ServiceContract {
	return ServiceContract{
		Area:                 d.Area,
		Periodicity:          d.Periodicity,
		ProviderName:         d.ProviderName,
		Note:                 d.Note,
		LastMaintenance:      d.LastMaintenance,
		NextMaintenance:      d.NextMaintenance,
		TechnicalResponsible: d.TechnicalResponsible,
	}
}
