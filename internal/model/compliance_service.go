package model

import "time"

// ComplianceService is a fire-safety (AVCB) item. NextMaintenance and
// DaysToExpire are always derived together from LastMaintenance and Periodicity.
type ComplianceService struct {
	ID              string
	Service         string
	Periodicity     Periodicity
	LastMaintenance time.Time
	NextMaintenance time.Time
	DaysToExpire    int
}

type ComplianceServiceDraft struct {
	Service         string
	Periodicity     Periodicity
	LastMaintenance time.Time
}

func (d ComplianceServiceDraft) Validate() error {
	var v validator
	v.require("service", d.Service)
	v.periodicity("periodicity", d.Periodicity)
	v.date("last_maintenance", d.LastMaintenance)
	return v.err()
}
