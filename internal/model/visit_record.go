package model

import "time"

const VisitTimeLayout = "15:04"

type VisitRecord struct {
	ID          string
	Date        time.Time
	Time        string
	Company     string
	Description string
	Responsible string
}

type VisitRecordDraft struct {
	Date        time.Time
	Time        string
	Company     string
	Description string
	Responsible string
}

func (d VisitRecordDraft) Validate() error {
	var v validator
	v.date("date", d.Date)
	if _, err := time.Parse(VisitTimeLayout, d.Time); err != nil {
		v.fail("time", "must be HH:MM")
	}
	v.require("company", d.Company)
	v.require("description", d.Description)
	v.require("responsible", d.Responsible)
	return v.err()
}

func (d VisitRecordDraft) Entity() VisitRecord {
	return VisitRecord{
		Date:        d.Date,
		Time:        d.Time,
		Company:     d.Company,
		Description: d.Description,
		Responsible: d.Responsible,
	}
}
