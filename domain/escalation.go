package domain

import (
	"math"
	"time"
)

// RentChange is the audit entry produced for one escalated apartment.
type RentChange struct {
	BuildingID      string  `json:"building_id"`
	BuildingName    string  `json:"building_name"`
	ApartmentNumber int     `json:"apartment_number"`
	TenantName      string  `json:"tenant_name"`
	OldRent         float64 `json:"old_rent"`
	NewRent         float64 `json:"new_rent"`
	Percentage      float64 `json:"percentage"`
}

// RunFailure records a building whose updated apartments could not be saved.
type RunFailure struct {
	BuildingID   string `json:"building_id"`
	BuildingName string `json:"building_name"`
	Reason       string `json:"reason"`
}

// RunReport is the outcome of one escalation run. Completed buildings stay
// escalated even when later buildings fail; Failures lists what was left
// behind.
type RunReport struct {
	RunID        string       `json:"run_id"`
	RunDate      time.Time    `json:"run_date"`
	Trigger      string       `json:"trigger"`
	UpdatedCount int          `json:"updated_count"`
	Changes      []RentChange `json:"changes"`
	Failures     []RunFailure `json:"failures,omitempty"`
	StartedAt    time.Time    `json:"started_at"`
	FinishedAt   time.Time    `json:"finished_at"`
}

// EscalationDue reports whether the apartment's rent must be raised on
// runDate: occupied, a contract start on file, a positive yearly increase,
// runDate matching the contract's month/day anniversary in a later year, and
// no escalation recorded for that year yet.
func (a *Apartment) EscalationDue(runDate time.Time) bool {
	if a == nil || a.Status != StatusOccupied || a.ContractStartDate == nil {
		return false
	}
	if a.RentIncreasePerYear <= 0 {
		return false
	}
	start := *a.ContractStartDate
	if start.Month() != runDate.Month() || start.Day() != runDate.Day() {
		return false
	}
	if runDate.Year() <= start.Year() {
		return false
	}
	return a.LastEscalatedYear < runDate.Year()
}

// EscalatedRent computes the raised rent, rounded to the nearest whole
// amount with halves going up.
func (a *Apartment) EscalatedRent() float64 {
	return math.Round(a.MonthlyRent * (1 + a.RentIncreasePerYear/100))
}

// Escalate applies the annual increase for runDate's year and returns the
// resulting change record.
func (a *Apartment) Escalate(b *Building, runDate time.Time) RentChange {
	oldRent := a.MonthlyRent
	a.MonthlyRent = a.EscalatedRent()
	a.LastEscalatedYear = runDate.Year()
	return RentChange{
		BuildingID:      b.ID,
		BuildingName:    b.Name,
		ApartmentNumber: a.ApartmentNumber,
		TenantName:      a.TenantName,
		OldRent:         oldRent,
		NewRent:         a.MonthlyRent,
		Percentage:      a.RentIncreasePerYear,
	}
}
