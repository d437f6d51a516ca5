package domain

import "time"

// ApartmentStatus describes the occupancy state of a single apartment.
type ApartmentStatus string

const (
	StatusVacant   ApartmentStatus = "Vacant"
	StatusOccupied ApartmentStatus = "Occupied"
)

// Valid reports whether the status is one of the known occupancy states.
func (s ApartmentStatus) Valid() bool {
	return s == StatusVacant || s == StatusOccupied
}

// Apartment is a leasable unit owned by exactly one building. It is never
// addressed or persisted outside its building record.
type Apartment struct {
	ApartmentNumber     int             `json:"apartment_number"`
	FloorNumber         int             `json:"floor_number"`
	TenantName          string          `json:"tenant_name"`
	TenantPhone         string          `json:"tenant_phone"`
	Status              ApartmentStatus `json:"status"`
	MonthlyRent         float64         `json:"monthly_rent"`
	RentIncreasePerYear float64         `json:"rent_increase_per_year"`
	ContractStartDate   *time.Time      `json:"contract_start_date,omitempty"`
	ContractEndDate     *time.Time      `json:"contract_end_date,omitempty"`
	LastEscalatedYear   int             `json:"last_escalated_year,omitempty"`
}

func (a *Apartment) IsOccupied() bool {
	return a != nil && a.Status == StatusOccupied
}

// Clear resets the apartment to its vacant default state. Calling it on an
// already vacant apartment is a no-op.
func (a *Apartment) Clear() {
	if a == nil {
		return
	}
	a.TenantName = ""
	a.TenantPhone = ""
	a.Status = StatusVacant
	a.MonthlyRent = 0
	a.RentIncreasePerYear = 0
	a.ContractStartDate = nil
	a.ContractEndDate = nil
	a.LastEscalatedYear = 0
}

// ApartmentPatch carries a partial apartment update. Nil fields are left
// untouched; the date fields distinguish "absent" from "set to null" via
// their Set/Value pair.
type ApartmentPatch struct {
	TenantName          *string
	TenantPhone         *string
	Status              *ApartmentStatus
	MonthlyRent         *float64
	RentIncreasePerYear *float64
	ContractStartDate   OptionalDate
	ContractEndDate     OptionalDate
}

// OptionalDate is a tri-state date: absent (Set=false), explicit null
// (Set=true, Value=nil) or a concrete date.
type OptionalDate struct {
	Set   bool
	Value *time.Time
}

// IsZero reports whether the patch contains no fields at all.
func (p ApartmentPatch) IsZero() bool {
	return p.TenantName == nil &&
		p.TenantPhone == nil &&
		p.Status == nil &&
		p.MonthlyRent == nil &&
		p.RentIncreasePerYear == nil &&
		!p.ContractStartDate.Set &&
		!p.ContractEndDate.Set
}

// Apply merges the patch into the apartment, overwriting only present fields.
// Validation happens in the use case; Apply is a plain field merge.
func (p ApartmentPatch) Apply(a *Apartment) {
	if a == nil {
		return
	}
	if p.TenantName != nil {
		a.TenantName = *p.TenantName
	}
	if p.TenantPhone != nil {
		a.TenantPhone = *p.TenantPhone
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.MonthlyRent != nil {
		a.MonthlyRent = *p.MonthlyRent
	}
	if p.RentIncreasePerYear != nil {
		a.RentIncreasePerYear = *p.RentIncreasePerYear
	}
	if p.ContractStartDate.Set {
		a.ContractStartDate = p.ContractStartDate.Value
	}
	if p.ContractEndDate.Set {
		a.ContractEndDate = p.ContractEndDate.Value
	}
}

// Building is a managed property holding a fixed, ordered set of apartments.
// Version is the optimistic concurrency token bumped on every persisted write.
type Building struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Number     int         `json:"number"`
	Location   string      `json:"location"`
	Apartments []Apartment `json:"apartments"`
	Version    int         `json:"version"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// BuildingSummary is the list-view projection; apartment detail is only
// available through a full get.
type BuildingSummary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Number         int    `json:"number"`
	Location       string `json:"location"`
	ApartmentCount int    `json:"apartment_count"`
}

// Summary projects the building into its list form.
func (b *Building) Summary() BuildingSummary {
	return BuildingSummary{
		ID:             b.ID,
		Name:           b.Name,
		Number:         b.Number,
		Location:       b.Location,
		ApartmentCount: len(b.Apartments),
	}
}

// Apartment returns the apartment with the given number, or nil.
func (b *Building) Apartment(number int) *Apartment {
	if b == nil {
		return nil
	}
	for i := range b.Apartments {
		if b.Apartments[i].ApartmentNumber == number {
			return &b.Apartments[i]
		}
	}
	return nil
}

// GenerateApartments produces the fixed apartment set 1..count with floors
// assigned bottom-up, apartmentsPerFloor units per floor. The layout is fixed
// for the lifetime of the building.
func GenerateApartments(count, perFloor int) []Apartment {
	apartments := make([]Apartment, 0, count)
	for i := 1; i <= count; i++ {
		apartments = append(apartments, Apartment{
			ApartmentNumber: i,
			FloorNumber:     (i + perFloor - 1) / perFloor,
			Status:          StatusVacant,
		})
	}
	return apartments
}
