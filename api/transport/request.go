package transport

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/aptfolio/backend/domain"
)

type BuildingCreateRequest struct {
	Name               string `json:"name"`
	Number             int    `json:"number"`
	Location           string `json:"location"`
	ApartmentCount     int    `json:"apartment_count"`
	ApartmentsPerFloor int    `json:"apartments_per_floor"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
}

// DateField distinguishes an absent date from an explicit null: absent keys
// never reach UnmarshalJSON, while `null` and `""` both clear the stored
// value. Accepts RFC 3339 timestamps or plain YYYY-MM-DD dates.
type DateField struct {
	Set   bool
	Value *time.Time
}

func (d *DateField) UnmarshalJSON(data []byte) error {
	d.Set = true
	if bytes.Equal(data, []byte("null")) {
		d.Value = nil
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		d.Value = nil
		return nil
	}
	parsed, err := parseDate(raw)
	if err != nil {
		return err
	}
	d.Value = &parsed
	return nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

// ApartmentPatchRequest is the partial apartment update body. All fields are
// optional; unknown keys are rejected at decode time.
type ApartmentPatchRequest struct {
	TenantName          *string    `json:"tenant_name"`
	TenantPhone         *string    `json:"tenant_phone"`
	Status              *string    `json:"status"`
	MonthlyRent         *float64   `json:"monthly_rent"`
	RentIncreasePerYear *float64   `json:"rent_increase_per_year"`
	ContractStartDate   *DateField `json:"contract_start_date"`
	ContractEndDate     *DateField `json:"contract_end_date"`
}

// DecodeApartmentPatch parses a strict patch body into the domain patch type.
func DecodeApartmentPatch(body []byte) (domain.ApartmentPatch, error) {
	var req ApartmentPatchRequest
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return domain.ApartmentPatch{}, domain.WrapError(domain.ErrCodeInvalid, "invalid patch payload", err)
	}

	patch := domain.ApartmentPatch{
		TenantName:          req.TenantName,
		TenantPhone:         req.TenantPhone,
		MonthlyRent:         req.MonthlyRent,
		RentIncreasePerYear: req.RentIncreasePerYear,
	}
	if req.Status != nil {
		status := domain.ApartmentStatus(*req.Status)
		patch.Status = &status
	}
	if req.ContractStartDate != nil {
		patch.ContractStartDate = domain.OptionalDate{Set: true, Value: req.ContractStartDate.Value}
	}
	if req.ContractEndDate != nil {
		patch.ContractEndDate = domain.OptionalDate{Set: true, Value: req.ContractEndDate.Value}
	}
	return patch, nil
}
