package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateApartments_NumbersAndFloors(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		perFloor int
		floors   map[int]int // apartment number -> expected floor
	}{
		{
			name:     "four per floor",
			count:    10,
			perFloor: 4,
			floors:   map[int]int{1: 1, 4: 1, 5: 2, 8: 2, 9: 3, 10: 3},
		},
		{
			name:     "one per floor",
			count:    3,
			perFloor: 1,
			floors:   map[int]int{1: 1, 2: 2, 3: 3},
		},
		{
			name:     "single floor",
			count:    5,
			perFloor: 10,
			floors:   map[int]int{1: 1, 5: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apartments := GenerateApartments(tt.count, tt.perFloor)
			require.Len(t, apartments, tt.count)

			for i, apt := range apartments {
				assert.Equal(t, i+1, apt.ApartmentNumber, "numbers must be contiguous 1..N")
				assert.Equal(t, StatusVacant, apt.Status)
				assert.Zero(t, apt.MonthlyRent)
				assert.Zero(t, apt.RentIncreasePerYear)
				assert.Nil(t, apt.ContractStartDate)
				assert.Nil(t, apt.ContractEndDate)
			}
			for number, floor := range tt.floors {
				assert.Equal(t, floor, apartments[number-1].FloorNumber, "apartment %d", number)
			}
		})
	}
}

func TestApartmentClear_Idempotent(t *testing.T) {
	start := time.Date(2023, 3, 10, 0, 0, 0, 0, time.UTC)
	apt := Apartment{
		ApartmentNumber:     7,
		FloorNumber:         2,
		TenantName:          "Nadia Hassan",
		TenantPhone:         "+20100000000",
		Status:              StatusOccupied,
		MonthlyRent:         4200,
		RentIncreasePerYear: 8,
		ContractStartDate:   &start,
		ContractEndDate:     &start,
		LastEscalatedYear:   2025,
	}

	apt.Clear()
	cleared := apt
	apt.Clear()

	assert.Equal(t, cleared, apt, "second clear must not change anything")
	assert.Equal(t, StatusVacant, apt.Status)
	assert.Empty(t, apt.TenantName)
	assert.Empty(t, apt.TenantPhone)
	assert.Zero(t, apt.MonthlyRent)
	assert.Zero(t, apt.RentIncreasePerYear)
	assert.Nil(t, apt.ContractStartDate)
	assert.Nil(t, apt.ContractEndDate)
	assert.Zero(t, apt.LastEscalatedYear)
	// Identity fields survive a clear.
	assert.Equal(t, 7, apt.ApartmentNumber)
	assert.Equal(t, 2, apt.FloorNumber)
}

func TestApartmentPatch_ApplyMergesPresentFieldsOnly(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	apt := Apartment{
		ApartmentNumber:   1,
		FloorNumber:       1,
		TenantName:        "Omar Farouk",
		TenantPhone:       "+20111111111",
		Status:            StatusOccupied,
		MonthlyRent:       3000,
		ContractStartDate: &start,
	}

	rent := 3500.0
	patch := ApartmentPatch{MonthlyRent: &rent}
	patch.Apply(&apt)

	assert.Equal(t, 3500.0, apt.MonthlyRent)
	assert.Equal(t, "Omar Farouk", apt.TenantName, "omitted fields keep prior values")
	assert.Equal(t, "+20111111111", apt.TenantPhone)
	assert.Equal(t, StatusOccupied, apt.Status)
	require.NotNil(t, apt.ContractStartDate)
	assert.True(t, apt.ContractStartDate.Equal(start))
}

func TestApartmentPatch_ExplicitNullDateClears(t *testing.T) {
	end := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	apt := Apartment{ContractEndDate: &end}

	patch := ApartmentPatch{ContractEndDate: OptionalDate{Set: true, Value: nil}}
	patch.Apply(&apt)

	assert.Nil(t, apt.ContractEndDate)
}

func TestApartmentPatch_IsZero(t *testing.T) {
	assert.True(t, ApartmentPatch{}.IsZero())

	name := "x"
	assert.False(t, ApartmentPatch{TenantName: &name}.IsZero())
	assert.False(t, ApartmentPatch{ContractStartDate: OptionalDate{Set: true}}.IsZero())
}

func TestBuildingApartmentLookup(t *testing.T) {
	b := Building{Apartments: GenerateApartments(4, 2)}

	apt := b.Apartment(3)
	require.NotNil(t, apt)
	assert.Equal(t, 3, apt.ApartmentNumber)
	assert.Equal(t, 2, apt.FloorNumber)

	assert.Nil(t, b.Apartment(5))
	assert.Nil(t, b.Apartment(0))
}

func TestBuildingSummary(t *testing.T) {
	b := Building{
		ID:         "b-1",
		Name:       "Nile Towers",
		Number:     12,
		Location:   "Cairo",
		Apartments: GenerateApartments(6, 3),
	}

	s := b.Summary()
	assert.Equal(t, "b-1", s.ID)
	assert.Equal(t, "Nile Towers", s.Name)
	assert.Equal(t, 12, s.Number)
	assert.Equal(t, "Cairo", s.Location)
	assert.Equal(t, 6, s.ApartmentCount)
}
