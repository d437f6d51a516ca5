package building

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aptfolio/backend/domain"
)

// MockBuildingRepository is a mock implementation of repository.BuildingRepository.
type MockBuildingRepository struct {
	mock.Mock
}

func (m *MockBuildingRepository) Create(ctx context.Context, building *domain.Building) (*domain.Building, error) {
	args := m.Called(ctx, building)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Building), args.Error(1)
}

func (m *MockBuildingRepository) GetByID(ctx context.Context, id string) (*domain.Building, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Building), args.Error(1)
}

func (m *MockBuildingRepository) List(ctx context.Context) ([]domain.BuildingSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BuildingSummary), args.Error(1)
}

func (m *MockBuildingRepository) ListAll(ctx context.Context) ([]domain.Building, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Building), args.Error(1)
}

func (m *MockBuildingRepository) Save(ctx context.Context, building *domain.Building) error {
	args := m.Called(ctx, building)
	return args.Error(0)
}

func setupUseCase() (*UseCase, *MockBuildingRepository) {
	repo := new(MockBuildingRepository)
	return New(repo, zap.NewNop()), repo
}

func validInput() CreateInput {
	return CreateInput{
		Name:               "Nile Towers",
		Number:             12,
		Location:           "Cairo",
		ApartmentCount:     8,
		ApartmentsPerFloor: 4,
	}
}

func TestCreateBuilding(t *testing.T) {
	uc, repo := setupUseCase()

	repo.On("Create", mock.Anything, mock.MatchedBy(func(b *domain.Building) bool {
		return len(b.Apartments) == 8 && b.Apartments[4].FloorNumber == 2
	})).Return(&domain.Building{ID: "b-1", Apartments: domain.GenerateApartments(8, 4)}, nil)

	created, err := uc.CreateBuilding(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, "b-1", created.ID)
	repo.AssertExpectations(t)
}

func TestCreateBuilding_Validation(t *testing.T) {
	uc, repo := setupUseCase()

	tests := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"missing name", func(in *CreateInput) { in.Name = "  " }},
		{"missing location", func(in *CreateInput) { in.Location = "" }},
		{"zero apartments", func(in *CreateInput) { in.ApartmentCount = 0 }},
		{"negative apartments", func(in *CreateInput) { in.ApartmentCount = -3 }},
		{"zero per floor", func(in *CreateInput) { in.ApartmentsPerFloor = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			_, err := uc.CreateBuilding(context.Background(), in)
			require.Error(t, err)
			assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
		})
	}
	repo.AssertNotCalled(t, "Create")
}

func storedBuilding() *domain.Building {
	b := &domain.Building{
		ID:         "b-1",
		Name:       "Nile Towers",
		Location:   "Cairo",
		Apartments: domain.GenerateApartments(4, 2),
		Version:    3,
	}
	start := time.Date(2023, 3, 10, 0, 0, 0, 0, time.UTC)
	occupied := b.Apartment(2)
	occupied.TenantName = "Omar Farouk"
	occupied.TenantPhone = "+20111111111"
	occupied.Status = domain.StatusOccupied
	occupied.MonthlyRent = 3000
	occupied.RentIncreasePerYear = 10
	occupied.ContractStartDate = &start
	return b
}

func strPtr(s string) *string { return &s }

func statusPtr(s domain.ApartmentStatus) *domain.ApartmentStatus { return &s }

func TestUpdateApartment_MergesAndSaves(t *testing.T) {
	uc, repo := setupUseCase()

	repo.On("GetByID", mock.Anything, "b-1").Return(storedBuilding(), nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(b *domain.Building) bool {
		apt := b.Apartment(2)
		return apt.TenantPhone == "+20122222222" && apt.TenantName == "Omar Farouk"
	})).Return(nil)

	apt, err := uc.UpdateApartment(context.Background(), "b-1", 2, domain.ApartmentPatch{
		TenantPhone: strPtr("+20122222222"),
	})
	require.NoError(t, err)
	assert.Equal(t, "+20122222222", apt.TenantPhone)
	assert.Equal(t, "Omar Farouk", apt.TenantName)
	repo.AssertExpectations(t)
}

func TestUpdateApartment_UnknownApartment(t *testing.T) {
	uc, repo := setupUseCase()
	repo.On("GetByID", mock.Anything, "b-1").Return(storedBuilding(), nil)

	_, err := uc.UpdateApartment(context.Background(), "b-1", 99, domain.ApartmentPatch{
		TenantPhone: strPtr("x"),
	})
	require.ErrorIs(t, err, domain.ErrApartmentNotFound)
	repo.AssertNotCalled(t, "Save")
}

func TestUpdateApartment_TransitionRules(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		number    int
		patch     domain.ApartmentPatch
		wantError bool
	}{
		{
			name:   "occupying a vacant apartment with tenant and contract",
			number: 1,
			patch: domain.ApartmentPatch{
				Status:            statusPtr(domain.StatusOccupied),
				TenantName:        strPtr("Nadia Hassan"),
				ContractStartDate: domain.OptionalDate{Set: true, Value: &start},
			},
		},
		{
			name:      "occupying without a tenant name",
			number:    1,
			patch: domain.ApartmentPatch{
				Status:            statusPtr(domain.StatusOccupied),
				ContractStartDate: domain.OptionalDate{Set: true, Value: &start},
			},
			wantError: true,
		},
		{
			name:   "occupying without a contract start",
			number: 1,
			patch: domain.ApartmentPatch{
				Status:     statusPtr(domain.StatusOccupied),
				TenantName: strPtr("Nadia Hassan"),
			},
			wantError: true,
		},
		{
			name:      "vacating through a patch",
			number:    2,
			patch:     domain.ApartmentPatch{Status: statusPtr(domain.StatusVacant)},
			wantError: true,
		},
		{
			name:   "editing an occupied apartment in place",
			number: 2,
			patch:  domain.ApartmentPatch{TenantPhone: strPtr("+20100000000")},
		},
		{
			name:      "unknown status value",
			number:    1,
			patch:     domain.ApartmentPatch{Status: statusPtr(domain.ApartmentStatus("Condemned"))},
			wantError: true,
		},
		{
			name:      "negative rent",
			number:    2,
			patch:     domain.ApartmentPatch{MonthlyRent: floatPtr(-1)},
			wantError: true,
		},
		{
			name:      "empty patch",
			number:    2,
			patch:     domain.ApartmentPatch{},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, repo := setupUseCase()
			repo.On("GetByID", mock.Anything, "b-1").Return(storedBuilding(), nil).Maybe()
			repo.On("Save", mock.Anything, mock.Anything).Return(nil).Maybe()

			_, err := uc.UpdateApartment(context.Background(), "b-1", tt.number, tt.patch)
			if tt.wantError {
				require.Error(t, err)
				assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
				repo.AssertNotCalled(t, "Save")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestUpdateApartment_RetriesOnVersionConflict(t *testing.T) {
	uc, repo := setupUseCase()

	repo.On("GetByID", mock.Anything, "b-1").Return(storedBuilding(), nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(domain.ErrVersionConflict).Once()
	repo.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

	_, err := uc.UpdateApartment(context.Background(), "b-1", 2, domain.ApartmentPatch{
		TenantPhone: strPtr("+20100000000"),
	})
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "GetByID", 2)
	repo.AssertNumberOfCalls(t, "Save", 2)
}

func TestUpdateApartment_GivesUpAfterRepeatedConflicts(t *testing.T) {
	uc, repo := setupUseCase()

	repo.On("GetByID", mock.Anything, "b-1").Return(storedBuilding(), nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(domain.ErrVersionConflict)

	_, err := uc.UpdateApartment(context.Background(), "b-1", 2, domain.ApartmentPatch{
		TenantPhone: strPtr("+20100000000"),
	})
	require.ErrorIs(t, err, domain.ErrVersionConflict)
	repo.AssertNumberOfCalls(t, "Save", saveRetries)
}

func TestClearApartment_ResetsEverything(t *testing.T) {
	uc, repo := setupUseCase()

	repo.On("GetByID", mock.Anything, "b-1").Return(storedBuilding(), nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	apt, err := uc.ClearApartment(context.Background(), "b-1", 2)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusVacant, apt.Status)
	assert.Empty(t, apt.TenantName)
	assert.Empty(t, apt.TenantPhone)
	assert.Zero(t, apt.MonthlyRent)
	assert.Zero(t, apt.RentIncreasePerYear)
	assert.Nil(t, apt.ContractStartDate)
	assert.Nil(t, apt.ContractEndDate)
	assert.Equal(t, 2, apt.ApartmentNumber, "identity survives a clear")
}

func floatPtr(f float64) *float64 { return &f }
