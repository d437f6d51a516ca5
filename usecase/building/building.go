package building

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/aptfolio/backend/domain"
	"github.com/aptfolio/backend/repository"
)

// saveRetries bounds re-reads after an optimistic version conflict.
const saveRetries = 3

type UseCase struct {
	buildings repository.BuildingRepository
	logger    *zap.Logger
}

func New(buildings repository.BuildingRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		buildings: buildings,
		logger:    logger,
	}
}

// CreateInput carries the creation parameters; the apartment layout is fixed
// at this point and never adjustable afterwards.
type CreateInput struct {
	Name               string
	Number             int
	Location           string
	ApartmentCount     int
	ApartmentsPerFloor int
}

func (in CreateInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return domain.WrapError(domain.ErrCodeInvalid, "building name is required", nil)
	case strings.TrimSpace(in.Location) == "":
		return domain.WrapError(domain.ErrCodeInvalid, "building location is required", nil)
	case in.ApartmentCount <= 0:
		return domain.WrapError(domain.ErrCodeInvalid, "apartment count must be positive", nil)
	case in.ApartmentsPerFloor <= 0:
		return domain.WrapError(domain.ErrCodeInvalid, "apartments per floor must be positive", nil)
	}
	return nil
}

func (uc *UseCase) CreateBuilding(ctx context.Context, in CreateInput) (*domain.Building, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	building := &domain.Building{
		Name:       strings.TrimSpace(in.Name),
		Number:     in.Number,
		Location:   strings.TrimSpace(in.Location),
		Apartments: domain.GenerateApartments(in.ApartmentCount, in.ApartmentsPerFloor),
	}

	created, err := uc.buildings.Create(ctx, building)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("building created",
		zap.String("building_id", created.ID),
		zap.Int("apartments", len(created.Apartments)))
	return created, nil
}

func (uc *UseCase) ListBuildings(ctx context.Context) ([]domain.BuildingSummary, error) {
	return uc.buildings.List(ctx)
}

func (uc *UseCase) GetBuilding(ctx context.Context, id string) (*domain.Building, error) {
	return uc.buildings.GetByID(ctx, id)
}

// UpdateApartment merges the patch into one apartment and persists the whole
// building record. Occupancy transitions are validated: taking an apartment
// occupied requires a tenant name and a contract start, and the only way back
// to vacant is ClearApartment.
func (uc *UseCase) UpdateApartment(ctx context.Context, buildingID string, apartmentNumber int, patch domain.ApartmentPatch) (*domain.Apartment, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	return uc.mutateApartment(ctx, buildingID, apartmentNumber, func(a *domain.Apartment) error {
		before := *a
		patch.Apply(a)
		return validateTransition(&before, a)
	})
}

// ClearApartment resets the apartment to its vacant defaults. Clearing an
// already vacant apartment succeeds and changes nothing.
func (uc *UseCase) ClearApartment(ctx context.Context, buildingID string, apartmentNumber int) (*domain.Apartment, error) {
	return uc.mutateApartment(ctx, buildingID, apartmentNumber, func(a *domain.Apartment) error {
		a.Clear()
		return nil
	})
}

// mutateApartment runs a read-modify-write cycle over the owning building,
// retrying on version conflicts so concurrent edits to sibling apartments are
// not silently lost.
func (uc *UseCase) mutateApartment(ctx context.Context, buildingID string, apartmentNumber int, mutate func(*domain.Apartment) error) (*domain.Apartment, error) {
	var lastErr error
	for attempt := 0; attempt < saveRetries; attempt++ {
		building, err := uc.buildings.GetByID(ctx, buildingID)
		if err != nil {
			return nil, err
		}

		apartment := building.Apartment(apartmentNumber)
		if apartment == nil {
			return nil, domain.ErrApartmentNotFound
		}

		if err := mutate(apartment); err != nil {
			return nil, err
		}

		if err := uc.buildings.Save(ctx, building); err != nil {
			if errors.Is(err, domain.ErrVersionConflict) {
				lastErr = err
				uc.logger.Debug("building save conflicted, retrying",
					zap.String("building_id", buildingID),
					zap.Int("attempt", attempt+1))
				continue
			}
			return nil, err
		}

		result := *apartment
		return &result, nil
	}
	return nil, lastErr
}

func validatePatch(patch domain.ApartmentPatch) error {
	if patch.IsZero() {
		return domain.WrapError(domain.ErrCodeInvalid, "patch contains no fields", nil)
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return domain.WrapError(domain.ErrCodeInvalid, "unknown apartment status", nil)
	}
	if patch.MonthlyRent != nil && *patch.MonthlyRent < 0 {
		return domain.WrapError(domain.ErrCodeInvalid, "monthly rent must not be negative", nil)
	}
	if patch.RentIncreasePerYear != nil && *patch.RentIncreasePerYear < 0 {
		return domain.WrapError(domain.ErrCodeInvalid, "rent increase must not be negative", nil)
	}
	return nil
}

func validateTransition(before, after *domain.Apartment) error {
	if before.Status == domain.StatusOccupied && after.Status == domain.StatusVacant {
		return domain.WrapError(domain.ErrCodeInvalid, "vacating requires clearing the apartment", nil)
	}
	if before.Status == domain.StatusVacant && after.Status == domain.StatusOccupied {
		if strings.TrimSpace(after.TenantName) == "" {
			return domain.WrapError(domain.ErrCodeInvalid, "occupying requires a tenant name", nil)
		}
		if after.ContractStartDate == nil {
			return domain.WrapError(domain.ErrCodeInvalid, "occupying requires a contract start date", nil)
		}
	}
	return nil
}
