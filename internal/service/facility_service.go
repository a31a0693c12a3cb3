package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/care-access/internal/domain"
	"github.com/spec-kit/care-access/internal/repository"
)

// FacilityInput describes a facility to list in the locator.
type FacilityInput struct {
	Name         string
	FacilityType string
	Address      string
	Phone        string
	Latitude     float64
	Longitude    float64
}

// FacilityService maintains the medical facility directory.
type FacilityService struct {
	*core
}

// NewFacilityService constructs the service.
func NewFacilityService(deps Dependencies) *FacilityService {
	return &FacilityService{core: newCore(deps)}
}

// AddFacility lists a new facility. Admin only.
func (s *FacilityService) AddFacility(ctx context.Context, principal string, input FacilityInput) (*domain.MedicalFacility, error) {
	if err := validateFacility(input); err != nil {
		return nil, err
	}

	var facility *domain.MedicalFacility
	err := s.atomically(ctx, func(u *unit) error {
		if _, err := s.requireRole(ctx, u, principal, domain.RoleAdmin); err != nil {
			return err
		}
		facility = &domain.MedicalFacility{
			Name:         strings.TrimSpace(input.Name),
			FacilityType: strings.TrimSpace(input.FacilityType),
			Address:      strings.TrimSpace(input.Address),
			Phone:        strings.TrimSpace(input.Phone),
			Latitude:     input.Latitude,
			Longitude:    input.Longitude,
			CreatedAt:    u.now,
		}
		if err := u.Facilities().Create(ctx, facility); err != nil {
			return err
		}
		return s.audit(ctx, u, domain.AuditAddFacility, principal, nil,
			fmt.Sprintf("facility %d %s (%s)", facility.ID, facility.Name, facility.FacilityType))
	})
	return facility, err
}

// ListFacilities returns the directory to any authenticated caller.
func (s *FacilityService) ListFacilities(ctx context.Context) ([]domain.MedicalFacility, error) {
	var facilities []domain.MedicalFacility
	err := s.store.Read(ctx, func(repos repository.Repositories) error {
		var err error
		facilities, err = repos.Facilities().List(ctx)
		return err
	})
	return facilities, err
}

func validateFacility(input FacilityInput) error {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.FacilityType) == "" {
		return fmt.Errorf("%w: name and facility type are required", domain.ErrInvalidInput)
	}
	if input.Latitude < -90 || input.Latitude > 90 || input.Longitude < -180 || input.Longitude > 180 {
		return fmt.Errorf("%w: coordinates out of range", domain.ErrInvalidInput)
	}
	return nil
}
