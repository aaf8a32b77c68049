package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/orgauth/identity-service/internal/core/domain"
	"github.com/orgauth/identity-service/internal/core/ports"
)

// OrganisationService implements organisation creation, lookup and membership.
type OrganisationService struct {
	orgs  ports.OrganisationRepository
	users ports.UserRepository
	tx    ports.Transactor
	log   zerolog.Logger
	now   func() time.Time
}

func NewOrganisationService(orgs ports.OrganisationRepository, users ports.UserRepository, tx ports.Transactor, log zerolog.Logger) *OrganisationService {
	return &OrganisationService{orgs: orgs, users: users, tx: tx, log: log, now: time.Now}
}

func (s *OrganisationService) ListForUser(ctx context.Context, userID string) ([]*domain.Organisation, error) {
	orgs, err := s.orgs.ListByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list organisations: %w", err)
	}
	if orgs == nil {
		orgs = []*domain.Organisation{}
	}
	return orgs, nil
}

// Create stores a new organisation and makes its creator the first member.
// Names are unique among organisations created through this call.
func (s *OrganisationService) Create(ctx context.Context, in ports.CreateOrganisationInput) (*domain.Organisation, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("create organisation: %w: name is required", domain.ErrValidation)
	}
	if in.CreatorID == "" {
		return nil, fmt.Errorf("create organisation: %w: creator is required", domain.ErrValidation)
	}

	_, err := s.orgs.FindByName(ctx, name)
	switch {
	case err == nil:
		return nil, domain.ErrOrganisationExists
	case !errors.Is(err, domain.ErrOrganisationNotFound):
		return nil, fmt.Errorf("create organisation: %w", err)
	}

	now := s.now().UTC()
	org := &domain.Organisation{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		CreatorID:   in.CreatorID,
		CreatedAt:   now,
	}
	membership := &domain.Membership{
		ID:        uuid.NewString(),
		UserID:    in.CreatorID,
		OrgID:     org.ID,
		CreatedAt: now,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.orgs.Create(ctx, org); err != nil {
			return err
		}
		return s.orgs.AddMember(ctx, membership)
	})
	if err != nil {
		return nil, fmt.Errorf("create organisation: %w", err)
	}

	s.log.Info().Str("org_id", org.ID).Str("creator_id", org.CreatorID).Msg("organisation created")
	return org, nil
}

func (s *OrganisationService) Get(ctx context.Context, orgID string) (*domain.Organisation, error) {
	if strings.TrimSpace(orgID) == "" {
		return nil, domain.ErrOrganisationNotFound
	}
	return s.orgs.FindByID(ctx, orgID)
}

// AddMember adds userID to orgID. Only the creator may add members; to
// anyone else the organisation does not exist.
func (s *OrganisationService) AddMember(ctx context.Context, callerID, orgID, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("add member: %w: userId is required", domain.ErrValidation)
	}

	org, err := s.orgs.FindByID(ctx, orgID)
	if err != nil {
		return err
	}
	if !org.IsCreator(callerID) {
		return domain.ErrOrganisationNotFound
	}
	if org.IsCreator(userID) {
		return domain.ErrAlreadyMember
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return err
	}

	member, err := s.orgs.IsMember(ctx, userID, org.ID)
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	if member {
		return domain.ErrAlreadyMember
	}

	err = s.orgs.AddMember(ctx, &domain.Membership{
		ID:        uuid.NewString(),
		UserID:    userID,
		OrgID:     org.ID,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyMember) {
			return domain.ErrAlreadyMember
		}
		return fmt.Errorf("add member: %w", err)
	}

	s.log.Info().Str("org_id", org.ID).Str("user_id", userID).Msg("member added")
	return nil
}
