package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/orgauth/identity-service/internal/core/domain"
)

const organisationColumns = `o.id, o.name, o.description, o.creator_id, o.created_at`

type OrganisationRepository struct {
	db querier
}

func NewOrganisationRepository(db querier) *OrganisationRepository {
	return &OrganisationRepository{db: db}
}

func (r *OrganisationRepository) Create(ctx context.Context, org *domain.Organisation) error {
	_, err := conn(ctx, r.db).Exec(ctx,
		`INSERT INTO organisations (id, name, description, creator_id, created_at) VALUES ($1, $2, $3, $4, $5)`,
		org.ID, org.Name, org.Description, org.CreatorID, org.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("insert organisation: %w", err)
	}
	return nil
}

func (r *OrganisationRepository) FindByID(ctx context.Context, id string) (*domain.Organisation, error) {
	return r.findOne(ctx, `SELECT `+organisationColumns+` FROM organisations o WHERE o.id = $1`, id)
}

func (r *OrganisationRepository) FindByName(ctx context.Context, name string) (*domain.Organisation, error) {
	return r.findOne(ctx, `SELECT `+organisationColumns+` FROM organisations o WHERE o.name = $1 LIMIT 1`, name)
}

func (r *OrganisationRepository) findOne(ctx context.Context, query, arg string) (*domain.Organisation, error) {
	org, err := scanOrganisation(conn(ctx, r.db).QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrganisationNotFound
		}
		return nil, fmt.Errorf("find organisation: %w", err)
	}
	return org, nil
}

func (r *OrganisationRepository) ListByMember(ctx context.Context, userID string) ([]*domain.Organisation, error) {
	rows, err := conn(ctx, r.db).Query(ctx,
		`SELECT `+organisationColumns+`
		   FROM organisations o
		   JOIN memberships m ON m.org_id = o.id
		  WHERE m.user_id = $1
		  ORDER BY m.created_at, o.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list organisations: %w", err)
	}
	defer rows.Close()

	orgs := []*domain.Organisation{}
	for rows.Next() {
		org, err := scanOrganisation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan organisation: %w", err)
		}
		orgs = append(orgs, org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list organisations: %w", err)
	}
	return orgs, nil
}

// AddMember inserts a membership. A repeated pair yields domain.ErrAlreadyMember
// and an unknown user or organisation the matching not-found error.
func (r *OrganisationRepository) AddMember(ctx context.Context, m *domain.Membership) error {
	_, err := conn(ctx, r.db).Exec(ctx,
		`INSERT INTO memberships (id, user_id, org_id, created_at) VALUES ($1, $2, $3, $4)`,
		m.ID, m.UserID, m.OrgID, m.CreatedAt,
	)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return domain.ErrAlreadyMember
	case isForeignKeyViolation(err):
		return domain.ErrUserNotFound
	}
	return fmt.Errorf("insert membership: %w", err)
}

func (r *OrganisationRepository) IsMember(ctx context.Context, userID, orgID string) (bool, error) {
	var exists bool
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM memberships WHERE user_id = $1 AND org_id = $2)`,
		userID, orgID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return exists, nil
}

func scanOrganisation(row pgx.Row) (*domain.Organisation, error) {
	var o domain.Organisation
	if err := row.Scan(&o.ID, &o.Name, &o.Description, &o.CreatorID, &o.CreatedAt); err != nil {
		return nil, err
	}
	o.CreatedAt = o.CreatedAt.UTC()
	return &o, nil
}
