package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/orgauth/identity-service/internal/core/domain"
)

// OrganisationRepository stores organisations and memberships in two collections.
type OrganisationRepository struct {
	orgs        *mongo.Collection
	memberships *mongo.Collection
}

func NewOrganisationRepository(db *mongo.Database) *OrganisationRepository {
	return &OrganisationRepository{
		orgs:        db.Collection(collectionOrganisations),
		memberships: db.Collection(collectionMemberships),
	}
}

type organisationDocument struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description"`
	CreatorID   string    `bson:"creator_id"`
	CreatedAt   time.Time `bson:"created_at"`
}

func (d organisationDocument) toDomain() *domain.Organisation {
	return &domain.Organisation{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		CreatorID:   d.CreatorID,
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

type membershipDocument struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	OrgID     string    `bson:"org_id"`
	CreatedAt time.Time `bson:"created_at"`
}

func (r *OrganisationRepository) Create(ctx context.Context, org *domain.Organisation) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.orgs.InsertOne(ctx, organisationDocument{
		ID:          org.ID,
		Name:        org.Name,
		Description: org.Description,
		CreatorID:   org.CreatorID,
		CreatedAt:   org.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert organisation: %w", err)
	}
	return nil
}

func (r *OrganisationRepository) FindByID(ctx context.Context, id string) (*domain.Organisation, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *OrganisationRepository) FindByName(ctx context.Context, name string) (*domain.Organisation, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

func (r *OrganisationRepository) findOne(ctx context.Context, filter bson.M) (*domain.Organisation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc organisationDocument
	if err := r.orgs.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrganisationNotFound
		}
		return nil, fmt.Errorf("find organisation: %w", err)
	}
	return doc.toDomain(), nil
}

// ListByMember resolves the caller's memberships, then loads the organisations
// in membership order.
func (r *OrganisationRepository) ListByMember(ctx context.Context, userID string) ([]*domain.Organisation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.memberships.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find memberships: %w", err)
	}
	var members []membershipDocument
	if err := cursor.All(ctx, &members); err != nil {
		return nil, fmt.Errorf("decode memberships: %w", err)
	}
	if len(members) == 0 {
		return []*domain.Organisation{}, nil
	}

	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.OrgID)
	}

	cursor, err = r.orgs.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find organisations: %w", err)
	}
	var docs []organisationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode organisations: %w", err)
	}

	byID := make(map[string]organisationDocument, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}
	orgs := make([]*domain.Organisation, 0, len(docs))
	for _, id := range ids {
		if d, ok := byID[id]; ok {
			orgs = append(orgs, d.toDomain())
		}
	}
	return orgs, nil
}

// AddMember inserts a membership. The unique (user_id, org_id) index turns a
// repeated pair into domain.ErrAlreadyMember.
func (r *OrganisationRepository) AddMember(ctx context.Context, m *domain.Membership) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.memberships.InsertOne(ctx, membershipDocument{
		ID:        m.ID,
		UserID:    m.UserID,
		OrgID:     m.OrgID,
		CreatedAt: m.CreatedAt,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAlreadyMember
		}
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

func (r *OrganisationRepository) IsMember(ctx context.Context, userID, orgID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.memberships.CountDocuments(ctx, bson.M{"user_id": userID, "org_id": orgID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count memberships: %w", err)
	}
	return n > 0, nil
}
