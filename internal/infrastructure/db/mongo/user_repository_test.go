package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/orgauth/identity-service/internal/core/domain"
)

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	created := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

	mt.Run("create", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewUserRepository(mt.DB)

		err := repo.Create(context.Background(), &domain.User{ID: "u-1", Email: "ada@example.com", CreatedAt: created})
		if err != nil {
			mt.Fatalf("Create returned error: %v", err)
		}
	})

	mt.Run("create duplicate email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: identity.users index: email_1",
		}))
		repo := NewUserRepository(mt.DB)

		err := repo.Create(context.Background(), &domain.User{ID: "u-2", Email: "ada@example.com"})
		if !errors.Is(err, domain.ErrRegistrationConflict) {
			mt.Fatalf("expected ErrRegistrationConflict, got %v", err)
		}
	})

	mt.Run("find by email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "identity.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "u-1"},
			{Key: "first_name", Value: "Ada"},
			{Key: "last_name", Value: "Lovelace"},
			{Key: "email", Value: "ada@example.com"},
			{Key: "password_hash", Value: "hash"},
			{Key: "created_at", Value: created},
		}))
		repo := NewUserRepository(mt.DB)

		user, err := repo.FindByEmail(context.Background(), "ada@example.com")
		if err != nil {
			mt.Fatalf("FindByEmail returned error: %v", err)
		}
		if user.ID != "u-1" || user.FirstName != "Ada" || user.PasswordHash != "hash" {
			mt.Fatalf("unexpected user: %+v", user)
		}
		if !user.CreatedAt.Equal(created) {
			mt.Fatalf("unexpected created_at: %v", user.CreatedAt)
		}
	})

	mt.Run("find by id not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "identity.users", mtest.FirstBatch))
		repo := NewUserRepository(mt.DB)

		_, err := repo.FindByID(context.Background(), "missing")
		if !errors.Is(err, domain.ErrUserNotFound) {
			mt.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	mt.Run("find by id server error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "boom",
		}))
		repo := NewUserRepository(mt.DB)

		_, err := repo.FindByID(context.Background(), "u-1")
		if err == nil || errors.Is(err, domain.ErrUserNotFound) {
			mt.Fatalf("expected infrastructure error, got %v", err)
		}
	})
}
