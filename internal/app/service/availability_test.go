package service

import (
	"context"
	"errors"
	"testing"

	"github.com/0xsj/overwatch-pkg/types"

	"github.com/0xsj/overwatch-profile/tests/testutil"
	"github.com/0xsj/overwatch-profile/tests/testutil/mocks"
)

func TestAvailabilityService_IsAvailable(t *testing.T) {
	ctx := context.Background()

	t.Run("free username is available", func(t *testing.T) {
		repo := mocks.NewUserRepository()
		svc := NewAvailabilityService(repo)

		available, err := svc.IsAvailable(ctx, "alice", types.NewID())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !available {
			t.Error("expected free username to be available")
		}
	})

	t.Run("held username is unavailable case-insensitively", func(t *testing.T) {
		repo := mocks.NewUserRepository()
		holder := testutil.Fixtures.UserBuilder().WithUsername("Alice").Build()
		if err := repo.Create(ctx, holder); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		svc := NewAvailabilityService(repo)

		for _, candidate := range []string{"Alice", "alice", "ALICE"} {
			available, err := svc.IsAvailable(ctx, candidate, types.NewID())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if available {
				t.Errorf("IsAvailable(%q) = true, want false", candidate)
			}
		}
	})

	t.Run("own username does not collide", func(t *testing.T) {
		repo := mocks.NewUserRepository()
		holder := testutil.Fixtures.UserBuilder().WithUsername("Alice").Build()
		if err := repo.Create(ctx, holder); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		svc := NewAvailabilityService(repo)

		available, err := svc.IsAvailable(ctx, "ALICE", holder.ID())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !available {
			t.Error("holder's own username should be available to them")
		}
	})

	t.Run("propagates repository failures", func(t *testing.T) {
		repo := mocks.NewUserRepository()
		repo.Errors.FindByUsername = errors.New("connection reset")
		svc := NewAvailabilityService(repo)

		if _, err := svc.IsAvailable(ctx, "alice", types.NewID()); err == nil {
			t.Error("expected error")
		}
	})
}
