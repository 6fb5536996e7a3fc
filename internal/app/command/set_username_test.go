package command_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/0xsj/overwatch-pkg/log"
	"github.com/0xsj/overwatch-pkg/types"

	appcommand "github.com/0xsj/overwatch-profile/internal/app/command"
	"github.com/0xsj/overwatch-profile/internal/app/service"
	"github.com/0xsj/overwatch-profile/internal/domain/event"
	"github.com/0xsj/overwatch-profile/internal/domain/model"
	"github.com/0xsj/overwatch-profile/internal/port/inbound/command"
	"github.com/0xsj/overwatch-profile/internal/port/outbound/avatar"
	"github.com/0xsj/overwatch-profile/internal/port/outbound/repository"
	"github.com/0xsj/overwatch-profile/tests/testutil"
	"github.com/0xsj/overwatch-profile/tests/testutil/mocks"
)

type workflowEnv struct {
	users     *mocks.UserRepository
	cache     *mocks.UserCache
	invites   *mocks.InviteRepository
	rooms     *mocks.MembershipService
	store     *mocks.AvatarStore
	publisher *mocks.EventPublisher
	handler   command.SetUsernameHandler
}

func newWorkflowEnv(t *testing.T) *workflowEnv {
	t.Helper()

	env := &workflowEnv{
		users:     mocks.NewUserRepository(),
		cache:     mocks.NewUserCache(),
		invites:   mocks.NewInviteRepository(),
		rooms:     mocks.NewMembershipService(),
		store:     mocks.NewAvatarStore(),
		publisher: mocks.NewEventPublisher(),
	}

	logger := log.NewPretty(log.DefaultConfig())
	validator := service.NewUsernameValidator(service.DefaultUsernamePattern, logger)
	availability := service.NewAvailabilityService(env.users)
	provider := mocks.NewAvatarProvider(map[string]model.AvatarCandidate{
		"github": {SourceName: "github", ImageBlob: []byte("img"), ContentType: "image/png"},
	})
	avatars := service.NewAvatarService([]avatar.Provider{provider}, env.store, logger)
	sideEffects := service.NewSideEffects(
		service.SideEffectConfig{
			DefaultAvatarEnabled: true,
			RoomJoinPolicy:       service.RoomJoinPropagate,
		},
		mocks.NewEnrollmentScheduler(),
		avatars,
		env.invites,
		env.rooms,
		env.publisher,
		logger,
	)

	env.handler = appcommand.NewSetUsernameHandler(validator, availability, env.users, env.cache, sideEffects)
	return env
}

func (e *workflowEnv) seedUser(t *testing.T, user *model.User) {
	t.Helper()
	if err := e.users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
}

func TestSetUsername_Success(t *testing.T) {
	ctx := context.Background()
	env := newWorkflowEnv(t)
	user := testutil.Fixtures.UserBuilder().Build()
	env.seedUser(t, user)

	result, err := env.handler.Handle(ctx, command.SetUsername{
		UserID:   user.ID(),
		Username: "alice",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Succeeded {
		t.Fatalf("Succeeded = false, error = %q", result.Error)
	}
	if !result.User.UsernameIs("alice") {
		t.Error("result snapshot should carry the new username")
	}

	stored, err := env.users.FindByID(ctx, user.ID())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stored.UsernameIs("alice") {
		t.Error("store should hold the new username")
	}
	if env.cache.Calls.Delete != 1 {
		t.Errorf("cache invalidations = %d, want 1", env.cache.Calls.Delete)
	}
	if got := env.publisher.EventsOfType(event.EventTypeUsernameChanged); len(got) != 1 {
		t.Errorf("username changed events = %d, want 1", len(got))
	}
}

func TestSetUsername_TrimsInput(t *testing.T) {
	ctx := context.Background()
	env := newWorkflowEnv(t)
	user := testutil.Fixtures.UserBuilder().Build()
	env.seedUser(t, user)

	result, err := env.handler.Handle(ctx, command.SetUsername{
		UserID:   user.ID(),
		Username: "  alice  ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Succeeded {
		t.Fatalf("Succeeded = false, error = %q", result.Error)
	}
	if !result.User.UsernameIs("alice") {
		t.Error("username should be stored trimmed")
	}
}

func TestSetUsername_MissingFields(t *testing.T) {
	ctx := context.Background()

	t.Run("missing user id", func(t *testing.T) {
		env := newWorkflowEnv(t)

		result, err := env.handler.Handle(ctx, command.SetUsername{Username: "alice"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Succeeded {
			t.Error("expected failure")
		}
		if env.users.Calls.SetUsername != 0 {
			t.Error("no write expected")
		}
	})

	t.Run("blank username", func(t *testing.T) {
		env := newWorkflowEnv(t)
		user := testutil.Fixtures.UserBuilder().Build()
		env.seedUser(t, user)

		result, err := env.handler.Handle(ctx, command.SetUsername{
			UserID:   user.ID(),
			Username: "   ",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Succeeded {
			t.Error("expected failure")
		}
	})
}

func TestSetUsername_InvalidUsername(t *testing.T) {
	ctx := context.Background()
	env := newWorkflowEnv(t)
	user := testutil.Fixtures.UserBuilder().Build()
	env.seedUser(t, user)

	for _, username := range []string{"ali ce", "alice@example", "al!ce"} {
		result, err := env.handler.Handle(ctx, command.SetUsername{
			UserID:   user.ID(),
			Username: username,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Succeeded {
			t.Errorf("Handle(%q) succeeded, want failure", username)
		}
	}
	if env.users.Calls.SetUsername != 0 {
		t.Error("no write expected for invalid usernames")
	}
}

func TestSetUsername_NoOpSameUsername(t *testing.T) {
	ctx := context.Background()
	env := newWorkflowEnv(t)
	user := testutil.Fixtures.UserBuilder().
		WithUsername("alice").
		WithInviteToken("inv-1").
		Build()
	env.seedUser(t, user)
	env.invites.Add(testutil.Fixtures.Invite("inv-1", types.NewID()))

	result, err := env.handler.Handle(ctx, command.SetUsername{
		UserID:   user.ID(),
		Username: "alice",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Succeeded {
		t.Fatalf("Succeeded = false, error = %q", result.Error)
	}
	if result.User == nil || !result.User.UsernameIs("alice") {
		t.Error("no-op should still return the user snapshot")
	}
	if env.users.Calls.FindByUsername != 0 {
		t.Error("no-op must skip the availability check")
	}
	if env.users.Calls.SetUsername != 0 {
		t.Error("no-op must not write")
	}
	if env.publisher.Calls.Publish != 0 {
		t.Error("no-op must not broadcast")
	}
	if env.rooms.Calls.AddUserToRoom != 0 {
		t.Error("no-op must not trigger side effects")
	}
}

func TestSetUsername_CaseRename(t *testing.T) {
	ctx := context.Background()
	env := newWorkflowEnv(t)
	user := testutil.Fixtures.UserBuilder().WithUsername("Alice").Build()
	env.seedUser(t, user)

	result, err := env.handler.Handle(ctx, command.SetUsername{
		UserID:   user.ID(),
		Username: "ALICE",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Succeeded {
		t.Fatalf("Succeeded = false, error = %q", result.Error)
	}
	if env.users.Calls.FindByUsername != 0 {
		t.Error("own-case rename must skip the availability check")
	}
	if !result.User.UsernameIs("ALICE") {
		t.Error("case rename should be committed")
	}
	if env.publisher.Calls.Publish != 1 {
		t.Error("case rename is a real commit and must broadcast")
	}
}

func TestSetUsername_Taken(t *testing.T) {
	ctx := context.Background()
	env := newWorkflowEnv(t)
	holder := testutil.Fixtures.UserBuilder().WithUsername("Alice").Build()
	requester := testutil.Fixtures.UserBuilder().Build()
	env.seedUser(t, holder)
	env.seedUser(t, requester)

	result, err := env.handler.Handle(ctx, command.SetUsername{
		UserID:   requester.ID(),
		Username: "alice",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Succeeded {
		t.Error("expected failure for a held username")
	}
	if env.users.Calls.SetUsername != 0 {
		t.Error("no write expected")
	}
}

func TestSetUsername_UserNotFound(t *testing.T) {
	ctx := context.Background()
	env := newWorkflowEnv(t)

	result, err := env.handler.Handle(ctx, command.SetUsername{
		UserID:   types.NewID(),
		Username: "alice",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Succeeded {
		t.Error("expected failure for an unknown user")
	}
}

func TestSetUsername_SnapshotPrecedence(t *testing.T) {
	ctx := context.Background()
	env := newWorkflowEnv(t)
	user := testutil.Fixtures.UserBuilder().Build()
	env.seedUser(t, user)

	_, err := env.handler.Handle(ctx, command.SetUsername{
		UserID:   user.ID(),
		Username: "alice",
		User:     user,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if env.users.Calls.FindByID != 0 {
		t.Error("caller-supplied snapshot must skip the store lookup")
	}
}

func TestSetUsername_StoreFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("write failure becomes a failed result", func(t *testing.T) {
		env := newWorkflowEnv(t)
		user := testutil.Fixtures.UserBuilder().Build()
		env.seedUser(t, user)
		env.users.Errors.SetUsername = errors.New("write timeout")

		result, err := env.handler.Handle(ctx, command.SetUsername{
			UserID:   user.ID(),
			Username: "alice",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Succeeded {
			t.Error("expected failure")
		}
		if result.Error == "" {
			t.Error("expected the store's error message")
		}
		if env.publisher.Calls.Publish != 0 {
			t.Error("no side effects after a failed commit")
		}
	})

	t.Run("losing the commit race reports taken", func(t *testing.T) {
		env := newWorkflowEnv(t)
		user := testutil.Fixtures.UserBuilder().Build()
		env.seedUser(t, user)
		// The availability pre-check passes but a concurrent writer
		// claims the name before our write lands.
		env.users.Errors.SetUsername = repository.ErrUsernameTaken

		result, err := env.handler.Handle(ctx, command.SetUsername{
			UserID:   user.ID(),
			Username: "alice",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Succeeded {
			t.Error("expected failure")
		}
	})
}

func TestSetUsername_ConcurrentClaim(t *testing.T) {
	ctx := context.Background()
	env := newWorkflowEnv(t)
	first := testutil.Fixtures.UserBuilder().Build()
	second := testutil.Fixtures.UserBuilder().Build()
	env.seedUser(t, first)
	env.seedUser(t, second)

	results := make([]command.SetUsernameResult, 2)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i, userID := range []types.ID{first.ID(), second.ID()} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			result, err := env.handler.Handle(ctx, command.SetUsername{
				UserID:   userID,
				Username: "alice",
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			results[i] = result
		}()
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, result := range results {
		if result.Succeeded {
			succeeded++
		}
	}
	if succeeded != 1 {
		t.Fatalf("successes = %d, want exactly 1", succeeded)
	}
	if env.publisher.Calls.Publish != 1 {
		t.Errorf("broadcasts = %d, want 1", env.publisher.Calls.Publish)
	}

	holder, err := env.users.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !holder.UsernameIs("alice") {
		t.Error("exactly one writer should hold the username")
	}
}

func TestSetUsername_CacheReadThrough(t *testing.T) {
	ctx := context.Background()

	t.Run("miss populates the cache", func(t *testing.T) {
		env := newWorkflowEnv(t)
		user := testutil.Fixtures.UserBuilder().WithUsername("alice").Build()
		env.seedUser(t, user)

		// A no-op change resolves the user without invalidating.
		result, err := env.handler.Handle(ctx, command.SetUsername{
			UserID:   user.ID(),
			Username: "alice",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.Succeeded {
			t.Fatalf("Succeeded = false, error = %q", result.Error)
		}
		if env.cache.Calls.Set != 1 {
			t.Errorf("cache sets = %d, want 1", env.cache.Calls.Set)
		}
		if !env.cache.Contains(user.ID()) {
			t.Error("resolved snapshot should be cached")
		}
	})

	t.Run("hit skips the store lookup", func(t *testing.T) {
		env := newWorkflowEnv(t)
		user := testutil.Fixtures.UserBuilder().WithUsername("alice").Build()
		env.seedUser(t, user)
		if err := env.cache.Set(ctx, user, 0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		env.cache.Calls.Set = 0

		result, err := env.handler.Handle(ctx, command.SetUsername{
			UserID:   user.ID(),
			Username: "alice",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.Succeeded {
			t.Fatalf("Succeeded = false, error = %q", result.Error)
		}
		if env.users.Calls.FindByID != 0 {
			t.Errorf("store lookups = %d, want 0", env.users.Calls.FindByID)
		}
	})

	t.Run("cache failure degrades to the store", func(t *testing.T) {
		env := newWorkflowEnv(t)
		user := testutil.Fixtures.UserBuilder().WithUsername("alice").Build()
		env.seedUser(t, user)
		env.cache.Errors.Get = errors.New("redis down")

		result, err := env.handler.Handle(ctx, command.SetUsername{
			UserID:   user.ID(),
			Username: "alice",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.Succeeded {
			t.Fatalf("Succeeded = false, error = %q", result.Error)
		}
		if env.users.Calls.FindByID != 1 {
			t.Errorf("store lookups = %d, want 1", env.users.Calls.FindByID)
		}
	})

	t.Run("commit invalidates a previously cached entry", func(t *testing.T) {
		env := newWorkflowEnv(t)
		user := testutil.Fixtures.UserBuilder().WithUsername("alice").Build()
		env.seedUser(t, user)

		result, err := env.handler.Handle(ctx, command.SetUsername{
			UserID:   user.ID(),
			Username: "alice2",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.Succeeded {
			t.Fatalf("Succeeded = false, error = %q", result.Error)
		}
		if env.cache.Contains(user.ID()) {
			t.Error("the stale snapshot must be invalidated after the commit")
		}
	})
}

func TestSetUsername_FirstTimeEffectsFireOnce(t *testing.T) {
	ctx := context.Background()
	env := newWorkflowEnv(t)
	roomID := types.NewID()
	user := testutil.Fixtures.UserBuilder().WithInviteToken("inv-1").Build()
	env.seedUser(t, user)
	env.invites.Add(testutil.Fixtures.Invite("inv-1", roomID))

	first, err := env.handler.Handle(ctx, command.SetUsername{
		UserID:   user.ID(),
		Username: "alice",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.Succeeded {
		t.Fatalf("Succeeded = false, error = %q", first.Error)
	}

	if members := env.rooms.Members(roomID); len(members) != 1 {
		t.Fatalf("room members = %d, want 1", len(members))
	}
	if env.store.Calls.SetAvatar != 1 {
		t.Errorf("avatars set = %d, want 1", env.store.Calls.SetAvatar)
	}

	// Repeating the same username is a no-op and re-triggers nothing.
	second, err := env.handler.Handle(ctx, command.SetUsername{
		UserID:   user.ID(),
		Username: "alice",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.Succeeded {
		t.Fatalf("Succeeded = false, error = %q", second.Error)
	}
	if env.rooms.Calls.AddUserToRoom != 1 {
		t.Errorf("room joins = %d, want 1", env.rooms.Calls.AddUserToRoom)
	}
	if env.store.Calls.SetAvatar != 1 {
		t.Errorf("avatars set = %d, want 1", env.store.Calls.SetAvatar)
	}
	if env.publisher.Calls.Publish != 1 {
		t.Errorf("broadcasts = %d, want 1", env.publisher.Calls.Publish)
	}
}

func TestSetUsername_RoomJoinFailurePropagates(t *testing.T) {
	ctx := context.Background()
	env := newWorkflowEnv(t)
	user := testutil.Fixtures.UserBuilder().WithInviteToken("inv-1").Build()
	env.seedUser(t, user)
	env.invites.Add(testutil.Fixtures.Invite("inv-1", types.NewID()))
	env.rooms.Errors.AddUserToRoom = errors.New("rooms service down")

	_, err := env.handler.Handle(ctx, command.SetUsername{
		UserID:   user.ID(),
		Username: "alice",
	})
	if err == nil {
		t.Fatal("expected room-join failure to propagate")
	}

	// The commit already happened; only the side effect failed.
	stored, ferr := env.users.FindByID(ctx, user.ID())
	if ferr != nil {
		t.Fatalf("unexpected error: %v", ferr)
	}
	if !stored.UsernameIs("alice") {
		t.Error("commit should survive a propagated side-effect failure")
	}
}
