package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/0xsj/overwatch-pkg/types"

	"github.com/0xsj/overwatch-profile/tests/testutil"
)

func TestUserRowMapping(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		user := testutil.Fixtures.UserBuilder().
			WithUsername("alice").
			WithEmail("alice@example.com").
			WithInviteToken("inv-1").
			Build()

		row := toUserRow(user)
		restored, err := toUserModel(row)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if restored.ID() != user.ID() {
			t.Error("ID should round-trip")
		}
		if !restored.UsernameIs("alice") {
			t.Error("username should round-trip")
		}
		if restored.DisplayName() != user.DisplayName() {
			t.Error("display name should round-trip")
		}
		if !restored.HasEmail() {
			t.Error("emails should round-trip")
		}
		if restored.InviteToken().MustGet() != "inv-1" {
			t.Error("invite token should round-trip")
		}
	})

	t.Run("absent optionals map to null", func(t *testing.T) {
		user := testutil.Fixtures.UserBuilder().Build()

		row := toUserRow(user)
		if row.Username.Valid {
			t.Error("an unset username must be a null column")
		}
		if row.InviteToken.Valid {
			t.Error("an unset invite token must be a null column")
		}

		restored, err := toUserModel(row)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if restored.HasUsername() {
			t.Error("restored user should have no username")
		}
	})

	t.Run("unparseable id fails", func(t *testing.T) {
		row := userRow{ID: "not-an-id", CreatedAt: time.Now(), UpdatedAt: time.Now()}
		if _, err := toUserModel(row); err == nil {
			t.Fatal("expected an error for a malformed id")
		}
	})
}

func TestInviteRowMapping(t *testing.T) {
	roomID := types.NewID()

	invite := toInviteModel(inviteRow{
		Token:  "inv-1",
		RoomID: pgtype.Text{String: roomID.String(), Valid: true},
	})
	if invite.Token() != "inv-1" {
		t.Errorf("Token = %q, want inv-1", invite.Token())
	}
	if !invite.HasRoom() || invite.RoomID().MustGet() != roomID {
		t.Error("room id should round-trip")
	}

	roomless := toInviteModel(inviteRow{Token: "inv-2", RoomID: pgtype.Text{Valid: false}})
	if roomless.HasRoom() {
		t.Error("a null room column maps to an absent room")
	}
}
