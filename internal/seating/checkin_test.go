package seating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/guest-seating/internal/model"
)

func TestCheckIn(t *testing.T) {
	f := newFixture(t)
	f.table(3, 4)
	g := f.guest("Werner", "Kiefer")
	seat := f.seat(g, 3)

	res, err := f.engine.Desk.CheckIn(f.ctx, " "+seat.Token+" ")
	require.NoError(t, err)
	assert.False(t, res.AlreadyCheckedIn)
	assert.True(t, res.Guest.CheckedIn)
	require.NotNil(t, res.Guest.CheckedInAt)
	assert.Equal(t, fixedNow, *res.Guest.CheckedInAt)
	assert.Equal(t, "Table 3", res.TableName)
	assert.True(t, res.Seat.CheckedIn)

	again, err := f.engine.Desk.CheckIn(f.ctx, seat.Token)
	require.NoError(t, err)
	assert.True(t, again.AlreadyCheckedIn)

	ts := f.tableStatus(3)
	assert.True(t, ts.SeatedGuests[0].CheckedIn)
}

func TestCheckInRejectsForeignAndUnknownTokens(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.Desk.CheckIn(f.ctx, "PARTY-123-TABLE1")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = f.engine.Desk.CheckIn(f.ctx, "WEDDING-123-TABLE1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUndoCheckIn(t *testing.T) {
	f := newFixture(t)
	f.table(3, 4)
	g := f.guest("A", "B")
	seat := f.seat(g, 3)
	_, err := f.engine.Desk.CheckIn(f.ctx, seat.Token)
	require.NoError(t, err)

	undone, err := f.engine.Desk.UndoCheckIn(f.ctx, g.ID)
	require.NoError(t, err)
	assert.False(t, undone.CheckedIn)
	assert.Nil(t, undone.CheckedInAt)

	status, err := f.engine.Views.GuestStatus(f.ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAssigned, status.Status)

	_, err = f.engine.Desk.UndoCheckIn(f.ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCustomTokenPrefix(t *testing.T) {
	f := newFixture(t)
	f.engine = New(f.store, WithTokenFormat(TokenFormat{Prefix: "GALA"}))
	f.table(1, 2)
	seat := f.seat(f.guest("A", "B"), 1)
	assert.Equal(t, "GALA-", seat.Token[:5])
	_, err := f.engine.Desk.CheckIn(f.ctx, seat.Token)
	require.NoError(t, err)
}
