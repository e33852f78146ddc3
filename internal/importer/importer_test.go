package importer

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/guest-seating/internal/model"
	"github.com/iliyamo/guest-seating/internal/repository"
	"github.com/iliyamo/guest-seating/internal/seating"
)

func newImporter(t *testing.T, move bool) (*Importer, *seating.Engine, *bytes.Buffer) {
	t.Helper()
	logs := &bytes.Buffer{}
	log := slog.New(slog.NewTextHandler(logs, nil))
	engine := seating.New(repository.NewMemoryStore(), seating.WithLogger(log))
	im := New(engine, Options{
		Sentinel: "TABLE ENFANT",
		Overflow: OverflowTable{Number: 27, Name: "Table des enfants", Capacity: 20},
		Move:     move,
	}, log)
	return im, engine, logs
}

func TestImportOverflowScenario(t *testing.T) {
	im, engine, _ := newImporter(t, false)
	ctx := context.Background()
	plan := "MARTIN,Léo,TABLE ENFANT\nMARTIN,Inès,TABLE ENFANT\nDAHO,Noah,TABLE ENFANT\n"

	res, err := im.Import(ctx, strings.NewReader(plan))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Assigned)
	assert.Equal(t, 3, res.Created)
	assert.Zero(t, res.Failed)
	require.NotNil(t, res.Verification)
	assert.True(t, res.Verification.OK())

	var seats []int
	for _, it := range res.Items {
		seats = append(seats, it.SeatNumber)
	}
	assert.Equal(t, []int{1, 2, 3}, seats)

	ts, err := engine.Views.TableStatus(ctx, 27)
	require.NoError(t, err)
	assert.Equal(t, "Table des enfants", ts.TableName)
	assert.Equal(t, 20, ts.Capacity)
	assert.Equal(t, 3, ts.OccupiedSeats)
	assert.Equal(t, 17, ts.AvailableSeats)
}

func TestImportIsRerunnable(t *testing.T) {
	im, engine, _ := newImporter(t, false)
	ctx := context.Background()
	_, err := engine.CreateTable(ctx, model.Table{Number: 4, Name: "Quatre", Capacity: 10})
	require.NoError(t, err)
	plan := "DAHO,Anne,4\nKIEFER,Werner,4\n"

	first, err := im.Import(ctx, strings.NewReader(plan))
	require.NoError(t, err)
	assert.Equal(t, 2, first.Assigned)

	second, err := im.Import(ctx, strings.NewReader(plan))
	require.NoError(t, err)
	assert.Zero(t, second.Assigned)
	assert.Zero(t, second.Created)
	assert.Equal(t, 2, second.Unchanged)

	guests, err := engine.Directory.Guests(ctx)
	require.NoError(t, err)
	assert.Len(t, guests, 2)
}

func TestImportReusesNearExactGuest(t *testing.T) {
	im, engine, _ := newImporter(t, false)
	ctx := context.Background()
	_, err := engine.CreateTable(ctx, model.Table{Number: 20, Name: "Vingt", Capacity: 10})
	require.NoError(t, err)
	existing, err := engine.Directory.CreateGuest(ctx, model.Guest{FirstName: "Gisèle Valérie", LastName: "Saih"})
	require.NoError(t, err)
	// same first name, somebody else
	_, err = engine.Directory.CreateGuest(ctx, model.Guest{FirstName: "Gisele Valerie", LastName: "Other"})
	require.NoError(t, err)

	res, err := im.Import(ctx, strings.NewReader("SAIH,GISELE VALERIE,20\n"))
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, existing.ID, res.Items[0].GuestID)
	assert.False(t, res.Items[0].Created)
}

func TestImportCreatesGuestOnFuzzyFirstNameHit(t *testing.T) {
	im, engine, _ := newImporter(t, false)
	ctx := context.Background()
	_, err := engine.CreateTable(ctx, model.Table{Number: 1, Name: "Un", Capacity: 10})
	require.NoError(t, err)
	other, err := engine.Directory.CreateGuest(ctx, model.Guest{FirstName: "Anne", LastName: "Martin"})
	require.NoError(t, err)

	res, err := im.Import(ctx, strings.NewReader("DAHO,Anne,1\n"))
	require.NoError(t, err)
	assert.True(t, res.Items[0].Created)
	assert.NotEqual(t, other.ID, res.Items[0].GuestID)
}

func TestImportAccumulatesFailures(t *testing.T) {
	im, engine, logs := newImporter(t, false)
	ctx := context.Background()
	_, err := engine.CreateTable(ctx, model.Table{Number: 2, Name: "Deux", Capacity: 1})
	require.NoError(t, err)
	plan := "A,Un,2\nB,Deux,2\nC,Trois,99\nD,Quatre,TABLE ENFANT\n"

	res, err := im.Import(ctx, strings.NewReader(plan))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Assigned)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, ActionFailed, res.Items[1].Action)
	assert.Contains(t, res.Items[1].Error, "capacity")
	assert.Equal(t, ActionFailed, res.Items[2].Action)
	assert.Equal(t, ActionAssigned, res.Items[3].Action)
	assert.Contains(t, logs.String(), "import line failed")
}

func TestImportMovesOnlyWhenAsked(t *testing.T) {
	ctx := context.Background()
	for _, move := range []bool{false, true} {
		im, engine, _ := newImporter(t, move)
		for _, n := range []int{1, 2} {
			_, err := engine.CreateTable(ctx, model.Table{Number: n, Name: "T", Capacity: 4})
			require.NoError(t, err)
		}
		_, err := im.Import(ctx, strings.NewReader("KIEFER,Werner,1\n"))
		require.NoError(t, err)

		res, err := im.Import(ctx, strings.NewReader("KIEFER,Werner,2\n"))
		require.NoError(t, err)
		ts1, err := engine.Views.TableStatus(ctx, 1)
		require.NoError(t, err)
		if move {
			assert.Equal(t, 1, res.Moved)
			assert.Equal(t, ActionMoved, res.Items[0].Action)
			assert.Zero(t, ts1.OccupiedSeats)
		} else {
			assert.Equal(t, 1, res.Elsewhere)
			assert.Equal(t, 1, res.Items[0].TableNumber)
			assert.Equal(t, 1, ts1.OccupiedSeats)
		}
	}
}
