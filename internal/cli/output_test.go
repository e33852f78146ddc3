package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/guest-seating/internal/model"
	"github.com/iliyamo/guest-seating/internal/seating"
)

func TestExitError(t *testing.T) {
	base := errors.New("boom")
	err := WrapExitError(ExitCommandError, "open database", base)
	assert.Equal(t, "open database: boom", err.Error())
	assert.ErrorIs(t, err, base)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("wrapped: %w", err)))
	assert.Equal(t, ExitFailure, GetExitCode(base))
	assert.Equal(t, "plain", NewExitError(ExitFailure, "plain").Error())
}

func TestFormatterJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}
	require.NoError(t, f.Success(map[string]int{"seats": 3}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]interface{}{"seats": float64(3)}, resp.Data)
}

func TestFormatterTextUsesTexter(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}
	table, seat := 4, 2
	require.NoError(t, f.Success(guestStatusView(model.GuestStatus{
		FirstName: "Anna", LastName: "Martin", TableNumber: &table, TableName: "Lilas", SeatNumber: &seat, Status: model.StatusAssigned,
	})))
	assert.Equal(t, "Anna Martin: assigned at table 4 (Lilas) seat 2\n", buf.String())
}

func TestFailClassifiesSeatingErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
		exit int
	}{
		{"not found", fmt.Errorf("%w: guest x", seating.ErrNotFound), ErrCodeNotFound, ExitFailure},
		{"ambiguous", &seating.AmbiguousError{Query: "Jean Dupont"}, ErrCodeAmbiguous, ExitFailure},
		{"capacity", &seating.CapacityError{TableNumber: 1, Capacity: 2, Occupied: 2}, ErrCodeCapacity, ExitFailure},
		{"inconsistent", &seating.InconsistencyError{}, ErrCodeInconsistent, ExitFailure},
		{"conflict", seating.ErrConflict, ErrCodeConflict, ExitFailure},
		{"command", NewExitError(ExitCommandError, "bad flag"), ErrCodeStorage, ExitCommandError},
		{"other", errors.New("disk full"), ErrCodeGeneric, ExitCommandError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			f := &OutputFormatter{Format: "json", Writer: &buf}
			err := f.Fail("op", tt.err)
			assert.Equal(t, tt.exit, GetExitCode(err))

			var ee *ExitError
			require.ErrorAs(t, err, &ee)
			assert.True(t, ee.Printed)

			var resp CLIResponse
			require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestVerboseLogGoesToErrWriter(t *testing.T) {
	var out, diag bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &out, ErrWriter: &diag, Verbose: true}
	f.VerboseLog("importing %s", "plan.csv")
	assert.Empty(t, out.String())
	assert.Equal(t, "importing plan.csv\n", diag.String())

	f.Verbose = false
	f.VerboseLog("hidden")
	assert.Equal(t, "importing plan.csv\n", diag.String())
}
