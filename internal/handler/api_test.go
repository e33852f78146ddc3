package handler_test

import (
    "bytes"
    "context"
    "encoding/json"
    "io"
    "log/slog"
    "mime/multipart"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "golang.org/x/crypto/bcrypt"

    "github.com/iliyamo/guest-seating/internal/config"
    "github.com/iliyamo/guest-seating/internal/handler"
    "github.com/iliyamo/guest-seating/internal/importer"
    "github.com/iliyamo/guest-seating/internal/middleware"
    "github.com/iliyamo/guest-seating/internal/model"
    "github.com/iliyamo/guest-seating/internal/repository"
    "github.com/iliyamo/guest-seating/internal/router"
    "github.com/iliyamo/guest-seating/internal/seating"
)

const secret = "test-secret"

type api struct {
    t      *testing.T
    e      *echo.Echo
    engine *seating.Engine
    token  string
}

func newAPI(t *testing.T) *api {
    t.Helper()
    hash, err := bcrypt.GenerateFromPassword([]byte("wedding-2024"), bcrypt.MinCost)
    require.NoError(t, err)
    cfg := config.Config{JWTSecret: secret, AccessTTLMin: 5, AdminUser: "admin", AdminPasswordHash: string(hash)}

    log := slog.New(slog.NewTextHandler(io.Discard, nil))
    engine := seating.New(repository.NewMemoryStore(), seating.WithLogger(log), seating.WithOverflowTable(27))
    opts := importer.Options{
        Sentinel: "TABLE ENFANT",
        Overflow: importer.OverflowTable{Number: 27, Name: "Table des enfants", Capacity: 20},
    }

    e := echo.New()
    router.RegisterRoutes(e, nil, nil)
    router.RegisterAuth(e, handler.NewAuthHandler(cfg), secret)
    router.RegisterPublic(e, handler.NewPublicHandler(engine, log), middleware.NewViewCache(config.CacheConfig{}, nil), nil)
    router.RegisterAdmin(e, handler.NewAdminHandler(engine, opts, log), secret)

    a := &api{t: t, e: e, engine: engine}
    rec := a.do(http.MethodPost, "/v1/auth/login", `{"username":"admin","password":"wedding-2024"}`)
    require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
    var resp struct {
        Access struct {
            Token string `json:"token"`
        } `json:"access"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
    a.token = resp.Access.Token
    return a
}

func (a *api) do(method, target, body string) *httptest.ResponseRecorder {
    a.t.Helper()
    var r io.Reader
    if body != "" {
        r = strings.NewReader(body)
    }
    req := httptest.NewRequest(method, target, r)
    if body != "" {
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    }
    if a.token != "" {
        req.Header.Set(echo.HeaderAuthorization, "Bearer "+a.token)
    }
    rec := httptest.NewRecorder()
    a.e.ServeHTTP(rec, req)
    return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
    t.Helper()
    var v T
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
    return v
}

func (a *api) guest(first, last string) model.Guest {
    a.t.Helper()
    rec := a.do(http.MethodPost, "/v1/guests", `{"first_name":"`+first+`","last_name":"`+last+`"}`)
    require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
    return decode[model.Guest](a.t, rec)
}

func TestHealth(t *testing.T) {
    a := newAPI(t)
    assert.Equal(t, "ok", a.do(http.MethodGet, "/healthz", "").Body.String())
    assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/readyz", "").Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
    a := newAPI(t)
    a.token = ""
    assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/v1/auth/login", `{"username":"admin","password":"nope"}`).Code)
    assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/v1/auth/login", `{"username":"root","password":"wedding-2024"}`).Code)
    assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/v1/auth/login", `{"username":""}`).Code)
    assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/v1/tables", "").Code)
}

func TestMe(t *testing.T) {
    a := newAPI(t)
    rec := a.do(http.MethodGet, "/v1/me", "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.JSONEq(t, `{"user":"admin","role":"ADMIN"}`, rec.Body.String())
}

func TestTableLifecycle(t *testing.T) {
    a := newAPI(t)

    rec := a.do(http.MethodPost, "/v1/tables", `{"number":3,"name":"Roses","capacity":2}`)
    require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
    assert.Equal(t, http.StatusConflict, a.do(http.MethodPost, "/v1/tables", `{"number":3,"capacity":4}`).Code)
    assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/v1/tables", `{"number":0,"capacity":4}`).Code)

    g := a.guest("Anna", "Martin")
    require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/v1/assignments", `{"guest_id":"`+g.ID+`","table_number":3}`).Code)

    rec = a.do(http.MethodPatch, "/v1/tables/3", `{"capacity":0}`)
    assert.Equal(t, http.StatusConflict, rec.Code)

    rec = a.do(http.MethodPut, "/v1/tables/3", `{"name":"Pivoines","capacity":6}`)
    require.Equal(t, http.StatusOK, rec.Code)
    tbl := decode[model.Table](t, rec)
    assert.Equal(t, "Pivoines", tbl.Name)
    assert.Equal(t, 6, tbl.Capacity)

    assert.Equal(t, http.StatusNotFound, a.do(http.MethodPut, "/v1/tables/9", `{"capacity":6}`).Code)
    assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPut, "/v1/tables/abc", `{"capacity":6}`).Code)

    rec = a.do(http.MethodDelete, "/v1/tables/3", "")
    require.Equal(t, http.StatusOK, rec.Code)
    del := decode[struct {
        Deleted int                    `json:"deleted"`
        Evicted []model.SeatAssignment `json:"evicted"`
    }](t, rec)
    assert.Equal(t, 3, del.Deleted)
    require.Len(t, del.Evicted, 1)
    assert.Equal(t, g.ID, del.Evicted[0].GuestID)

    gs := decode[model.GuestStatus](t, a.do(http.MethodGet, "/v1/guests/"+g.ID+"/status", ""))
    assert.Equal(t, model.StatusUnassigned, gs.Status)
}

func TestAssignmentFlow(t *testing.T) {
    a := newAPI(t)
    require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/v1/tables", `{"number":1,"capacity":1}`).Code)
    require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/v1/tables", `{"number":2,"capacity":4}`).Code)
    anna := a.guest("Anna", "Martin")
    paul := a.guest("Paul", "Durand")

    rec := a.do(http.MethodPost, "/v1/assignments", `{"first_name":"Anna","last_name":"Martin","table_number":1}`)
    require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
    first := decode[struct {
        Allocation seating.Allocation `json:"allocation"`
    }](t, rec)
    assert.Equal(t, seating.OutcomeAssigned, first.Allocation.Outcome)
    assert.Equal(t, 1, first.Allocation.Assignment.SeatNumber)
    assert.Equal(t, "WEDDING-"+anna.ID+"-TABLE1", first.Allocation.Assignment.Token)

    rec = a.do(http.MethodPost, "/v1/assignments", `{"guest_id":"`+anna.ID+`","table_number":2}`)
    require.Equal(t, http.StatusOK, rec.Code)
    again := decode[struct {
        Allocation seating.Allocation `json:"allocation"`
    }](t, rec)
    assert.Equal(t, seating.OutcomeAlreadyAssigned, again.Allocation.Outcome)

    rec = a.do(http.MethodPost, "/v1/assignments", `{"guest_id":"`+paul.ID+`","table_number":1}`)
    require.Equal(t, http.StatusConflict, rec.Code)
    capBody := decode[map[string]any](t, rec)
    assert.Equal(t, "capacity_exceeded", capBody["error"])
    assert.EqualValues(t, 1, capBody["capacity"])

    rec = a.do(http.MethodPut, "/v1/assignments/"+anna.ID, `{"table_number":2}`)
    require.Equal(t, http.StatusOK, rec.Code)
    moved := decode[seating.Allocation](t, rec)
    assert.Equal(t, seating.OutcomeMoved, moved.Outcome)
    assert.Equal(t, 1, moved.FromTable)
    assert.Equal(t, 2, moved.Assignment.TableNumber)

    assert.Equal(t, http.StatusNotFound, a.do(http.MethodPost, "/v1/assignments", `{"first_name":"Zoé","last_name":"Nobody","table_number":2}`).Code)
    assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/v1/assignments", `{"table_number":2}`).Code)

    require.Equal(t, http.StatusOK, a.do(http.MethodDelete, "/v1/assignments/"+anna.ID, "").Code)
    assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, "/v1/assignments/"+anna.ID, "").Code)
}

func TestResolveListsAmbiguousCandidates(t *testing.T) {
    a := newAPI(t)
    a.guest("Jean", "Dupont")
    a.guest("Jeanne", "Dupont")

    rec := a.do(http.MethodGet, "/v1/guests/resolve?first_name=jean&last_name=Dupont", "")
    require.Equal(t, http.StatusOK, rec.Code)
    body := decode[struct {
        Resolution seating.Resolution `json:"resolution"`
        Fallback   bool               `json:"fallback"`
        Ambiguous  bool               `json:"ambiguous"`
    }](t, rec)
    assert.True(t, body.Fallback)
    assert.True(t, body.Ambiguous)
    require.Len(t, body.Resolution.Candidates, 2)
    assert.Equal(t, "Jean", body.Resolution.Candidates[0].Guest.FirstName)

    assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/v1/guests/resolve", "").Code)
}

func TestDuplicatesMerge(t *testing.T) {
    a := newAPI(t)
    require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/v1/tables", `{"number":5,"capacity":8}`).Code)
    keep := a.guest("Lucie", "Bernard")
    a.guest("Lucie", "Bernard")
    require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/v1/assignments", `{"guest_id":"`+keep.ID+`","table_number":5}`).Code)

    rec := a.do(http.MethodGet, "/v1/duplicates", "")
    require.Equal(t, http.StatusOK, rec.Code)
    groups := decode[struct {
        Groups []seating.DuplicateGroup `json:"groups"`
    }](t, rec)
    require.Len(t, groups.Groups, 1)
    assert.Len(t, groups.Groups[0].Guests, 2)

    rec = a.do(http.MethodPost, "/v1/duplicates/merge", `{"last_name":"Bernard"}`)
    require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
    rep := decode[seating.MergeReport](t, rec)
    assert.Equal(t, keep.ID, rep.Kept.ID)
    assert.Len(t, rep.Removed, 1)

    rec = a.do(http.MethodGet, "/v1/duplicates?last_name=Bernard", "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Len(t, decode[struct {
        Guests []model.Guest `json:"guests"`
    }](t, rec).Guests, 1)

    assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/v1/duplicates/merge", `{}`).Code)
}

func TestDuplicatesMergeAmbiguousWithoutSeat(t *testing.T) {
    a := newAPI(t)
    a.guest("Hugo", "Petit")
    a.guest("Hugo", "Petit")
    rec := a.do(http.MethodPost, "/v1/duplicates/merge", `{"last_name":"Petit"}`)
    assert.Equal(t, http.StatusConflict, rec.Code)
    assert.Equal(t, "ambiguous", decode[map[string]any](t, rec)["error"])
}

func TestImportVerifyAndSummary(t *testing.T) {
    a := newAPI(t)
    require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/v1/tables", `{"number":1,"capacity":10}`).Code)

    plan := "Martin,Anna,1\nMartin,Léo,TABLE ENFANT\n,,\n"
    var buf bytes.Buffer
    mw := multipart.NewWriter(&buf)
    fw, err := mw.CreateFormFile("file", "plan.csv")
    require.NoError(t, err)
    _, err = fw.Write([]byte(plan))
    require.NoError(t, err)
    require.NoError(t, mw.Close())

    req := httptest.NewRequest(http.MethodPost, "/v1/import", &buf)
    req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
    req.Header.Set(echo.HeaderAuthorization, "Bearer "+a.token)
    rec := httptest.NewRecorder()
    a.e.ServeHTTP(rec, req)
    require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
    res := decode[importer.Result](t, rec)
    assert.Equal(t, 2, res.Created)
    assert.Equal(t, 2, res.Assigned)
    assert.Len(t, res.Skipped, 1)
    require.NotNil(t, res.Verification)

    // The same plan as a raw body is a no-op.
    rec = a.do(http.MethodPost, "/v1/import", "")
    require.Equal(t, http.StatusOK, rec.Code)
    req = httptest.NewRequest(http.MethodPost, "/v1/import?move=true", strings.NewReader(plan))
    req.Header.Set(echo.HeaderContentType, "text/csv")
    req.Header.Set(echo.HeaderAuthorization, "Bearer "+a.token)
    rec = httptest.NewRecorder()
    a.e.ServeHTTP(rec, req)
    require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
    again := decode[importer.Result](t, rec)
    assert.Zero(t, again.Created)
    assert.Equal(t, 2, again.Unchanged)

    assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/v1/import?move=maybe", "x").Code)

    rec = a.do(http.MethodGet, "/v1/verify", "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.True(t, decode[seating.Report](t, rec).OK())

    rec = a.do(http.MethodGet, "/v1/summary", "")
    require.Equal(t, http.StatusOK, rec.Code)
    sum := decode[seating.Summary](t, rec)
    assert.Equal(t, 2, sum.TotalGuests)
    assert.Equal(t, 1, sum.OccupiedSeats)
    require.NotNil(t, sum.Overflow)
    assert.Equal(t, 1, sum.Overflow.OccupiedSeats)
}

func TestVerifyReportsIssuesWith409(t *testing.T) {
    store := repository.NewMemoryStore()
    log := slog.New(slog.NewTextHandler(io.Discard, nil))
    engine := seating.New(store, seating.WithLogger(log))
    ctx := context.Background()
    _, err := store.Insert(ctx, repository.TableAssignments, repository.Row{
        "guest_id": "ghost", "table_number": 42, "seat_number": 1, "qr_code": "WEDDING-ghost-TABLE42", "checked_in": false,
    })
    require.NoError(t, err)

    e := echo.New()
    e.GET("/v1/verify", handler.NewAdminHandler(engine, importer.Options{}, log).Verify)
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/verify", nil))
    require.Equal(t, http.StatusConflict, rec.Code)
    rep := decode[seating.Report](t, rec)
    assert.NotEmpty(t, rep.Issues)
}

func TestPublicViewsAndCheckIn(t *testing.T) {
    a := newAPI(t)
    require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/v1/tables", `{"number":4,"name":"Lilas","capacity":3}`).Code)
    anna := a.guest("Anna", "Martin")
    a.guest("Paul", "Durand")
    rec := a.do(http.MethodPost, "/v1/assignments", `{"guest_id":"`+anna.ID+`","table_number":4}`)
    require.Equal(t, http.StatusCreated, rec.Code)
    token := decode[struct {
        Allocation seating.Allocation `json:"allocation"`
    }](t, rec).Allocation.Assignment.Token

    a.token = ""
    tables := decode[[]model.TableStatus](t, a.do(http.MethodGet, "/v1/tables/status", ""))
    require.Len(t, tables, 1)
    assert.Equal(t, 1, tables[0].OccupiedSeats)
    assert.Equal(t, 2, tables[0].AvailableSeats)

    ts := decode[model.TableStatus](t, a.do(http.MethodGet, "/v1/tables/4/status", ""))
    require.Len(t, ts.SeatedGuests, 1)
    assert.Equal(t, "Anna Martin", ts.SeatedGuests[0].GuestName)
    assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/v1/tables/8/status", "").Code)

    unassigned := decode[[]model.GuestStatus](t, a.do(http.MethodGet, "/v1/guests/status?status=unassigned", ""))
    require.Len(t, unassigned, 1)
    assert.Equal(t, "Paul", unassigned[0].FirstName)

    rec = a.do(http.MethodPost, "/v1/checkin", `{"token":"`+token+`"}`)
    require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
    in := decode[map[string]any](t, rec)
    assert.Equal(t, "Anna Martin", in["guest_name"])
    assert.Equal(t, "Lilas", in["table_name"])
    assert.Equal(t, false, in["already_checked_in"])

    in = decode[map[string]any](t, a.do(http.MethodPost, "/v1/checkin", `{"token":"`+token+`"}`))
    assert.Equal(t, true, in["already_checked_in"])

    assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/v1/checkin", `{"token":"PARTY-1"}`).Code)
    assert.Equal(t, http.StatusNotFound, a.do(http.MethodPost, "/v1/checkin", `{"token":"WEDDING-nobody-TABLE4"}`).Code)
    assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/v1/checkin", `{}`).Code)

    gs := decode[model.GuestStatus](t, a.do(http.MethodGet, "/v1/guests/"+anna.ID+"/status", ""))
    assert.Equal(t, model.StatusCheckedIn, gs.Status)

    assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodDelete, "/v1/checkin/"+anna.ID, "").Code)
}

func TestUndoCheckIn(t *testing.T) {
    a := newAPI(t)
    require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/v1/tables", `{"number":4,"capacity":3}`).Code)
    anna := a.guest("Anna", "Martin")
    rec := a.do(http.MethodPost, "/v1/assignments", `{"guest_id":"`+anna.ID+`","table_number":4}`)
    require.Equal(t, http.StatusCreated, rec.Code)
    token := decode[struct {
        Allocation seating.Allocation `json:"allocation"`
    }](t, rec).Allocation.Assignment.Token
    require.Equal(t, http.StatusOK, a.do(http.MethodPost, "/v1/checkin", `{"token":"`+token+`"}`).Code)

    rec = a.do(http.MethodDelete, "/v1/checkin/"+anna.ID, "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.False(t, decode[model.Guest](t, rec).CheckedIn)
    gs := decode[model.GuestStatus](t, a.do(http.MethodGet, "/v1/guests/"+anna.ID+"/status", ""))
    assert.Equal(t, model.StatusAssigned, gs.Status)
    assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, "/v1/checkin/missing", "").Code)
}

func TestCompactAndGuestDelete(t *testing.T) {
    a := newAPI(t)
    require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/v1/tables", `{"number":6,"capacity":5}`).Code)
    var ids []string
    for _, n := range []string{"A", "B", "C"} {
        g := a.guest(n, "Roux")
        ids = append(ids, g.ID)
        require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/v1/assignments", `{"guest_id":"`+g.ID+`","table_number":6}`).Code)
    }
    require.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, "/v1/guests/"+ids[0], "").Code)
    assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, "/v1/guests/"+ids[0], "").Code)

    rec := a.do(http.MethodPost, "/v1/tables/6/compact", "")
    require.Equal(t, http.StatusOK, rec.Code)
    rep := decode[seating.CompactReport](t, rec)
    require.Len(t, rep.Seats, 2)
    assert.Equal(t, 1, rep.Seats[0].SeatNumber)
    assert.Equal(t, 2, rep.Seats[1].SeatNumber)
    assert.Equal(t, ids[1], rep.Seats[0].GuestID)
    assert.Equal(t, http.StatusNotFound, a.do(http.MethodPost, "/v1/tables/60/compact", "").Code)
}

func TestPublicGuestViewsHideCheckInToken(t *testing.T) {
    a := newAPI(t)
    require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/v1/tables", `{"number":2,"capacity":3}`).Code)
    anna := a.guest("Anna", "Martin")
    rec := a.do(http.MethodPost, "/v1/assignments", `{"guest_id":"`+anna.ID+`","table_number":2}`)
    require.Equal(t, http.StatusCreated, rec.Code)
    token := decode[struct {
        Allocation seating.Allocation `json:"allocation"`
    }](t, rec).Allocation.Assignment.Token
    require.NotEmpty(t, token)

    a.token = ""
    rec = a.do(http.MethodGet, "/v1/guests/"+anna.ID+"/status", "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.NotContains(t, rec.Body.String(), token)
    assert.NotContains(t, rec.Body.String(), "check_in_token")
    gs := decode[model.GuestStatus](t, rec)
    assert.Equal(t, model.StatusAssigned, gs.Status)
    require.NotNil(t, gs.TableNumber)
    assert.Equal(t, 2, *gs.TableNumber)

    rec = a.do(http.MethodGet, "/v1/guests/status", "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.NotContains(t, rec.Body.String(), token)
    all := decode[[]model.GuestStatus](t, rec)
    require.Len(t, all, 1)
    assert.Empty(t, all[0].CheckInToken)
}

func TestImportUsesHandlerDefaults(t *testing.T) {
    log := slog.New(slog.NewTextHandler(io.Discard, nil))
    engine := seating.New(repository.NewMemoryStore(), seating.WithLogger(log), seating.WithOverflowTable(30))
    opts := importer.Options{
        Sentinel: "KIDS",
        Overflow: importer.OverflowTable{Number: 30, Name: "Kids", Capacity: 5},
    }
    h := handler.NewAdminHandler(engine, opts, log)
    assert.Equal(t, opts, h.ImportOpts)

    e := echo.New()
    e.POST("/v1/import", h.Import)
    req := httptest.NewRequest(http.MethodPost, "/v1/import", strings.NewReader("Martin,Léo,KIDS\n"))
    req.Header.Set(echo.HeaderContentType, "text/csv")
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
    res := decode[importer.Result](t, rec)
    assert.Equal(t, 1, res.Assigned)

    ts, err := engine.Views.TableStatus(context.Background(), 30)
    require.NoError(t, err)
    assert.Equal(t, "Kids", ts.TableName)
    assert.Equal(t, 1, ts.OccupiedSeats)

    req = httptest.NewRequest(http.MethodPost, "/v1/import?move=maybe", strings.NewReader("Martin,Léo,KIDS\n"))
    rec = httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Equal(t, "KIDS", h.ImportOpts.Sentinel)
}
