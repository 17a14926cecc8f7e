package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"massage-booking-api/internal/core/database/dbtest"
	"massage-booking-api/internal/domain"
	"massage-booking-api/internal/repo"
)

type env struct {
	svc   *Service
	admin domain.Principal
	ana   domain.Principal
	bob   domain.Principal
	relax *domain.Treatment
	sport *domain.Treatment
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := dbtest.Open(t)
	users := repo.NewUserRepo(db)
	treatments := repo.NewTreatmentRepo(db)
	ctx := context.Background()

	mk := func(email, name string, roles ...string) domain.Principal {
		u := &domain.User{Email: email, Name: name, LastName: "Test", PasswordHash: "x"}
		require.NoError(t, users.Create(ctx, u, roles...))
		return domain.Principal{UserID: u.ID, Email: email, Roles: roles}
	}
	admin := mk("owner@example.com", "Olga", domain.RoleAdmin)
	ana := mk("ana@example.com", "Ana", domain.RoleClient)
	bob := mk("bob@example.com", "Bob", domain.RoleClient)

	relax := &domain.Treatment{Title: "Relax"}
	sport := &domain.Treatment{Title: "Sport"}
	require.NoError(t, treatments.Create(ctx, relax))
	require.NoError(t, treatments.Create(ctx, sport))

	madrid, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)
	return &env{
		svc: &Service{
			Appointments: repo.NewAppointmentRepo(db),
			Treatments:   treatments,
			Users:        users,
			Window:       domain.BookingWindow{Open: 9, Close: 20, Loc: madrid},
		},
		admin: admin, ana: ana, bob: bob,
		relax: relax, sport: sport,
	}
}

func (e *env) book(t *testing.T, p domain.Principal, date string) *DTO {
	t.Helper()
	d, err := e.svc.Create(context.Background(), p, CreateInput{AppointmentDate: date, TreatmentID: e.relax.ID})
	require.NoError(t, err)
	return d
}

func TestCreateConvertsToUTCAndStartsPending(t *testing.T) {
	e := newEnv(t)
	d := e.book(t, e.ana, "2026-07-01T10:00")

	// 马德里夏令时 UTC+2
	assert.Equal(t, time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC), d.AppointmentDate)
	assert.Equal(t, domain.StatusPending, d.Status)
	assert.Equal(t, "Ana Test", d.ClientName)
	assert.Equal(t, "ana@example.com", d.ClientEmail)
	assert.Equal(t, "Relax", d.TreatmentTitle)
	assert.Nil(t, d.CancellationReason)
}

func TestCreateEnforcesBookingWindow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	for _, date := range []string{"2026-07-01T08:30", "2026-07-01T19:30", "2026-07-01T20:00", "2026-07-01T08:00"} {
		_, err := e.svc.Create(ctx, e.ana, CreateInput{AppointmentDate: date, TreatmentID: e.relax.ID})
		assert.ErrorIs(t, err, domain.ErrValidation, date)
	}
	for _, date := range []string{"2026-07-01T09:00", "2026-07-01T19:00", "2026-07-01T17:00:00Z"} {
		_, err := e.svc.Create(ctx, e.ana, CreateInput{AppointmentDate: date, TreatmentID: e.relax.ID})
		assert.NoError(t, err, date)
	}
}

func TestCreateValidatesReferences(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.Create(ctx, e.ana, CreateInput{AppointmentDate: "2026-07-01T10:00", TreatmentID: "missing"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = e.svc.Create(ctx, e.ana, CreateInput{AppointmentDate: "2026-07-01T10:00", TreatmentID: e.relax.ID, ClientID: e.bob.UserID})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	d, err := e.svc.Create(ctx, e.admin, CreateInput{AppointmentDate: "2026-07-01T10:00", TreatmentID: e.relax.ID, ClientID: e.bob.UserID})
	require.NoError(t, err)
	assert.Equal(t, e.bob.UserID, d.ClientID)

	_, err = e.svc.Create(ctx, e.admin, CreateInput{AppointmentDate: "2026-07-01T10:00", TreatmentID: e.relax.ID, ClientID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestOwnership(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	d := e.book(t, e.ana, "2026-07-01T10:00")

	_, err := e.svc.Get(ctx, e.bob, d.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = e.svc.Update(ctx, e.bob, d.ID, UpdateInput{TreatmentID: &e.sport.ID})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, e.svc.Delete(ctx, e.bob, d.ID), domain.ErrForbidden)

	got, err := e.svc.Get(ctx, e.admin, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)

	_, err = e.svc.Get(ctx, e.ana, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	d := e.book(t, e.ana, "2026-07-01T10:00")

	bad := "2026-07-01T21:00"
	_, err := e.svc.Update(ctx, e.ana, d.ID, UpdateInput{AppointmentDate: &bad})
	assert.ErrorIs(t, err, domain.ErrValidation)

	date := "2026-07-02T11:00"
	v := d.Version
	got, err := e.svc.Update(ctx, e.ana, d.ID, UpdateInput{AppointmentDate: &date, TreatmentID: &e.sport.ID, Version: &v})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 7, 2, 9, 0, 0, 0, time.UTC), got.AppointmentDate)
	assert.Equal(t, "Sport", got.TreatmentTitle)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, v+1, got.Version)
	assert.NotNil(t, got.ModifiedAt)

	// 旧版本号
	_, err = e.svc.Update(ctx, e.ana, d.ID, UpdateInput{TreatmentID: &e.relax.ID, Version: &v})
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
}

func TestApproveAndCancel(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	d := e.book(t, e.ana, "2026-07-01T10:00")

	got, err := e.svc.Approve(ctx, e.admin, d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, got.Status)
	again, err := e.svc.Approve(ctx, e.admin, d.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Version, again.Version)

	got, err = e.svc.Cancel(ctx, e.admin, d.ID, CancelInput{Reason: "sick"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)
	got, err = e.svc.Cancel(ctx, e.admin, d.ID, CancelInput{Reason: "holiday"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)
	require.NotNil(t, got.CancellationReason)
	assert.Equal(t, "holiday", *got.CancellationReason)

	_, err = e.svc.Approve(ctx, e.admin, d.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)
	stored, err := e.svc.Get(ctx, e.ana, d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
}

func TestDelete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	d := e.book(t, e.ana, "2026-07-01T10:00")

	require.NoError(t, e.svc.Delete(ctx, e.ana, d.ID))
	_, err := e.svc.Get(ctx, e.ana, d.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, e.svc.Delete(ctx, e.ana, d.ID), domain.ErrNotFound)
}

func TestListAndMine(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a1 := e.book(t, e.ana, "2026-07-01T12:00")
	b1 := e.book(t, e.bob, "2026-07-01T10:00")
	a2 := e.book(t, e.ana, "2026-07-03T10:00")

	all, err := e.svc.List(ctx, ListQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{b1.ID, a1.ID, a2.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	byName, err := e.svc.List(ctx, ListQuery{SortBy: "ClientName", SortDirection: "DESC"})
	require.NoError(t, err)
	assert.Equal(t, b1.ID, byName[0].ID)

	onDay, err := e.svc.List(ctx, ListQuery{Date: "2026-07-01"})
	require.NoError(t, err)
	assert.Len(t, onDay, 2)

	mine, err := e.svc.Mine(ctx, e.ana, ListQuery{SortDirection: "desc"})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, a2.ID, mine[0].ID)

	_, err = e.svc.List(ctx, ListQuery{SortBy: "price"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = e.svc.List(ctx, ListQuery{SortDirection: "sideways"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = e.svc.List(ctx, ListQuery{Date: "01/07/2026"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
