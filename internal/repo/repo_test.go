package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"massage-booking-api/internal/core/database/dbtest"
	"massage-booking-api/internal/domain"
)

type fixture struct {
	db           *gorm.DB
	users        *UserRepo
	treatments   *TreatmentRepo
	appointments *AppointmentRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	return &fixture{
		db:           db,
		users:        NewUserRepo(db),
		treatments:   NewTreatmentRepo(db),
		appointments: NewAppointmentRepo(db),
	}
}

func (f *fixture) user(t *testing.T, email, name, last string) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, Name: name, LastName: last, PasswordHash: "x"}
	require.NoError(t, f.users.Create(context.Background(), u, domain.RoleClient))
	return u
}

func (f *fixture) treatment(t *testing.T, title string) *domain.Treatment {
	t.Helper()
	tr := &domain.Treatment{Title: title}
	require.NoError(t, f.treatments.Create(context.Background(), tr))
	return tr
}

func (f *fixture) appointment(t *testing.T, u *domain.User, tr *domain.Treatment, at time.Time) *domain.Appointment {
	t.Helper()
	a := &domain.Appointment{AppointmentDate: at, ClientID: u.ID, TreatmentID: tr.ID, Status: domain.StatusPending}
	require.NoError(t, f.appointments.Create(context.Background(), a))
	return a
}

func TestUserRepoCreateAndFind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ana@example.com", "Ana", "Lopez")

	got, err := f.users.FindByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, []string{domain.RoleClient}, got.RoleNames())

	dup := &domain.User{Email: "ana@example.com", Name: "Other", PasswordHash: "x"}
	err = f.users.Create(ctx, dup, domain.RoleClient)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.users.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepoAddRoleAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "owner@example.com", "Olga", "Owner")
	f.user(t, "bob@example.com", "Bob", "Stone")

	require.NoError(t, f.users.AddRole(ctx, u, domain.RoleAdmin))
	got, err := f.users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.HasRole(domain.RoleAdmin))
	assert.True(t, got.HasRole(domain.RoleClient))

	list, total, err := f.users.List(ctx, domain.UserFilter{Q: "stone", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "bob@example.com", list[0].Email)
}

func TestStoreUpdateDetectsStaleVersion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.treatment(t, "Relax")

	stale := *tr
	tr.Title = "Relax 60"
	require.NoError(t, f.treatments.Update(ctx, tr))
	assert.EqualValues(t, 2, tr.Version)
	assert.NotNil(t, tr.ModifiedAt)

	stale.Title = "Relax 90"
	err := f.treatments.Update(ctx, &stale)
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)

	got, err := f.treatments.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "Relax 60", got.Title)
}

func TestStoreSoftDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.treatment(t, "Deep tissue")

	require.NoError(t, f.treatments.Delete(ctx, tr.ID))
	_, err := f.treatments.Get(ctx, tr.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.treatments.Delete(ctx, tr.ID), domain.ErrNotFound)
	assert.ErrorIs(t, f.treatments.Update(ctx, tr), domain.ErrNotFound)

	// 行仍在，只是被禁用
	var n int64
	require.NoError(t, f.db.Model(&domain.Treatment{}).Where("id = ?", tr.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestTreatmentDeleteCascadesToAppointments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "c@example.com", "Carla", "Diaz")
	keep := f.treatment(t, "Keep")
	drop := f.treatment(t, "Drop")
	day := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	a1 := f.appointment(t, u, drop, day)
	a2 := f.appointment(t, u, keep, day.Add(time.Hour))

	require.NoError(t, f.treatments.Delete(ctx, drop.ID))

	_, err := f.appointments.Get(ctx, a1.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	got, err := f.appointments.Get(ctx, a2.ID)
	require.NoError(t, err)
	assert.Equal(t, "Keep", got.Treatment.Title)

	list, err := f.treatments.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, keep.ID, list[0].ID)
}

func TestAppointmentRepoCreateLoadsRefs(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "c@example.com", "Carla", "Diaz")
	tr := f.treatment(t, "Relax")
	a := f.appointment(t, u, tr, time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC))

	require.NotNil(t, a.Client)
	require.NotNil(t, a.Treatment)
	assert.Equal(t, "Carla Diaz", a.Client.FullName())
	assert.Equal(t, "Relax", a.Treatment.Title)
	assert.EqualValues(t, 1, a.Version)
}

func TestAppointmentRepoUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "c@example.com", "Carla", "Diaz")
	tr := f.treatment(t, "Relax")
	other := f.treatment(t, "Sport")
	a := f.appointment(t, u, tr, time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC))

	a.TreatmentID = other.ID
	a.Cancel("  sick ")
	require.NoError(t, f.appointments.Update(ctx, a))
	assert.Equal(t, "Sport", a.Treatment.Title)

	got, err := f.appointments.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)
	require.NotNil(t, got.CancellationReason)
	assert.Equal(t, "sick", *got.CancellationReason)
	assert.EqualValues(t, 2, got.Version)
}

func TestAppointmentRepoListFilterAndSort(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	zoe := f.user(t, "zoe@example.com", "Zoe", "Adams")
	ana := f.user(t, "ana@example.com", "ana", "Brown")
	relax := f.treatment(t, "Relax")
	sport := f.treatment(t, "Sport")

	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	a1 := f.appointment(t, zoe, relax, day.Add(9*time.Hour))
	a2 := f.appointment(t, ana, sport, day.Add(11*time.Hour))
	a3 := f.appointment(t, ana, relax, day.Add(34*time.Hour))
	gone := f.appointment(t, zoe, sport, day.Add(12*time.Hour))
	require.NoError(t, f.appointments.Delete(ctx, gone.ID))

	ids := func(list []domain.Appointment) []string {
		out := make([]string, 0, len(list))
		for _, a := range list {
			out = append(out, a.ID)
		}
		return out
	}

	all, err := f.appointments.List(ctx, domain.AppointmentFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{a1.ID, a2.ID, a3.ID}, ids(all))
	assert.Equal(t, "Relax", all[0].Treatment.Title)
	assert.Equal(t, "Zoe", all[0].Client.Name)

	desc, err := f.appointments.List(ctx, domain.AppointmentFilter{SortBy: domain.SortByClientName, Desc: true})
	require.NoError(t, err)
	assert.Equal(t, []string{a1.ID, a2.ID, a3.ID}, ids(desc))

	asc, err := f.appointments.List(ctx, domain.AppointmentFilter{SortBy: domain.SortByClientName})
	require.NoError(t, err)
	assert.Equal(t, []string{a2.ID, a3.ID, a1.ID}, ids(asc))

	byTreatment, err := f.appointments.List(ctx, domain.AppointmentFilter{SortBy: domain.SortByTreatment, Desc: true})
	require.NoError(t, err)
	assert.Equal(t, []string{a2.ID, a1.ID, a3.ID}, ids(byTreatment))

	onDay, err := f.appointments.List(ctx, domain.AppointmentFilter{Day: &day})
	require.NoError(t, err)
	assert.Equal(t, []string{a1.ID, a2.ID}, ids(onDay))

	byName, err := f.appointments.List(ctx, domain.AppointmentFilter{ClientName: "ANA BR"})
	require.NoError(t, err)
	assert.Equal(t, []string{a2.ID, a3.ID}, ids(byName))

	mine, err := f.appointments.List(ctx, domain.AppointmentFilter{ClientID: zoe.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{a1.ID}, ids(mine))
}

func TestAppointmentRepoSortsByFullName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	zed := f.user(t, "zed@example.com", "Ana", "Zed")
	maria := f.user(t, "maria@example.com", "Ana Maria", "Bo")
	relax := f.treatment(t, "Relax")

	at := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	a1 := f.appointment(t, zed, relax, at)
	a2 := f.appointment(t, maria, relax, at.Add(time.Hour))

	// "ana zed" > "ana maria bo"
	desc, err := f.appointments.List(ctx, domain.AppointmentFilter{SortBy: domain.SortByClientName, Desc: true})
	require.NoError(t, err)
	require.Len(t, desc, 2)
	assert.Equal(t, []string{a1.ID, a2.ID}, []string{desc[0].ID, desc[1].ID})

	asc, err := f.appointments.List(ctx, domain.AppointmentFilter{SortBy: domain.SortByClientName})
	require.NoError(t, err)
	require.Len(t, asc, 2)
	assert.Equal(t, []string{a2.ID, a1.ID}, []string{asc[0].ID, asc[1].ID})
}
