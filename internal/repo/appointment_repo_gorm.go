package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"massage-booking-api/internal/domain"
)

type AppointmentRepo struct {
	db    *gorm.DB
	store Store[domain.Appointment, *domain.Appointment]
}

func NewAppointmentRepo(db *gorm.DB) *AppointmentRepo {
	return &AppointmentRepo{db: db, store: NewStore[domain.Appointment](db)}
}

func (r *AppointmentRepo) Create(ctx context.Context, a *domain.Appointment) error {
	if err := r.store.Create(ctx, a); err != nil {
		return err
	}
	return r.loadRefs(ctx, a)
}

func (r *AppointmentRepo) Get(ctx context.Context, id string) (*domain.Appointment, error) {
	return r.store.Get(ctx, id, "Client", "Treatment")
}

func (r *AppointmentRepo) Update(ctx context.Context, a *domain.Appointment) error {
	if err := r.store.Update(ctx, a, map[string]any{
		"appointment_date":   a.AppointmentDate.UTC(),
		"treatment_id":       a.TreatmentID,
		"estado":             a.Status,
		"motivo_cancelacion": a.CancellationReason,
	}); err != nil {
		return err
	}
	if a.Treatment == nil || a.Treatment.ID != a.TreatmentID {
		a.Treatment = nil
		return r.loadRefs(ctx, a)
	}
	return nil
}

func (r *AppointmentRepo) Delete(ctx context.Context, id string) error {
	return r.store.SoftDelete(ctx, id)
}

func (r *AppointmentRepo) loadRefs(ctx context.Context, a *domain.Appointment) error {
	db := r.db.WithContext(ctx)
	if a.Client == nil {
		var u domain.User
		if err := db.First(&u, "id = ?", a.ClientID).Error; err != nil {
			return err
		}
		a.Client = &u
	}
	if a.Treatment == nil {
		var t domain.Treatment
		if err := db.First(&t, "id = ?", a.TreatmentID).Error; err != nil {
			return err
		}
		a.Treatment = &t
	}
	return nil
}

func (r *AppointmentRepo) List(ctx context.Context, f domain.AppointmentFilter) ([]domain.Appointment, error) {
	q := r.db.WithContext(ctx).Model(&domain.Appointment{}).
		Joins("JOIN users ON users.id = appointments.client_id").
		Joins("JOIN treatments ON treatments.id = appointments.treatment_id").
		Scopes(Enabled("appointments")).
		Preload("Client").Preload("Treatment")

	if f.ClientID != "" {
		q = q.Where("appointments.client_id = ?", f.ClientID)
	}
	if f.Day != nil {
		from := f.Day.UTC()
		q = q.Where("appointments.appointment_date >= ? AND appointments.appointment_date < ?", from, from.Add(24*time.Hour))
	}
	if s := strings.TrimSpace(f.ClientName); s != "" {
		q = q.Where("LOWER("+fullNameExpr(r.db)+") LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	dir := "ASC"
	if f.Desc {
		dir = "DESC"
	}
	switch f.SortBy {
	case domain.SortByClientName:
		q = q.Order("LOWER(" + fullNameExpr(r.db) + ") " + dir).
			Order("appointments.appointment_date ASC")
	case domain.SortByTreatment:
		q = q.Order("LOWER(treatments.title) " + dir).
			Order("appointments.appointment_date ASC")
	default:
		q = q.Order(clause.OrderByColumn{
			Column: clause.Column{Table: "appointments", Name: "appointment_date"},
			Desc:   f.Desc,
		})
	}
	q = q.Order(clause.OrderByColumn{Column: clause.Column{Table: "appointments", Name: "id"}})

	var out []domain.Appointment
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// fullNameExpr "name lastName"，MySQL 不支持 ||
func fullNameExpr(db *gorm.DB) string {
	if db.Dialector.Name() == "mysql" {
		return "CONCAT(users.name, ' ', users.last_name)"
	}
	return "users.name || ' ' || users.last_name"
}
