package repo

import (
	"context"

	"gorm.io/gorm"

	"massage-booking-api/internal/domain"
)

type TreatmentRepo struct {
	db    *gorm.DB
	store Store[domain.Treatment, *domain.Treatment]
}

func NewTreatmentRepo(db *gorm.DB) *TreatmentRepo {
	return &TreatmentRepo{db: db, store: NewStore[domain.Treatment](db)}
}

func (r *TreatmentRepo) Create(ctx context.Context, t *domain.Treatment) error {
	return r.store.Create(ctx, t)
}

func (r *TreatmentRepo) Get(ctx context.Context, id string) (*domain.Treatment, error) {
	return r.store.Get(ctx, id)
}

func (r *TreatmentRepo) List(ctx context.Context) ([]domain.Treatment, error) {
	var out []domain.Treatment
	err := r.db.WithContext(ctx).Scopes(Enabled("")).Order("title").Order("id").Find(&out).Error
	return out, err
}

func (r *TreatmentRepo) Update(ctx context.Context, t *domain.Treatment) error {
	return r.store.Update(ctx, t, map[string]any{
		"title":       t.Title,
		"description": t.Description,
	})
}

// Delete 疗程与其预约一起软删，全部成功或全部回滚
func (r *TreatmentRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.store.WithDB(tx).SoftDelete(ctx, id); err != nil {
			return err
		}
		return tx.Model(&domain.Appointment{}).
			Where("treatment_id = ? AND is_enabled = ?", id, true).
			Updates(map[string]any{
				"is_enabled":  false,
				"modified_at": r.store.now(),
				"version":     gorm.Expr("version + 1"),
			}).Error
	})
}
