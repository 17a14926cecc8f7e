package domain

import "context"

type Treatment struct {
	Entity
	Title       string `gorm:"size:128;not null" json:"title"`
	Description string `gorm:"size:1024" json:"description"`
}

func (Treatment) TableName() string { return "treatments" }

type TreatmentRepository interface {
	Create(ctx context.Context, t *Treatment) error
	Get(ctx context.Context, id string) (*Treatment, error)
	List(ctx context.Context) ([]Treatment, error)
	Update(ctx context.Context, t *Treatment) error
	// Delete 软删疗程并级联软删其预约
	Delete(ctx context.Context, id string) error
}
