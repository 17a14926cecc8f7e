package domain

import (
	"context"
	"strings"
	"time"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusCancelled Status = "Cancelled"
)

type Appointment struct {
	Entity
	AppointmentDate    time.Time  `gorm:"not null;index" json:"appointmentDate"`
	ClientID           string     `gorm:"size:36;not null;index" json:"clientId"`
	Client             *User      `gorm:"foreignKey:ClientID" json:"-"`
	TreatmentID        string     `gorm:"size:36;not null;index" json:"treatmentId"`
	Treatment          *Treatment `gorm:"foreignKey:TreatmentID" json:"-"`
	Status             Status     `gorm:"column:estado;size:16;not null;default:'Pending'" json:"estado"`
	CancellationReason *string    `gorm:"column:motivo_cancelacion;size:512" json:"motivoCancelacion,omitempty"`
}

func (Appointment) TableName() string { return "appointments" }

// Approve Pending → Approved；已批准为幂等；已取消不可再批准
func (a *Appointment) Approve() (changed bool, err error) {
	switch a.Status {
	case StatusApproved:
		return false, nil
	case StatusCancelled:
		return false, Validation("cancelled appointments cannot be approved")
	}
	a.Status = StatusApproved
	return true, nil
}

// Cancel 任意状态 → Cancelled，原因以最后一次为准
func (a *Appointment) Cancel(reason string) {
	reason = strings.TrimSpace(reason)
	a.Status = StatusCancelled
	a.CancellationReason = &reason
}

type SortField string

const (
	SortByDate       SortField = "date"
	SortByClientName SortField = "clientname"
	SortByTreatment  SortField = "treatment"
)

// ParseSort 解析 sortBy / sortDirection，空值走默认（日期升序）
func ParseSort(sortBy, direction string) (SortField, bool, error) {
	field := SortByDate
	switch s := strings.ToLower(strings.TrimSpace(sortBy)); s {
	case "", "date", "appointmentdate":
	case "clientname", "client":
		field = SortByClientName
	case "treatment", "treatmenttitle":
		field = SortByTreatment
	default:
		return "", false, Validation("unsupported sortBy %q", sortBy)
	}
	switch d := strings.ToLower(strings.TrimSpace(direction)); d {
	case "", "asc":
		return field, false, nil
	case "desc":
		return field, true, nil
	default:
		return "", false, Validation("unsupported sortDirection %q", direction)
	}
}

type AppointmentFilter struct {
	ClientID   string     // 非空时只看该客户
	Day        *time.Time // UTC 当天
	ClientName string
	SortBy     SortField
	Desc       bool
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	Get(ctx context.Context, id string) (*Appointment, error)
	List(ctx context.Context, f AppointmentFilter) ([]Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id string) error
}
