// Package appointment 预约的创建、查询、修改与审批
package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"massage-booking-api/internal/domain"
)

// DTO 列表与详情的统一出参，带上客户与疗程名称
type DTO struct {
	ID                 string        `json:"id"`
	AppointmentDate    time.Time     `json:"appointmentDate"`
	ClientID           string        `json:"clientId"`
	ClientName         string        `json:"clientName"`
	ClientEmail        string        `json:"clientEmail"`
	TreatmentID        string        `json:"treatmentId"`
	TreatmentTitle     string        `json:"treatmentTitle"`
	Status             domain.Status `json:"estado"`
	CancellationReason *string       `json:"motivoCancelacion"`
	Version            int64         `json:"version"`
	CreatedAt          time.Time     `json:"createdAt"`
	ModifiedAt         *time.Time    `json:"modifiedAt"`
}

func ToDTO(a *domain.Appointment) DTO {
	d := DTO{
		ID:                 a.ID,
		AppointmentDate:    a.AppointmentDate.UTC(),
		ClientID:           a.ClientID,
		TreatmentID:        a.TreatmentID,
		Status:             a.Status,
		CancellationReason: a.CancellationReason,
		Version:            a.Version,
		CreatedAt:          a.CreatedAt,
		ModifiedAt:         a.ModifiedAt,
	}
	if a.Client != nil {
		d.ClientName = a.Client.FullName()
		d.ClientEmail = a.Client.Email
	}
	if a.Treatment != nil {
		d.TreatmentTitle = a.Treatment.Title
	}
	return d
}

type CreateInput struct {
	AppointmentDate string `json:"appointmentDate"`
	TreatmentID     string `json:"treatmentId"`
	// 仅 Admin 可代客户预约，空则为本人
	ClientID string `json:"clientId"`
}

// UpdateInput 只改传入的字段；Version 非空时必须与当前版本一致
type UpdateInput struct {
	AppointmentDate *string `json:"appointmentDate"`
	TreatmentID     *string `json:"treatmentId"`
	Version         *int64  `json:"version"`
}

type ListQuery struct {
	Date          string `form:"date"`
	ClientName    string `form:"clientName"`
	SortBy        string `form:"sortBy"`
	SortDirection string `form:"sortDirection"`
}

type CancelInput struct {
	Reason string `json:"reason"`
}

type Service struct {
	Appointments domain.AppointmentRepository
	Treatments   domain.TreatmentRepository
	Users        domain.UserRepository
	Window       domain.BookingWindow
}

func (s *Service) Create(ctx context.Context, p domain.Principal, in CreateInput) (*DTO, error) {
	at, err := s.Window.ParseDate(in.AppointmentDate)
	if err != nil {
		return nil, err
	}
	if err := s.Window.Check(at); err != nil {
		return nil, err
	}

	clientID := strings.TrimSpace(in.ClientID)
	if clientID == "" {
		clientID = p.UserID
	}
	if clientID != p.UserID && !p.IsAdmin() {
		return nil, domain.Forbidden("only administrators can book for another client")
	}
	client, err := s.Users.FindByID(ctx, clientID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Validation("client %s does not exist", clientID)
	}
	if err != nil {
		return nil, fmt.Errorf("find client: %w", err)
	}
	tr, err := s.treatment(ctx, in.TreatmentID)
	if err != nil {
		return nil, err
	}

	a := &domain.Appointment{
		AppointmentDate: at,
		ClientID:        client.ID,
		Client:          client,
		TreatmentID:     tr.ID,
		Treatment:       tr,
		Status:          domain.StatusPending,
	}
	if err := s.Appointments.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	d := ToDTO(a)
	return &d, nil
}

func (s *Service) treatment(ctx context.Context, id string) (*domain.Treatment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.Validation("treatmentId is required")
	}
	tr, err := s.Treatments.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Validation("treatment %s does not exist", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find treatment: %w", err)
	}
	return tr, nil
}

// load 取预约并做归属校验
func (s *Service) load(ctx context.Context, p domain.Principal, id string) (*domain.Appointment, error) {
	a, err := s.Appointments.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("appointment %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find appointment: %w", err)
	}
	if !p.CanAccess(a.ClientID) {
		return nil, domain.Forbidden("you cannot access this appointment")
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, p domain.Principal, id string) (*DTO, error) {
	a, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	d := ToDTO(a)
	return &d, nil
}

// List 管理端全部预约
func (s *Service) List(ctx context.Context, q ListQuery) ([]DTO, error) {
	return s.list(ctx, "", q)
}

// Mine 当前用户自己的预约
func (s *Service) Mine(ctx context.Context, p domain.Principal, q ListQuery) ([]DTO, error) {
	return s.list(ctx, p.UserID, q)
}

func (s *Service) list(ctx context.Context, clientID string, q ListQuery) ([]DTO, error) {
	sortBy, desc, err := domain.ParseSort(q.SortBy, q.SortDirection)
	if err != nil {
		return nil, err
	}
	day, err := domain.ParseDay(q.Date)
	if err != nil {
		return nil, err
	}
	items, err := s.Appointments.List(ctx, domain.AppointmentFilter{
		ClientID:   clientID,
		Day:        day,
		ClientName: q.ClientName,
		SortBy:     sortBy,
		Desc:       desc,
	})
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	out := make([]DTO, 0, len(items))
	for i := range items {
		out = append(out, ToDTO(&items[i]))
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, p domain.Principal, id string, in UpdateInput) (*DTO, error) {
	a, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if in.Version != nil && *in.Version != a.Version {
		return nil, domain.Conflict("appointment was modified by another request, reload and retry")
	}
	if in.AppointmentDate != nil {
		at, err := s.Window.ParseDate(*in.AppointmentDate)
		if err != nil {
			return nil, err
		}
		if !at.Equal(a.AppointmentDate) {
			if err := s.Window.Check(at); err != nil {
				return nil, err
			}
		}
		a.AppointmentDate = at
	}
	if in.TreatmentID != nil && strings.TrimSpace(*in.TreatmentID) != a.TreatmentID {
		tr, err := s.treatment(ctx, *in.TreatmentID)
		if err != nil {
			return nil, err
		}
		a.TreatmentID = tr.ID
		a.Treatment = tr
	}
	if err := s.save(ctx, a); err != nil {
		return nil, err
	}
	d := ToDTO(a)
	return &d, nil
}

func (s *Service) Delete(ctx context.Context, p domain.Principal, id string) error {
	if _, err := s.load(ctx, p, id); err != nil {
		return err
	}
	if err := s.Appointments.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotFound("appointment %s not found", id)
		}
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}

// Approve 已批准时直接返回当前状态
func (s *Service) Approve(ctx context.Context, p domain.Principal, id string) (*DTO, error) {
	a, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	changed, err := a.Approve()
	if err != nil {
		return nil, err
	}
	if changed {
		if err := s.save(ctx, a); err != nil {
			return nil, err
		}
	}
	d := ToDTO(a)
	return &d, nil
}

func (s *Service) Cancel(ctx context.Context, p domain.Principal, id string, in CancelInput) (*DTO, error) {
	a, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	a.Cancel(in.Reason)
	if err := s.save(ctx, a); err != nil {
		return nil, err
	}
	d := ToDTO(a)
	return &d, nil
}

func (s *Service) save(ctx context.Context, a *domain.Appointment) error {
	err := s.Appointments.Update(ctx, a)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound):
		return domain.NotFound("appointment %s not found", a.ID)
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return err
	}
	return fmt.Errorf("update appointment: %w", err)
}
