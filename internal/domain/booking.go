package domain

import (
	"strings"
	"time"
)

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// BookingWindow 营业时间：[Open, Close) 内整点预约
type BookingWindow struct {
	Open  int
	Close int
	Loc   *time.Location
}

func DefaultBookingWindow() BookingWindow {
	return BookingWindow{Open: 9, Close: 20, Loc: time.UTC}
}

func (w BookingWindow) location() *time.Location {
	if w.Loc == nil {
		return time.UTC
	}
	return w.Loc
}

// Check 按营业时区判断小时与分钟
func (w BookingWindow) Check(t time.Time) error {
	lt := t.In(w.location())
	if lt.Hour() < w.Open || lt.Hour() >= w.Close || lt.Minute() != 0 || lt.Second() != 0 || lt.Nanosecond() != 0 {
		return Validation("appointments must be between %d:00 and %d:00, in 1-hour blocks", w.Open, w.Close)
	}
	return nil
}

// ParseDate 带时区的 RFC3339 直接使用，不带时区的按营业时区解析；结果统一 UTC
func (w BookingWindow) ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, Validation("appointmentDate is required")
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, w.location()); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, Validation("invalid appointmentDate %q", s)
}

// ParseDay 列表按 UTC 日期过滤
func ParseDay(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		d := dayStart(t.UTC())
		return &d, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return nil, Validation("invalid date %q, expected YYYY-MM-DD", s)
	}
	return &t, nil
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
