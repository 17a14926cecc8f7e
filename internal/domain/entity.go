package domain

import "time"

// Entity 所有落库实体共用的字段（组合嵌入，不做继承）
type Entity struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt  time.Time  `gorm:"not null" json:"createdAt"`
	ModifiedAt *time.Time `json:"modifiedAt,omitempty"`
	IsEnabled  bool       `gorm:"not null;default:true;index" json:"-"`
	Version    int64      `gorm:"not null;default:1" json:"version"`
}

// Base 供通用持久化 helper 统一打时间戳
func (e *Entity) Base() *Entity { return e }
