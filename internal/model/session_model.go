package model

import (
	"time"

	"github.com/google/uuid"
)

type Session struct {
	Id             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	IpAddress      string     `gorm:"type:varchar(64);not null;default:'unknown'"`
	UserAgent      string     `gorm:"type:text;not null;default:''"`
	Status         string     `gorm:"type:varchar(20);not null;index:idx_sessions_status_activity,priority:1"`
	CurrentNodeId  string     `gorm:"type:varchar(128);not null;default:''"`
	CreatedAt      time.Time  `gorm:"not null"`
	LastActivityAt time.Time  `gorm:"not null;index:idx_sessions_status_activity,priority:2"`
	CompletedAt    *time.Time
	Answers        []Answer `gorm:"foreignKey:SessionId;constraint:OnDelete:CASCADE"`
}

func (Session) TableName() string {
	return "sessions"
}
