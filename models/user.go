package models

import (
	"time"
)

const (
	UserTable    = "inv_users"
	PartnerTable = "inv_partners"
)

// User 由外部身份服务创建；这里只保存展示信息和最近活跃时间
type User struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Username    string `gorm:"uniqueIndex;size:255;not null" json:"username"`
	DisplayName string `gorm:"size:255;not null" json:"displayName"`

	LastSeenAt *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string { return UserTable }

// Partner is a maintenance counterparty, e.g. a repair shop.
type Partner struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	Contact   string    `gorm:"size:255" json:"contact,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Partner) TableName() string { return PartnerTable }
