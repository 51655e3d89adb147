package models

import "time"

type User struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"-"`
	Username     string     `gorm:"uniqueIndex;size:64;not null" json:"username"`
	PasswordHash string     `gorm:"not null" json:"-"`
	FullName     string     `json:"full_name"`
	Email        string     `json:"email"`
	Department   string     `json:"department"`
	Role         Role       `gorm:"size:16;not null" json:"role"`
	Active       bool       `gorm:"not null" json:"active"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type Session struct {
	JTI       string     `gorm:"primaryKey;size:64" json:"jti"`
	Username  string     `gorm:"index;size:64;not null" json:"username"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type AuditLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	LogID     string    `gorm:"uniqueIndex;size:32;not null" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Username  string    `gorm:"index;size:64" json:"username"`
	Action    string    `gorm:"not null" json:"action"`
	Module    string    `gorm:"index;size:32" json:"module"`
	RecordKey string    `json:"record_key"`
	OldValue  string    `json:"old_value"`
	NewValue  string    `json:"new_value"`
	IP        string    `json:"ip"`
	Metadata  JSONB     `gorm:"type:text" json:"metadata"`
}

type Location struct {
	ID      uint   `gorm:"primaryKey;autoIncrement" json:"-"`
	Code    string `gorm:"uniqueIndex;size:32;not null" json:"code"`
	Name    string `gorm:"not null" json:"name"`
	Address string `json:"address"`
	Manager string `json:"manager"`
	Phone   string `json:"phone"`
	Active  bool   `gorm:"not null" json:"active"`
}

type StockCount struct {
	ID          uint        `gorm:"primaryKey;autoIncrement" json:"-"`
	CountNo     string      `gorm:"uniqueIndex;size:32;not null" json:"count_no"`
	CreatedAt   time.Time   `json:"created_at"`
	Location    string      `json:"location"`
	Category    string      `json:"category"`
	Status      CountStatus `gorm:"size:16;not null" json:"status"`
	CreatedBy   string      `json:"created_by"`
	CompletedBy string      `json:"completed_by"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	Description string      `json:"description"`
}
