package models

import "time"

// WaitlistTableName matches the table created by the SQL migrations.
const WaitlistTableName = "waitlist"

// WaitlistEntry is created once per normalized email and never updated afterwards.
type WaitlistEntry struct {
	ID        uint      `gorm:"primaryKey"`
	Email     string    `gorm:"type:text;not null;uniqueIndex:waitlist_email_key"`
	CreatedAt time.Time `gorm:"not null"`
}

func (WaitlistEntry) TableName() string { return WaitlistTableName }
