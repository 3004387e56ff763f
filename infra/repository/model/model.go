// Package model holds the gorm row types shared by the PostgreSQL repositories.
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a user record in the database.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username  string    `gorm:"size:50;not null"`
	Email     string    `gorm:"size:255;not null"`
	Password  string    `gorm:"size:255;not null"`
	Admin     bool      `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// Account represents an account record in the database.
type Account struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Name          string    `gorm:"size:100;not null"`
	AccountNumber string    `gorm:"size:20;not null;uniqueIndex"`
	Balance       int64     `gorm:"not null"`
	Currency      string    `gorm:"type:char(3);not null"`
	Country       string    `gorm:"size:64;not null"`
	Status        string    `gorm:"size:16;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for the Account model.
func (Account) TableName() string {
	return "accounts"
}

// Transaction represents a persisted money movement. AccountID is nil for deposits.
type Transaction struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey"`
	AccountID            *uuid.UUID `gorm:"type:uuid;index"`
	DestinationAccountID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Amount               int64      `gorm:"not null"`
	Currency             string     `gorm:"type:char(3);not null"`
	CreatedAt            time.Time
}

// TableName specifies the table name for the Transaction model.
func (Transaction) TableName() string {
	return "transactions"
}
