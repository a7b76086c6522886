package model

import (
	"time"
)

// BaseModel is embedded by every table. Rows are hard-deleted so that
// foreign-key cascades (course -> questions -> choices) behave the same on
// every driver.
// swagger:model
type BaseModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
