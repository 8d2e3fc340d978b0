// model/book.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type BookCondition string

const (
	ConditionExcellent BookCondition = "EXCELLENT"
	ConditionGood      BookCondition = "GOOD"
	ConditionFair      BookCondition = "FAIR"
	ConditionPoor      BookCondition = "POOR"
)

type Book struct {
	ID              uuid.UUID     `json:"id"`
	Title           string        `json:"title"`
	Author          string        `json:"author"`
	Description     *string       `json:"description,omitempty"`
	Genre           *string       `json:"genre,omitempty"`
	PublicationYear *int          `json:"publication_year,omitempty"`
	Condition       BookCondition `json:"condition"`
	OwnerID         uuid.UUID     `json:"owner_id"`
	IsAvailable     bool          `json:"is_available"`
	IsActive        bool          `json:"is_active"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
