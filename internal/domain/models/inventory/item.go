package inventory

import (
	"time"
)

// Condition values accepted for Item.Condition.
const (
	ConditionNew     = "new"
	ConditionLikeNew = "like_new"
	ConditionGood    = "good"
	ConditionFair    = "fair"
	ConditionPoor    = "poor"
)

// Conditions lists every accepted condition value.
var Conditions = []interface{}{ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor}

// Item is one belonging. FolderID nil means the item is unfiled.
type Item struct {
	ID             string     `json:"id" db:"id"`
	UserID         string     `json:"user_id" db:"user_id"`
	FolderID       *string    `json:"folder_id" db:"folder_id"`
	Name           string     `json:"name" db:"name"`
	Description    string     `json:"description" db:"description"`
	Brand          string     `json:"brand" db:"brand"`
	Model          string     `json:"model" db:"model"`
	SerialNumber   string     `json:"serial_number" db:"serial_number"`
	Category       string     `json:"category" db:"category"`
	Condition      string     `json:"condition" db:"condition"`
	Quantity       int        `json:"quantity" db:"quantity"`
	PurchasePrice  *float64   `json:"purchase_price" db:"purchase_price"`
	PurchaseDate   *time.Time `json:"purchase_date" db:"purchase_date"`
	EstimatedValue *float64   `json:"estimated_value" db:"estimated_value"`
	Currency       string     `json:"currency" db:"currency"`
	Tags           []string   `json:"tags" db:"tags"`
	Notes          string     `json:"notes" db:"notes"`
	PhotoCount     int        `json:"photo_count" db:"photo_count"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}
