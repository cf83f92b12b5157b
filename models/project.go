package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ProjectStatus represents the status of a tender project
type ProjectStatus string

const (
	ProjectStatusDraft   ProjectStatus = "draft"
	ProjectStatusActive  ProjectStatus = "active"
	ProjectStatusClosed  ProjectStatus = "closed"
	ProjectStatusAwarded ProjectStatus = "awarded"
)

// Default criteria weights applied when a project does not set its own.
const (
	DefaultTechnicalWeight = 60
	DefaultFinancialWeight = 40
)

// CriteriaWeights holds the relative importance of the technical and
// financial dimensions of a bid. Both values are in [0,100]; they are not
// required to sum to 100.
type CriteriaWeights struct {
	TechnicalWeight float64 `json:"technical_weight"`
	FinancialWeight float64 `json:"financial_weight"`
}

// DefaultCriteriaWeights returns the 60/40 technical/financial split
func DefaultCriteriaWeights() CriteriaWeights {
	return CriteriaWeights{
		TechnicalWeight: DefaultTechnicalWeight,
		FinancialWeight: DefaultFinancialWeight,
	}
}

// Value implements driver.Valuer for JSONB
func (c CriteriaWeights) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements sql.Scanner for JSONB
func (c *CriteriaWeights) Scan(value interface{}) error {
	if value == nil {
		*c = DefaultCriteriaWeights()
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	if len(bytes) == 0 {
		*c = DefaultCriteriaWeights()
		return nil
	}

	return json.Unmarshal(bytes, c)
}

// Project represents a tender project entity
type Project struct {
	ID              uuid.UUID       `json:"id"`
	OrganizationID  uuid.UUID       `json:"organization_id"`
	Title           string          `json:"title"`
	Description     *string         `json:"description,omitempty"`
	TenderReference string          `json:"tender_reference"`
	Deadline        time.Time       `json:"deadline"`
	Status          ProjectStatus   `json:"status"`
	Criteria        CriteriaWeights `json:"evaluation_criteria"`
	BudgetRangeMin  *float64        `json:"budget_range_min,omitempty"`
	BudgetRangeMax  *float64        `json:"budget_range_max,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
