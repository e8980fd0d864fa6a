// Package jobs manages job descriptions and their scoring weights.
package jobs

import "time"

// Status is the lifecycle flag of a job description.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Weights are the four scoring criteria as percentages.
type Weights struct {
	Experience     int `json:"experience" validate:"min=0,max=100"`
	Skills         int `json:"skills" validate:"min=0,max=100"`
	Education      int `json:"education" validate:"min=0,max=100"`
	Certifications int `json:"certifications" validate:"min=0,max=100"`
}

// Sum returns the total of all four weights.
func (w Weights) Sum() int {
	return w.Experience + w.Skills + w.Education + w.Certifications
}

// Job is a job description owned by a user.
type Job struct {
	ID                      string    `json:"id"`
	OwnerID                 string    `json:"-"`
	Title                   string    `json:"title" validate:"required,max=200"`
	Description             string    `json:"description"`
	RequiredSkills          string    `json:"requiredSkills"`
	MinimumExperience       string    `json:"minimumExperience"`
	PreferredQualifications string    `json:"preferredQualifications"`
	Weights                 Weights   `json:"weights"`
	Status                  Status    `json:"status" validate:"omitempty,oneof=active inactive"`
	CreatedAt               time.Time `json:"createdAt"`
	UpdatedAt               time.Time `json:"updatedAt"`
}
