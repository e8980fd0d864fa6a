package jobs

import (
	"fmt"
	"strings"
)

// Field names a weight.
type Field string

const (
	FieldExperience     Field = "experience"
	FieldSkills         Field = "skills"
	FieldEducation      Field = "education"
	FieldCertifications Field = "certifications"
)

// MaxTotal is the upper bound for the sum of all weights.
const MaxTotal = 100

// ParseField accepts the field name with or without a _weight suffix.
func ParseField(s string) (Field, error) {
	f := Field(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "_weight"))
	switch f {
	case FieldExperience, FieldSkills, FieldEducation, FieldCertifications:
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown field %q", ErrInvalidWeight, s)
}

func (w *Weights) ptr(f Field) *int {
	switch f {
	case FieldExperience:
		return &w.Experience
	case FieldSkills:
		return &w.Skills
	case FieldEducation:
		return &w.Education
	case FieldCertifications:
		return &w.Certifications
	}
	return nil
}

// Get returns the weight for f.
func (w Weights) Get(f Field) int {
	if p := w.ptr(f); p != nil {
		return *p
	}
	return 0
}

// AdjustWeight sets field to value. Decreases always succeed; an increase that
// would push the total above MaxTotal is rejected and w is returned unchanged.
func AdjustWeight(w Weights, field Field, value int) (Weights, error) {
	if value < 0 || value > 100 {
		return w, ErrInvalidWeight
	}
	next := w
	p := next.ptr(field)
	if p == nil {
		return w, fmt.Errorf("%w: unknown field %q", ErrInvalidWeight, field)
	}
	if value <= *p {
		*p = value
		return next, nil
	}
	*p = value
	if next.Sum() > MaxTotal {
		return w, ErrWeightBudget
	}
	return next, nil
}

// Remaining returns how much budget is left before MaxTotal.
func (w Weights) Remaining() int {
	return MaxTotal - w.Sum()
}
