package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustWeightBudget(t *testing.T) {
	base := Weights{Experience: 25, Education: 25, Certifications: 25}

	got, err := AdjustWeight(base, FieldSkills, 80)
	assert.ErrorIs(t, err, ErrWeightBudget)
	assert.Equal(t, base, got)

	got, err = AdjustWeight(base, FieldSkills, 50)
	assert.ErrorIs(t, err, ErrWeightBudget)
	assert.Equal(t, base, got)

	zeroed, err := AdjustWeight(base, FieldExperience, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, zeroed.Experience)

	_, err = AdjustWeight(zeroed, FieldSkills, 80)
	assert.ErrorIs(t, err, ErrWeightBudget)

	got, err = AdjustWeight(zeroed, FieldSkills, 50)
	require.NoError(t, err)
	assert.Equal(t, 50, got.Skills)
	assert.Equal(t, 100, got.Sum())
}

func TestAdjustWeightDecreaseAlwaysAllowed(t *testing.T) {
	over := Weights{Experience: 90, Skills: 90, Education: 90, Certifications: 90}
	got, err := AdjustWeight(over, FieldSkills, 80)
	require.NoError(t, err)
	assert.Equal(t, 80, got.Skills)
}

func TestAdjustWeightRange(t *testing.T) {
	_, err := AdjustWeight(Weights{}, FieldSkills, 101)
	assert.ErrorIs(t, err, ErrInvalidWeight)
	_, err = AdjustWeight(Weights{}, FieldSkills, -1)
	assert.ErrorIs(t, err, ErrInvalidWeight)
	_, err = AdjustWeight(Weights{}, Field("salary"), 10)
	assert.ErrorIs(t, err, ErrInvalidWeight)
}

func TestParseField(t *testing.T) {
	f, err := ParseField("skills_weight")
	require.NoError(t, err)
	assert.Equal(t, FieldSkills, f)
	f, err = ParseField(" Education ")
	require.NoError(t, err)
	assert.Equal(t, FieldEducation, f)
	_, err = ParseField("salary")
	assert.ErrorIs(t, err, ErrInvalidWeight)
}
