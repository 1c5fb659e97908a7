package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCategory(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("self-harm", NormalizeCategory("SelfHarm"))
	assert.Equal("self-harm", NormalizeCategory("self_harm"))
	assert.Equal("sexual", NormalizeCategory("SexualContent"))
	assert.Equal("hate", NormalizeCategory("Hate"))
	assert.Equal("novelcategory", NormalizeCategory("NovelCategory"))
}

func TestThresholdFor(t *testing.T) {
	assert := assert.New(t)

	// configured beats default
	assert.Equal(6, ThresholdFor("hate", map[string]int{"hate": 6}))
	// built-in default
	assert.Equal(2, ThresholdFor("self-harm", nil))
	// unknown category gets the generic fallback
	assert.Equal(4, ThresholdFor("novelcategory", nil))
}

func TestEvaluateStrictThreshold(t *testing.T) {
	assert := assert.New(t)

	// severity equal to threshold is a violation
	findings, passed := Evaluate([]Category{{Name: "Hate", Severity: 4}}, nil)
	assert.False(passed)
	if assert.Len(findings, 1) {
		assert.False(findings[0].Passed)
		assert.Equal(4, findings[0].Threshold)
	}

	findings, passed = Evaluate([]Category{{Name: "Hate", Severity: 3}}, nil)
	assert.True(passed)
	assert.True(findings[0].Passed)
}

func TestEvaluateAggregatesAllCategories(t *testing.T) {
	assert := assert.New(t)

	findings, passed := Evaluate([]Category{
		{Name: "Hate", Severity: 0},
		{Name: "SelfHarm", Severity: 2},
		{Name: "Violence", Severity: 1},
	}, nil)
	assert.False(passed) // self-harm default threshold is 2
	assert.Len(findings, 3)

	for _, f := range findings {
		if f.Category == "self-harm" {
			assert.False(f.Passed)
		} else {
			assert.True(f.Passed)
		}
	}
}
