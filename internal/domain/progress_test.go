package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeProgressDataKeepsUntouchedSteps(t *testing.T) {
	existing := ProgressData{
		"completedSteps": json.RawMessage(`["step-1"]`),
		"step1":          json.RawMessage(`{"selectedPropertyId":"prop-456","sqft":1500}`),
	}
	incoming := ProgressData{
		"step2": json.RawMessage(`{"confirmedSqft":1600}`),
	}

	merged := MergeProgressData(existing, incoming)

	require.Len(t, merged, 3)
	assert.JSONEq(t, `{"selectedPropertyId":"prop-456","sqft":1500}`, string(merged["step1"]))
	assert.JSONEq(t, `{"confirmedSqft":1600}`, string(merged["step2"]))
	assert.JSONEq(t, `["step-1"]`, string(merged["completedSteps"]))
}

func TestMergeProgressDataReplacesWholeStep(t *testing.T) {
	existing := ProgressData{
		"step1": json.RawMessage(`{"selectedPropertyId":"prop-456","sqft":1500}`),
	}
	incoming := ProgressData{
		"step1": json.RawMessage(`{"sqft":1700}`),
	}

	merged := MergeProgressData(existing, incoming)

	// no recursion below the step level
	assert.JSONEq(t, `{"sqft":1700}`, string(merged["step1"]))
}

func TestMergeProgressDataDoesNotAlias(t *testing.T) {
	existing := ProgressData{"step1": json.RawMessage(`{"a":1}`)}
	incoming := ProgressData{"step2": json.RawMessage(`{"b":2}`)}

	merged := MergeProgressData(existing, incoming)
	merged["step1"][0] = '['
	merged["step2"][0] = '['

	assert.Equal(t, `{"a":1}`, string(existing["step1"]))
	assert.Equal(t, `{"b":2}`, string(incoming["step2"]))
	assert.Len(t, existing, 1)
}

func TestMergeProgressDataNilExisting(t *testing.T) {
	merged := MergeProgressData(nil, ProgressData{"step1": json.RawMessage(`{}`)})
	assert.Len(t, merged, 1)
}

func TestCompletedSteps(t *testing.T) {
	steps, err := ProgressData{}.CompletedSteps()
	require.NoError(t, err)
	assert.Nil(t, steps)

	steps, err = ProgressData{"completedSteps": json.RawMessage(`["step-1","step-2"]`)}.CompletedSteps()
	require.NoError(t, err)
	assert.Equal(t, []string{"step-1", "step-2"}, steps)

	_, err = ProgressData{"completedSteps": json.RawMessage(`"step-1"`)}.CompletedSteps()
	assert.Error(t, err)
}

func TestProgressClone(t *testing.T) {
	var nilProgress *Progress
	assert.Nil(t, nilProgress.Clone())

	p := &Progress{ID: "id", UserID: "u", CurrentStep: "step-1", Data: ProgressData{"step1": json.RawMessage(`{}`)}}
	c := p.Clone()
	c.Data["step2"] = json.RawMessage(`{}`)
	c.CurrentStep = "step-2"

	assert.Len(t, p.Data, 1)
	assert.Equal(t, "step-1", p.CurrentStep)
}
