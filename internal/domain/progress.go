package domain

import (
	"encoding/json"
	"time"
)

// ProgressData maps a step name (or bookkeeping key such as "completedSteps") to its
// raw JSON value. Values are kept undecoded so they round-trip exactly.
type ProgressData map[string]json.RawMessage

// Progress is the persisted state of a user's listing wizard.
type Progress struct {
	ID          string
	UserID      string
	CurrentStep string
	Data        ProgressData
	UpdatedAt   time.Time
}

// Clone returns a deep copy of the record.
func (p *Progress) Clone() *Progress {
	if p == nil {
		return nil
	}
	out := *p
	out.Data = p.Data.Clone()
	return &out
}

// Clone returns a copy whose values share no memory with d.
func (d ProgressData) Clone() ProgressData {
	if d == nil {
		return nil
	}
	out := make(ProgressData, len(d))
	for k, v := range d {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// MergeProgressData combines existing and incoming at the top level: every key present in
// incoming replaces the existing value wholesale, keys absent from incoming are kept.
// Neither argument is modified.
func MergeProgressData(existing, incoming ProgressData) ProgressData {
	merged := make(ProgressData, len(existing)+len(incoming))
	for k, v := range existing {
		merged[k] = append(json.RawMessage(nil), v...)
	}
	for k, v := range incoming {
		merged[k] = append(json.RawMessage(nil), v...)
	}
	return merged
}

// CompletedSteps decodes the "completedSteps" entry. A missing entry yields nil.
func (d ProgressData) CompletedSteps() ([]string, error) {
	raw, ok := d[CompletedStepsKey]
	if !ok {
		return nil, nil
	}
	var steps []string
	if err := json.Unmarshal(raw, &steps); err != nil {
		return nil, err
	}
	return steps, nil
}

// CompletedStepsKey is the progress data entry listing finished steps. The client
// resupplies the whole list on each update.
const CompletedStepsKey = "completedSteps"
