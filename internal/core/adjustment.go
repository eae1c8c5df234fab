package core

import (
	"encoding/json"
	"fmt"
)

// AdjustmentKind discriminates the billing adjustment variants.
type AdjustmentKind string

const (
	AdjustmentNone              AdjustmentKind = "none"
	AdjustmentMinimum           AdjustmentKind = "minimum_applied"
	AdjustmentMaximum           AdjustmentKind = "maximum_applied"
	AdjustmentMaximumUnbillable AdjustmentKind = "maximum_applied_unbillable"
)

// BillingAdjustment is a sealed sum type recording which adjustment (if any)
// fired for a project. Exactly one adjustment state is representable per
// result: with min <= max guaranteed upstream, the minimum and maximum steps
// can never both fire.
type BillingAdjustment interface {
	Kind() AdjustmentKind
	billingAdjustment()
}

// NoAdjustment means the billed figure equals the adjusted figure.
type NoAdjustment struct{}

// MinimumAdjustment means the project was padded up to its minimum.
type MinimumAdjustment struct {
	MinimumHours float64 `json:"minimumHours"`
	PaddingHours float64 `json:"paddingHours"`
}

// MaximumAdjustment means the project was clamped to its maximum and the
// excess rolls forward to next month's carryover.
type MaximumAdjustment struct {
	MaximumHours float64 `json:"maximumHours"`
	CarryoverOut float64 `json:"carryoverOut"`
}

// MaximumUnbillableAdjustment means the project was clamped to its maximum
// with carryover disabled: the excess is permanently lost revenue, flagged
// for visibility but not billed.
type MaximumUnbillableAdjustment struct {
	MaximumHours    float64 `json:"maximumHours"`
	UnbillableHours float64 `json:"unbillableHours"`
}

func (NoAdjustment) Kind() AdjustmentKind                { return AdjustmentNone }
func (MinimumAdjustment) Kind() AdjustmentKind           { return AdjustmentMinimum }
func (MaximumAdjustment) Kind() AdjustmentKind           { return AdjustmentMaximum }
func (MaximumUnbillableAdjustment) Kind() AdjustmentKind { return AdjustmentMaximumUnbillable }

func (NoAdjustment) billingAdjustment()                {}
func (MinimumAdjustment) billingAdjustment()           {}
func (MaximumAdjustment) billingAdjustment()           {}
func (MaximumUnbillableAdjustment) billingAdjustment() {}

func (a NoAdjustment) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind AdjustmentKind `json:"kind"`
	}{a.Kind()})
}

func (a MinimumAdjustment) MarshalJSON() ([]byte, error) {
	type alias MinimumAdjustment
	return json.Marshal(struct {
		Kind AdjustmentKind `json:"kind"`
		alias
	}{a.Kind(), alias(a)})
}

func (a MaximumAdjustment) MarshalJSON() ([]byte, error) {
	type alias MaximumAdjustment
	return json.Marshal(struct {
		Kind AdjustmentKind `json:"kind"`
		alias
	}{a.Kind(), alias(a)})
}

func (a MaximumUnbillableAdjustment) MarshalJSON() ([]byte, error) {
	type alias MaximumUnbillableAdjustment
	return json.Marshal(struct {
		Kind AdjustmentKind `json:"kind"`
		alias
	}{a.Kind(), alias(a)})
}

// UnmarshalAdjustment decodes a BillingAdjustment from its tagged JSON form.
func UnmarshalAdjustment(data []byte) (BillingAdjustment, error) {
	var head struct {
		Kind AdjustmentKind `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode adjustment kind: %w", err)
	}
	switch head.Kind {
	case AdjustmentNone, "":
		return NoAdjustment{}, nil
	case AdjustmentMinimum:
		var a MinimumAdjustment
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("decode minimum adjustment: %w", err)
		}
		return a, nil
	case AdjustmentMaximum:
		var a MaximumAdjustment
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("decode maximum adjustment: %w", err)
		}
		return a, nil
	case AdjustmentMaximumUnbillable:
		var a MaximumUnbillableAdjustment
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("decode unbillable adjustment: %w", err)
		}
		return a, nil
	}
	return nil, fmt.Errorf("unknown adjustment kind %q", head.Kind)
}

// UnmarshalJSON restores the Adjustment sum type from its tagged form so
// stored summaries round-trip through JSON.
func (r *ProjectBillingResult) UnmarshalJSON(data []byte) error {
	type alias ProjectBillingResult
	aux := struct {
		Adjustment json.RawMessage `json:"adjustment"`
		*alias
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.Adjustment) == 0 {
		r.Adjustment = NoAdjustment{}
		return nil
	}
	adj, err := UnmarshalAdjustment(aux.Adjustment)
	if err != nil {
		return err
	}
	r.Adjustment = adj
	return nil
}
