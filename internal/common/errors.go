// Package common defines shared constants and sentinel errors used across
// kidkeeper layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound     = errors.New("not found")
	ErrRecordConflict = errors.New("record belongs to another family or kind")

	// Family-code lifecycle errors.
	ErrNoFamilyCode      = errors.New("no family code set")
	ErrInvalidFamilyCode = errors.New("invalid family code")

	// Reward-specific errors.
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrInvalidAmount      = errors.New("invalid amount")

	// Validation errors for record payloads.
	ErrorIncorrectPayload = errors.New("incorrect payload")
)
