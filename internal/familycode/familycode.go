// Package familycode validates user-chosen family codes at entry time.
//
// A family code both partitions a household's records in the backend and
// serves as the encryption secret. It is compared byte for byte: no trimming,
// case folding or normalization is applied here or anywhere downstream.
package familycode

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/dmitrijs2005/kidkeeper/internal/common"
)

const (
	MinLength = 4
	MaxLength = 20
)

// Validate checks that code is between MinLength and MaxLength characters.
// The returned error wraps common.ErrInvalidFamilyCode.
func Validate(code string) error {
	err := validation.Validate(code,
		validation.Required,
		validation.RuneLength(MinLength, MaxLength),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidFamilyCode, err)
	}
	return nil
}
