package services

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/dmitrijs2005/kidkeeper/internal/common"
)

const (
	maxTitleLength   = 200
	maxContentLength = 20000
)

// validateInput reports the non-nil entries of errs as
// common.ErrorIncorrectPayload.
func validateInput(errs validation.Errors) error {
	if err := errs.Filter(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrorIncorrectPayload, err)
	}
	return nil
}

func requiredText(value string, maxLen int) error {
	return validation.Validate(value, validation.Required, validation.RuneLength(1, maxLen))
}
