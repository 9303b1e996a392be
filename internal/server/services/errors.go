package services

import (
	"errors"
	"fmt"

	"github.com/BijjaSagar/vashihat-nama/internal/common"
)

// storeErr passes common.ErrorNotFound through untouched and wraps anything
// else with the failing operation.
func storeErr(op string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
