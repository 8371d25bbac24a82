package database

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Custom errors
var (
	ErrFarmerNotFound      = fmt.Errorf("farmer not found")
	ErrDuplicateTelegramID = fmt.Errorf("farmer with this Telegram ID already exists")
	ErrWindowNotFound      = fmt.Errorf("sowing window not found")
	ErrDuplicateWindow     = fmt.Errorf("sowing window for this crop, season and region already exists")
	ErrDuplicateRecord     = fmt.Errorf("sowing record with this reference already exists")
)

const uniqueViolation pq.ErrorCode = "23505"

// isUniqueViolation reports whether err is a Postgres unique violation, optionally
// restricted to the named constraint or index.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
