package attendancerepo

import "errors"

// ErrDuplicate indicates an attendance record already exists for the
// member and date.
var ErrDuplicate = errors.New("attendance already recorded for date")
