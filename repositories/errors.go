package repositories

import "errors"

// ErrNotFound is returned instead of gorm.ErrRecordNotFound so callers do not
// depend on gorm.
var ErrNotFound = errors.New("record not found")
