package contract

import "errors"

var (
	ErrModelInvoke          = errors.New("model invoke failed")
	ErrClassification       = errors.New("intent classification failed")
	ErrValidation           = errors.New("validation failed")
	ErrCalendarNotConnected = errors.New("calendar not connected")
	ErrCalendarRevoked      = errors.New("calendar authorization revoked")
	ErrCalendarUnavailable  = errors.New("calendar backend unavailable")
	ErrSearchUnavailable    = errors.New("search backend unavailable")
)
