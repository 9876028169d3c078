package domain

import "errors"

var (
	// ErrSchemaDrift is returned when a feed header is missing an expected column.
	ErrSchemaDrift = errors.New("feed schema drift")

	// ErrInvalidRange is returned for a day range outside 1 <= low <= high <= 366.
	ErrInvalidRange = errors.New("invalid day range")

	// ErrInvalidZone is returned for a zone code not in the known-zones table.
	ErrInvalidZone = errors.New("invalid zone")

	// ErrInvalidYear is returned for a season not present in the dataset's season index.
	ErrInvalidYear = errors.New("invalid season year")
)
