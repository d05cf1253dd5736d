package contract

import "errors"

var (
	// ErrNoRows is returned by conditional writes that matched nothing.
	ErrNoRows = errors.New("no matching rows")
	// ErrAlreadyExists is returned by Create when the primary key is taken.
	ErrAlreadyExists = errors.New("record already exists")
)
