package model

import "errors"

var (
	// ErrNotFound is returned by stores when the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned by UserStore.Create on a unique email violation.
	ErrEmailTaken = errors.New("email is already taken")
	// ErrInvalidOwner is returned when a scan references an unknown user.
	ErrInvalidOwner = errors.New("scan owner does not exist")
	// ErrInvalidScan is returned when a scan violates record invariants.
	ErrInvalidScan = errors.New("invalid scan record")
)
