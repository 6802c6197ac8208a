package ecs

import "github.com/rotisserie/eris"

var (
	ErrNoSuchEntity               = eris.New("no such entity")
	ErrComponentMissing           = eris.New("component not on entity")
	ErrBorrowConflict             = eris.New("component is already borrowed")
	ErrComponentNotRegistered     = eris.New("component not registered")
	ErrComponentAlreadyRegistered = eris.New("component name already registered by another type")
)
