package models

import "errors"

// Error kinds shared by the store, engine, aggregator and HTTP layer.
// Wrap them with fmt.Errorf("%w: ...") and classify with errors.Is.
var (
	ErrValidation             = errors.New("validation error")
	ErrNotFound               = errors.New("not found")
	ErrInvalidState           = errors.New("invalid state")
	ErrInvalidTransition      = errors.New("invalid phase transition")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrCollaboratorTimeout    = errors.New("collaborator timeout")
	ErrCollaborator           = errors.New("collaborator error")
)
