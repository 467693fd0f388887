package uc

import (
	"errors"

	"github.com/floworx/floworx/engine/clientconfig"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidClientID  = errors.New("client id must not be blank")
	ErrInvalidPatch     = clientconfig.ErrInvalidPatch
	ErrValidationFailed = clientconfig.ErrValidationFailed
	ErrVersionConflict  = clientconfig.ErrVersionConflict
)
