package graph

import (
	"errors"

	"github.com/light-bringer/changegraph/internal/pkg/dirty"
)

// The graph shares the container error taxonomy.
var (
	ErrArgumentInvalid = dirty.ErrArgumentInvalid
	ErrNotSupported    = dirty.ErrNotSupported
	ErrInvalidState    = dirty.ErrInvalidState
)

var (
	ErrDuplicateField = errors.New("graph: duplicate field")
	ErrUnknownField   = errors.New("graph: unknown field")
	ErrUnknownIDField = errors.New("graph: id field must be a declared scalar")
	ErrNotFound       = errors.New("graph: path not found")
)
