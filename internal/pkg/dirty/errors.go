package dirty

import "errors"

var (
	ErrArgumentInvalid = errors.New("dirty: argument invalid")
	ErrIndexOutOfRange = errors.New("dirty: index out of range")
	ErrKeyNotFound     = errors.New("dirty: key not found")
	ErrNotSupported    = errors.New("dirty: operation not supported")
	ErrInvalidState    = errors.New("dirty: invalid state")
)
