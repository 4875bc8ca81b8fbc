package domain

import (
	"errors"
	"fmt"

	"github.com/light-bringer/changegraph/internal/pkg/graph"
)

var (
	ErrLoanNotFound  = errors.New("loan not found")
	ErrInvalidAmount = errors.New("invalid money amount")

	// Initialization errors are invalid-state errors of the graph.
	ErrNotInitialized  = fmt.Errorf("loan is not initialized: %w", graph.ErrInvalidState)
	ErrLoanIDMismatch  = fmt.Errorf("loan is bound to another id: %w", graph.ErrInvalidState)
	ErrEmptyLoanID     = fmt.Errorf("loan id cannot be empty: %w", graph.ErrArgumentInvalid)
	ErrVirtualField    = fmt.Errorf("virtual fields cannot be changed: %w", graph.ErrNotSupported)
	ErrValueConversion = fmt.Errorf("value cannot be converted: %w", graph.ErrArgumentInvalid)
)
