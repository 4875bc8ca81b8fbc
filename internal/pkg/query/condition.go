package query

import "fmt"

// Condition renders one WHERE predicate. index is the number of parameters
// bound by earlier conditions and seeds the @pN names.
type Condition interface {
	SQL(index int) (string, map[string]any)
}

type binary struct {
	column string
	format string
	value  any
}

func (c binary) SQL(index int) (string, map[string]any) {
	name := fmt.Sprintf("p%d", index)
	return fmt.Sprintf(c.format, c.column, name), map[string]any{name: c.value}
}

// Eq renders "column = @pN".
func Eq(column string, value any) Condition {
	return binary{column: column, format: "%s = @%s", value: value}
}

// StartsWith renders STARTS_WITH(column, @pN), used for path prefixes.
func StartsWith(column, prefix string) Condition {
	return binary{column: column, format: "STARTS_WITH(%s, @%s)", value: prefix}
}

// In renders "column IN UNNEST(@pN)". values must be a slice Spanner can
// bind as an array.
func In(column string, values any) Condition {
	return binary{column: column, format: "%s IN UNNEST(@%s)", value: values}
}

type unary struct {
	column string
	suffix string
}

func (c unary) SQL(int) (string, map[string]any) {
	return c.column + " " + c.suffix, nil
}

func IsNull(column string) Condition {
	return unary{column: column, suffix: "IS NULL"}
}

func IsNotNull(column string) Condition {
	return unary{column: column, suffix: "IS NOT NULL"}
}
