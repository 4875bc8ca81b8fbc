package domain

import (
	"github.com/light-bringer/changegraph/internal/pkg/dirty"
	"github.com/light-bringer/changegraph/internal/pkg/graph"
)

type ClosingCost struct {
	graph.Node
	id      dirty.Value[string]
	amount  dirty.Value[*Money]
	program dirty.Value[string]
}

var closingCostSchema = graph.MustSchema("ClosingCost", []graph.Field{
	graph.Scalar("Id", func(c *ClosingCost) *dirty.Value[string] { return &c.id }),
	graph.Scalar("Amount", func(c *ClosingCost) *dirty.Value[*Money] { return &c.amount }),
	graph.Scalar("Program", func(c *ClosingCost) *dirty.Value[string] { return &c.program }),
}, graph.WithIDField("Id"))

func NewClosingCost() *ClosingCost {
	c := &ClosingCost{}
	graph.Init(c, closingCostSchema)
	return c
}

func ReconstructClosingCost(id string, amount *Money, program string) *ClosingCost {
	c := &ClosingCost{
		id:      dirty.NewValue(id),
		amount:  dirty.NewValue(amount),
		program: dirty.NewValue(program),
	}
	graph.Init(c, closingCostSchema)
	return c
}

func (c *ClosingCost) ID() string      { return c.id.Get() }
func (c *ClosingCost) Amount() *Money  { return c.amount.Get() }
func (c *ClosingCost) Program() string { return c.program.Get() }

func (c *ClosingCost) SetAmount(m *Money) error {
	return graph.Set(&c.Node, &c.amount, "Amount", m)
}

func (c *ClosingCost) SetProgram(s string) error {
	return graph.Set(&c.Node, &c.program, "Program", s)
}
