package domain

import (
	"github.com/light-bringer/changegraph/internal/pkg/changepath"
	"github.com/light-bringer/changegraph/internal/pkg/dirty"
	"github.com/light-bringer/changegraph/internal/pkg/graph"
)

// WebhookFilters selects the attribute paths a subscriber is notified
// about. The remote API replaces filters wholesale, so they are always
// dirty and Attributes is always sent.
type WebhookFilters struct {
	graph.Node
	attributes *dirty.List[string]
}

var webhookFiltersSchema = graph.MustSchema("WebhookFilters", []graph.Field{
	graph.ListOf("Attributes", func(w *WebhookFilters) **dirty.List[string] { return &w.attributes }),
}, graph.AlwaysDirty(), graph.AlwaysSerialize("Attributes"))

func NewWebhookFilters(attributes ...string) *WebhookFilters {
	w := &WebhookFilters{}
	if len(attributes) > 0 {
		w.attributes = dirty.NewListFrom(attributes)
	}
	graph.Init(w, webhookFiltersSchema)
	return w
}

func (w *WebhookFilters) Attributes() *dirty.List[string] {
	return graph.GetList(&w.Node, &w.attributes, "Attributes")
}

// Matches reports whether attributePath is selected. Empty filters select
// everything.
func (w *WebhookFilters) Matches(attributePath string) bool {
	attrs := w.Attributes()
	if attrs.Len() == 0 {
		return true
	}
	for p := range attrs.Values() {
		if changepath.Match(p, attributePath) {
			return true
		}
	}
	return false
}
