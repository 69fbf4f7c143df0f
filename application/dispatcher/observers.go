package dispatcher

import (
	"log/slog"

	"github.com/reglet-dev/runguard/domain/entities"
	"github.com/reglet-dev/runguard/domain/ports"
)

// Ensure implementations satisfy the interface.
var _ ports.DecisionObserver = (*LogObserver)(nil)
var _ ports.DecisionObserver = NopObserver{}
var _ ports.DecisionObserver = MultiObserver(nil)

// LogObserver logs every decision at info level.
type LogObserver struct {
	Logger *slog.Logger
}

func (o *LogObserver) OnDecision(req entities.CapabilityRequest, decision entities.Decision) {
	o.Logger.Info("capability decision",
		"class", req.Class.String(),
		"value", req.Value,
		"decision", decision.String())
}

// NopObserver does nothing.
type NopObserver struct{}

func (NopObserver) OnDecision(entities.CapabilityRequest, entities.Decision) {}

// MultiObserver fans a decision out to several observers in order.
type MultiObserver []ports.DecisionObserver

func (m MultiObserver) OnDecision(req entities.CapabilityRequest, decision entities.Decision) {
	for _, o := range m {
		o.OnDecision(req, decision)
	}
}
