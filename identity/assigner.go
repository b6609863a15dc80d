package identity

import (
	"log/slog"

	"github.com/Konsultn-Engineering/metaobject/core"
	"github.com/Konsultn-Engineering/metaobject/notify"
)

// Assigner stamps an identity on every new, non-proxied Data object built
// by an Engine.
type Assigner struct {
	generator Generator
	logger    *slog.Logger
	sub       *notify.Subscription
}

// Attach subscribes an Assigner to the creation events of e.
func Attach(e *core.Engine, g Generator) *Assigner {
	a := &Assigner{
		generator: g,
		logger:    e.Logger(),
	}
	a.sub = notify.Subscribe(e.Notifier(), a.onCreated)
	return a
}

// Close detaches the Assigner.
func (a *Assigner) Close() error {
	return a.sub.Close()
}

func (a *Assigner) onCreated(_ any, ev notify.ObjectCreated) {
	d, ok := ev.Object.(core.Data)
	if !ok || d.ID() != "" || core.BaseOf(d).DefaultProxyState() {
		return
	}

	id, err := a.generator.Generate()
	if err != nil {
		a.logger.Error("assigning identity failed",
			"type", d.GetDataType(),
			"generator", a.generator.Name(),
			"error", err,
		)
		return
	}
	d.SetID(id)
}
