package core

import (
	"github.com/Konsultn-Engineering/metaobject/notify"
)

// LoadEvent asks the data-access collaborator to load Paths of Object.
type LoadEvent struct {
	Object     Data
	Proxies    ProxyInformation
	Paths      []string
	DataType   string
	Collection string
}

// Loader forwards load requests for proxy properties to its subscribers.
// Loading is synchronous: Load returns once every subscriber has run. The
// caller clears the proxy flags afterwards whether or not anyone listened.
type Loader struct {
	engine   *Engine
	notifier *notify.Notifier
}

func newLoader(e *Engine) *Loader {
	return &Loader{
		engine:   e,
		notifier: notify.New(),
	}
}

// Subscribe registers the data-access collaborator. Close the returned
// subscription to detach it.
func (l *Loader) Subscribe(h func(LoadEvent)) *notify.Subscription {
	return notify.Subscribe(l.notifier, func(_ any, ev LoadEvent) { h(ev) })
}

// Subscribers returns the number of attached collaborators.
func (l *Loader) Subscribers() int {
	return notify.Count[LoadEvent](l.notifier)
}

// Load fires a LoadEvent for paths of obj.
func (l *Loader) Load(obj Data, proxies ProxyInformation, paths []string) {
	if isNil(obj) || len(paths) == 0 {
		return
	}

	ev := LoadEvent{
		Object:   obj,
		Proxies:  proxies,
		Paths:    paths,
		DataType: obj.GetDataType(),
	}
	if info := l.engine.locator.GetDataTypeInfo(ev.DataType); info != nil {
		ev.Collection = info.Collection
	}

	if l.Subscribers() == 0 {
		l.engine.logger.Debug("load requested without subscriber",
			"type", ev.DataType,
			"id", obj.ID(),
			"paths", paths,
		)
	}
	notify.Notify(l.notifier, l, ev)
}
