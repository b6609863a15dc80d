package core

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/Konsultn-Engineering/metaobject/notify"
	"github.com/Konsultn-Engineering/metaobject/schema"
)

// Engine wires the Locator, Reflector, Notifier, Loader, Builder,
// Converter, Merger and Cloner together. Every object remembers the Engine
// that built it.
type Engine struct {
	logger    *slog.Logger
	locator   *schema.Locator
	reflector *schema.Reflector
	notifier  *notify.Notifier

	loader    *Loader
	builder   *Builder
	converter *Converter
	merger    *Merger
	cloner    *Cloner

	invokerCacheSize int
	pathCacheSize    int
	locatorOptions   []schema.Option
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for swallowed failures.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithNotifier shares a Notifier with other components.
func WithNotifier(n *notify.Notifier) Option {
	return func(e *Engine) {
		if n != nil {
			e.notifier = n
		}
	}
}

// WithModules registers type modules with the Locator.
func WithModules(modules ...schema.Module) Option {
	return WithLocatorOptions(schema.WithModules(modules...))
}

// WithManifest registers dynamic Data types with the Locator.
func WithManifest(m *schema.Manifest) Option {
	return WithLocatorOptions(schema.WithManifest(m))
}

// WithLocatorOptions passes options through to the Locator.
func WithLocatorOptions(options ...schema.Option) Option {
	return func(e *Engine) {
		e.locatorOptions = append(e.locatorOptions, options...)
	}
}

// WithInvokerCacheSize bounds the Builder's constructor cache.
func WithInvokerCacheSize(size int) Option {
	return func(e *Engine) { e.invokerCacheSize = size }
}

// WithPathCacheSize bounds the Converter's surrogate path cache.
func WithPathCacheSize(size int) Option {
	return func(e *Engine) { e.pathCacheSize = size }
}

// New creates an Engine.
func New(options ...Option) *Engine {
	e := &Engine{
		logger:           slog.Default(),
		reflector:        schema.NewReflector(),
		notifier:         notify.New(),
		invokerCacheSize: 1024,
		pathCacheSize:    256,
	}

	for _, opt := range options {
		opt(e)
	}

	locatorOptions := append([]schema.Option{
		schema.WithRoots(dataObjectType, contractObjectType, surrogateObjectType),
		schema.WithLogger(e.logger),
	}, e.locatorOptions...)
	e.locator = schema.NewLocator(locatorOptions...)

	e.loader = newLoader(e)
	e.builder = newBuilder(e, e.invokerCacheSize)
	e.converter = newConverter(e, e.pathCacheSize)
	e.merger = &Merger{engine: e}
	e.cloner = &Cloner{engine: e}

	return e
}

func (e *Engine) Logger() *slog.Logger { return e.logger }
func (e *Engine) Locator() *schema.Locator { return e.locator }
func (e *Engine) Reflector() *schema.Reflector { return e.reflector }
func (e *Engine) Notifier() *notify.Notifier { return e.notifier }
func (e *Engine) Loader() *Loader { return e.loader }
func (e *Engine) Builder() *Builder { return e.builder }
func (e *Engine) Converter() *Converter { return e.converter }
func (e *Engine) Merger() *Merger { return e.merger }
func (e *Engine) Cloner() *Cloner { return e.cloner }

// Register adds type modules. It fails once the first type lookup ran.
func (e *Engine) Register(modules ...schema.Module) error {
	return e.locator.Register(modules...)
}

// Create constructs a new Contract object of type T with a non-proxied
// Data object.
func Create[T Contract](e *Engine) (T, error) {
	var zero T
	c, err := e.builder.GetContractObject(reflect.TypeOf((*T)(nil)).Elem(), false)
	if err != nil {
		return zero, err
	}
	v, ok := c.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %T", ErrNotContract, c)
	}
	return v, nil
}
