package metaobject

import (
	"fmt"

	"github.com/Konsultn-Engineering/metaobject/config"
	"github.com/Konsultn-Engineering/metaobject/core"
	"github.com/Konsultn-Engineering/metaobject/identity"
	"github.com/Konsultn-Engineering/metaobject/schema"
)

type Engine = core.Engine
type Option = core.Option
type Module = schema.Module

type Data = core.Data
type Contract = core.Contract
type Surrogate = core.Surrogate
type DataObject = core.DataObject
type ContractObject = core.ContractObject
type SurrogateObject = core.SurrogateObject

var (
	WithLogger           = core.WithLogger
	WithNotifier         = core.WithNotifier
	WithModules          = core.WithModules
	WithManifest         = core.WithManifest
	WithLocatorOptions   = core.WithLocatorOptions
	WithInvokerCacheSize = core.WithInvokerCacheSize
	WithPathCacheSize    = core.WithPathCacheSize
)

func New(opts ...Option) *Engine {
	return core.New(opts...)
}

// NewModule groups prototypes of Data, Contract and Surrogate types.
func NewModule(name string, prototypes ...any) Module {
	return schema.NewModule(name, prototypes...)
}

// NewFromEnv builds an Engine from METAOBJECT_* variables and .env files
// and attaches the configured identity generator. Options in opts are
// applied after the configured ones.
func NewFromEnv(files []string, opts ...Option) (*Engine, *identity.Assigner, error) {
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, nil, err
	}
	cfgOpts, err := cfg.Options()
	if err != nil {
		return nil, nil, err
	}

	e := core.New(append(cfgOpts, opts...)...)

	gen, ok := identity.NewRegistry().Get(cfg.IDGenerator)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", identity.ErrUnknownGenerator, cfg.IDGenerator)
	}
	return e, identity.Attach(e, gen), nil
}
