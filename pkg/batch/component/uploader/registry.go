// Package uploader contains the per-group handlers that turn staged entity
// groups into catalog mutations, and the registry that builds them from
// configuration.
package uploader

import (
	"context"
	"sort"
	"time"

	"go.uber.org/fx"

	"github.com/tigerroll/surfin-transporter/pkg/batch/core/application/port"
	"github.com/tigerroll/surfin-transporter/pkg/batch/core/config"
	"github.com/tigerroll/surfin-transporter/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-transporter/pkg/batch/core/support/dotconvention"
	"github.com/tigerroll/surfin-transporter/pkg/batch/engine/upload"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/logger"
)

const moduleName = "uploader"

// FactoryGroup is the fx value group collecting Registrations.
const FactoryGroup = `group:"uploader_factories"`

// Mutations is the catalog API the handlers depend on. *mutation.Ops implements it.
type Mutations interface {
	SetBasePrice(ctx context.Context, sku string, price float64, reindex bool) error
	SetSpecialPrice(ctx context.Context, sku string, price float64, from, to *time.Time, reindex bool) error
	DeleteTierPrices(ctx context.Context, sku string) (int64, error)
	ApplyCustomerGroupRule(ctx context.Context, groupCode, customerCode string, rule model.PriceRule) (*model.CustomerGroup, error)
	DeleteRule(ctx context.Context, name string) error
	GetProductAttributeValueBySku(ctx context.Context, sku, attributeCode string) (string, bool, error)
}

// Dependencies are handed to every Factory.
type Dependencies struct {
	Mutations         Mutations
	Accessor          *dotconvention.PathAccessor
	Entities          port.EntityRepository
	URLRewrites       port.URLRewriteRepository
	Location          *time.Location
	ReindexAfterWrite bool
}

// Factory builds a handler named name from its bound properties.
type Factory func(name string, properties map[string]interface{}, deps Dependencies) (upload.GroupHandler, error)

// Registration associates a kind with its Factory.
type Registration struct {
	Kind    string
	Factory Factory
}

// Registry resolves uploader kinds to factories.
type Registry struct {
	factories map[string]Factory
}

// RegistryParams defines the dependencies for creating a Registry.
type RegistryParams struct {
	fx.In
	Registrations []Registration `group:"uploader_factories"`
}

// NewRegistry creates a Registry holding the built-in kinds plus the given registrations.
func NewRegistry(p RegistryParams) *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register(KindBasePrice, NewBasePriceUploader)
	r.Register(KindSpecialPrice, NewSpecialPriceUploader)
	r.Register(KindGroupPrice, NewGroupPriceUploader)
	r.Register(KindCustomerPrice, NewCustomerPriceUploader)
	for _, reg := range p.Registrations {
		r.Register(reg.Kind, reg.Factory)
	}
	return r
}

// Register adds or replaces the factory for kind.
func (r *Registry) Register(kind string, factory Factory) {
	if _, exists := r.factories[kind]; exists {
		logger.Debugf("Uploader kind '%s' is being re-registered.", kind)
	}
	r.factories[kind] = factory
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Build creates the handler described by def.
func (r *Registry) Build(name string, def config.UploaderConfig, deps Dependencies) (upload.GroupHandler, error) {
	factory, ok := r.factories[def.Kind]
	if !ok {
		return nil, exception.NewUploadErrorf(moduleName, exception.KindConfiguration,
			"uploader '%s' has unknown kind '%s' (known: %v)", name, def.Kind, r.Kinds())
	}
	if deps.Accessor == nil {
		deps.Accessor = dotconvention.NewPathAccessor()
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	properties := def.Properties
	if properties == nil {
		properties = map[string]interface{}{}
	}
	return factory(name, properties, deps)
}

func newFieldReader(deps Dependencies, dateFormat string) fieldReader {
	if dateFormat == "" {
		dateFormat = config.DefaultDateLayout
	}
	return fieldReader{accessor: deps.Accessor, dateLayout: dateFormat, location: deps.Location}
}
