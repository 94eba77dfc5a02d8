// Package manipulator holds handlers that rewrite staged entities instead of
// mutating the catalog. They run through the same upload loop as uploaders.
package manipulator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/fx"

	"github.com/tigerroll/surfin-transporter/pkg/batch/component/uploader"
	"github.com/tigerroll/surfin-transporter/pkg/batch/component/urlkey"
	"github.com/tigerroll/surfin-transporter/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-transporter/pkg/batch/core/support/dotconvention"
	"github.com/tigerroll/surfin-transporter/pkg/batch/engine/upload"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/configbinder"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
)

const moduleName = "manipulator"

// KindUniqueURLKey is the uploader kind of the unique URL key manipulator.
const KindUniqueURLKey = "unique_url_key"

// UniqueURLKeyOptions configures the manipulator.
type UniqueURLKeyOptions struct {
	// Source is the dot path of the display name, e.g. "product.name".
	Source string `yaml:"source" required:"true"`
	// Destination is the dot path the key is written to, e.g. "product.url_key".
	Destination string `yaml:"destination" required:"true"`
	// FallbackAttribute is a catalog attribute read by SKU when Source is absent.
	FallbackAttribute string `yaml:"fallback_attribute"`
}

// UniqueURLKeyManipulator writes a unique URL key derived from a name into
// each group's staged payload and persists it.
type UniqueURLKeyManipulator struct {
	name      string
	opts      UniqueURLKeyOptions
	accessor  *dotconvention.PathAccessor
	generator *urlkey.Generator
	deps      uploader.Dependencies
}

// NewUniqueURLKeyManipulator is the uploader.Factory for KindUniqueURLKey.
// Each call owns a fresh Generator, so keys are unique within one run.
func NewUniqueURLKeyManipulator(name string, properties map[string]interface{}, deps uploader.Dependencies) (upload.GroupHandler, error) {
	var opts UniqueURLKeyOptions
	if err := configbinder.BindProperties(properties, &opts); err != nil {
		return nil, err
	}
	if deps.Entities == nil || deps.URLRewrites == nil {
		return nil, exception.NewUploadErrorf(moduleName, exception.KindConfiguration,
			"manipulator '%s' needs an entity repository and a url rewrite repository", name)
	}
	if deps.Accessor == nil {
		deps.Accessor = dotconvention.NewPathAccessor()
	}
	return &UniqueURLKeyManipulator{
		name:      name,
		opts:      opts,
		accessor:  deps.Accessor,
		generator: urlkey.NewGenerator(deps.URLRewrites),
		deps:      deps,
	}, nil
}

func (m *UniqueURLKeyManipulator) Type() string { return m.name }

func (m *UniqueURLKeyManipulator) Handle(ctx context.Context, entry model.GroupEntry) (upload.Result, error) {
	sourceType, err := m.accessor.GetFirst(m.opts.Source)
	if err != nil {
		return upload.Result{}, err
	}
	source, ok := entry.Entities[sourceType]
	if !ok || source == nil {
		return upload.Result{}, exception.NewUploadErrorf(moduleName, exception.KindPathNotFound,
			"group '%s' has no '%s' entity", entry.Identifier, sourceType)
	}

	name, err := m.readName(ctx, entry.Identifier, source)
	if err != nil {
		return upload.Result{}, err
	}

	key, err := m.generator.Generate(ctx, name)
	if err != nil {
		return upload.Result{}, err
	}

	targetType, err := m.accessor.GetFirst(m.opts.Destination)
	if err != nil {
		return upload.Result{}, err
	}
	target, ok := entry.Entities[targetType]
	if !ok || target == nil {
		return upload.Result{}, exception.NewUploadErrorf(moduleName, exception.KindPathNotFound,
			"group '%s' has no '%s' entity", entry.Identifier, targetType)
	}
	destination, err := m.accessor.GetFromSecondInDotConvention(m.opts.Destination)
	if err != nil {
		return upload.Result{}, err
	}
	if target.DataManipulated == nil {
		target.DataManipulated = model.NewMap()
	}
	if err := m.accessor.SetValue(target.DataManipulated, destination, model.Scalar(key)); err != nil {
		return upload.Result{}, err
	}
	if err := m.deps.Entities.UpdateManipulated(ctx, target); err != nil {
		return upload.Result{}, exception.NewUploadErrorf(moduleName, exception.KindPersistence,
			"failed to store url key of '%s'", entry.Identifier, err)
	}
	return upload.Result{Action: "set_url_key", Detail: fmt.Sprintf("%s -> %s", m.opts.Destination, key)}, nil
}

func (m *UniqueURLKeyManipulator) readName(ctx context.Context, identifier string, source *model.Entity) (string, error) {
	f, err := m.accessor.GetValueFromSecond(source.DataManipulated, m.opts.Source)
	if err != nil {
		return "", err
	}
	if f.IsPresent() && strings.TrimSpace(f.String()) != "" {
		return f.String(), nil
	}
	if m.opts.FallbackAttribute == "" {
		return "", exception.NewUploadErrorf(moduleName, exception.KindPathNotFound, "field '%s' has no value", m.opts.Source)
	}
	v, ok, err := m.deps.Mutations.GetProductAttributeValueBySku(ctx, identifier, m.opts.FallbackAttribute)
	if err != nil {
		return "", err
	}
	if !ok || strings.TrimSpace(v) == "" {
		return "", exception.NewUploadErrorf(moduleName, exception.KindPathNotFound,
			"field '%s' has no value and product '%s' has no '%s' attribute", m.opts.Source, identifier, m.opts.FallbackAttribute)
	}
	return v, nil
}

// Module contributes the manipulator to the uploader registry.
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(
			func() uploader.Registration {
				return uploader.Registration{Kind: KindUniqueURLKey, Factory: NewUniqueURLKeyManipulator}
			},
			fx.ResultTags(uploader.FactoryGroup),
		),
	),
)
