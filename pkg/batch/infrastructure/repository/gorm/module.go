package gorm

import (
	"go.uber.org/fx"

	"github.com/tigerroll/surfin-transporter/pkg/batch/adapter/database"
	"github.com/tigerroll/surfin-transporter/pkg/batch/component/rule"
	port "github.com/tigerroll/surfin-transporter/pkg/batch/core/application/port"
	config "github.com/tigerroll/surfin-transporter/pkg/batch/core/config"
)

// RepositoryParams defines the dependencies shared by all repositories.
type RepositoryParams struct {
	fx.In
	DBResolver database.DBConnectionResolver
	Cfg        *config.Config
}

func catalogDBName(p RepositoryParams) string {
	return p.Cfg.Surfin.Infrastructure.CatalogDBRef
}

// Module binds the GORM repositories to the collaborator ports on the catalog connection.
var Module = fx.Options(
	fx.Provide(rule.NewEvaluator),
	fx.Provide(
		func(p RepositoryParams) port.EntityRepository {
			return NewEntityRepository(p.DBResolver, catalogDBName(p))
		},
		func(p RepositoryParams) *ProductRepository {
			return NewProductRepository(p.DBResolver, catalogDBName(p))
		},
		// One instance serves both product ports.
		fx.Annotate(
			func(r *ProductRepository) *ProductRepository { return r },
			fx.As(new(port.ProductRepository)),
			fx.As(new(port.AttributeReader)),
		),
		func(p RepositoryParams) port.Indexer {
			return NewQueueIndexer(p.DBResolver, catalogDBName(p))
		},
		func(p RepositoryParams) port.URLRewriteRepository {
			return NewUrlRewriteRepository(p.DBResolver, catalogDBName(p))
		},
		func(p RepositoryParams) port.CustomerGroupService {
			return NewCustomerGroupService(p.DBResolver, catalogDBName(p))
		},
		func(p RepositoryParams, evaluator *rule.Evaluator) port.CatalogRuleService {
			return NewCatalogRuleService(p.DBResolver, catalogDBName(p), evaluator)
		},
		func(p RepositoryParams) port.TierPriceRepository {
			return NewTierPriceRepository(p.DBResolver, catalogDBName(p))
		},
	),
)
