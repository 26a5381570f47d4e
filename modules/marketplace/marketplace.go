package marketplace

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/marketlens/aptos-indexer/common/errs"
	"github.com/marketlens/aptos-indexer/core/datasources"
	"github.com/marketlens/aptos-indexer/core/indexer"
	"github.com/marketlens/aptos-indexer/core/types"
	"github.com/marketlens/aptos-indexer/internal/config"
	"github.com/marketlens/aptos-indexer/internal/postgres"
	"github.com/marketlens/aptos-indexer/modules/marketplace/api/httphandler"
	"github.com/marketlens/aptos-indexer/modules/marketplace/internal/datagateway"
	marketplacepostgres "github.com/marketlens/aptos-indexer/modules/marketplace/repository/postgres"
	"github.com/marketlens/aptos-indexer/pkg/logger"
	"github.com/samber/do/v2"
	"github.com/samber/lo"
)

func New(injector do.Injector) (indexer.IndexerWorker, error) {
	ctx := do.MustInvoke[context.Context](injector)
	conf := do.MustInvoke[config.Config](injector)

	var (
		marketplaceDg datagateway.MarketplaceDataGateway
		indexerInfoDg datagateway.IndexerInfoDataGateway
	)
	var cleanupFuncs []func(context.Context) error
	switch strings.ToLower(conf.Modules.Marketplace.Database) {
	case "postgresql", "postgres", "pg":
		pg, err := postgres.NewPool(ctx, conf.Modules.Marketplace.Postgres)
		if err != nil {
			if errors.Is(err, errs.InvalidArgument) {
				return nil, errors.Wrap(err, "Invalid Postgres configuration for indexer")
			}
			return nil, errors.Wrap(err, "can't create Postgres connection pool")
		}
		cleanupFuncs = append(cleanupFuncs, func(ctx context.Context) error {
			pg.Close()
			return nil
		})
		marketplaceRepo := marketplacepostgres.NewRepository(pg)
		marketplaceDg = marketplaceRepo
		indexerInfoDg = marketplaceRepo
	default:
		return nil, errors.Wrapf(errs.Unsupported, "%q database for indexer is not supported", conf.Modules.Marketplace.Database)
	}

	var aptosDatasource datasources.Datasource[*types.Transaction]
	switch strings.ToLower(conf.Modules.Marketplace.Datasource) {
	case "aptos-fullnode":
		fullnodeDatasource, err := datasources.NewAptosFullnode(conf.AptosNode.FullnodeURL)
		if err != nil {
			return nil, errors.Wrap(err, "can't create Aptos fullnode datasource")
		}
		aptosDatasource = fullnodeDatasource
	default:
		return nil, errors.Wrapf(errs.Unsupported, "%q datasource is not supported", conf.Modules.Marketplace.Datasource)
	}

	processor := NewProcessor(marketplaceDg, indexerInfoDg, conf.Network, cleanupFuncs...)
	if err := processor.VerifyStates(ctx); err != nil {
		return nil, errors.WithStack(err)
	}

	// Mount API
	apiHandlers := lo.Uniq(conf.Modules.Marketplace.APIHandlers)
	for _, handler := range apiHandlers {
		switch handler {
		case "http":
			httpServer := do.MustInvoke[*fiber.App](injector)
			marketplaceHTTPHandler := httphandler.New(marketplaceDg)
			if err := marketplaceHTTPHandler.Mount(httpServer); err != nil {
				return nil, errors.Wrap(err, "can't mount Marketplace API")
			}
			logger.InfoContext(ctx, "Mounted HTTP handler")
		default:
			return nil, errors.Wrapf(errs.Unsupported, "%q API handler is not supported", handler)
		}
	}

	indexer := indexer.New(processor, aptosDatasource)
	return indexer, nil
}
