package persistence

import (
	"context"
	"fmt"

	"github.com/jhoicas/dukastock-api/internal/application/inventory"
	"github.com/jhoicas/dukastock-api/internal/application/lending"
	"github.com/jhoicas/dukastock-api/internal/application/sales"
	"github.com/jhoicas/dukastock-api/internal/domain/repository"
	"github.com/jhoicas/dukastock-api/internal/infrastructure/memory"
	"github.com/jhoicas/dukastock-api/internal/infrastructure/mongodb"
	"github.com/jhoicas/dukastock-api/internal/infrastructure/postgres"
	"github.com/jhoicas/dukastock-api/pkg/config"
	"github.com/jhoicas/dukastock-api/pkg/logger"
)

// TxRunner reúne los tres puertos transaccionales; cada adaptador los implementa todos.
type TxRunner interface {
	inventory.TxRunner
	lending.TxRunner
	sales.TxRunner
}

// Backend repositorios y transacciones del driver elegido en STORE_DRIVER.
type Backend struct {
	Businesses repository.BusinessRepository
	Stores     repository.StoreRepository
	Users      repository.UserRepository
	Items      repository.InventoryItemRepository
	Lends      repository.LendRepository
	Sales      repository.SaleRepository
	Returns    repository.ReturnRepository
	Tx         TxRunner
	close      func()
}

// Close libera la conexión del driver.
func (b *Backend) Close() { b.close() }

// Open conecta el driver configurado. postgres aplica migraciones y mongo asegura índices.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Backend, error) {
	if log == nil {
		log = logger.Nop()
	}
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migraciones: %w", err)
		}
		return &Backend{
			Businesses: postgres.NewBusinessRepository(pool),
			Stores:     postgres.NewStoreRepository(pool),
			Users:      postgres.NewUserRepository(pool),
			Items:      postgres.NewInventoryItemRepository(pool),
			Lends:      postgres.NewLendRepository(pool),
			Sales:      postgres.NewSaleRepository(pool),
			Returns:    postgres.NewReturnRepository(pool),
			Tx:         postgres.NewTxRunner(pool, cfg.Store.MaxRetries),
			close:      pool.Close,
		}, nil

	case config.DriverMongo:
		client, err := mongodb.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("conexión a MongoDB: %w", err)
		}
		if err := client.EnsureIndexes(ctx); err != nil {
			_ = client.Close(ctx)
			return nil, fmt.Errorf("índices de MongoDB: %w", err)
		}
		return &Backend{
			Businesses: client.Businesses(),
			Stores:     client.Stores(),
			Users:      client.Users(),
			Items:      client.Items(),
			Lends:      client.Lends(),
			Sales:      client.Sales(),
			Returns:    client.Returns(),
			Tx:         mongodb.NewTxRunner(client, cfg.Store.MaxRetries),
			close: func() {
				if err := client.Close(context.Background()); err != nil {
					log.Error().Err(err).Msg("cierre de MongoDB")
				}
			},
		}, nil

	default:
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
		st := memory.New()
		return &Backend{
			Businesses: st.Businesses(),
			Stores:     st.Stores(),
			Users:      st.Users(),
			Items:      st.Items(),
			Lends:      st.Lends(),
			Sales:      st.Sales(),
			Returns:    st.Returns(),
			Tx:         st,
			close:      func() {},
		}, nil
	}
}
