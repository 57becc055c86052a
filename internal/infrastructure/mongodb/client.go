package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/dukastock-api/internal/domain"
	"github.com/jhoicas/dukastock-api/pkg/config"
)

// Nombres de colecciones.
const (
	colBusinesses = "businesses"
	colStores     = "stores"
	colUsers      = "users"
	colInventory  = "inventory"
	colLends      = "lentshoes"
	colSales      = "sales"
	colReturns    = "returns"
)

// emailCollation compara emails sin distinguir mayúsculas.
var emailCollation = &options.Collation{Locale: "en", Strength: 2}

// Client conexión a MongoDB y fábrica de repositorios.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect abre la conexión y verifica con Ping. Las transacciones requieren replica set.
func Connect(ctx context.Context, cfg config.MongoConfig) (*Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &Client{client: client, db: client.Database(cfg.Database)}, nil
}

// Close cierra la conexión.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// EnsureIndexes crea los índices únicos y de consulta (idempotente).
func (c *Client) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		colInventory: {
			{Keys: bson.D{{Key: "storeId", Value: 1}, {Key: "atNo", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "businessId", Value: 1}, {Key: "storeId", Value: 1}}},
		},
		colReturns: {
			{Keys: bson.D{{Key: "saleId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		colUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetCollation(emailCollation)},
			{Keys: bson.D{{Key: "businessId", Value: 1}}},
		},
		colStores: {
			{Keys: bson.D{{Key: "businessId", Value: 1}}},
		},
		colLends: {
			{Keys: bson.D{{Key: "businessId", Value: 1}, {Key: "fromStoreId", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "businessId", Value: 1}, {Key: "toStoreId", Value: 1}, {Key: "status", Value: 1}}},
		},
		colSales: {
			{Keys: bson.D{{Key: "businessId", Value: 1}, {Key: "storeId", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := c.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes %s: %w", coll, err)
		}
	}
	return nil
}

// Repositorios fuera de transacción.

func (c *Client) Businesses() *BusinessRepo { return &BusinessRepo{base{coll: c.db.Collection(colBusinesses)}} }
func (c *Client) Stores() *StoreRepo        { return &StoreRepo{base{coll: c.db.Collection(colStores)}} }
func (c *Client) Users() *UserRepo          { return &UserRepo{base{coll: c.db.Collection(colUsers)}} }
func (c *Client) Items() *InventoryItemRepo { return c.items(nil) }
func (c *Client) Lends() *LendRepo          { return c.lends(nil) }
func (c *Client) Sales() *SaleRepo          { return c.sales(nil) }
func (c *Client) Returns() *ReturnRepo      { return c.returns(nil) }

func (c *Client) items(sess mongo.Session) *InventoryItemRepo {
	return &InventoryItemRepo{base{coll: c.db.Collection(colInventory), sess: sess}}
}

func (c *Client) lends(sess mongo.Session) *LendRepo {
	return &LendRepo{base{coll: c.db.Collection(colLends), sess: sess}}
}

func (c *Client) sales(sess mongo.Session) *SaleRepo {
	return &SaleRepo{base{coll: c.db.Collection(colSales), sess: sess}}
}

func (c *Client) returns(sess mongo.Session) *ReturnRepo {
	return &ReturnRepo{base{coll: c.db.Collection(colReturns), sess: sess}}
}

// base colección más la sesión de la transacción en curso (nil fuera de tx).
type base struct {
	coll *mongo.Collection
	sess mongo.Session
}

// bind asocia ctx a la sesión para que la operación participe en la transacción.
func (b base) bind(ctx context.Context) context.Context {
	if b.sess == nil {
		return ctx
	}
	return mongo.NewSessionContext(ctx, b.sess)
}

// findOne decodifica un documento; (false, nil) si no existe.
func findOne(res *mongo.SingleResult, op string, out any) (bool, error) {
	if err := res.Decode(out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, mapErr(op, err)
	}
	return true, nil
}

// mapErr traduce errores del driver a errores de dominio.
func mapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %s", domain.ErrDuplicate, op)
	case mongo.IsNetworkError(err), mongo.IsTimeout(err), errors.Is(err, mongo.ErrClientDisconnected):
		return &transientError{op: op, err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// transientError es domain.ErrTransient sin perder el error del driver.
// Unwrap devuelve un único error: el driver recorre la cadena con Unwrap() error
// para buscar TransientTransactionError dentro de WithTransaction.
type transientError struct {
	op  string
	err error
}

func (e *transientError) Error() string {
	return fmt.Sprintf("%v: %s: %v", domain.ErrTransient, e.op, e.err)
}

func (e *transientError) Unwrap() error { return e.err }

func (e *transientError) Is(target error) bool { return target == domain.ErrTransient }

// isTransientTxn informa errores con la etiqueta TransientTransactionError (conflicto de escritura).
func isTransientTxn(err error) bool {
	var le mongo.LabeledError
	return errors.As(err, &le) && le.HasErrorLabel("TransientTransactionError")
}

func newID(id string) string {
	if id == "" {
		return uuid.New().String()
	}
	return id
}

// page aplica límite y desplazamiento; limit <= 0 = sin límite.
func page(opts *options.FindOptions, limit, offset int) *options.FindOptions {
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	return opts
}

// decodeAll recorre el cursor convirtiendo cada documento.
func decodeAll[D any, E any](ctx context.Context, cur *mongo.Cursor, op string, conv func(D) E) ([]E, error) {
	defer cur.Close(ctx)
	var out []E
	for cur.Next(ctx) {
		var d D
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}
		out = append(out, conv(d))
	}
	return out, mapErr(op, cur.Err())
}
