package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/dukastock-api/internal/domain/entity"
	"github.com/jhoicas/dukastock-api/internal/domain/repository"
)

var (
	_ repository.SaleRepository   = (*SaleRepo)(nil)
	_ repository.ReturnRepository = (*ReturnRepo)(nil)
)

// SaleRepo colección sales (solo inserción y lectura).
type SaleRepo struct{ base }

func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	s.ID = newID(s.ID)
	_, err := r.coll.InsertOne(r.bind(ctx), toSaleDoc(s))
	return mapErr("insert sale", err)
}

func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	var d saleDoc
	ok, err := findOne(r.coll.FindOne(r.bind(ctx), bson.M{"_id": id}), "get sale", &d)
	if !ok {
		return nil, err
	}
	return d.entity(), nil
}

func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	ctx = r.bind(ctx)
	cur, err := r.coll.Find(ctx, saleFilter(f), saleFindOptions(f))
	if err != nil {
		return nil, mapErr("list sales", err)
	}
	return decodeAll(ctx, cur, "list sales", saleDoc.entity)
}

// ReturnRepo colección returns; saleId tiene índice único.
type ReturnRepo struct{ base }

func (r *ReturnRepo) Create(ctx context.Context, ret *entity.SaleReturn) error {
	ret.ID = newID(ret.ID)
	_, err := r.coll.InsertOne(r.bind(ctx), toReturnDoc(ret))
	return mapErr("insert return", err)
}

func (r *ReturnRepo) GetBySaleID(ctx context.Context, saleID string) (*entity.SaleReturn, error) {
	var d returnDoc
	ok, err := findOne(r.coll.FindOne(r.bind(ctx), bson.M{"saleId": saleID}), "get return", &d)
	if !ok {
		return nil, err
	}
	return d.entity(), nil
}

func (r *ReturnRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.SaleReturn, error) {
	ctx = r.bind(ctx)
	cur, err := r.coll.Find(ctx, saleFilter(f), saleFindOptions(f))
	if err != nil {
		return nil, mapErr("list returns", err)
	}
	return decodeAll(ctx, cur, "list returns", returnDoc.entity)
}

// saleFilter filtro común a ventas y devoluciones; ambos extremos de fecha inclusivos.
func saleFilter(f repository.SaleFilter) bson.M {
	filter := bson.M{}
	if f.BusinessID != "" {
		filter["businessId"] = f.BusinessID
	}
	if f.StoreID != "" && f.StoreID != entity.StoreIDAll {
		filter["storeId"] = f.StoreID
	}
	ts := bson.M{}
	if f.From != nil {
		ts["$gte"] = *f.From
	}
	if f.To != nil {
		ts["$lte"] = *f.To
	}
	if len(ts) > 0 {
		filter["timestamp"] = ts
	}
	return filter
}

func saleFindOptions(f repository.SaleFilter) *options.FindOptions {
	return page(options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}), f.Limit, f.Offset)
}
