package mongodb

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/dukastock-api/internal/domain"
	"github.com/jhoicas/dukastock-api/internal/domain/entity"
	"github.com/jhoicas/dukastock-api/internal/domain/repository"
)

var _ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)

// InventoryItemRepo colección inventory.
// Dentro de una transacción GetForUpdate incrementa version: el documento queda con bloqueo de escritura
// hasta el commit y cualquier otra transacción que lo toque falla con WriteConflict y se reintenta.
type InventoryItemRepo struct{ base }

func (r *InventoryItemRepo) Create(ctx context.Context, item *entity.InventoryItem) error {
	item.ID = newID(item.ID)
	_, err := r.coll.InsertOne(r.bind(ctx), toItemDoc(item))
	return mapErr("insert inventory item", err)
}

func (r *InventoryItemRepo) GetByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	var d itemDoc
	ok, err := findOne(r.coll.FindOne(r.bind(ctx), bson.M{"_id": id}), "get inventory item", &d)
	if !ok {
		return nil, err
	}
	return d.entity(), nil
}

func (r *InventoryItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.lock(ctx, bson.M{"_id": id})
}

func (r *InventoryItemRepo) GetByStoreAndAtNoForUpdate(ctx context.Context, storeID, atNo string) (*entity.InventoryItem, error) {
	return r.lock(ctx, bson.M{"storeId": storeID, "atNo": atNo})
}

func (r *InventoryItemRepo) lock(ctx context.Context, filter bson.M) (*entity.InventoryItem, error) {
	var d itemDoc
	res := r.coll.FindOneAndUpdate(r.bind(ctx), filter, bson.M{"$inc": bson.M{"version": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	ok, err := findOne(res, "lock inventory item", &d)
	if !ok {
		return nil, err
	}
	return d.entity(), nil
}

func (r *InventoryItemRepo) Update(ctx context.Context, item *entity.InventoryItem) error {
	doc := toItemDoc(item)
	doc.ID = ""
	res, err := r.coll.UpdateOne(r.bind(ctx), bson.M{"_id": item.ID}, bson.M{"$set": doc})
	if err != nil {
		return mapErr("update inventory item", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: ítem %s", domain.ErrNotFound, item.ID)
	}
	return nil
}

func (r *InventoryItemRepo) List(ctx context.Context, f repository.ItemFilter) ([]*entity.InventoryItem, error) {
	filter := bson.M{}
	if f.BusinessID != "" {
		filter["businessId"] = f.BusinessID
	}
	if f.StoreID != "" && f.StoreID != entity.StoreIDAll {
		filter["storeId"] = f.StoreID
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
		filter["$or"] = bson.A{bson.M{"atNo": re}, bson.M{"name": re}, bson.M{"brand": re}}
	}
	opts := page(options.Find().SetSort(bson.D{{Key: "storeId", Value: 1}, {Key: "atNo", Value: 1}}), f.Limit, f.Offset)

	ctx = r.bind(ctx)
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapErr("list inventory", err)
	}
	return decodeAll(ctx, cur, "list inventory", itemDoc.entity)
}

func (r *InventoryItemRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(r.bind(ctx), bson.M{"_id": id})
	if err != nil {
		return mapErr("delete inventory item", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: ítem %s", domain.ErrNotFound, id)
	}
	return nil
}
