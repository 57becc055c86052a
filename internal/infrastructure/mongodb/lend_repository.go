package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/dukastock-api/internal/domain"
	"github.com/jhoicas/dukastock-api/internal/domain/entity"
	"github.com/jhoicas/dukastock-api/internal/domain/repository"
)

var _ repository.LendRepository = (*LendRepo)(nil)

// LendRepo colección lentshoes.
type LendRepo struct{ base }

func (r *LendRepo) Create(ctx context.Context, l *entity.Lend) error {
	l.ID = newID(l.ID)
	_, err := r.coll.InsertOne(r.bind(ctx), toLendDoc(l))
	return mapErr("insert lend", err)
}

func (r *LendRepo) GetByID(ctx context.Context, id string) (*entity.Lend, error) {
	var d lendDoc
	ok, err := findOne(r.coll.FindOne(r.bind(ctx), bson.M{"_id": id}), "get lend", &d)
	if !ok {
		return nil, err
	}
	return d.entity(), nil
}

func (r *LendRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lend, error) {
	var d lendDoc
	res := r.coll.FindOneAndUpdate(r.bind(ctx), bson.M{"_id": id}, bson.M{"$inc": bson.M{"version": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	ok, err := findOne(res, "lock lend", &d)
	if !ok {
		return nil, err
	}
	return d.entity(), nil
}

// Update persiste solo los campos que cambian tras crear el préstamo.
func (r *LendRepo) Update(ctx context.Context, l *entity.Lend) error {
	set := bson.M{
		"destItemId":  l.DestItemID,
		"status":      l.Status,
		"returnDate":  l.ReturnDate,
		"processedAt": l.ProcessedAt,
		"processedBy": l.ProcessedBy,
	}
	res, err := r.coll.UpdateOne(r.bind(ctx), bson.M{"_id": l.ID}, bson.M{"$set": set})
	if err != nil {
		return mapErr("update lend", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: préstamo %s", domain.ErrNotFound, l.ID)
	}
	return nil
}

func (r *LendRepo) List(ctx context.Context, f repository.LendFilter) ([]*entity.Lend, error) {
	filter := bson.M{}
	if f.BusinessID != "" {
		filter["businessId"] = f.BusinessID
	}
	if f.StoreID != "" && f.StoreID != entity.StoreIDAll {
		filter["$or"] = bson.A{bson.M{"fromStoreId": f.StoreID}, bson.M{"toStoreId": f.StoreID}}
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	opts := page(options.Find().SetSort(bson.D{{Key: "lentDate", Value: -1}}), f.Limit, f.Offset)

	ctx = r.bind(ctx)
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapErr("list lends", err)
	}
	return decodeAll(ctx, cur, "list lends", lendDoc.entity)
}
