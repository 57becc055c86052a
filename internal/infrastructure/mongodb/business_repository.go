package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/dukastock-api/internal/domain"
	"github.com/jhoicas/dukastock-api/internal/domain/entity"
	"github.com/jhoicas/dukastock-api/internal/domain/repository"
)

var (
	_ repository.BusinessRepository = (*BusinessRepo)(nil)
	_ repository.StoreRepository    = (*StoreRepo)(nil)
	_ repository.UserRepository     = (*UserRepo)(nil)
)

// BusinessRepo colección businesses.
type BusinessRepo struct{ base }

func (r *BusinessRepo) Create(ctx context.Context, b *entity.Business) error {
	b.ID = newID(b.ID)
	_, err := r.coll.InsertOne(r.bind(ctx), toBusinessDoc(b))
	return mapErr("insert business", err)
}

func (r *BusinessRepo) GetByID(ctx context.Context, id string) (*entity.Business, error) {
	var d businessDoc
	ok, err := findOne(r.coll.FindOne(r.bind(ctx), bson.M{"_id": id}), "get business", &d)
	if !ok {
		return nil, err
	}
	return d.entity(), nil
}

func (r *BusinessRepo) Update(ctx context.Context, b *entity.Business) error {
	doc := toBusinessDoc(b)
	res, err := r.coll.ReplaceOne(r.bind(ctx), bson.M{"_id": b.ID}, doc)
	if err != nil {
		return mapErr("update business", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: negocio %s", domain.ErrNotFound, b.ID)
	}
	return nil
}

// StoreRepo colección stores.
type StoreRepo struct{ base }

func (r *StoreRepo) Create(ctx context.Context, s *entity.Store) error {
	s.ID = newID(s.ID)
	if s.ID == entity.StoreIDAll {
		return fmt.Errorf("%w: id de duka reservado", domain.ErrInvalidInput)
	}
	_, err := r.coll.InsertOne(r.bind(ctx), toStoreDoc(s))
	return mapErr("insert store", err)
}

func (r *StoreRepo) GetByID(ctx context.Context, id string) (*entity.Store, error) {
	var d storeDoc
	ok, err := findOne(r.coll.FindOne(r.bind(ctx), bson.M{"_id": id}), "get store", &d)
	if !ok {
		return nil, err
	}
	return d.entity(), nil
}

func (r *StoreRepo) ListByBusiness(ctx context.Context, businessID string) ([]*entity.Store, error) {
	ctx = r.bind(ctx)
	cur, err := r.coll.Find(ctx, bson.M{"businessId": businessID}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, mapErr("list stores", err)
	}
	return decodeAll(ctx, cur, "list stores", storeDoc.entity)
}

// UserRepo colección users. El email es único sin distinguir mayúsculas (índice con collation).
type UserRepo struct{ base }

func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	u.ID = newID(u.ID)
	_, err := r.coll.InsertOne(r.bind(ctx), toUserDoc(u))
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return domain.ErrEmailAlreadyExists
	}
	return mapErr("insert user", err)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var d userDoc
	ok, err := findOne(r.coll.FindOne(r.bind(ctx), bson.M{"_id": id}), "get user", &d)
	if !ok {
		return nil, err
	}
	return d.entity(), nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var d userDoc
	res := r.coll.FindOne(r.bind(ctx), bson.M{"email": email}, options.FindOne().SetCollation(emailCollation))
	ok, err := findOne(res, "get user by email", &d)
	if !ok {
		return nil, err
	}
	return d.entity(), nil
}

func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	res, err := r.coll.ReplaceOne(r.bind(ctx), bson.M{"_id": u.ID}, toUserDoc(u))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailAlreadyExists
		}
		return mapErr("update user", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: usuario %s", domain.ErrNotFound, u.ID)
	}
	return nil
}

func (r *UserRepo) ListByBusiness(ctx context.Context, businessID string, limit, offset int) ([]*entity.User, error) {
	ctx = r.bind(ctx)
	opts := page(options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}), limit, offset)
	cur, err := r.coll.Find(ctx, bson.M{"businessId": businessID}, opts)
	if err != nil {
		return nil, mapErr("list users", err)
	}
	return decodeAll(ctx, cur, "list users", userDoc.entity)
}
