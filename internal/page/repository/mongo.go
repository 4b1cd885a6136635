package repository

import (
	"context"
	"errors"

	"github.com/catatan/catatan/internal/page"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo implements a MongoDB-backed page store. Pages are stored with
// their UUID string as _id; every filter includes owner_id.
type MongoRepo struct {
	col  *mongo.Collection
	opts options
}

func NewMongoRepo(ctx context.Context, col *mongo.Collection, opts ...Option) (*MongoRepo, error) {
	// listings filter by owner + trashed flag and sort by the relevant timestamp
	idx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "is_trashed", Value: 1}, {Key: "updated_at", Value: -1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "is_trashed", Value: 1}, {Key: "trashed_at", Value: -1}}},
	}
	if _, err := col.Indexes().CreateMany(ctx, idx); err != nil {
		return nil, err
	}
	return &MongoRepo{col: col, opts: buildOptions(opts)}, nil
}

func ownedFilter(owner, id string) bson.M {
	return bson.M{"_id": id, "owner_id": owner}
}

func (m *MongoRepo) ListActive(ctx context.Context, owner string) ([]page.Summary, error) {
	findOpts := mongooptions.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetProjection(bson.M{"_id": 1, "display_name": 1})
	cur, err := m.col.Find(ctx, bson.M{"owner_id": owner, "is_trashed": false}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []page.Summary{}
	for cur.Next(ctx) {
		var p page.Page
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		out = append(out, p.Summarize())
	}
	return out, cur.Err()
}

func (m *MongoRepo) ListTrashed(ctx context.Context, owner string) ([]page.TrashedSummary, error) {
	findOpts := mongooptions.Find().
		SetSort(bson.D{{Key: "trashed_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetProjection(bson.M{"_id": 1, "display_name": 1, "trashed_at": 1})
	cur, err := m.col.Find(ctx, bson.M{"owner_id": owner, "is_trashed": true}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []page.TrashedSummary{}
	for cur.Next(ctx) {
		var p page.Page
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		if p.TrashedAt == nil {
			continue
		}
		out = append(out, page.TrashedSummary{ID: p.ID, DisplayName: p.DisplayName, TrashedAt: *p.TrashedAt})
	}
	return out, cur.Err()
}

func (m *MongoRepo) Get(ctx context.Context, owner, id string) (*page.Page, error) {
	var p page.Page
	err := m.col.FindOne(ctx, ownedFilter(owner, id)).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, page.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (m *MongoRepo) Create(ctx context.Context, p *page.Page) error {
	p.ID = m.opts.newID()
	p.CreatedAt = m.opts.now()
	p.UpdatedAt = p.CreatedAt
	p.IsTrashed = false
	p.TrashedAt = nil
	_, err := m.col.InsertOne(ctx, p)
	return err
}

func (m *MongoRepo) Update(ctx context.Context, owner, id string, e page.Edit) error {
	set := bson.M{
		"title":        e.Title,
		"content":      e.Content,
		"display_name": e.DisplayName,
		"updated_at":   m.opts.now(),
	}
	res, err := m.col.UpdateOne(ctx, ownedFilter(owner, id), bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return page.ErrNotFound
	}
	return nil
}

func (m *MongoRepo) Trash(ctx context.Context, owner, id string) error {
	filter := ownedFilter(owner, id)
	filter["is_trashed"] = false
	res, err := m.col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"is_trashed": true, "trashed_at": m.opts.now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	// tell an already-trashed owned page apart from a missing one
	n, err := m.col.CountDocuments(ctx, ownedFilter(owner, id))
	if err != nil {
		return err
	}
	if n > 0 {
		return page.ErrConflict
	}
	return page.ErrNotFound
}

func (m *MongoRepo) Restore(ctx context.Context, owner, id string) error {
	res, err := m.col.UpdateOne(ctx, ownedFilter(owner, id), bson.M{"$set": bson.M{"is_trashed": false, "trashed_at": nil}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return page.ErrNotFound
	}
	return nil
}

func (m *MongoRepo) Purge(ctx context.Context, owner, id string) error {
	filter := ownedFilter(owner, id)
	filter["is_trashed"] = true
	res, err := m.col.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return page.ErrNotFound
	}
	return nil
}

func (m *MongoRepo) Ping(ctx context.Context) error {
	return m.col.Database().Client().Ping(ctx, nil)
}
