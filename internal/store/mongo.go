package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"unit-supply-api-server/internal/models"
)

// Mongo implements Store on a MongoDB database. Status transitions are
// ReplaceOne calls filtered on the previously read status, so a lost race
// shows up as zero matched documents and is reported as ErrStaleState.
type Mongo struct {
	db *mongo.Database
}

// NewMongo wraps an open database handle.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{db: db}
}

// EnsureIndexes creates the unique indexes the store relies on. The partial
// indexes on delivery_confirmations are what make AppendConfirmation an
// idempotent append: a second entry of the same type for the same subject
// fails with a duplicate key error.
func (s *Mongo) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	specs := map[string]mongo.IndexModel{
		"users":             {Keys: bson.D{{Key: "userID", Value: 1}}, Options: unique},
		"items":             {Keys: bson.D{{Key: "itemID", Value: 1}}, Options: unique},
		"units":             {Keys: bson.D{{Key: "unitID", Value: 1}}, Options: unique},
		"requests":          {Keys: bson.D{{Key: "requestID", Value: 1}}, Options: unique},
		"furniture_requests": {Keys: bson.D{{Key: "requestID", Value: 1}}, Options: unique},
		"removal_requests":  {Keys: bson.D{{Key: "requestID", Value: 1}}, Options: unique},
		"delivery_batches":  {Keys: bson.D{{Key: "batchID", Value: 1}}, Options: unique},
	}
	for coll, model := range specs {
		if _, err := s.db.Collection(coll).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("creating index on %s: %w", coll, err)
		}
	}

	confirmations := s.db.Collection("delivery_confirmations")
	batchIdx := mongo.IndexModel{
		Keys: bson.D{{Key: "batchID", Value: 1}, {Key: "type", Value: 1}},
		Options: options.Index().SetUnique(true).
			SetPartialFilterExpression(bson.M{"batchID": bson.M{"$exists": true, "$gt": ""}}),
	}
	furnitureIdx := mongo.IndexModel{
		Keys: bson.D{{Key: "furnitureRequestID", Value: 1}, {Key: "type", Value: 1}},
		Options: options.Index().SetUnique(true).
			SetPartialFilterExpression(bson.M{"furnitureRequestID": bson.M{"$exists": true, "$gt": ""}}),
	}
	if _, err := confirmations.Indexes().CreateMany(ctx, []mongo.IndexModel{batchIdx, furnitureIdx}); err != nil {
		return fmt.Errorf("creating indexes on delivery_confirmations: %w", err)
	}
	return nil
}

func (s *Mongo) insertOne(ctx context.Context, coll string, doc interface{}) error {
	if _, err := s.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateID
		}
		return err
	}
	return nil
}

func (s *Mongo) findOne(ctx context.Context, coll string, filter bson.M, out interface{}) error {
	err := s.db.Collection(coll).FindOne(ctx, filter).Decode(out)
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	return err
}

// replaceCAS writes the full document conditioned on the stored status. A
// zero match count means either the document is gone or another writer got
// there first; a second lookup tells the two apart.
func (s *Mongo) replaceCAS(ctx context.Context, coll string, idField, id, fromStatus string, doc interface{}) error {
	res, err := s.db.Collection(coll).ReplaceOne(ctx, bson.M{idField: id, "status": fromStatus}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		count, err := s.db.Collection(coll).CountDocuments(ctx, bson.M{idField: id})
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrStaleState
	}
	return nil
}

func (s *Mongo) InsertUser(ctx context.Context, u *models.User) error {
	return s.insertOne(ctx, "users", u)
}

func (s *Mongo) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var u models.User
	if err := s.findOne(ctx, "users", bson.M{"userID": userID}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Mongo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.findOne(ctx, "users", bson.M{"email": email}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Mongo) InsertItem(ctx context.Context, it *models.Item) error {
	return s.insertOne(ctx, "items", it)
}

func (s *Mongo) GetItem(ctx context.Context, itemID string) (*models.Item, error) {
	var it models.Item
	if err := s.findOne(ctx, "items", bson.M{"itemID": itemID}, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *Mongo) ListItems(ctx context.Context) ([]models.Item, error) {
	cursor, err := s.db.Collection("items").Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	items := []models.Item{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Mongo) InsertUnit(ctx context.Context, u *models.Unit) error {
	return s.insertOne(ctx, "units", u)
}

func (s *Mongo) GetUnit(ctx context.Context, unitID string) (*models.Unit, error) {
	var u models.Unit
	if err := s.findOne(ctx, "units", bson.M{"unitID": unitID}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Mongo) ListUnits(ctx context.Context) ([]models.Unit, error) {
	cursor, err := s.db.Collection("units").Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	units := []models.Unit{}
	if err := cursor.All(ctx, &units); err != nil {
		return nil, err
	}
	return units, nil
}

func (s *Mongo) InsertRequest(ctx context.Context, r *models.Request) error {
	return s.insertOne(ctx, "requests", r)
}

func (s *Mongo) GetRequest(ctx context.Context, requestID string) (*models.Request, error) {
	var r models.Request
	if err := s.findOne(ctx, "requests", bson.M{"requestID": requestID}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Mongo) ListRequests(ctx context.Context, f Filter) ([]models.Request, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.UnitID != "" {
		filter["requestingUnitID"] = f.UnitID
	}
	if f.RequestedBy != "" {
		filter["requestedByUserID"] = f.RequestedBy
	}
	cursor, err := s.db.Collection("requests").Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	requests := []models.Request{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (s *Mongo) UpdateRequest(ctx context.Context, r *models.Request, fromStatus string) error {
	return s.replaceCAS(ctx, "requests", "requestID", r.RequestID, fromStatus, r)
}

func (s *Mongo) InsertFurnitureRequest(ctx context.Context, r *models.FurnitureRequest) error {
	return s.insertOne(ctx, "furniture_requests", r)
}

func (s *Mongo) GetFurnitureRequest(ctx context.Context, requestID string) (*models.FurnitureRequest, error) {
	var r models.FurnitureRequest
	if err := s.findOne(ctx, "furniture_requests", bson.M{"requestID": requestID}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Mongo) ListFurnitureRequests(ctx context.Context, f Filter) ([]models.FurnitureRequest, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.UnitID != "" {
		filter["requestingUnitID"] = f.UnitID
	}
	if f.RequestedBy != "" {
		filter["requestedByUserID"] = f.RequestedBy
	}
	cursor, err := s.db.Collection("furniture_requests").Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	requests := []models.FurnitureRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (s *Mongo) UpdateFurnitureRequest(ctx context.Context, r *models.FurnitureRequest, fromStatus string) error {
	return s.replaceCAS(ctx, "furniture_requests", "requestID", r.RequestID, fromStatus, r)
}

func (s *Mongo) InsertRemoval(ctx context.Context, r *models.RemovalRequest) error {
	return s.insertOne(ctx, "removal_requests", r)
}

func (s *Mongo) GetRemoval(ctx context.Context, requestID string) (*models.RemovalRequest, error) {
	var r models.RemovalRequest
	if err := s.findOne(ctx, "removal_requests", bson.M{"requestID": requestID}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Mongo) ListRemovals(ctx context.Context, f Filter) ([]models.RemovalRequest, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.UnitID != "" {
		filter["unitID"] = f.UnitID
	}
	if f.RequestedBy != "" {
		filter["requestedByUserID"] = f.RequestedBy
	}
	cursor, err := s.db.Collection("removal_requests").Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	removals := []models.RemovalRequest{}
	if err := cursor.All(ctx, &removals); err != nil {
		return nil, err
	}
	return removals, nil
}

func (s *Mongo) UpdateRemoval(ctx context.Context, r *models.RemovalRequest, fromStatus string) error {
	return s.replaceCAS(ctx, "removal_requests", "requestID", r.RequestID, fromStatus, r)
}

// CreateBatch runs the membership check and the insert inside one session
// transaction, so two concurrent creations over overlapping member ids
// cannot both claim them.
func (s *Mongo) CreateBatch(ctx context.Context, b *models.DeliveryBatch) error {
	session, err := s.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	terminal := []string{models.BatchStatusCompleted, models.BatchStatusCancelled}
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		members := b.Members()
		openFilter := bson.M{
			"status": bson.M{"$nin": terminal},
			"$or": []bson.M{
				{"requestIDs": bson.M{"$in": members}},
				{"furnitureRequestIDs": bson.M{"$in": members}},
			},
		}
		count, err := s.db.Collection("delivery_batches").CountDocuments(sc, openFilter)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrAlreadyBatched
		}
		if _, err := s.db.Collection("delivery_batches").InsertOne(sc, b); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, ErrDuplicateID
			}
			return nil, err
		}
		return nil, nil
	})
	return err
}

func (s *Mongo) GetBatch(ctx context.Context, batchID string) (*models.DeliveryBatch, error) {
	var b models.DeliveryBatch
	if err := s.findOne(ctx, "delivery_batches", bson.M{"batchID": batchID}, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Mongo) ListBatches(ctx context.Context, f Filter) ([]models.DeliveryBatch, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.UnitID != "" {
		filter["targetUnitID"] = f.UnitID
	}
	if f.DriverUserID != "" {
		filter["driverUserID"] = f.DriverUserID
	}
	cursor, err := s.db.Collection("delivery_batches").Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	batches := []models.DeliveryBatch{}
	if err := cursor.All(ctx, &batches); err != nil {
		return nil, err
	}
	return batches, nil
}

func (s *Mongo) UpdateBatch(ctx context.Context, b *models.DeliveryBatch, fromStatus string) error {
	return s.replaceCAS(ctx, "delivery_batches", "batchID", b.BatchID, fromStatus, b)
}

func (s *Mongo) AppendConfirmation(ctx context.Context, c *models.DeliveryConfirmation) error {
	if _, err := s.db.Collection("delivery_confirmations").InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateConfirmation
		}
		return err
	}
	return nil
}

func (s *Mongo) listConfirmations(ctx context.Context, filter bson.M) ([]models.DeliveryConfirmation, error) {
	// _id order is insertion order for a single writer process.
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.db.Collection("delivery_confirmations").Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	entries := []models.DeliveryConfirmation{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Mongo) ListConfirmationsByBatch(ctx context.Context, batchID string) ([]models.DeliveryConfirmation, error) {
	return s.listConfirmations(ctx, bson.M{"batchID": batchID})
}

func (s *Mongo) ListConfirmationsByFurnitureRequest(ctx context.Context, requestID string) ([]models.DeliveryConfirmation, error) {
	return s.listConfirmations(ctx, bson.M{"furnitureRequestID": requestID})
}
