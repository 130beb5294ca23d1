// Package stock is the external stock-adjustment capability the fulfillment
// core invokes as a side effect of processing a request. Adjustments are
// idempotent per operation id: replaying the same logical operation must not
// decrement twice.
package stock

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Adjuster applies a stock delta for an item at a unit.
type Adjuster interface {
	AdjustStock(ctx context.Context, opID, itemID, unitID string, delta int) error
}

// MongoAdjuster records applied operation ids in stock_adjustments (unique
// index on opID) and applies the delta to unit_stock with $inc. The insert
// acts as the replay guard: a duplicate opID means the delta was already
// applied and the call is a no-op.
type MongoAdjuster struct {
	db *mongo.Database
}

func NewMongoAdjuster(db *mongo.Database) *MongoAdjuster {
	return &MongoAdjuster{db: db}
}

// EnsureIndexes creates the unique opID index the replay guard depends on.
func (a *MongoAdjuster) EnsureIndexes(ctx context.Context) error {
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: "opID", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, err := a.db.Collection("stock_adjustments").Indexes().CreateOne(ctx, model)
	return err
}

func (a *MongoAdjuster) AdjustStock(ctx context.Context, opID, itemID, unitID string, delta int) error {
	op := bson.M{"opID": opID, "itemID": itemID, "unitID": unitID, "delta": delta}
	if _, err := a.db.Collection("stock_adjustments").InsertOne(ctx, op); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return err
	}

	filter := bson.M{"itemID": itemID, "unitID": unitID}
	update := bson.M{"$inc": bson.M{"quantity": delta}}
	opts := options.Update().SetUpsert(true)
	_, err := a.db.Collection("unit_stock").UpdateOne(ctx, filter, update, opts)
	return err
}

// MemoryAdjuster is the in-process Adjuster used by tests. It records every
// applied operation so tests can assert replay safety.
type MemoryAdjuster struct {
	mu      sync.Mutex
	applied map[string]bool
	Levels  map[string]int // keyed itemID+"@"+unitID
	Calls   int
}

func NewMemoryAdjuster() *MemoryAdjuster {
	return &MemoryAdjuster{
		applied: make(map[string]bool),
		Levels:  make(map[string]int),
	}
}

func (a *MemoryAdjuster) AdjustStock(ctx context.Context, opID, itemID, unitID string, delta int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Calls++
	if a.applied[opID] {
		return nil
	}
	a.applied[opID] = true
	a.Levels[itemID+"@"+unitID] += delta
	return nil
}

// Applied reports how many distinct operations took effect.
func (a *MemoryAdjuster) Applied() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.applied)
}
