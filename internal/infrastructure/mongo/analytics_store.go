package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/example/ec-storefront/internal/model"
)

const (
	colorCollection       = "coloranalytics"
	sizeCollection        = "sizeanalytics"
	combinationCollection = "productanalytics"
)

// AnalyticsStore implements store.AnalyticsStore on three append-only
// collections.
type AnalyticsStore struct {
	colors       *mongo.Collection
	sizes        *mongo.Collection
	combinations *mongo.Collection
}

func NewAnalyticsStore(db *mongo.Database) *AnalyticsStore {
	return &AnalyticsStore{
		colors:       db.Collection(colorCollection),
		sizes:        db.Collection(sizeCollection),
		combinations: db.Collection(combinationCollection),
	}
}

// EnsureIndexes creates the lookup indexes the report pipelines rely on.
func (s *AnalyticsStore) EnsureIndexes(ctx context.Context) error {
	specs := map[*mongo.Collection]bson.D{
		s.colors:       {{Key: "productId", Value: 1}, {Key: "colorName", Value: 1}, {Key: "action", Value: 1}},
		s.sizes:        {{Key: "productId", Value: 1}, {Key: "sizeName", Value: 1}, {Key: "action", Value: 1}},
		s.combinations: {{Key: "productId", Value: 1}, {Key: "colorName", Value: 1}, {Key: "sizeName", Value: 1}, {Key: "action", Value: 1}},
	}
	for coll, compound := range specs {
		_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
			{Keys: compound},
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "sessionId", Value: 1}}},
		})
		if err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll.Name(), err)
		}
	}
	return nil
}

func (s *AnalyticsStore) RecordColor(ctx context.Context, e *model.ColorEvent) error {
	_, err := s.colors.InsertOne(ctx, e)
	return err
}

func (s *AnalyticsStore) RecordSize(ctx context.Context, e *model.SizeEvent) error {
	_, err := s.sizes.InsertOne(ctx, e)
	return err
}

func (s *AnalyticsStore) RecordCombination(ctx context.Context, e *model.CombinationEvent) error {
	_, err := s.combinations.InsertOne(ctx, e)
	return err
}

func (s *AnalyticsStore) ColorActions(ctx context.Context, w model.AnalyticsWindow) ([]model.ColorActionCount, error) {
	pipeline := mongo.Pipeline{
		matchStage(w),
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"productId":   "$productId",
				"productName": "$productName",
				"colorName":   "$colorName",
				"colorHex":    "$colorHex",
				"action":      "$action",
			},
			"count":    bson.M{"$sum": 1},
			"users":    bson.M{"$addToSet": "$userId"},
			"sessions": bson.M{"$addToSet": "$sessionId"},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":            0,
			"productId":      "$_id.productId",
			"productName":    "$_id.productName",
			"colorName":      "$_id.colorName",
			"colorHex":       "$_id.colorHex",
			"action":         "$_id.action",
			"count":          1,
			"uniqueUsers":    bson.M{"$size": "$users"},
			"uniqueSessions": bson.M{"$size": "$sessions"},
		}}},
		sortStage("productId", "colorName", "action"),
	}
	var out []model.ColorActionCount
	return out, s.aggregate(ctx, s.colors, pipeline, &out)
}

func (s *AnalyticsStore) TopColors(ctx context.Context, w model.AnalyticsWindow, limit int) ([]model.ColorTotal, error) {
	pipeline := mongo.Pipeline{
		matchStage(w),
		{{Key: "$group", Value: bson.M{
			"_id":             bson.M{"colorName": "$colorName", "colorHex": "$colorHex"},
			"totalSelections": bson.M{"$sum": 1},
			"products":        bson.M{"$addToSet": "$productId"},
			"users":           bson.M{"$addToSet": "$userId"},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":             0,
			"colorName":       "$_id.colorName",
			"colorHex":        "$_id.colorHex",
			"totalSelections": 1,
			"uniqueProducts":  bson.M{"$size": "$products"},
			"uniqueUsers":     bson.M{"$size": "$users"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "totalSelections", Value: -1}, {Key: "colorName", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
	}
	var out []model.ColorTotal
	return out, s.aggregate(ctx, s.colors, pipeline, &out)
}

func (s *AnalyticsStore) SizeActions(ctx context.Context, w model.AnalyticsWindow) ([]model.SizeActionCount, error) {
	pipeline := mongo.Pipeline{
		matchStage(w),
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"sizeName": "$sizeName", "action": "$action"},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":      0,
			"sizeName": "$_id.sizeName",
			"action":   "$_id.action",
			"count":    1,
		}}},
		sortStage("sizeName", "action"),
	}
	var out []model.SizeActionCount
	return out, s.aggregate(ctx, s.sizes, pipeline, &out)
}

func (s *AnalyticsStore) CombinationActions(ctx context.Context, w model.AnalyticsWindow) ([]model.CombinationActionCount, error) {
	pipeline := mongo.Pipeline{
		matchStage(w),
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"productId": "$productId",
				"colorName": "$colorName",
				"colorHex":  "$colorHex",
				"sizeName":  "$sizeName",
				"action":    "$action",
			},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":       0,
			"productId": "$_id.productId",
			"colorName": "$_id.colorName",
			"colorHex":  "$_id.colorHex",
			"sizeName":  "$_id.sizeName",
			"action":    "$_id.action",
			"count":     1,
		}}},
		sortStage("productId", "colorName", "sizeName", "action"),
	}
	var out []model.CombinationActionCount
	return out, s.aggregate(ctx, s.combinations, pipeline, &out)
}

func (s *AnalyticsStore) CountColor(ctx context.Context, w model.AnalyticsWindow) (int64, error) {
	return s.colors.CountDocuments(ctx, filter(w))
}

func (s *AnalyticsStore) CountSize(ctx context.Context, w model.AnalyticsWindow) (int64, error) {
	return s.sizes.CountDocuments(ctx, filter(w))
}

func (s *AnalyticsStore) CountCombination(ctx context.Context, w model.AnalyticsWindow) (int64, error) {
	return s.combinations.CountDocuments(ctx, filter(w))
}

func (s *AnalyticsStore) aggregate(ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline, out any) error {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("aggregate %s: %w", coll.Name(), err)
	}
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return nil
}

func filter(w model.AnalyticsWindow) bson.M {
	ts := bson.M{"$gte": w.From}
	if !w.To.IsZero() {
		ts["$lte"] = w.To
	}
	f := bson.M{"timestamp": ts}
	if w.ProductID != "" {
		f["productId"] = w.ProductID
	}
	return f
}

func matchStage(w model.AnalyticsWindow) bson.D {
	return bson.D{{Key: "$match", Value: filter(w)}}
}

// sortStage orders grouped rows by their keys so results are stable
// between runs.
func sortStage(keys ...string) bson.D {
	order := make(bson.D, 0, len(keys))
	for _, k := range keys {
		order = append(order, bson.E{Key: k, Value: 1})
	}
	return bson.D{{Key: "$sort", Value: order}}
}
