package history

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/asvronsky/cinemabot/internal/domain"
)

const collectionName = "search_history"

type entryDoc struct {
	UserID     int64  `bson:"userId"`
	Title      string `bson:"title"`
	SearchedAt int64  `bson:"searchedAt"`
}

// MongoStore is the durable search-history log. Entries are append-only;
// nothing ever updates or deletes them.
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(client *mongo.Client, dbName string) *MongoStore {
	return &MongoStore{collection: client.Database(dbName).Collection(collectionName)}
}

// Connect dials MongoDB with the given URI plus any extra client options.
func Connect(ctx context.Context, uri string, extra ...*options.ClientOptions) (*mongo.Client, error) {
	opts := append([]*options.ClientOptions{options.Client().ApplyURI(uri)}, extra...)
	client, err := mongo.Connect(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	if s == nil || s.collection == nil {
		return nil
	}
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "searchedAt", Value: -1}}},
	}
	_, err := s.collection.Indexes().CreateMany(ctx, models)
	return err
}

func (s *MongoStore) Record(ctx context.Context, entry domain.HistoryEntry) error {
	_, err := s.collection.InsertOne(ctx, entryDoc{
		UserID:     entry.UserID,
		Title:      entry.Title,
		SearchedAt: entry.SearchedAt.UnixMilli(),
	})
	return err
}

func (s *MongoStore) Recent(ctx context.Context, userID int64, limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = 15
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "searchedAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []entryDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	entries := make([]domain.HistoryEntry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, entryFromDoc(doc))
	}
	return entries, nil
}

// TopTitles aggregates the user's history into per-title counts, most
// searched first, ties broken by title.
func (s *MongoStore) TopTitles(ctx context.Context, userID int64, limit int) ([]domain.TitleCount, error) {
	if limit <= 0 {
		limit = 15
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID}}},
		{{Key: "$group", Value: bson.M{"_id": "$title", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: int64(limit)}},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Title string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make([]domain.TitleCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, domain.TitleCount{Title: row.Title, Count: row.Count})
	}
	return counts, nil
}

func entryFromDoc(doc entryDoc) domain.HistoryEntry {
	return domain.HistoryEntry{
		UserID:     doc.UserID,
		Title:      doc.Title,
		SearchedAt: time.UnixMilli(doc.SearchedAt).UTC(),
	}
}
