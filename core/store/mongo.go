package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/fbz-tec/docvault/core/db"
	"github.com/fbz-tec/docvault/core/documents"
	"github.com/fbz-tec/docvault/internal/logger"
)

// CollectionName is the MongoDB collection holding documents.
const CollectionName = "documents"

type mongoDocument struct {
	ID          bson.ObjectID `bson:"_id"`
	Title       string        `bson:"title"`
	Description string        `bson:"description"`
	FileURL     string        `bson:"fileUrl"`
	FileName    string        `bson:"fileName"`
	FileSize    int64         `bson:"fileSize"`
	FileType    string        `bson:"fileType"`
	Category    string        `bson:"category"`
	Tags        []string      `bson:"tags"`
	CreatedAt   time.Time     `bson:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt"`
}

func toMongo(doc documents.Document, id bson.ObjectID) mongoDocument {
	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}
	return mongoDocument{
		ID:          id,
		Title:       doc.Title,
		Description: doc.Description,
		FileURL:     doc.FileURL,
		FileName:    doc.FileName,
		FileSize:    doc.FileSize,
		FileType:    doc.FileType,
		Category:    doc.Category,
		Tags:        tags,
		CreatedAt:   doc.CreatedAt.UTC(),
		UpdatedAt:   doc.UpdatedAt.UTC(),
	}
}

func (m mongoDocument) document() documents.Document {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	return documents.Document{
		ID:          m.ID.Hex(),
		Title:       m.Title,
		Description: m.Description,
		FileURL:     m.FileURL,
		FileName:    m.FileName,
		FileSize:    m.FileSize,
		FileType:    m.FileType,
		Category:    m.Category,
		Tags:        tags,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

// MongoStore keeps documents in a MongoDB collection. IDs are ObjectID hex
// strings.
type MongoStore struct {
	cached[*mongo.Client]
	database string
}

func NewMongoStore(cache *db.Cache[*mongo.Client], database string) *MongoStore {
	return &MongoStore{cached: cached[*mongo.Client]{cache: cache}, database: database}
}

func (s *MongoStore) collection(ctx context.Context) (*mongo.Collection, error) {
	client, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(s.database).Collection(CollectionName), nil
}

func (s *MongoStore) Create(ctx context.Context, doc documents.Document) (documents.Document, error) {
	coll, err := s.collection(ctx)
	if err != nil {
		return documents.Document{}, err
	}

	id := bson.NewObjectID()
	if doc.ID != "" {
		if id, err = bson.ObjectIDFromHex(doc.ID); err != nil {
			return documents.Document{}, fmt.Errorf("invalid document id %q: %w", doc.ID, err)
		}
	}

	md := toMongo(doc, id)
	if _, err := coll.InsertOne(ctx, md); err != nil {
		return documents.Document{}, fmt.Errorf("insert document: %w", err)
	}
	return md.document(), nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (documents.Document, error) {
	coll, err := s.collection(ctx)
	if err != nil {
		return documents.Document{}, err
	}
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return documents.Document{}, documents.ErrNotFound
	}

	var md mongoDocument
	err = coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&md)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return documents.Document{}, documents.ErrNotFound
	}
	if err != nil {
		return documents.Document{}, fmt.Errorf("find document: %w", err)
	}
	return md.document(), nil
}

func (s *MongoStore) List(ctx context.Context, opts documents.ListOptions) ([]documents.Document, error) {
	coll, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}

	filter := mongoFilter(opts)
	findOpts := options.Find().SetSort(mongoSort(opts.Sort))
	if strings.EqualFold(strings.TrimSpace(opts.Sort), documents.SortName) {
		findOpts.SetCollation(&options.Collation{Locale: "en", Strength: 2})
	}
	logger.Debug("Executing find on %s.%s: %v", s.database, CollectionName, filter)

	cur, err := coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}
	defer cur.Close(ctx)

	var rows []mongoDocument
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("read documents: %w", err)
	}

	out := make([]documents.Document, len(rows))
	for i, md := range rows {
		out[i] = md.document()
	}
	return out, nil
}

func (s *MongoStore) Update(ctx context.Context, doc documents.Document) (documents.Document, error) {
	coll, err := s.collection(ctx)
	if err != nil {
		return documents.Document{}, err
	}
	oid, err := bson.ObjectIDFromHex(doc.ID)
	if err != nil {
		return documents.Document{}, documents.ErrNotFound
	}

	md := toMongo(doc, oid)
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": oid}, md)
	if err != nil {
		return documents.Document{}, fmt.Errorf("update document: %w", err)
	}
	if res.MatchedCount == 0 {
		return documents.Document{}, documents.ErrNotFound
	}
	return md.document(), nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	coll, err := s.collection(ctx)
	if err != nil {
		return err
	}
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return documents.ErrNotFound
	}

	res, err := coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if res.DeletedCount == 0 {
		return documents.ErrNotFound
	}
	return nil
}

// mongoFilter translates the search and category options into a query.
// Regex search on tags matches any array element.
func mongoFilter(opts documents.ListOptions) bson.M {
	filter := bson.M{}
	if c := opts.CategoryFilter(); c != "" {
		filter["category"] = c
	}
	if term := strings.TrimSpace(opts.Search); term != "" {
		re := bson.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
			bson.M{"fileName": re},
			bson.M{"tags": re},
		}
	}
	return filter
}

func mongoSort(order string) bson.D {
	switch strings.ToLower(strings.TrimSpace(order)) {
	case documents.SortOldest:
		return bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}
	case documents.SortName:
		return bson.D{{Key: "title", Value: 1}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}
	}
}
