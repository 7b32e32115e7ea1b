package implementation

import (
	"context"
	"errors"
	"fmt"
	"time"

	sdamodels "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Models"
	interfaces "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Repository/Interfaces"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	manifestCollection = "manifests"
	labelCollection    = "labels"
)

// ConnectMongo opens and pings a MongoDB client within timeout
func ConnectMongo(uri string, timeout time.Duration) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo uri is empty")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("unable to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("unable to ping MongoDB: %w", err)
	}

	return client, nil
}

// MongoStore keeps manifests and labels in one MongoDB database
type MongoStore struct {
	client    *mongo.Client
	manifests *MongoManifestRepository
	labels    *MongoLabelRepository
}

func NewMongoStore(client *mongo.Client, dbName string) *MongoStore {
	db := client.Database(dbName)
	return &MongoStore{
		client:    client,
		manifests: NewMongoManifestRepository(db.Collection(manifestCollection)),
		labels:    NewMongoLabelRepository(db.Collection(labelCollection)),
	}
}

func (s *MongoStore) Manifests() interfaces.ManifestRepository { return s.manifests }
func (s *MongoStore) Labels() interfaces.LabelRepository       { return s.labels }

func (s *MongoStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return s.client.Ping(ctx, readpref.Primary())
}

// EnsureIndexes creates the unique (kind, id) label index
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.labels.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "kind", Value: 1}, {Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create label index: %w", err)
	}
	return nil
}

type MongoManifestRepository struct {
	coll *mongo.Collection
}

func NewMongoManifestRepository(coll *mongo.Collection) *MongoManifestRepository {
	return &MongoManifestRepository{coll: coll}
}

func (r *MongoManifestRepository) CreateManifest(ctx context.Context, manifest sdamodels.Manifest) (*sdamodels.Manifest, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	m := prepareManifest(manifest)
	if _, err := r.coll.InsertOne(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to insert manifest: %w", err)
	}
	return &m, nil
}

func (r *MongoManifestRepository) GetManifest(ctx context.Context, id string) (*sdamodels.Manifest, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var m sdamodels.Manifest
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MongoManifestRepository) ListManifests(ctx context.Context) ([]sdamodels.Manifest, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list manifests: %w", err)
	}
	defer cur.Close(ctx)

	manifests := make([]sdamodels.Manifest, 0)
	if err := cur.All(ctx, &manifests); err != nil {
		return nil, fmt.Errorf("failed to decode manifests: %w", err)
	}
	return manifests, nil
}

func (r *MongoManifestRepository) DeleteManifest(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

type MongoLabelRepository struct {
	coll *mongo.Collection
}

func NewMongoLabelRepository(coll *mongo.Collection) *MongoLabelRepository {
	return &MongoLabelRepository{coll: coll}
}

func (r *MongoLabelRepository) SetLabel(ctx context.Context, label sdamodels.Label) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx,
		bson.M{"kind": label.Kind, "id": label.ID},
		bson.M{"$set": bson.M{"name": label.Name}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *MongoLabelRepository) GetLabel(ctx context.Context, kind sdamodels.LabelKind, id string) (*sdamodels.Label, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var l sdamodels.Label
	err := r.coll.FindOne(ctx, bson.M{"kind": kind, "id": id}).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *MongoLabelRepository) ListLabels(ctx context.Context, kind sdamodels.LabelKind) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{"kind": kind})
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	defer cur.Close(ctx)

	out := make(map[string]string)
	for cur.Next(ctx) {
		var l sdamodels.Label
		if err := cur.Decode(&l); err != nil {
			return nil, fmt.Errorf("failed to decode label: %w", err)
		}
		out[l.ID] = l.Name
	}
	return out, cur.Err()
}

func (r *MongoLabelRepository) DeleteLabel(ctx context.Context, kind sdamodels.LabelKind, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"kind": kind, "id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}
