// Package storage publishes weekly records to a MongoDB archive. The
// archive is write-only: the session store never reads it back.
package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"drai-go/internal/model"
)

type Archive struct {
	Client     *mongo.Client
	Collection *mongo.Collection
	log        *zap.Logger
}

// New connects to uri. An empty uri gives a no-op archive.
func New(ctx context.Context, uri, database, collection string, log *zap.Logger) (*Archive, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if uri == "" {
		log.Info("archive disabled, running in no-op mode")
		return &Archive{log: log}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, eris.Wrap(err, "connect archive")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, eris.Wrap(err, "ping archive")
	}
	return &Archive{
		Client:     client,
		Collection: client.Database(database).Collection(collection),
		log:        log,
	}, nil
}

// Enabled reports whether records are actually written.
func (a *Archive) Enabled() bool { return a.Client != nil }

// Publish upserts every record by week and returns how many were written.
func (a *Archive) Publish(ctx context.Context, records []model.MetricsRecord) (int, error) {
	if a.Client == nil {
		a.log.Debug("skipping publish: no archive client", zap.Int("records", len(records)))
		return 0, nil
	}

	written := 0
	for _, r := range records {
		doc, err := Document(r)
		if err != nil {
			return written, err
		}
		_, err = a.Collection.ReplaceOne(ctx,
			bson.M{"semana": r.Week},
			doc,
			options.Replace().SetUpsert(true),
		)
		if err != nil {
			return written, eris.Wrapf(err, "publish week %d", r.Week)
		}
		written++
	}
	a.log.Info("records archived", zap.Int("records", written))
	return written, nil
}

// Document converts a record to BSON with the same field names and order
// as its JSON form.
func Document(r model.MetricsRecord) (bson.D, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, eris.Wrapf(err, "encode week %d", r.Week)
	}
	var doc bson.D
	if err := bson.UnmarshalExtJSON(b, false, &doc); err != nil {
		return nil, eris.Wrapf(err, "convert week %d", r.Week)
	}
	return doc, nil
}

func (a *Archive) Close(ctx context.Context) {
	if a.Client != nil {
		_ = a.Client.Disconnect(ctx)
	}
}
