// Package firestore adapts a Firestore collection to the live-collection
// contract: subscribe to full snapshots, add a record, read everything,
// clear everything. There is no query pushdown; filtering happens
// client-side on the synced set.
package firestore

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	fs "cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/CelsoAntunesNogueira/alertadefesacivil/internal/domain"
)

// batchLimit is Firestore's maximum writes per WriteBatch.
const batchLimit = 500

// Collection is the live occurrence collection.
type Collection struct {
	client *fs.Client
	name   string
	logger *slog.Logger
}

// occurrenceDoc is the Firestore document shape for one occurrence.
type occurrenceDoc struct {
	Type        string    `firestore:"type"`
	Severity    string    `firestore:"severity"`
	Address     string    `firestore:"address"`
	Description string    `firestore:"description"`
	Lat         float64   `firestore:"lat"`
	Lon         float64   `firestore:"lon"`
	Photo       string    `firestore:"photo,omitempty"`
	CreatedAt   time.Time `firestore:"createdAt"`
}

// New connects to Firestore. credentials is base64-encoded service
// account JSON; when empty, application default credentials apply.
func New(ctx context.Context, projectID, credentials, collection string, logger *slog.Logger) (*Collection, error) {
	var opts []option.ClientOption
	if credentials != "" {
		creds, err := base64.StdEncoding.DecodeString(credentials)
		if err != nil {
			return nil, fmt.Errorf("decode firestore credentials: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(creds))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}

	return &Collection{client: client, name: collection, logger: logger}, nil
}

// Close releases the underlying client.
func (c *Collection) Close() error {
	return c.client.Close()
}

// Add writes a new occurrence and returns its collection-assigned ID.
func (c *Collection) Add(ctx context.Context, rec domain.IncidentRecord) (string, error) {
	ref, _, err := c.client.Collection(c.name).Add(ctx, occurrenceDoc{
		Type:        rec.Type,
		Severity:    string(rec.Severity),
		Address:     rec.Address,
		Description: rec.Description,
		Lat:         rec.Geo.Lat,
		Lon:         rec.Geo.Lon,
		Photo:       rec.Photo,
		CreatedAt:   rec.CreatedAt,
	})
	if err != nil {
		return "", fmt.Errorf("add occurrence: %w", err)
	}
	return ref.ID, nil
}

// All reads the full collection once.
func (c *Collection) All(ctx context.Context) ([]domain.IncidentRecord, error) {
	docs := c.client.Collection(c.name).Documents(ctx)
	defer docs.Stop()
	return c.readAll(docs)
}

// docIterator is the slice of the document iterator the snapshot reader
// consumes, split out so reads can be exercised without a live client.
type docIterator interface {
	Next() (*fs.DocumentSnapshot, error)
}

// readAll drains an iterator into records, skipping documents that do
// not decode to a usable record. An iteration error aborts the whole
// read: the caller must never publish a partial set, because a snapshot
// replaces the full board.
func (c *Collection) readAll(docs docIterator) ([]domain.IncidentRecord, error) {
	var records []domain.IncidentRecord
	for {
		doc, err := docs.Next()
		if err == iterator.Done {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read occurrences: %w", err)
		}
		rec := decode(doc)
		if rec.Address == "" {
			c.logger.Warn("occurrence document without address skipped", "id", rec.ID)
			continue
		}
		records = append(records, rec)
	}
}

// Subscribe establishes a snapshot listener. Every upstream change
// delivers the full record set to onSnapshot, never a partial patch; a
// snapshot whose documents cannot all be read is not delivered at all.
// The returned handle cancels the subscription; the caller owns exactly
// one at a time.
func (c *Collection) Subscribe(onSnapshot func([]domain.IncidentRecord)) (cancel func(), err error) {
	ctx, stop := context.WithCancel(context.Background())
	snaps := c.client.Collection(c.name).Snapshots(ctx)

	go func() {
		defer snaps.Stop()
		for {
			snap, err := snaps.Next()
			if err != nil {
				if ctx.Err() == nil {
					c.logger.Error("snapshot listener stopped", "error", err)
				}
				return
			}

			records, err := c.readAll(snap.Documents)
			if err != nil {
				// A truncated set would erase records from every
				// view; keep the previous snapshot and wait for
				// the next notification.
				c.logger.Warn("snapshot read failed, keeping previous set", "error", err)
				continue
			}
			onSnapshot(records)
		}
	}()

	return stop, nil
}

// Clear deletes every document in the collection in WriteBatch chunks.
// The caller's own snapshot subscription observes the resulting empty
// set; Clear performs no local mutation.
func (c *Collection) Clear(ctx context.Context) error {
	docs := c.client.Collection(c.name).Documents(ctx)
	defer docs.Stop()

	batch := c.client.Batch()
	pending := 0
	for {
		doc, err := docs.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("list occurrences for clear: %w", err)
		}

		batch.Delete(doc.Ref)
		pending++
		if pending == batchLimit {
			if _, err := batch.Commit(ctx); err != nil {
				return fmt.Errorf("clear occurrences: %w", err)
			}
			batch = c.client.Batch()
			pending = 0
		}
	}

	if pending > 0 {
		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("clear occurrences: %w", err)
		}
	}

	c.logger.Info("collection cleared", "collection", c.name)
	return nil
}

func decode(doc *fs.DocumentSnapshot) domain.IncidentRecord {
	var d occurrenceDoc
	if err := doc.DataTo(&d); err != nil {
		// A malformed document degrades to its address-less shell,
		// which readAll skips.
		return domain.IncidentRecord{ID: doc.Ref.ID}
	}
	return domain.IncidentRecord{
		ID:          doc.Ref.ID,
		Type:        d.Type,
		Severity:    domain.ClassifySeverity(d.Severity),
		Address:     d.Address,
		Description: d.Description,
		Geo:         domain.Geo{Lat: d.Lat, Lon: d.Lon},
		Photo:       d.Photo,
		CreatedAt:   d.CreatedAt,
	}
}
