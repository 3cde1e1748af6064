package firestore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/bryanwahyu/aio-strategy/internal/domain/analysis"
)

const DefaultCollection = "analyses"

type inputDocument struct {
	BrandName      string `firestore:"brandName"`
	OfficialURLs   string `firestore:"officialUrls"`
	AdditionalURLs string `firestore:"additionalUrls"`
	Competitors    string `firestore:"competitors"`
	Goal           string `firestore:"goal"`
	Conditions     string `firestore:"conditions"`
	ExtraNotes     string `firestore:"extraNotes"`
}

// document is the stored shape, with camelCase keys throughout.
// Timestamp mirrors CreatedAt in unix milliseconds. Listing orders by
// createdAt, so documents that carry only timestamp are not listed.
// ListByOwner needs a composite index on (userId ASC, createdAt DESC).
type document struct {
	ID        string        `firestore:"id"`
	Input     inputDocument `firestore:"input"`
	Result    string        `firestore:"result"`
	CreatedAt time.Time     `firestore:"createdAt"`
	Timestamp int64         `firestore:"timestamp"`
	UserID    string        `firestore:"userId"`
	UserEmail string        `firestore:"userEmail"`
}

func toDocument(a *domain.Record) document {
	return document{
		ID:        a.ID,
		Input:     inputDocument(a.Input),
		Result:    a.Result,
		CreatedAt: a.CreatedAt.UTC(),
		Timestamp: a.CreatedAt.UnixMilli(),
		UserID:    a.OwnerID,
		UserEmail: a.OwnerEmail,
	}
}

func (d document) record() *domain.Record {
	return &domain.Record{
		ID:         d.ID,
		Input:      domain.Input(d.Input),
		Result:     d.Result,
		CreatedAt:  d.CreatedAt.UTC(),
		OwnerID:    d.UserID,
		OwnerEmail: d.UserEmail,
	}
}

// AnalysisRepository stores records in a Firestore collection.
// The client is created on first use.
type AnalysisRepository struct {
	ProjectID       string
	CredentialsFile string
	Collection      string

	once   sync.Once
	client *firestore.Client
	err    error
}

func NewAnalysisRepository(projectID, credentialsFile string) *AnalysisRepository {
	return &AnalysisRepository{ProjectID: projectID, CredentialsFile: credentialsFile, Collection: DefaultCollection}
}

func (r *AnalysisRepository) collection(ctx context.Context) (*firestore.CollectionRef, error) {
	r.once.Do(func() {
		if r.ProjectID == "" {
			r.err = domain.Configuration("firestore project id is not set")
			return
		}
		var opts []option.ClientOption
		if r.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(r.CredentialsFile))
		}
		// the client outlives the first request
		r.client, r.err = firestore.NewClient(context.WithoutCancel(ctx), r.ProjectID, opts...)
	})
	if r.err != nil {
		return nil, r.err
	}
	name := r.Collection
	if name == "" {
		name = DefaultCollection
	}
	return r.client.Collection(name), nil
}

func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Record) error {
	coll, err := r.collection(ctx)
	if err != nil {
		return err
	}
	_, err = coll.Doc(a.ID).Create(ctx, toDocument(a))
	if status.Code(err) == codes.AlreadyExists {
		return nil
	}
	return err
}

func (r *AnalysisRepository) GetByID(ctx context.Context, id string) (*domain.Record, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := coll.Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var d document
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("decode %s: %w", id, err)
	}
	if d.ID == "" {
		d.ID = snap.Ref.ID
	}
	return d.record(), nil
}

func (r *AnalysisRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Record, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	iter := coll.Where("userId", "==", ownerID).
		OrderBy("createdAt", firestore.Desc).
		Offset(offset).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	out := make([]*domain.Record, 0, limit)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		var d document
		if err := snap.DataTo(&d); err != nil {
			return nil, fmt.Errorf("decode %s: %w", snap.Ref.ID, err)
		}
		if d.ID == "" {
			d.ID = snap.Ref.ID
		}
		out = append(out, d.record())
	}
	return out, nil
}

// Check reports whether the collection can be reached.
func (r *AnalysisRepository) Check(ctx context.Context) error {
	coll, err := r.collection(ctx)
	if err != nil {
		return err
	}
	iter := coll.Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return err
	}
	return nil
}

func (r *AnalysisRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
