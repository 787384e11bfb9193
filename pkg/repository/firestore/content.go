package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deckmemo/pkg/domain/model"
	"github.com/secmon-lab/deckmemo/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// contentDoc is the Firestore document representation of model.Content.
// The document ID is the upload ID.
type contentDoc struct {
	ID              string    `firestore:"ID"`
	OwnerID         string    `firestore:"OwnerID"`
	UploadID        string    `firestore:"UploadID"`
	FileName        string    `firestore:"FileName"`
	StorageRef      string    `firestore:"StorageRef"`
	ObjectName      string    `firestore:"ObjectName"`
	PageCount       int       `firestore:"PageCount"`
	OriginalContent string    `firestore:"OriginalContent"`
	EditedContent   string    `firestore:"EditedContent,omitempty"`
	Memo            string    `firestore:"Memo,omitempty"`
	MemoModel       string    `firestore:"MemoModel,omitempty"`
	State           string    `firestore:"State"`
	CreatedAt       time.Time `firestore:"CreatedAt"`
	UpdatedAt       time.Time `firestore:"UpdatedAt"`
}

func toContentDoc(c *model.Content) *contentDoc {
	return &contentDoc{
		ID:              string(c.ID),
		OwnerID:         c.OwnerID,
		UploadID:        string(c.UploadID),
		FileName:        c.FileName,
		StorageRef:      string(c.StorageRef),
		ObjectName:      c.ObjectName,
		PageCount:       c.PageCount,
		OriginalContent: c.OriginalContent,
		EditedContent:   c.EditedContent,
		Memo:            c.Memo,
		MemoModel:       c.MemoModel,
		State:           string(c.State),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func fromContentDoc(d *contentDoc) *model.Content {
	return &model.Content{
		ID:              model.ContentID(d.ID),
		OwnerID:         d.OwnerID,
		UploadID:        model.UploadID(d.UploadID),
		FileName:        d.FileName,
		StorageRef:      model.StorageRef(d.StorageRef),
		ObjectName:      d.ObjectName,
		PageCount:       d.PageCount,
		OriginalContent: d.OriginalContent,
		EditedContent:   d.EditedContent,
		Memo:            d.Memo,
		MemoModel:       d.MemoModel,
		State:           types.ContentState(d.State),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

type contentRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newContentRepository(client *firestore.Client) *contentRepository {
	return &contentRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *contentRepository) contentsCollection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, ContentsCollection))
}

func (r *contentRepository) Create(ctx context.Context, c *model.Content) (*model.Content, error) {
	now := time.Now().UTC()
	created := *c
	if created.ID == "" {
		created.ID = model.NewContentID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	docRef := r.contentsCollection().Doc(string(created.UploadID))
	// Create fails when the document exists, which enforces upload ID uniqueness
	if _, err := docRef.Create(ctx, toContentDoc(&created)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(model.ErrConflict, "upload ID already exists", goerr.V("upload_id", created.UploadID))
		}
		return nil, goerr.Wrap(err, "failed to create content", goerr.V("upload_id", created.UploadID))
	}

	return &created, nil
}

func (r *contentRepository) FindByUploadID(ctx context.Context, uploadID model.UploadID) (*model.Content, error) {
	docSnap, err := r.contentsCollection().Doc(string(uploadID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "content not found", goerr.V("upload_id", uploadID))
		}
		return nil, goerr.Wrap(err, "failed to get content", goerr.V("upload_id", uploadID))
	}

	var d contentDoc
	if err := docSnap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode content", goerr.V("upload_id", uploadID))
	}

	return fromContentDoc(&d), nil
}

func (r *contentRepository) UpdateFields(ctx context.Context, uploadID model.UploadID, update model.ContentUpdate) (*model.Content, error) {
	docRef := r.contentsCollection().Doc(string(uploadID))

	var updated *model.Content
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrNotFound, "content not found", goerr.V("upload_id", uploadID))
			}
			return goerr.Wrap(err, "failed to get content")
		}

		var d contentDoc
		if err := docSnap.DataTo(&d); err != nil {
			return goerr.Wrap(err, "failed to decode content")
		}

		c := fromContentDoc(&d)
		if update.IsEmpty() {
			updated = c
			return nil
		}

		update.Apply(c)
		c.UpdatedAt = time.Now().UTC()

		updates := []firestore.Update{
			{Path: "UpdatedAt", Value: c.UpdatedAt},
		}
		if update.EditedContent != nil {
			updates = append(updates, firestore.Update{Path: "EditedContent", Value: c.EditedContent})
		}
		if update.Memo != nil {
			updates = append(updates, firestore.Update{Path: "Memo", Value: c.Memo})
		}
		if update.MemoModel != nil {
			updates = append(updates, firestore.Update{Path: "MemoModel", Value: c.MemoModel})
		}
		if update.State != nil {
			updates = append(updates, firestore.Update{Path: "State", Value: string(c.State)})
		}

		if err := tx.Update(docRef, updates); err != nil {
			return goerr.Wrap(err, "failed to update content")
		}

		updated = c
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update content fields", goerr.V("upload_id", uploadID))
	}

	return updated, nil
}

func (r *contentRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*model.Content, error) {
	query := r.contentsCollection().
		Where("OwnerID", "==", ownerID).
		OrderBy("CreatedAt", firestore.Desc).
		OrderBy("UploadID", firestore.Asc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var contents []*model.Content
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate contents", goerr.V("owner_id", ownerID))
		}

		var d contentDoc
		if err := docSnap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to decode content", goerr.V("doc_id", docSnap.Ref.ID))
		}
		contents = append(contents, fromContentDoc(&d))
	}

	return contents, nil
}
