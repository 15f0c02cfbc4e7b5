package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/go-ddd-filevault/internal/domain/entity"
	"github.com/oksasatya/go-ddd-filevault/internal/domain/repository"
)

type fileDoc struct {
	ID           primitive.ObjectID `bson:"_id"`
	OwnerID      string             `bson:"owner_id"`
	OriginalName string             `bson:"original_name"`
	StoredName   string             `bson:"stored_name"`
	Mime         string             `bson:"mime"`
	Size         int64              `bson:"size"`
	Visibility   string             `bson:"visibility"`
	CreatedAt    primitive.DateTime `bson:"created_at"`
	UpdatedAt    primitive.DateTime `bson:"updated_at"`
}

func (d *fileDoc) toEntity() *entity.File {
	return &entity.File{
		ID:           d.ID.Hex(),
		OwnerID:      d.OwnerID,
		OriginalName: d.OriginalName,
		StoredName:   d.StoredName,
		Mime:         d.Mime,
		Size:         d.Size,
		Visibility:   entity.Visibility(d.Visibility),
		CreatedAt:    d.CreatedAt.Time().UTC(),
		UpdatedAt:    d.UpdatedAt.Time().UTC(),
	}
}

type FileRepository struct {
	col *mongo.Collection
}

func NewFileRepository(db *mongo.Database) *FileRepository {
	return &FileRepository{col: db.Collection(filesCollection)}
}

// ownedFilter builds the id+owner predicate every single-file operation uses.
func ownedFilter(id, ownerID string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrInvalidID
	}
	return bson.M{"_id": oid, "owner_id": ownerID}, nil
}

func (r *FileRepository) Create(ctx context.Context, f *entity.File) error {
	doc := fileDoc{
		ID:           primitive.NewObjectID(),
		OwnerID:      f.OwnerID,
		OriginalName: f.OriginalName,
		StoredName:   f.StoredName,
		Mime:         f.Mime,
		Size:         f.Size,
		Visibility:   string(f.Visibility),
		CreatedAt:    primitive.NewDateTimeFromTime(f.CreatedAt),
		UpdatedAt:    primitive.NewDateTimeFromTime(f.UpdatedAt),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return err
	}
	f.ID = doc.ID.Hex()
	return nil
}

func (r *FileRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entity.File, error) {
	cur, err := r.col.Find(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return nil, err
	}
	var docs []fileDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*entity.File, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toEntity())
	}
	return out, nil
}

func (r *FileRepository) GetOwned(ctx context.Context, id, ownerID string) (*entity.File, error) {
	filter, err := ownedFilter(id, ownerID)
	if err != nil {
		return nil, err
	}
	var doc fileDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

// SetVisibility updates visibility and updated_at in one document write.
func (r *FileRepository) SetVisibility(ctx context.Context, id, ownerID string, v entity.Visibility, updatedAt time.Time) error {
	filter, err := ownedFilter(id, ownerID)
	if err != nil {
		return err
	}
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"visibility": string(v),
		"updated_at": primitive.NewDateTimeFromTime(updatedAt),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *FileRepository) DeleteOwned(ctx context.Context, id, ownerID string) error {
	filter, err := ownedFilter(id, ownerID)
	if err != nil {
		return err
	}
	res, err := r.col.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *FileRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "stored_name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_stored_name"),
		},
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}},
			Options: options.Index().SetName("owner_id"),
		},
	})
	return err
}

var _ repository.FileRepository = (*FileRepository)(nil)
