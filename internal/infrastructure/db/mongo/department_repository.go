package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/opendms/dms-platform/internal/core/domain"
)

const (
	departmentCollection = "departments"
	counterCollection    = "counters"
)

// DepartmentRepository persists departments with store-allocated
// numeric IDs so membership can travel compactly in token claims.
type DepartmentRepository struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

func NewDepartmentRepository(db *mongo.Database) *DepartmentRepository {
	return &DepartmentRepository{
		coll:     db.Collection(departmentCollection),
		counters: db.Collection(counterCollection),
	}
}

// EnsureIndexes creates the unique name index.
func (r *DepartmentRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create department indexes: %w", err)
	}
	return nil
}

type mongoDepartment struct {
	ID        int64  `bson:"_id"`
	Name      string `bson:"name"`
	CreatedAt int64  `bson:"created_at"`
}

func (r *DepartmentRepository) Create(ctx context.Context, name string) (*domain.Department, error) {
	id, err := r.nextID(ctx)
	if err != nil {
		return nil, err
	}

	doc := mongoDepartment{
		ID:        id,
		Name:      name,
		CreatedAt: time.Now().UTC().Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDepartmentExists
		}
		return nil, fmt.Errorf("insert department: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *DepartmentRepository) FindByID(ctx context.Context, id int64) (*domain.Department, error) {
	var md mongoDepartment
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&md); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("find department: %w", err)
	}
	return md.toDomain(), nil
}

func (r *DepartmentRepository) List(ctx context.Context) ([]*domain.Department, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer cur.Close(ctx)

	var depts []*domain.Department
	for cur.Next(ctx) {
		var md mongoDepartment
		if err := cur.Decode(&md); err != nil {
			return nil, fmt.Errorf("decode department: %w", err)
		}
		depts = append(depts, md.toDomain())
	}
	return depts, cur.Err()
}

func (r *DepartmentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete department: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrDepartmentNotFound
	}
	return nil
}

// nextID allocates the next department ID from the counters
// collection. FindOneAndUpdate with upsert is atomic, so concurrent
// creates never share an ID.
func (r *DepartmentRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": departmentCollection},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("allocate department id: %w", err)
	}
	return counter.Seq, nil
}

func (md mongoDepartment) toDomain() *domain.Department {
	return &domain.Department{
		ID:        md.ID,
		Name:      md.Name,
		CreatedAt: unixToTime(md.CreatedAt),
	}
}
