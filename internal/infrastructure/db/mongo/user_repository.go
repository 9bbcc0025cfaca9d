package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/opendms/dms-platform/internal/core/domain"
)

const (
	userCollection = "users"

	// superAdminIndexName names the partial unique index that caps the
	// collection at one SUPERADMIN document. Duplicate-key errors are
	// matched against it by name to tell the two unique indexes apart.
	superAdminIndexName = "unique_superadmin_role"
)

// UserRepository is the MongoDB credential store.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(userCollection)}
}

// EnsureIndexes creates the unique indexes the signup invariants rest
// on. The email index makes concurrent signups with the same email
// safe: the losing insert fails with a duplicate key error instead of
// creating a second account. The partial role index does the same for
// the first-SUPERADMIN invariant: at most one document with role
// SUPERADMIN can exist, so two concurrent first-signups race on the
// insert itself rather than on a read-then-write check.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "role", Value: 1}},
			Options: options.Index().
				SetName(superAdminIndexName).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"role": domain.RoleSuperAdmin.String()}),
		},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

type mongoUser struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	Email         string             `bson:"email"`
	PasswordHash  string             `bson:"password_hash"`
	Position      string             `bson:"position,omitempty"`
	Role          string             `bson:"role"`
	DepartmentIDs []int64            `bson:"department_ids"`
	Address       string             `bson:"address,omitempty"`
	Phone         string             `bson:"phone,omitempty"`
	Status        string             `bson:"status"`
	LastLogin     int64              `bson:"last_login,omitempty"`
	CreatedAt     int64              `bson:"created_at"`
	UpdatedAt     int64              `bson:"updated_at"`
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := toMongoUser(user)
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// The duplicate-key message carries the violated index name.
			if strings.Contains(err.Error(), superAdminIndexName) {
				return nil, domain.ErrSuperAdminExists
			}
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, _ := res.InsertedID.(primitive.ObjectID)
	return r.FindByID(ctx, id.Hex())
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&mu); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	var mu mongoUser
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mu); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var users []*domain.User
	for cur.Next(ctx) {
		var mu mongoUser
		if err := cur.Decode(&mu); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, mu.toDomain())
	}
	return users, cur.Err()
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	update := bson.M{"$set": bson.M{
		"name":       user.Name,
		"email":      user.Email,
		"position":   user.Position,
		"address":    user.Address,
		"phone":      user.Phone,
		"status":     user.Status,
		"updated_at": user.UpdatedAt.Unix(),
	}}

	res, err := r.coll.UpdateByID(ctx, oid, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrUserNotFound
	}
	return r.FindByID(ctx, user.ID)
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) ExistsByRole(ctx context.Context, role domain.Role) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"role": role.String()}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count by role: %w", err)
	}
	return n > 0, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"password_hash": passwordHash,
		"updated_at":    time.Now().UTC().Unix(),
	}})
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetLastLogin(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}
	_, err = r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"last_login": time.Now().UTC().Unix()}})
	return err
}

func (r *UserRepository) AddDepartment(ctx context.Context, userID string, deptID int64) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$addToSet": bson.M{"department_ids": deptID}})
	if err != nil {
		return nil, fmt.Errorf("add department: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrUserNotFound
	}
	return r.FindByID(ctx, userID)
}

func (r *UserRepository) RemoveDepartment(ctx context.Context, userID string, deptID int64) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$pull": bson.M{"department_ids": deptID}})
	if err != nil {
		return nil, fmt.Errorf("remove department: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrUserNotFound
	}
	return r.FindByID(ctx, userID)
}

func (r *UserRepository) RemoveDepartmentFromAll(ctx context.Context, deptID int64) error {
	_, err := r.coll.UpdateMany(ctx, bson.M{}, bson.M{"$pull": bson.M{"department_ids": deptID}})
	if err != nil {
		return fmt.Errorf("remove department from all users: %w", err)
	}
	return nil
}

func toMongoUser(u *domain.User) mongoUser {
	deptIDs := u.DepartmentIDs
	if deptIDs == nil {
		deptIDs = []int64{}
	}
	var lastLogin int64
	if !u.LastLogin.IsZero() {
		lastLogin = u.LastLogin.Unix()
	}
	return mongoUser{
		Name:          u.Name,
		Email:         u.Email,
		PasswordHash:  u.PasswordHash,
		Position:      u.Position,
		Role:          u.Role.String(),
		DepartmentIDs: deptIDs,
		Address:       u.Address,
		Phone:         u.Phone,
		Status:        u.Status,
		LastLogin:     lastLogin,
		CreatedAt:     u.CreatedAt.Unix(),
		UpdatedAt:     u.UpdatedAt.Unix(),
	}
}

func (mu mongoUser) toDomain() *domain.User {
	deptIDs := mu.DepartmentIDs
	if deptIDs == nil {
		deptIDs = []int64{}
	}
	return &domain.User{
		ID:            mu.ID.Hex(),
		Name:          mu.Name,
		Email:         mu.Email,
		PasswordHash:  mu.PasswordHash,
		Position:      mu.Position,
		Role:          domain.Role(mu.Role),
		DepartmentIDs: deptIDs,
		Address:       mu.Address,
		Phone:         mu.Phone,
		Status:        mu.Status,
		LastLogin:     unixToTime(mu.LastLogin),
		CreatedAt:     unixToTime(mu.CreatedAt),
		UpdatedAt:     unixToTime(mu.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
