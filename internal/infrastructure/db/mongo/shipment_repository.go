package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trackline/shipment-tracker/internal/core/domain"
	"github.com/trackline/shipment-tracker/internal/core/ports"
)

const shipmentsCollection = "shipments"

type ShipmentRepository struct {
	coll *mongo.Collection
}

func NewShipmentRepository(db *mongo.Database) *ShipmentRepository {
	return &ShipmentRepository{coll: db.Collection(shipmentsCollection)}
}

type mongoShipment struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	OwnerUserID     primitive.ObjectID `bson:"owner_user_id"`
	TrackingNumber  string             `bson:"tracking_number"`
	CustomerName    string             `bson:"customer_name"`
	Status          string             `bson:"status"`
	CurrentLocation string             `bson:"current_location"`
	ETA             time.Time          `bson:"eta"`
	CreatedAt       time.Time          `bson:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at"`
}

func (ms *mongoShipment) toDomain() *domain.Shipment {
	return &domain.Shipment{
		ID:              ms.ID.Hex(),
		OwnerUserID:     ms.OwnerUserID.Hex(),
		TrackingNumber:  ms.TrackingNumber,
		CustomerName:    ms.CustomerName,
		Status:          domain.ShipmentStatus(ms.Status),
		CurrentLocation: ms.CurrentLocation,
		ETA:             ms.ETA.UTC(),
		CreatedAt:       ms.CreatedAt.UTC(),
		UpdatedAt:       ms.UpdatedAt.UTC(),
	}
}

// ownedFilter builds the {_id, owner_user_id} filter every single-document
// operation uses. Ownership is enforced here, not checked separately, so a
// foreign shipment is indistinguishable from a missing one.
func ownedFilter(ownerID, id string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidShipmentID
	}
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, domain.ErrShipmentNotFound
	}
	return bson.M{"_id": oid, "owner_user_id": owner}, nil
}

// Create inserts a new shipment document. The unique index on
// tracking_number is the authoritative collision guard.
func (r *ShipmentRepository) Create(ctx context.Context, s *domain.Shipment) (*domain.Shipment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	owner, err := primitive.ObjectIDFromHex(s.OwnerUserID)
	if err != nil {
		return nil, fmt.Errorf("insert shipment: bad owner id: %w", err)
	}

	doc := mongoShipment{
		OwnerUserID:     owner,
		TrackingNumber:  s.TrackingNumber,
		CustomerName:    s.CustomerName,
		Status:          string(s.Status),
		CurrentLocation: s.CurrentLocation,
		ETA:             s.ETA,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrTrackingNumberTaken
		}
		return nil, fmt.Errorf("insert shipment: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert shipment: unexpected inserted id type %T", res.InsertedID)
	}

	created := *s
	created.ID = oid.Hex()
	return &created, nil
}

func (r *ShipmentRepository) FindByID(ctx context.Context, ownerID, id string) (*domain.Shipment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, err := ownedFilter(ownerID, id)
	if err != nil {
		return nil, err
	}

	var ms mongoShipment
	if err := r.coll.FindOne(ctx, filter).Decode(&ms); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrShipmentNotFound
		}
		return nil, fmt.Errorf("find shipment: %w", err)
	}
	return ms.toDomain(), nil
}

// List returns one page of shipments matching filter, newest first, plus the
// total matching count.
func (r *ShipmentRepository) List(ctx context.Context, filter ports.ListShipmentsFilter) ([]*domain.Shipment, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	owner, err := primitive.ObjectIDFromHex(filter.OwnerID)
	if err != nil {
		return nil, 0, fmt.Errorf("list shipments: bad owner id: %w", err)
	}

	query := bson.M{"owner_user_id": owner}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	if filter.Search != "" {
		// Quote the search text so regex metacharacters match literally.
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"tracking_number": pattern},
			bson.M{"customer_name": pattern},
			bson.M{"current_location": pattern},
		}
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count shipments: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(filter.Page-1) * int64(filter.PageSize)).
		SetLimit(int64(filter.PageSize))

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list shipments: %w", err)
	}
	defer cursor.Close(ctx)

	items := make([]*domain.Shipment, 0, filter.PageSize)
	for cursor.Next(ctx) {
		var ms mongoShipment
		if err := cursor.Decode(&ms); err != nil {
			return nil, 0, fmt.Errorf("decode shipment: %w", err)
		}
		items = append(items, ms.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("list shipments: %w", err)
	}

	return items, total, nil
}

// UpdateStatus sets only the status and updated_at fields and returns the
// updated document.
func (r *ShipmentRepository) UpdateStatus(ctx context.Context, ownerID, id string, status domain.ShipmentStatus, ts time.Time) (*domain.Shipment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, err := ownedFilter(ownerID, id)
	if err != nil {
		return nil, err
	}

	update := bson.M{"$set": bson.M{"status": string(status), "updated_at": ts}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var ms mongoShipment
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&ms); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrShipmentNotFound
		}
		return nil, fmt.Errorf("update shipment status: %w", err)
	}
	return ms.toDomain(), nil
}

func (r *ShipmentRepository) Delete(ctx context.Context, ownerID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, err := ownedFilter(ownerID, id)
	if err != nil {
		return err
	}

	res, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete shipment: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrShipmentNotFound
	}
	return nil
}

func (r *ShipmentRepository) ExistsByTrackingNumber(ctx context.Context, trackingNumber string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"tracking_number": trackingNumber}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check tracking number: %w", err)
	}
	return n > 0, nil
}

// CountByStatus groups the owner's shipments by status.
func (r *ShipmentRepository) CountByStatus(ctx context.Context, ownerID string) (map[domain.ShipmentStatus]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, fmt.Errorf("count by status: bad owner id: %w", err)
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"owner_user_id": owner}}},
		bson.D{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer cursor.Close(ctx)

	counts := make(map[domain.ShipmentStatus]int64, len(domain.Statuses))
	for cursor.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode status count: %w", err)
		}
		counts[domain.ShipmentStatus(row.Status)] = row.Count
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}

	return counts, nil
}

// EnsureIndexes creates the indexes backing uniqueness and scoped queries:
// a unique tracking_number index, a compound (owner_user_id, status) index,
// and a created_at descending index for the list sort.
func (r *ShipmentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tracking_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "owner_user_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
