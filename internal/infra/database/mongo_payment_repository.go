package database

import (
	"context"
	"fmt"

	"subscriber_notification_service/internal/domain/billing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Payment records live in the "receipts" collection; one document per
// subscriber billing cycle, written by the application workflow.
const paymentsCollection = "receipts"

// MongoPaymentRepository implements billing.PaymentRepository on top of
// the receipts collection.
type MongoPaymentRepository struct {
	col *mongo.Collection
}

func NewMongoPaymentRepository(db *mongo.Database) *MongoPaymentRepository {
	return &MongoPaymentRepository{col: db.Collection(paymentsCollection)}
}

// ListApproved returns every approved payment record in store order. Any
// store failure surfaces as billing.ErrStoreUnavailable so the caller can
// abort the run cleanly.
func (r *MongoPaymentRepository) ListApproved(ctx context.Context) ([]*billing.PaymentRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"status": billing.StatusApproved})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", billing.ErrStoreUnavailable, err)
	}
	var records []*billing.PaymentRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", billing.ErrStoreUnavailable, err)
	}
	return records, nil
}
