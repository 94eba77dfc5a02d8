package gorm

import (
	"context"
	"time"

	"github.com/tigerroll/surfin-transporter/pkg/batch/adapter/database"
)

// QueueIndexer requests reindexing by appending to catalog_reindex_queue.
type QueueIndexer struct {
	connectionSource
}

// NewQueueIndexer creates a QueueIndexer on the named connection.
func NewQueueIndexer(dbResolver database.DBConnectionResolver, dbName string) *QueueIndexer {
	return &QueueIndexer{connectionSource: newConnectionSource(dbResolver, dbName)}
}

func (i *QueueIndexer) Reindex(ctx context.Context, productID int64) error {
	db, err := i.db(ctx)
	if err != nil {
		return err
	}
	request := ReindexRequestRecord{ProductID: productID, RequestedAt: time.Now().UTC()}
	if err := db.Create(&request).Error; err != nil {
		return persistenceError("failed to queue reindex of product %d", productID, err)
	}
	return nil
}
