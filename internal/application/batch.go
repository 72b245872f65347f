package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/library-management/internal/domain/entity"
	repo "github.com/oksasatya/library-management/internal/domain/repository"
)

// deleteEach removes every id independently. Absent ids land in NotFound and
// ids whose delete fails for any other reason land in Failed; neither stops
// the batch.
func deleteEach(ctx context.Context, logger *logrus.Logger, ids []string, del func(ctx context.Context, id string) error) *entity.BatchResult {
	res := entity.NewBatchResult()
	for _, id := range ids {
		err := del(ctx, id)
		switch {
		case err == nil:
			res.Deleted = append(res.Deleted, id)
		case errors.Is(err, repo.ErrNotFound):
			res.NotFound = append(res.NotFound, id)
		default:
			logger.WithError(err).WithField("id", id).Error("batch delete failed")
			res.Failed = append(res.Failed, id)
		}
	}
	return res
}
