package service

import (
	"context"
	"fmt"

	"betroom/events"
	"betroom/models"
)

// RecordBalanceChange records a balance history entry and emits the matching events.
// Every balance change in the system goes through here.
func RecordBalanceChange(ctx context.Context, uow UnitOfWork, history *models.BalanceHistory) error {
	if err := uow.BalanceHistoryRepository().Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}

	// Flushed only after the transaction commits
	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:          history.UserID,
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		TransactionType: history.TransactionType,
		ChangeAmount:    history.ChangeAmount,
	})

	if history.TransactionType == models.TransactionTypeInitial {
		if nickname, ok := history.TransactionMetadata["nickname"].(string); ok {
			uow.EventBus().Publish(events.UserCreatedEvent{
				UserID:         history.UserID,
				Nickname:       nickname,
				InitialBalance: history.BalanceAfter,
			})
		}
	}

	return nil
}

func relatedRef(t models.RelatedType, id int64) (*int64, *models.RelatedType) {
	return &id, &t
}
