package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/audit"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/inventory"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/shared"
)

// ReservationService coordinates batch reservations, releases and write-offs.
// Reservations are all-or-nothing: any failed line rolls the whole
// transaction back. Releases are best-effort: missing or over-released
// batches are logged and skipped so that cancellations always complete.
type ReservationService struct {
	scope     TransactionScope
	batches   inventory.ProductionBatchRepository
	writeoffs inventory.WriteoffRepository
	allocator *inventory.FIFOAllocator
	logger    *zap.Logger
	now       func() time.Time
}

// NewReservationService creates a new reservation service
func NewReservationService(
	scope TransactionScope,
	batches inventory.ProductionBatchRepository,
	writeoffs inventory.WriteoffRepository,
	logger *zap.Logger,
) *ReservationService {
	return &ReservationService{
		scope:     scope,
		batches:   batches,
		writeoffs: writeoffs,
		allocator: inventory.NewFIFOAllocator(),
		logger:    logger,
		now:       time.Now,
	}
}

// ListWriteoffs lists writeoff records, newest first. A zero product ID
// lists writeoffs across all products.
func (s *ReservationService) ListWriteoffs(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]inventory.Writeoff, error) {
	if productID == uuid.Nil {
		return s.writeoffs.FindAll(ctx, filter)
	}
	return s.writeoffs.FindByProduct(ctx, productID, filter)
}

// AllocateForProduct previews which batches would satisfy the quantity.
// It does not reserve anything.
func (s *ReservationService) AllocateForProduct(ctx context.Context, productID uuid.UUID, quantity int) (inventory.AllocationResult, error) {
	today := s.now()
	batches, err := s.batches.FindAllocatable(ctx, productID, today)
	if err != nil {
		return inventory.AllocationResult{}, fmt.Errorf("failed to load batches: %w", err)
	}
	return s.allocator.Allocate(batches, quantity, today)
}

// Reserve reserves the requested quantity against the oldest batches of the
// product. The allocation is recomputed inside the transaction so concurrent
// reservations cannot oversell a batch. Any shortage fails the whole call.
func (s *ReservationService) Reserve(ctx context.Context, cmd ReserveCommand) (inventory.AllocationResult, error) {
	var result inventory.AllocationResult

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		today := s.now()

		batches, err := repos.Batches.FindAllocatable(ctx, cmd.ProductID, today)
		if err != nil {
			return fmt.Errorf("failed to load batches: %w", err)
		}

		result, err = s.allocator.Allocate(batches, cmd.Quantity, today)
		if err != nil {
			return err
		}
		if result.HasShortage() {
			return shared.NewDomainError("INSUFFICIENT_STOCK",
				fmt.Sprintf("Insufficient stock: requested %d, available %d",
					cmd.Quantity, result.QuantityReserved))
		}

		for _, alloc := range result.AllocatedBatches {
			batch, err := repos.Batches.FindByID(ctx, *alloc.BatchID)
			if err != nil {
				return fmt.Errorf("failed to load batch %s: %w", *alloc.BatchID, err)
			}
			if err := batch.Reserve(alloc.Quantity); err != nil {
				return err
			}
			if err := repos.Batches.SaveWithLock(ctx, batch); err != nil {
				return fmt.Errorf("failed to save batch %s: %w", batch.ID, err)
			}
		}

		return s.appendAudit(ctx, repos, audit.OperationReserve,
			fmt.Sprintf("Reserved %d pieces of product %s across %d batches",
				cmd.Quantity, cmd.ProductID, len(result.AllocatedBatches)),
			cmd.User, "product", cmd.ProductID)
	})
	if err != nil {
		return inventory.AllocationResult{}, err
	}

	s.logger.Info("stock reserved",
		zap.String("product_id", cmd.ProductID.String()),
		zap.Int("quantity", cmd.Quantity),
		zap.Int("batches", len(result.AllocatedBatches)))
	return result, nil
}

// ReserveForItems reserves each line independently within one transaction.
// A failed line does not abort the others; its error is reported in the
// per-line result and the successfully reserved lines are kept.
func (s *ReservationService) ReserveForItems(ctx context.Context, items []ItemReservation, user string) ([]ItemReservationResult, error) {
	if len(items) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "No items to reserve")
	}

	results := make([]ItemReservationResult, 0, len(items))

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		for _, item := range items {
			res := ItemReservationResult{
				ItemID:    item.ItemID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			}

			alloc, err := s.ReserveLine(ctx, repos, item)
			if err != nil {
				res.Error = err.Error()
				s.logger.Warn("item reservation failed",
					zap.String("product_id", item.ProductID.String()),
					zap.Int("quantity", item.Quantity),
					zap.Error(err))
			} else {
				res.Reserved = alloc.Reserved()
				res.Batches = alloc
			}
			results = append(results, res)
		}

		return s.appendAudit(ctx, repos, audit.OperationReserve,
			fmt.Sprintf("Reserved stock for %d order items", len(items)),
			user, "", uuid.Nil)
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ReserveLine allocates and reserves one line against the transactional
// repositories. Shortage is tolerated: the line is reserved partially and
// the shortage marker is kept in the allocation for the caller to surface.
// Callers compose it inside their own transaction scope.
func (s *ReservationService) ReserveLine(ctx context.Context, repos TransactionalRepositories, item ItemReservation) (inventory.Allocation, error) {
	today := s.now()

	batches, err := repos.Batches.FindAllocatable(ctx, item.ProductID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to load batches: %w", err)
	}

	result, err := s.allocator.Allocate(batches, item.Quantity, today)
	if err != nil {
		return nil, err
	}

	for _, alloc := range result.AllocatedBatches {
		if alloc.IsShortage() {
			continue
		}
		batch, err := repos.Batches.FindByID(ctx, *alloc.BatchID)
		if err != nil {
			return nil, fmt.Errorf("failed to load batch %s: %w", *alloc.BatchID, err)
		}
		if err := batch.Reserve(alloc.Quantity); err != nil {
			return nil, err
		}
		if err := repos.Batches.SaveWithLock(ctx, batch); err != nil {
			return nil, fmt.Errorf("failed to save batch %s: %w", batch.ID, err)
		}
	}

	return result.AllocatedBatches, nil
}

// Release returns reserved quantities to their batches. Each release is
// clamped to what the batch actually holds reserved; batches that no
// longer exist are skipped with a warning. The returned count is the
// total quantity actually released.
func (s *ReservationService) Release(ctx context.Context, cmd ReleaseCommand) (int, error) {
	if len(cmd.Releases) == 0 {
		return 0, nil
	}

	released := 0
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		released, err = s.ReleaseLines(ctx, repos, cmd.Releases)
		if err != nil {
			return err
		}

		return s.appendAudit(ctx, repos, audit.OperationRelease,
			fmt.Sprintf("Released %d pieces across %d batches", released, len(cmd.Releases)),
			cmd.User, "", uuid.Nil)
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("reservations released",
		zap.Int("requested_batches", len(cmd.Releases)),
		zap.Int("released", released))
	return released, nil
}

// ReleaseLines returns reserved quantities to their batches within an
// existing transaction scope. Missing batches are skipped with a warning
// and over-releases are clamped, so stored allocations that drifted from
// the ledger never block a cancellation.
func (s *ReservationService) ReleaseLines(ctx context.Context, repos TransactionalRepositories, releases []inventory.ReleaseRequest) (int, error) {
	released := 0
	for _, req := range releases {
		batch, err := repos.Batches.FindByID(ctx, req.BatchID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				s.logger.Warn("release skipped, batch not found",
					zap.String("batch_id", req.BatchID.String()),
					zap.Int("quantity", req.Quantity))
				continue
			}
			return released, fmt.Errorf("failed to load batch %s: %w", req.BatchID, err)
		}

		got := batch.Release(req.Quantity)
		if got < req.Quantity {
			s.logger.Warn("release clamped to reserved quantity",
				zap.String("batch_id", req.BatchID.String()),
				zap.Int("requested", req.Quantity),
				zap.Int("released", got))
		}
		if got == 0 {
			continue
		}
		if err := repos.Batches.SaveWithLock(ctx, batch); err != nil {
			return released, fmt.Errorf("failed to save batch %s: %w", batch.ID, err)
		}
		released += got
	}
	return released, nil
}

// ConsumeLine consumes one shipped line's reserved batches within an
// existing transaction scope: the reserved stock leaves the batches for
// good, an OUT movement is ledgered and the product aggregate shrinks.
// Missing batches are skipped the same way release skips them.
func (s *ReservationService) ConsumeLine(ctx context.Context, repos TransactionalRepositories,
	productID uuid.UUID, allocation inventory.Allocation, user string) (int, error) {
	consumed := 0
	for _, tuple := range allocation.ReleaseTuples() {
		batch, err := repos.Batches.FindByID(ctx, tuple.BatchID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				s.logger.Warn("shipment consume skipped, batch not found",
					zap.String("batch_id", tuple.BatchID.String()),
					zap.Int("quantity", tuple.Quantity))
				continue
			}
			return consumed, fmt.Errorf("failed to load batch %s: %w", tuple.BatchID, err)
		}

		got := batch.ConsumeReserved(tuple.Quantity)
		if got == 0 {
			continue
		}
		if err := repos.Batches.SaveWithLock(ctx, batch); err != nil {
			return consumed, fmt.Errorf("failed to save batch %s: %w", batch.ID, err)
		}
		consumed += got
	}
	if consumed == 0 {
		return 0, nil
	}

	product, err := repos.Products.FindByID(ctx, productID)
	if err != nil {
		return consumed, fmt.Errorf("failed to load product %s: %w", productID, err)
	}

	boxes := product.BoxesFor(consumed)
	movement, err := inventory.NewStockMovement(product.ID, inventory.MovementTypeOut,
		-consumed, -boxes, "order shipment", user)
	if err != nil {
		return consumed, err
	}
	if err := repos.Movements.Append(ctx, movement); err != nil {
		return consumed, fmt.Errorf("failed to append movement: %w", err)
	}

	product.AdjustStock(-consumed, -boxes)
	if err := repos.Products.Save(ctx, product); err != nil {
		return consumed, fmt.Errorf("failed to save product %s: %w", product.ID, err)
	}
	return consumed, nil
}

// ReleaseAllocation releases every reserved tuple of a stored allocation,
// skipping shortage markers.
func (s *ReservationService) ReleaseAllocation(ctx context.Context, allocation inventory.Allocation, user string) (int, error) {
	tuples := allocation.ReleaseTuples()
	if len(tuples) == 0 {
		return 0, nil
	}
	return s.Release(ctx, ReleaseCommand{Releases: tuples, User: user})
}

// WriteoffBatch permanently removes quantity from one batch. Four effects
// happen atomically: the batch shrinks, a writeoff record is stored, a
// stock movement is appended and the product aggregate is adjusted.
func (s *ReservationService) WriteoffBatch(ctx context.Context, cmd WriteoffCommand) (WriteoffView, error) {
	var view WriteoffView

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		batch, err := repos.Batches.FindByID(ctx, cmd.BatchID)
		if err != nil {
			return fmt.Errorf("failed to load batch %s: %w", cmd.BatchID, err)
		}

		product, err := repos.Products.FindByID(ctx, batch.ProductID)
		if err != nil {
			return fmt.Errorf("failed to load product %s: %w", batch.ProductID, err)
		}

		if err := batch.Consume(cmd.Quantity); err != nil {
			return err
		}
		if err := repos.Batches.SaveWithLock(ctx, batch); err != nil {
			return fmt.Errorf("failed to save batch %s: %w", batch.ID, err)
		}

		writeoff, err := inventory.NewWriteoff(product.ID, cmd.Quantity, product.PiecesPerBox,
			cmd.Reason, cmd.Responsible, cmd.Notes)
		if err != nil {
			return err
		}
		writeoff.WithBatch(batch.ID, batch.BatchDate)
		if err := repos.Writeoffs.Save(ctx, writeoff); err != nil {
			return fmt.Errorf("failed to save writeoff: %w", err)
		}

		movement, err := inventory.NewStockMovement(product.ID, inventory.MovementTypeWriteoff,
			-cmd.Quantity, -writeoff.BoxesQuantity, cmd.Reason, cmd.User)
		if err != nil {
			return err
		}
		movement.WithBatch(batch.ID, batch.BatchDate)
		if err := repos.Movements.Append(ctx, movement); err != nil {
			return fmt.Errorf("failed to append movement: %w", err)
		}

		product.AdjustStock(-cmd.Quantity, -writeoff.BoxesQuantity)
		if err := repos.Products.Save(ctx, product); err != nil {
			return fmt.Errorf("failed to save product %s: %w", product.ID, err)
		}

		if err := s.appendAudit(ctx, repos, audit.OperationWriteoff,
			fmt.Sprintf("Wrote off %d pieces of %s from batch %s: %s",
				cmd.Quantity, product.Name, batch.BatchDate.Format("2006-01-02"), cmd.Reason),
			cmd.User, "production_batch", batch.ID); err != nil {
			return err
		}

		view = WriteoffView{
			WriteoffID:     writeoff.ID,
			BatchID:        batch.ID,
			ProductID:      product.ID,
			ProductName:    product.Name,
			Quantity:       cmd.Quantity,
			Boxes:          writeoff.BoxesQuantity,
			Pieces:         writeoff.PiecesQuantity,
			BatchRemaining: batch.AvailableQuantity,
		}
		return nil
	})
	if err != nil {
		return WriteoffView{}, err
	}

	s.logger.Info("batch written off",
		zap.String("batch_id", view.BatchID.String()),
		zap.String("product", view.ProductName),
		zap.Int("quantity", view.Quantity))
	return view, nil
}

func (s *ReservationService) appendAudit(ctx context.Context, repos TransactionalRepositories,
	opType audit.OperationType, description, user string, entityType string, entityID uuid.UUID) error {
	entry, err := audit.NewOperationLog(opType, description, user)
	if err != nil {
		return err
	}
	if entityType != "" && entityID != uuid.Nil {
		entry.WithEntity(entityType, entityID)
	}
	if err := repos.Audit.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to append audit log: %w", err)
	}
	return nil
}
