package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/audit"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/catalog"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/inventory"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/shared"
)

// BatchService handles batch intake and batch read models. Intake is
// idempotent on (product, batch date): posting production twice for the
// same day accumulates into one batch instead of creating a second one.
type BatchService struct {
	scope    TransactionScope
	batches  inventory.ProductionBatchRepository
	products catalog.ProductRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewBatchService creates a new batch service
func NewBatchService(
	scope TransactionScope,
	batches inventory.ProductionBatchRepository,
	products catalog.ProductRepository,
	logger *zap.Logger,
) *BatchService {
	return &BatchService{
		scope:    scope,
		batches:  batches,
		products: products,
		logger:   logger,
		now:      time.Now,
	}
}

// PostProduction records produced quantity into the batch ledger.
// The batch for (product, batch date) is created on first intake and
// accumulated on subsequent ones; a production movement is appended and
// the product stock counters are increased.
func (s *BatchService) PostProduction(ctx context.Context, cmd ProductionCommand) (BatchView, error) {
	return s.intake(ctx, intakeRequest{
		productID:    cmd.ProductID,
		quantity:     cmd.Quantity,
		batchDate:    cmd.BatchDate,
		expiryDate:   cmd.ExpiryDate,
		notes:        cmd.Notes,
		user:         cmd.User,
		movementType: inventory.MovementTypeProduction,
		reason:       "production intake",
		opType:       audit.OperationProduction,
	})
}

// PostArrival records externally received quantity into the batch ledger.
// It shares the intake path with production but is ledgered as an arrival.
func (s *BatchService) PostArrival(ctx context.Context, cmd ArrivalCommand) (BatchView, error) {
	reason := cmd.Reason
	if reason == "" {
		reason = "goods arrival"
	}
	return s.intake(ctx, intakeRequest{
		productID:    cmd.ProductID,
		quantity:     cmd.Quantity,
		batchDate:    cmd.BatchDate,
		expiryDate:   cmd.ExpiryDate,
		notes:        cmd.Notes,
		user:         cmd.User,
		movementType: inventory.MovementTypeArrival,
		reason:       reason,
		opType:       audit.OperationArrival,
	})
}

// PostArrivalDocument posts every line of an arrival document. Each line is
// its own transaction so one bad line does not void the rest; failed lines
// are reported in the per-line results.
func (s *BatchService) PostArrivalDocument(ctx context.Context, cmd ArrivalDocumentCommand) (ArrivalDocumentView, error) {
	if len(cmd.Items) == 0 {
		return ArrivalDocumentView{}, shared.NewDomainError("VALIDATION_ERROR", "Arrival document has no items")
	}

	reason := cmd.Reason
	if reason == "" && cmd.DocumentNumber != "" {
		reason = fmt.Sprintf("arrival document %s", cmd.DocumentNumber)
	}

	view := ArrivalDocumentView{
		DocumentNumber: cmd.DocumentNumber,
		Items:          make([]ArrivalItemResult, 0, len(cmd.Items)),
	}
	for _, item := range cmd.Items {
		batchDate := cmd.ArrivalDate
		if item.BatchDate != nil {
			batchDate = *item.BatchDate
		}

		res := ArrivalItemResult{ProductID: item.ProductID, Quantity: item.Quantity}
		batch, err := s.PostArrival(ctx, ArrivalCommand{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			BatchDate:  batchDate,
			ExpiryDate: item.ExpiryDate,
			Reason:     reason,
			Notes:      item.Notes,
			User:       cmd.User,
		})
		if err != nil {
			res.Error = err.Error()
			view.Failed++
			s.logger.Warn("arrival document line failed",
				zap.String("document", cmd.DocumentNumber),
				zap.String("product_id", item.ProductID.String()),
				zap.Error(err))
		} else {
			res.Batch = &batch
			view.Processed++
		}
		view.Items = append(view.Items, res)
	}
	return view, nil
}

type intakeRequest struct {
	productID    uuid.UUID
	quantity     int
	batchDate    time.Time
	expiryDate   *time.Time
	notes        string
	user         string
	movementType inventory.MovementType
	reason       string
	opType       audit.OperationType
}

func (s *BatchService) intake(ctx context.Context, req intakeRequest) (BatchView, error) {
	if req.quantity <= 0 {
		return BatchView{}, shared.NewDomainError("VALIDATION_ERROR", "Intake quantity must be positive")
	}

	var view BatchView
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		product, err := repos.Products.FindByID(ctx, req.productID)
		if err != nil {
			return fmt.Errorf("failed to load product %s: %w", req.productID, err)
		}

		created := false
		batch, err := repos.Batches.FindByProductAndDate(ctx, req.productID, req.batchDate)
		switch {
		case err == nil:
			if err := batch.Receive(req.quantity); err != nil {
				return err
			}
		case errors.Is(err, shared.ErrNotFound):
			created = true
			var expiry time.Time
			if req.expiryDate != nil {
				expiry = *req.expiryDate
			}
			batch, err = inventory.NewProductionBatch(req.productID, req.batchDate, expiry, req.quantity)
			if err != nil {
				return err
			}
			batch.Notes = req.notes
		default:
			return fmt.Errorf("failed to load batch: %w", err)
		}

		if created {
			if err := repos.Batches.Save(ctx, batch); err != nil {
				return fmt.Errorf("failed to save batch: %w", err)
			}
		} else {
			if err := repos.Batches.SaveWithLock(ctx, batch); err != nil {
				return fmt.Errorf("failed to save batch: %w", err)
			}
		}

		boxes := product.BoxesFor(req.quantity)
		movement, err := inventory.NewStockMovement(product.ID, req.movementType,
			req.quantity, boxes, req.reason, req.user)
		if err != nil {
			return err
		}
		movement.WithBatch(batch.ID, batch.BatchDate)
		if err := repos.Movements.Append(ctx, movement); err != nil {
			return fmt.Errorf("failed to append movement: %w", err)
		}

		product.AdjustStock(req.quantity, boxes)
		if err := repos.Products.Save(ctx, product); err != nil {
			return fmt.Errorf("failed to save product %s: %w", product.ID, err)
		}

		entry, err := audit.NewOperationLog(req.opType,
			fmt.Sprintf("Posted %d pieces of %s into batch %s",
				req.quantity, product.Name, batch.BatchDate.Format("2006-01-02")),
			req.user)
		if err != nil {
			return err
		}
		entry.WithEntity("production_batch", batch.ID)
		if err := repos.Audit.Append(ctx, entry); err != nil {
			return fmt.Errorf("failed to append audit log: %w", err)
		}

		view = toBatchView(batch, s.now())
		return nil
	})
	if err != nil {
		return BatchView{}, err
	}

	s.logger.Info("batch intake posted",
		zap.String("product_id", req.productID.String()),
		zap.String("type", req.movementType.String()),
		zap.Int("quantity", req.quantity),
		zap.Time("batch_date", view.BatchDate))
	return view, nil
}

// GetProductAvailability projects the stock of one product from its full
// batch ledger. Expired batches are summed into their own bucket so the
// sellable total never includes them.
func (s *BatchService) GetProductAvailability(ctx context.Context, productID uuid.UUID) (AvailabilityView, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return AvailabilityView{}, fmt.Errorf("failed to load product %s: %w", productID, err)
	}

	today := s.now()
	batches, err := s.batches.FindByProduct(ctx, productID, true)
	if err != nil {
		return AvailabilityView{}, fmt.Errorf("failed to load batches: %w", err)
	}

	view := AvailabilityView{
		ProductID:      product.ID,
		ProductName:    product.Name,
		MinStockPieces: product.MinStockPieces,
		Batches:        make([]BatchView, 0, len(batches)),
	}
	for i := range batches {
		b := &batches[i]
		view.Batches = append(view.Batches, toBatchView(b, today))

		if b.IsExpired(today) {
			view.ExpiredQuantity += b.AvailableQuantity
			continue
		}
		view.TotalAvailable += b.AvailableQuantity
		view.TotalReserved += b.ReservedQuantity
		if b.AvailableQuantity > 0 {
			view.ActiveBatches++
			if b.DaysToExpiry(today) <= inventory.ExpiryWarningDays {
				view.ExpiringQuantity += b.AvailableQuantity
			}
		}
	}
	view.StockStatus = product.StockStatusFor(view.TotalAvailable)
	return view, nil
}

// ListBatches lists the batches of a product in FIFO order
func (s *BatchService) ListBatches(ctx context.Context, productID uuid.UUID, includeExpired bool) ([]BatchView, error) {
	today := s.now()
	batches, err := s.batches.FindByProduct(ctx, productID, includeExpired)
	if err != nil {
		return nil, fmt.Errorf("failed to load batches: %w", err)
	}

	views := make([]BatchView, 0, len(batches))
	for i := range batches {
		views = append(views, toBatchView(&batches[i], today))
	}
	return views, nil
}

// ListExpiring lists batches with remaining stock that expire within the
// given number of days, most urgent first. A non-positive value falls
// back to the standard warning window.
func (s *BatchService) ListExpiring(ctx context.Context, days int) ([]ExpiringBatchView, error) {
	if days <= 0 {
		days = inventory.ExpiryWarningDays
	}
	today := s.now()
	window := time.Duration(days) * 24 * time.Hour

	batches, err := s.batches.FindExpiring(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("failed to load expiring batches: %w", err)
	}

	views := make([]ExpiringBatchView, 0, len(batches))
	for i := range batches {
		b := &batches[i]
		product, err := s.products.FindByID(ctx, b.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to load product %s: %w", b.ProductID, err)
		}

		days := b.DaysToExpiry(today)
		views = append(views, ExpiringBatchView{
			BatchView:    toBatchView(b, today),
			ProductName:  product.Name,
			DaysToExpiry: days,
			Urgency:      urgencyFor(days),
		})
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].DaysToExpiry < views[j].DaysToExpiry
	})
	return views, nil
}

// ListGrouped groups allocatable batches by product with availability totals
func (s *BatchService) ListGrouped(ctx context.Context) ([]GroupedBatchesView, error) {
	today := s.now()
	productIDs, err := s.batches.FindProductIDsWithBatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products with batches: %w", err)
	}

	views := make([]GroupedBatchesView, 0, len(productIDs))
	for _, productID := range productIDs {
		product, err := s.products.FindByID(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("failed to load product %s: %w", productID, err)
		}

		batches, err := s.batches.FindAllocatable(ctx, productID, today)
		if err != nil {
			return nil, fmt.Errorf("failed to load batches: %w", err)
		}

		group := GroupedBatchesView{
			ProductID:   product.ID,
			ProductName: product.Name,
			ProductCode: product.Code,
			Batches:     make([]BatchView, 0, len(batches)),
		}
		for i := range batches {
			b := &batches[i]
			group.TotalAvailable += b.AvailableQuantity
			group.TotalReserved += b.ReservedQuantity
			if b.DaysToExpiry(today) <= inventory.ExpiryWarningDays {
				group.ExpiringQuantity += b.AvailableQuantity
			}
			group.Batches = append(group.Batches, toBatchView(b, today))
		}
		// batches arrive oldest first
		if len(batches) > 0 {
			group.OldestBatchDate = &batches[0].BatchDate
			group.NewestBatchDate = &batches[len(batches)-1].BatchDate
		}
		group.StockStatus = product.StockStatusFor(group.TotalAvailable)
		views = append(views, group)
	}
	return views, nil
}

func urgencyFor(daysToExpiry int) string {
	switch {
	case daysToExpiry <= 1:
		return "critical"
	case daysToExpiry <= 3:
		return "high"
	default:
		return "medium"
	}
}
