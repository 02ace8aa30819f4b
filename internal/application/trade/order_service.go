package trade

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appinv "github.com/usv008/pizza-inventory-system-sub002/internal/application/inventory"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/audit"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/shared"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/trade"
)

// OrderItemInput is one requested order line
type OrderItemInput struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderCommand creates an order and reserves stock for its lines
type CreateOrderCommand struct {
	OrderNumber  string           `json:"order_number,omitempty"`
	ClientName   string           `json:"client_name" binding:"required,min=1,max=200"`
	DeliveryDate *time.Time       `json:"delivery_date,omitempty"`
	Notes        string           `json:"notes,omitempty"`
	CreatedBy    string           `json:"created_by,omitempty"`
	Items        []OrderItemInput `json:"items" binding:"required,min=1,dive"`
}

// UpdateOrderItemsCommand replaces an order's lines with new quantities
type UpdateOrderItemsCommand struct {
	Items []OrderItemInput `json:"items" binding:"required,min=1,dive"`
	User  string           `json:"user,omitempty"`
}

// UpdateStatusCommand moves an order through its lifecycle
type UpdateStatusCommand struct {
	Status trade.OrderStatus `json:"status" binding:"required"`
	User   string            `json:"user,omitempty"`
}

// OrderView is an order with its shortage warnings, if any
type OrderView struct {
	Order    *trade.Order `json:"order"`
	Warnings []string     `json:"warnings,omitempty"`
}

// OrderService creates and maintains orders. Stock is reserved per line
// when an order is created or edited; lines that cannot be fully covered
// keep a partial reservation and raise a shortage warning instead of
// failing the order.
type OrderService struct {
	scope        appinv.TransactionScope
	orders       trade.OrderRepository
	reservations *appinv.ReservationService
	logger       *zap.Logger
	now          func() time.Time
}

// NewOrderService creates a new order service
func NewOrderService(
	scope appinv.TransactionScope,
	orders trade.OrderRepository,
	reservations *appinv.ReservationService,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		scope:        scope,
		orders:       orders,
		reservations: reservations,
		logger:       logger,
		now:          time.Now,
	}
}

// Create creates an order and reserves stock for every line in one
// transaction. Each line's allocation is persisted with the line.
func (s *OrderService) Create(ctx context.Context, cmd CreateOrderCommand) (OrderView, error) {
	number := cmd.OrderNumber
	if number == "" {
		number = s.generateOrderNumber()
	}

	order, err := trade.NewOrder(number, cmd.ClientName, cmd.DeliveryDate)
	if err != nil {
		return OrderView{}, err
	}
	order.Notes = cmd.Notes
	order.CreatedBy = cmd.CreatedBy

	var warnings []string
	err = s.scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		if existing, err := repos.Orders.FindByNumber(ctx, number); err == nil && existing != nil {
			return shared.NewDomainError("DUPLICATE_ORDER_NUMBER",
				fmt.Sprintf("Order %s already exists", number))
		}

		for _, input := range cmd.Items {
			product, err := repos.Products.FindByID(ctx, input.ProductID)
			if err != nil {
				return fmt.Errorf("failed to load product %s: %w", input.ProductID, err)
			}

			item, err := order.AddItem(product.ID, input.Quantity, product.PiecesPerBox)
			if err != nil {
				return err
			}

			alloc, err := s.reservations.ReserveLine(ctx, repos, appinv.ItemReservation{
				ItemID:    item.ID,
				ProductID: product.ID,
				Quantity:  input.Quantity,
			})
			if err != nil {
				return fmt.Errorf("failed to reserve %s: %w", product.Name, err)
			}
			item.AllocatedBatches = alloc

			if short := alloc.Shortage(); short > 0 {
				warnings = append(warnings, fmt.Sprintf(
					"%s: short %d of %d pieces", product.Name, short, input.Quantity))
			}
		}

		if err := repos.Orders.Save(ctx, order); err != nil {
			return fmt.Errorf("failed to save order: %w", err)
		}

		entry, err := audit.NewOperationLog(audit.OperationOrder,
			fmt.Sprintf("Created order %s for %s with %d items",
				order.OrderNumber, order.ClientName, len(order.Items)),
			cmd.CreatedBy)
		if err != nil {
			return err
		}
		entry.WithEntity("order", order.ID)
		return repos.Audit.Append(ctx, entry)
	})
	if err != nil {
		return OrderView{}, err
	}

	s.logger.Info("order created",
		zap.String("order_number", order.OrderNumber),
		zap.Int("items", len(order.Items)),
		zap.Int("warnings", len(warnings)))
	return OrderView{Order: order, Warnings: warnings}, nil
}

// Get finds an order with its items
func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	return s.orders.FindByID(ctx, id)
}

// List lists orders matching the filter
func (s *OrderService) List(ctx context.Context, filter shared.Filter) ([]trade.Order, int64, error) {
	orders, err := s.orders.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	total, err := s.orders.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return orders, total, nil
}

// Cancel cancels an order and releases every line's reservation.
// Releases are best-effort so a cancellation always completes.
func (s *OrderService) Cancel(ctx context.Context, id uuid.UUID, user string) (*trade.Order, error) {
	var order *trade.Order

	err := s.scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		var err error
		order, err = repos.Orders.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := order.Cancel(); err != nil {
			return err
		}

		for i := range order.Items {
			item := &order.Items[i]
			if _, err := s.reservations.ReleaseLines(ctx, repos, item.AllocatedBatches.ReleaseTuples()); err != nil {
				return err
			}
			item.AllocatedBatches = nil
		}

		if err := repos.Orders.Save(ctx, order); err != nil {
			return fmt.Errorf("failed to save order: %w", err)
		}

		entry, err := audit.NewOperationLog(audit.OperationOrder,
			fmt.Sprintf("Cancelled order %s", order.OrderNumber), user)
		if err != nil {
			return err
		}
		entry.WithEntity("order", order.ID)
		return repos.Audit.Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order cancelled", zap.String("order_number", order.OrderNumber))
	return order, nil
}

// UpdateStatus transitions an order through its lifecycle. Shipping
// consumes every line's reserved quantities: the stock leaves the batches
// permanently and an OUT movement is ledgered per line.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, cmd UpdateStatusCommand) (*trade.Order, error) {
	var order *trade.Order

	err := s.scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		var err error
		order, err = repos.Orders.FindByID(ctx, id)
		if err != nil {
			return err
		}

		switch cmd.Status {
		case trade.OrderStatusConfirmed:
			if err := order.Confirm(); err != nil {
				return err
			}
		case trade.OrderStatusShipped:
			if err := order.Ship(); err != nil {
				return err
			}
			for i := range order.Items {
				item := &order.Items[i]
				if _, err := s.reservations.ConsumeLine(ctx, repos,
					item.ProductID, item.AllocatedBatches, cmd.User); err != nil {
					return err
				}
			}
		case trade.OrderStatusCancelled:
			return shared.NewDomainError("INVALID_STATE",
				"Cancellation goes through the cancel operation")
		default:
			return shared.NewDomainError("VALIDATION_ERROR",
				fmt.Sprintf("Unknown order status %q", cmd.Status))
		}

		if err := repos.Orders.Save(ctx, order); err != nil {
			return fmt.Errorf("failed to save order: %w", err)
		}

		entry, err := audit.NewOperationLog(audit.OperationOrder,
			fmt.Sprintf("Order %s moved to %s", order.OrderNumber, order.Status), cmd.User)
		if err != nil {
			return err
		}
		entry.WithEntity("order", order.ID)
		return repos.Audit.Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order status updated",
		zap.String("order_number", order.OrderNumber),
		zap.String("status", string(order.Status)))
	return order, nil
}

// UpdateItems replaces the order's lines. Existing reservations are
// released first, then the new lines are reserved from scratch so the
// allocation again follows the oldest batches.
func (s *OrderService) UpdateItems(ctx context.Context, id uuid.UUID, cmd UpdateOrderItemsCommand) (OrderView, error) {
	var (
		order    *trade.Order
		warnings []string
	)

	err := s.scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		var err error
		order, err = repos.Orders.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !order.CanModify() {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Order %s cannot be modified in status %s", order.OrderNumber, order.Status))
		}

		for i := range order.Items {
			if _, err := s.reservations.ReleaseLines(ctx, repos, order.Items[i].AllocatedBatches.ReleaseTuples()); err != nil {
				return err
			}
		}
		order.Items = order.Items[:0]

		for _, input := range cmd.Items {
			product, err := repos.Products.FindByID(ctx, input.ProductID)
			if err != nil {
				return fmt.Errorf("failed to load product %s: %w", input.ProductID, err)
			}

			item, err := order.AddItem(product.ID, input.Quantity, product.PiecesPerBox)
			if err != nil {
				return err
			}

			alloc, err := s.reservations.ReserveLine(ctx, repos, appinv.ItemReservation{
				ItemID:    item.ID,
				ProductID: product.ID,
				Quantity:  input.Quantity,
			})
			if err != nil {
				return fmt.Errorf("failed to reserve %s: %w", product.Name, err)
			}
			item.AllocatedBatches = alloc

			if short := alloc.Shortage(); short > 0 {
				warnings = append(warnings, fmt.Sprintf(
					"%s: short %d of %d pieces", product.Name, short, input.Quantity))
			}
		}

		if err := repos.Orders.Save(ctx, order); err != nil {
			return fmt.Errorf("failed to save order: %w", err)
		}

		entry, err := audit.NewOperationLog(audit.OperationOrder,
			fmt.Sprintf("Updated items of order %s", order.OrderNumber), cmd.User)
		if err != nil {
			return err
		}
		entry.WithEntity("order", order.ID)
		return repos.Audit.Append(ctx, entry)
	})
	if err != nil {
		return OrderView{}, err
	}

	return OrderView{Order: order, Warnings: warnings}, nil
}

func (s *OrderService) generateOrderNumber() string {
	suffix := strings.Split(uuid.New().String(), "-")[0]
	return fmt.Sprintf("ORD-%s-%s", s.now().Format("20060102"), strings.ToUpper(suffix))
}
