package trade

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/inventory"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/shared"
)

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "NEW"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Order is a client order whose line items hold batch reservations.
// It is the aggregate root for order operations.
type Order struct {
	shared.BaseEntity
	OrderNumber  string      `gorm:"type:varchar(50);not null;uniqueIndex"`
	ClientName   string      `gorm:"type:varchar(200);not null"`
	DeliveryDate *time.Time  `gorm:"type:date"`
	Status       OrderStatus `gorm:"type:varchar(20);not null;default:'NEW'"`
	Notes        string      `gorm:"type:text"`
	CreatedBy    string      `gorm:"type:varchar(100)"`

	Items []OrderItem `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// OrderItem is one order line. AllocatedBatches holds the FIFO allocation
// backing the requested quantity; it is released when the order is cancelled
// or edited before fulfillment.
type OrderItem struct {
	shared.BaseEntity
	OrderID          uuid.UUID            `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID            `gorm:"type:uuid;not null;index"`
	Quantity         int                  `gorm:"not null"`
	Boxes            int                  `gorm:"not null;default:0"`
	Pieces           int                  `gorm:"not null;default:0"`
	AllocatedBatches inventory.Allocation `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// NewOrder creates a new order with the given line quantities
func NewOrder(orderNumber, clientName string, deliveryDate *time.Time) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if clientName == "" {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client name cannot be empty")
	}

	return &Order{
		BaseEntity:   shared.NewBaseEntity(),
		OrderNumber:  orderNumber,
		ClientName:   clientName,
		DeliveryDate: deliveryDate,
		Status:       OrderStatusNew,
		Items:        make([]OrderItem, 0),
	}, nil
}

// AddItem appends a line item, decomposing the quantity into boxes and pieces
func (o *Order) AddItem(productID uuid.UUID, quantity, piecesPerBox int) (*OrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be positive")
	}
	if piecesPerBox <= 0 {
		piecesPerBox = 1
	}

	item := OrderItem{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    o.ID,
		ProductID:  productID,
		Quantity:   quantity,
		Boxes:      quantity / piecesPerBox,
		Pieces:     quantity % piecesPerBox,
	}
	o.Items = append(o.Items, item)
	o.Touch()
	return &o.Items[len(o.Items)-1], nil
}

// CanModify returns true while reservations may still be changed
func (o *Order) CanModify() bool {
	return o.Status == OrderStatusNew || o.Status == OrderStatusConfirmed
}

// Confirm moves a new order into the confirmed state
func (o *Order) Confirm() error {
	if o.Status != OrderStatusNew {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Order %s cannot be confirmed in status %s", o.OrderNumber, o.Status))
	}
	o.Status = OrderStatusConfirmed
	o.Touch()
	return nil
}

// Ship marks the order shipped; callers consume its reservations
func (o *Order) Ship() error {
	if !o.CanModify() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Order %s cannot be shipped in status %s", o.OrderNumber, o.Status))
	}
	o.Status = OrderStatusShipped
	o.Touch()
	return nil
}

// Cancel marks the order cancelled; callers release its reservations
func (o *Order) Cancel() error {
	if !o.CanModify() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Order %s cannot be cancelled in status %s", o.OrderNumber, o.Status))
	}
	o.Status = OrderStatusCancelled
	o.Touch()
	return nil
}
