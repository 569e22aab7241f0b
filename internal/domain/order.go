package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentDebitCard    PaymentMethod = "debit_card"
	PaymentPayPal       PaymentMethod = "paypal"
	PaymentStripe       PaymentMethod = "stripe"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

// PaymentMethods lists the accepted labels with their display names.
var PaymentMethods = map[PaymentMethod]string{
	PaymentCreditCard:   "Credit Card",
	PaymentDebitCard:    "Debit Card",
	PaymentPayPal:       "PayPal",
	PaymentStripe:       "Stripe",
	PaymentBankTransfer: "Bank Transfer",
}

func (p PaymentMethod) Valid() bool {
	_, ok := PaymentMethods[p]
	return ok
}

type OrderStatus string

// Only pending is ever assigned; nothing transitions an order to completed or cancelled.
const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// Order is an immutable purchase record. Amount is captured at creation and does not
// follow later listing price changes.
type Order struct {
	OrderID       uuid.UUID       `gorm:"column:order_id;type:uuid;primaryKey" json:"order_id"`
	BuyerID       uuid.UUID       `gorm:"column:buyer_id;type:uuid;not null;index" json:"buyer_id"`
	ListingID     uuid.UUID       `gorm:"column:listing_id;type:uuid;not null;index" json:"listing_id"`
	Amount        decimal.Decimal `gorm:"column:amount;type:decimal(10,2);not null" json:"amount"`
	PaymentMethod PaymentMethod   `gorm:"column:payment_method;type:varchar(20);not null" json:"payment_method"`
	Status        OrderStatus     `gorm:"column:status;type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt     time.Time       `gorm:"column:createdAt;index" json:"createdAt"`
	UpdatedAt     time.Time       `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Order) TableName() string {
	return "Orders"
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.OrderID == uuid.Nil {
		o.OrderID = uuid.New()
	}
	if o.Status == "" {
		o.Status = OrderPending
	}
	return nil
}
