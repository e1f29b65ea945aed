package domain

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an ID when the database does not (sqlite in tests)
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// ProductionStage represents the lifecycle stage of an order in production
type ProductionStage string

const (
	StagePending   ProductionStage = "PENDING"
	StageInProcess ProductionStage = "IN_PROCESS"
	StageFinished  ProductionStage = "FINISHED"
	StageVoid      ProductionStage = "VOID"
)

// IsValid checks if the ProductionStage is a valid enum value
func (s ProductionStage) IsValid() bool {
	switch s {
	case StagePending, StageInProcess, StageFinished, StageVoid:
		return true
	}
	return false
}

// Active reports whether orders in this stage still demand production
func (s ProductionStage) Active() bool {
	return s != StageFinished && s != StageVoid
}

// DeliveryType represents how an order reaches the customer
type DeliveryType string

const (
	DeliveryTypePickup   DeliveryType = "pickup"
	DeliveryTypeRetiro   DeliveryType = "retiro"
	DeliveryTypeDelivery DeliveryType = "delivery"
)

// Branch names for the bakery's points of sale and production center
const (
	BranchSanMarino  = "San Marino"
	BranchMallDelSol = "Mall del Sol"
	BranchProduccion = "Centro de Producción"
)

// InvoiceStatus represents the state of the electronic invoice for an order
type InvoiceStatus string

const (
	InvoicePending   InvoiceStatus = "PENDING"
	InvoiceProcessed InvoiceStatus = "PROCESSED"
	InvoiceError     InvoiceStatus = "ERROR"
)

// InvoiceData holds the billing information attached to an order
type InvoiceData struct {
	RUC          string `gorm:"type:varchar(20);column:ruc" json:"ruc"`
	BusinessName string `gorm:"type:varchar(200)" json:"businessName"`
	Email        string `gorm:"type:varchar(255)" json:"email"`
	Address      string `gorm:"type:varchar(500)" json:"address"`
}

// StringList is a string slice stored as a native array on postgres and as
// the pq literal form elsewhere (sqlite in tests)
type StringList pq.StringArray

func (StringList) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

func (s *StringList) Scan(v interface{}) error {
	return (*pq.StringArray)(s).Scan(v)
}

func (s StringList) Value() (driver.Value, error) {
	return pq.StringArray(s).Value()
}

// Order represents a customer order
type Order struct {
	BaseModel
	CustomerName    string          `gorm:"type:varchar(200);not null;index"`
	CustomerPhone   string          `gorm:"type:varchar(50)"`
	OrderDate       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP;column:order_date"`
	DeliveryDate    time.Time       `gorm:"not null;index;column:delivery_date"`
	DeliveryType    DeliveryType    `gorm:"type:varchar(20);not null;default:'retiro';column:delivery_type"`
	Branch          string          `gorm:"type:varchar(100)"`
	DeliveryAddress string          `gorm:"type:varchar(500);column:delivery_address"`
	GoogleMapsLink  string          `gorm:"type:varchar(500);column:google_maps_link"`
	Comments        string          `gorm:"type:text"`
	Responsible     string          `gorm:"type:varchar(100);index"`
	SalesChannel    string          `gorm:"type:varchar(100);column:sales_channel"`
	PaymentMethod   string          `gorm:"type:varchar(100);column:payment_method"`
	InvoiceNeeded   bool            `gorm:"not null;default:false;column:invoice_needed"`
	InvoiceData     InvoiceData     `gorm:"embedded;embeddedPrefix:invoice_"`
	InvoiceStatus   InvoiceStatus   `gorm:"type:varchar(20);not null;default:'PENDING';column:invoice_status"`
	TotalValue      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0;column:total_value"`
	DeliveryValue   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0;column:delivery_value"`
	ProductionStage ProductionStage `gorm:"type:varchar(20);not null;default:'PENDING';index;column:production_stage"`
	ProductionNotes string          `gorm:"type:text;column:production_notes"`
	Products        []OrderProduct  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payments        []Payment       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Dispatches      []Dispatch      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderProduct is a single line item of an order
type OrderProduct struct {
	BaseModel
	OrderID         uuid.UUID       `gorm:"type:uuid;not null;index;column:order_id"`
	Name            string          `gorm:"type:varchar(200);not null;index"`
	Quantity        int             `gorm:"not null"`
	PendingQuantity *int            `gorm:"column:pending_quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0;column:unit_price"`
	Category        string          `gorm:"type:varchar(100)"`
	Features        StringList
}

// Remaining returns the quantity still to be produced, preferring the
// explicit pending counter when the backend tracks partial progress.
func (p *OrderProduct) Remaining() int {
	if p.PendingQuantity != nil {
		return *p.PendingQuantity
	}
	return p.Quantity
}

// Payment records a collection registered against an order
type Payment struct {
	BaseModel
	OrderID       uuid.UUID       `gorm:"type:uuid;not null;index;column:order_id"`
	Method        string          `gorm:"type:varchar(100);not null"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Date          time.Time       `gorm:"not null"`
	VoucherNumber string          `gorm:"type:varchar(100);column:voucher_number"`
	Reference     string          `gorm:"type:varchar(200)"`
}

// ReceptionStatus represents the POS-side state of a dispatch
type ReceptionStatus string

const (
	ReceptionPending  ReceptionStatus = "PENDING"
	ReceptionReceived ReceptionStatus = "RECEIVED"
	ReceptionProblem  ReceptionStatus = "PROBLEM"
)

// DispatchItemStatus classifies each item on reception
type DispatchItemStatus string

const (
	DispatchItemOK      DispatchItemStatus = "OK"
	DispatchItemMissing DispatchItemStatus = "MISSING"
	DispatchItemDamaged DispatchItemStatus = "DAMAGED"
)

// Dispatch is a shipment from the production center to a branch
type Dispatch struct {
	BaseModel
	OrderID         uuid.UUID       `gorm:"type:uuid;not null;index;column:order_id"`
	Destination     string          `gorm:"type:varchar(100);not null;index"`
	Notes           string          `gorm:"type:text"`
	ReportedBy      string          `gorm:"type:varchar(100);column:reported_by"`
	ReportedAt      time.Time       `gorm:"not null;column:reported_at"`
	ReceptionStatus ReceptionStatus `gorm:"type:varchar(20);not null;default:'PENDING';column:reception_status"`
	ReceivedAt      *time.Time      `gorm:"column:received_at"`
	ReceivedBy      string          `gorm:"type:varchar(100);column:received_by"`
	ReceptionNotes  string          `gorm:"type:text;column:reception_notes"`
	Items           []DispatchItem  `gorm:"foreignKey:DispatchID;constraint:OnDelete:CASCADE"`
}

// DispatchItem is one product line of a dispatch
type DispatchItem struct {
	BaseModel
	DispatchID       uuid.UUID          `gorm:"type:uuid;not null;index;column:dispatch_id"`
	ProductName      string             `gorm:"type:varchar(200);not null;column:product_name"`
	QuantitySent     int                `gorm:"not null;column:quantity_sent"`
	QuantityReceived *int               `gorm:"column:quantity_received"`
	ItemStatus       DispatchItemStatus `gorm:"type:varchar(20);not null;default:'OK';column:item_status"`
}

// Provider is a raw-material supplier
type Provider struct {
	BaseModel
	Name string `gorm:"type:varchar(200);not null;uniqueIndex"`
}

// RawMaterial is a warehouse stock item
type RawMaterial struct {
	BaseModel
	Name       string          `gorm:"type:varchar(200);not null;uniqueIndex"`
	Unit       string          `gorm:"type:varchar(50);not null"`
	Quantity   decimal.Decimal `gorm:"type:numeric(12,3);not null;default:0"`
	UnitCost   decimal.Decimal `gorm:"type:numeric(12,4);not null;default:0;column:unit_cost"`
	ProviderID *uuid.UUID      `gorm:"type:uuid;column:provider_id"`
	Provider   *Provider       `gorm:"foreignKey:ProviderID"`
}

// MovementType classifies warehouse stock movements
type MovementType string

const (
	MovementIn   MovementType = "IN"
	MovementOut  MovementType = "OUT"
	MovementLoss MovementType = "LOSS"
)

// IsValid checks if the MovementType is a valid enum value
func (m MovementType) IsValid() bool {
	switch m {
	case MovementIn, MovementOut, MovementLoss:
		return true
	}
	return false
}

// StockMovement records one entry, exit or loss of raw material
type StockMovement struct {
	BaseModel
	Type          MovementType    `gorm:"type:varchar(10);not null;index"`
	RawMaterialID uuid.UUID       `gorm:"type:uuid;not null;index;column:raw_material_id"`
	RawMaterial   *RawMaterial    `gorm:"foreignKey:RawMaterialID"`
	Quantity      decimal.Decimal `gorm:"type:numeric(12,3);not null"`
	UnitCost      decimal.Decimal `gorm:"type:numeric(12,4);not null;default:0;column:unit_cost"`
	TotalValue    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0;column:total_value"`
	Date          time.Time       `gorm:"not null;index"`
	Responsible   string          `gorm:"type:varchar(100)"`
	Entity        string          `gorm:"type:varchar(200)"`
	Reason        string          `gorm:"type:varchar(200)"`
	Observation   string          `gorm:"type:text"`
	ProviderID    *uuid.UUID      `gorm:"type:uuid;column:provider_id"`
	Provider      *Provider       `gorm:"foreignKey:ProviderID"`
}

// UserRole represents the access role of a user
type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleProduction UserRole = "production"
	RoleSales      UserRole = "sales"
	RolePOS        UserRole = "pos"
)

// IsValid checks if the UserRole is a valid enum value
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleProduction, RoleSales, RolePOS:
		return true
	}
	return false
}

// User is an application account
type User struct {
	BaseModel
	Email        string   `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string   `gorm:"type:varchar(255);not null;column:password_hash"`
	DisplayName  string   `gorm:"type:varchar(200);not null;column:display_name"`
	Role         UserRole `gorm:"type:varchar(50);not null;default:'sales'"`
	IsActive     bool     `gorm:"not null;default:true;column:is_active"`
}
