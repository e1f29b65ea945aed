package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaginatedResponse wraps list responses with pagination metadata
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// --- Auth ---

// LoginRequest is the credential payload for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginResponse carries the signed token and the authenticated user
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserDTO   `json:"user"`
}

// UserDTO is the public view of a user account
type UserDTO struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Role        string    `json:"role"`
}

// ToUserDTO maps a User to its DTO
func ToUserDTO(u *User) UserDTO {
	return UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
	}
}

// --- Orders ---

// OrderProductInput is one line item on order creation
type OrderProductInput struct {
	Name     string          `json:"name" validate:"required,max=200"`
	Quantity int             `json:"quantity" validate:"required,gt=0"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category,omitempty" validate:"max=100"`
	Features []string        `json:"features,omitempty"`
}

// InvoiceDataInput carries billing data on order creation/update
type InvoiceDataInput struct {
	RUC          string `json:"ruc" validate:"max=20"`
	BusinessName string `json:"businessName" validate:"max=200"`
	Email        string `json:"email" validate:"omitempty,email"`
	Address      string `json:"address" validate:"max=500"`
}

// CreateOrderRequest is the payload for POST /orders
type CreateOrderRequest struct {
	CustomerName    string              `json:"customerName" validate:"required,max=200"`
	CustomerPhone   string              `json:"customerPhone" validate:"max=50"`
	DeliveryDate    time.Time           `json:"deliveryDate" validate:"required"`
	DeliveryType    string              `json:"deliveryType" validate:"required,oneof=pickup retiro delivery"`
	Branch          string              `json:"branch,omitempty" validate:"max=100"`
	DeliveryAddress string              `json:"deliveryAddress,omitempty" validate:"max=500"`
	GoogleMapsLink  string              `json:"googleMapsLink,omitempty" validate:"omitempty,url"`
	Products        []OrderProductInput `json:"products" validate:"required,min=1,dive"`
	InvoiceNeeded   bool                `json:"invoiceNeeded"`
	InvoiceData     *InvoiceDataInput   `json:"invoiceData,omitempty"`
	Comments        string              `json:"comments,omitempty"`
	Responsible     string              `json:"responsible" validate:"required,max=100"`
	SalesChannel    string              `json:"salesChannel" validate:"max=100"`
	PaymentMethod   string              `json:"paymentMethod" validate:"max=100"`
	DeliveryValue   decimal.Decimal     `json:"deliveryValue"`
}

// UpdateOrderRequest is the payload for PUT /orders/{id}
type UpdateOrderRequest struct {
	CustomerName    *string             `json:"customerName,omitempty" validate:"omitempty,max=200"`
	CustomerPhone   *string             `json:"customerPhone,omitempty" validate:"omitempty,max=50"`
	DeliveryDate    *time.Time          `json:"deliveryDate,omitempty"`
	DeliveryType    *string             `json:"deliveryType,omitempty" validate:"omitempty,oneof=pickup retiro delivery"`
	Branch          *string             `json:"branch,omitempty" validate:"omitempty,max=100"`
	DeliveryAddress *string             `json:"deliveryAddress,omitempty" validate:"omitempty,max=500"`
	Comments        *string             `json:"comments,omitempty"`
	Products        []OrderProductInput `json:"products,omitempty" validate:"omitempty,min=1,dive"`
	DeliveryValue   *decimal.Decimal    `json:"deliveryValue,omitempty"`
}

// UpdateInvoiceRequest is the payload for PUT /orders/{id}/invoice
type UpdateInvoiceRequest struct {
	InvoiceNeeded bool              `json:"invoiceNeeded"`
	InvoiceData   *InvoiceDataInput `json:"invoiceData,omitempty"`
}

// RegisterPaymentRequest is the payload for POST /orders/{id}/collection
type RegisterPaymentRequest struct {
	Method        string          `json:"method" validate:"required,max=100"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	Date          time.Time       `json:"date"`
	VoucherNumber string          `json:"voucherNumber,omitempty" validate:"max=100"`
	Reference     string          `json:"reference,omitempty" validate:"max=200"`
}

// OrderProductDTO is the public view of a line item
type OrderProductDTO struct {
	Name            string          `json:"name"`
	Quantity        int             `json:"quantity"`
	PendingQuantity *int            `json:"pendingQuantity,omitempty"`
	Price           decimal.Decimal `json:"price"`
	Category        string          `json:"category,omitempty"`
	Features        []string        `json:"features,omitempty"`
}

// PaymentDTO is the public view of a registered payment
type PaymentDTO struct {
	ID            uuid.UUID       `json:"id"`
	Method        string          `json:"method"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	VoucherNumber string          `json:"voucherNumber,omitempty"`
	Reference     string          `json:"reference,omitempty"`
}

// OrderDTO is the public view of an order
type OrderDTO struct {
	ID              uuid.UUID         `json:"id"`
	CustomerName    string            `json:"customerName"`
	CustomerPhone   string            `json:"customerPhone,omitempty"`
	OrderDate       time.Time         `json:"orderDate"`
	DeliveryDate    time.Time         `json:"deliveryDate"`
	DeliveryType    string            `json:"deliveryType"`
	Branch          string            `json:"branch,omitempty"`
	DeliveryAddress string            `json:"deliveryAddress,omitempty"`
	GoogleMapsLink  string            `json:"googleMapsLink,omitempty"`
	Comments        string            `json:"comments,omitempty"`
	Responsible     string            `json:"responsible"`
	SalesChannel    string            `json:"salesChannel,omitempty"`
	PaymentMethod   string            `json:"paymentMethod,omitempty"`
	InvoiceNeeded   bool              `json:"invoiceNeeded"`
	InvoiceData     *InvoiceData      `json:"invoiceData,omitempty"`
	InvoiceStatus   string            `json:"invoiceStatus"`
	TotalValue      decimal.Decimal   `json:"totalValue"`
	DeliveryValue   decimal.Decimal   `json:"deliveryValue"`
	ProductionStage string            `json:"productionStage"`
	ProductionNotes string            `json:"productionNotes,omitempty"`
	Products        []OrderProductDTO `json:"products"`
	Payments        []PaymentDTO      `json:"payments,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// CreateOrderResponse is returned from POST /orders
type CreateOrderResponse struct {
	Message         string   `json:"message"`
	Order           OrderDTO `json:"order"`
	WhatsappMessage string   `json:"whatsappMessage"`
}

// --- Production ---

// SummaryOrderDTO is an order reference inside a production summary item
type SummaryOrderDTO struct {
	ID             uuid.UUID `json:"id"`
	Quantity       int       `json:"quantity"`
	PendingInOrder *int      `json:"pendingInOrder,omitempty"`
	Client         string    `json:"client"`
	Delivery       time.Time `json:"delivery"`
	Stage          string    `json:"stage"`
}

// SummaryItemDTO is one aggregated product inside a bucket
type SummaryItemDTO struct {
	ProductName   string            `json:"productName"`
	Category      string            `json:"category"`
	TotalQuantity int               `json:"totalQuantity"`
	Urgency       time.Time         `json:"urgency"`
	Orders        []SummaryOrderDTO `json:"orders"`
}

// SummaryResponse is the envelope of GET /production/summary
type SummaryResponse struct {
	Dashboard map[string][]SummaryItemDTO `json:"dashboard"`
}

// ProductionTaskDTO is the raw-mode view of one order in production
type ProductionTaskDTO struct {
	ID              uuid.UUID         `json:"id"`
	CustomerName    string            `json:"customerName"`
	DeliveryDate    time.Time         `json:"deliveryDate"`
	DeliveryType    string            `json:"deliveryType,omitempty"`
	Branch          string            `json:"branch,omitempty"`
	ProductionStage string            `json:"productionStage"`
	ProductionNotes string            `json:"productionNotes,omitempty"`
	Products        []OrderProductDTO `json:"products"`
}

// UpdateTaskRequest updates a single production task
type UpdateTaskRequest struct {
	Stage *string `json:"stage,omitempty" validate:"omitempty,oneof=PENDING IN_PROCESS FINISHED"`
	Notes *string `json:"notes,omitempty"`
}

// BatchStageRequest is the payload for PATCH /production/batch
type BatchStageRequest struct {
	IDs   []uuid.UUID `json:"ids" validate:"required,min=1"`
	Stage string      `json:"stage" validate:"required,oneof=PENDING IN_PROCESS FINISHED"`
}

// ProgressItem is one {productName, quantity} pair of a progress registration
type ProgressItem struct {
	ProductName string `json:"productName" validate:"required,max=200"`
	Quantity    int    `json:"quantity" validate:"required,gt=0"`
}

// RegisterProgressRequest is the payload for POST /production/progress.
// A single item or a combined batch both use the same shape.
type RegisterProgressRequest struct {
	Items []ProgressItem `json:"items" validate:"required,min=1,dive"`
}

// RegisterProgressResponse reports how much progress was applied per product
type RegisterProgressResponse struct {
	Applied []ProgressResult `json:"applied"`
}

// ProgressResult is the per-product outcome of a progress registration
type ProgressResult struct {
	ProductName string `json:"productName"`
	Requested   int    `json:"requested"`
	Applied     int    `json:"applied"`
}

// CreateDispatchRequest registers a shipment to a branch
type CreateDispatchRequest struct {
	Destination string              `json:"destination" validate:"required,max=100"`
	Items       []DispatchItemInput `json:"items" validate:"required,min=1,dive"`
	Notes       string              `json:"notes,omitempty"`
	ReportedBy  string              `json:"reportedBy" validate:"required,max=100"`
}

// DispatchItemInput is one product line of a dispatch registration
type DispatchItemInput struct {
	ProductName  string `json:"productName" validate:"required,max=200"`
	QuantitySent int    `json:"quantitySent" validate:"required,gt=0"`
}

// ProductionReport summarizes finished production over a range
type ProductionReport struct {
	Range    string                  `json:"range"`
	From     time.Time               `json:"from"`
	To       time.Time               `json:"to"`
	Finished int                     `json:"finished"`
	Pending  int                     `json:"pending"`
	Products []ProductionReportEntry `json:"products"`
}

// ProductionReportEntry is one product row of a production report
type ProductionReportEntry struct {
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
}

// --- Warehouse ---

// CreateMovementRequest is the payload for POST /warehouse
type CreateMovementRequest struct {
	Type          string          `json:"type" validate:"required,oneof=IN OUT LOSS"`
	RawMaterialID uuid.UUID       `json:"rawMaterialId" validate:"required"`
	Quantity      decimal.Decimal `json:"quantity" validate:"required"`
	UnitCost      decimal.Decimal `json:"unitCost"`
	Date          time.Time       `json:"date"`
	Responsible   string          `json:"responsible" validate:"required,max=100"`
	Entity        string          `json:"entity,omitempty" validate:"max=200"`
	Reason        string          `json:"reason,omitempty" validate:"max=200"`
	Observation   string          `json:"observation,omitempty"`
	ProviderID    *uuid.UUID      `json:"providerId,omitempty"`
}

// MovementDTO is the public view of a stock movement
type MovementDTO struct {
	ID          uuid.UUID       `json:"id"`
	Type        string          `json:"type"`
	RawMaterial RawMaterialDTO  `json:"rawMaterial"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unitCost"`
	TotalValue  decimal.Decimal `json:"totalValue"`
	Date        time.Time       `json:"date"`
	Responsible string          `json:"responsible,omitempty"`
	Entity      string          `json:"entity,omitempty"`
	Reason      string          `json:"reason,omitempty"`
	Observation string          `json:"observation,omitempty"`
	Provider    *ProviderDTO    `json:"provider,omitempty"`
}

// RawMaterialDTO is the public view of a raw material
type RawMaterialDTO struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Unit     string          `json:"unit"`
	Quantity decimal.Decimal `json:"quantity"`
	UnitCost decimal.Decimal `json:"unitCost"`
	Provider *ProviderDTO    `json:"provider,omitempty"`
}

// CreateRawMaterialRequest is the payload for POST /warehouse/materials
type CreateRawMaterialRequest struct {
	Name       string          `json:"name" validate:"required,max=200"`
	Unit       string          `json:"unit" validate:"required,max=50"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unitCost"`
	ProviderID *uuid.UUID      `json:"providerId,omitempty"`
}

// ProviderDTO is the public view of a provider
type ProviderDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// CreateProviderRequest is the payload for POST /warehouse/providers
type CreateProviderRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// --- POS ---

// DispatchItemDTO is the public view of one dispatch line
type DispatchItemDTO struct {
	ProductName      string `json:"productName"`
	QuantitySent     int    `json:"quantitySent"`
	QuantityReceived *int   `json:"quantityReceived,omitempty"`
	ItemStatus       string `json:"itemStatus"`
}

// IncomingDispatchDTO is a dispatch as seen by a POS branch
type IncomingDispatchDTO struct {
	OrderID         uuid.UUID         `json:"orderId"`
	CustomerName    string            `json:"customerName"`
	DeliveryDate    time.Time         `json:"deliveryDate"`
	DispatchID      uuid.UUID         `json:"dispatchId"`
	Destination     string            `json:"destination"`
	ReportedAt      time.Time         `json:"reportedAt"`
	ReportedBy      string            `json:"reportedBy,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	ReceptionStatus string            `json:"receptionStatus"`
	ReceivedAt      *time.Time        `json:"receivedAt,omitempty"`
	ReceivedBy      string            `json:"receivedBy,omitempty"`
	ReceptionNotes  string            `json:"receptionNotes,omitempty"`
	Items           []DispatchItemDTO `json:"items"`
}

// ReceptionItemInput reports the received state of one dispatch line
type ReceptionItemInput struct {
	ProductName      string `json:"productName" validate:"required"`
	QuantityReceived int    `json:"quantityReceived" validate:"gte=0"`
	ItemStatus       string `json:"itemStatus" validate:"required,oneof=OK MISSING DAMAGED"`
}

// ConfirmReceptionRequest is the payload for dispatch reception
type ConfirmReceptionRequest struct {
	ReceivedBy     string               `json:"receivedBy" validate:"required,max=100"`
	ReceptionNotes string               `json:"receptionNotes,omitempty"`
	Items          []ReceptionItemInput `json:"items" validate:"required,min=1,dive"`
}

// --- Analytics ---

// ResponsibleSales is one row of the sales-by-responsible report
type ResponsibleSales struct {
	Responsible string          `json:"responsible"`
	TotalSales  decimal.Decimal `json:"totalSales"`
	Count       int             `json:"count"`
}

// DateRange bounds an analytics query
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// SalesByResponsibleResponse is the envelope of the sales report
type SalesByResponsibleResponse struct {
	Message string             `json:"message"`
	Range   DateRange          `json:"range"`
	Stats   []ResponsibleSales `json:"stats"`
}
