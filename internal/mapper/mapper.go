package mapper

import (
	"github.com/horno-sanmarino/bakery-api/internal/domain"
)

// ToOrderDTO converts Order to OrderDTO
func ToOrderDTO(order *domain.Order) domain.OrderDTO {
	dto := domain.OrderDTO{
		ID:              order.ID,
		CustomerName:    order.CustomerName,
		CustomerPhone:   order.CustomerPhone,
		OrderDate:       order.OrderDate,
		DeliveryDate:    order.DeliveryDate,
		DeliveryType:    string(order.DeliveryType),
		Branch:          order.Branch,
		DeliveryAddress: order.DeliveryAddress,
		GoogleMapsLink:  order.GoogleMapsLink,
		Comments:        order.Comments,
		Responsible:     order.Responsible,
		SalesChannel:    order.SalesChannel,
		PaymentMethod:   order.PaymentMethod,
		InvoiceNeeded:   order.InvoiceNeeded,
		InvoiceStatus:   string(order.InvoiceStatus),
		TotalValue:      order.TotalValue,
		DeliveryValue:   order.DeliveryValue,
		ProductionStage: string(order.ProductionStage),
		ProductionNotes: order.ProductionNotes,
		Products:        make([]domain.OrderProductDTO, 0, len(order.Products)),
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}

	if order.InvoiceNeeded {
		invoiceData := order.InvoiceData
		dto.InvoiceData = &invoiceData
	}

	for i := range order.Products {
		dto.Products = append(dto.Products, ToOrderProductDTO(&order.Products[i]))
	}
	for i := range order.Payments {
		dto.Payments = append(dto.Payments, ToPaymentDTO(&order.Payments[i]))
	}

	return dto
}

// ToOrderProductDTO converts OrderProduct to OrderProductDTO
func ToOrderProductDTO(product *domain.OrderProduct) domain.OrderProductDTO {
	return domain.OrderProductDTO{
		Name:            product.Name,
		Quantity:        product.Quantity,
		PendingQuantity: product.PendingQuantity,
		Price:           product.UnitPrice,
		Category:        product.Category,
		Features:        product.Features,
	}
}

// ToPaymentDTO converts Payment to PaymentDTO
func ToPaymentDTO(payment *domain.Payment) domain.PaymentDTO {
	return domain.PaymentDTO{
		ID:            payment.ID,
		Method:        payment.Method,
		Amount:        payment.Amount,
		Date:          payment.Date,
		VoucherNumber: payment.VoucherNumber,
		Reference:     payment.Reference,
	}
}

// ToProductionTaskDTO converts an Order to its raw production-board view
func ToProductionTaskDTO(order *domain.Order) domain.ProductionTaskDTO {
	dto := domain.ProductionTaskDTO{
		ID:              order.ID,
		CustomerName:    order.CustomerName,
		DeliveryDate:    order.DeliveryDate,
		DeliveryType:    string(order.DeliveryType),
		Branch:          order.Branch,
		ProductionStage: string(order.ProductionStage),
		ProductionNotes: order.ProductionNotes,
		Products:        make([]domain.OrderProductDTO, 0, len(order.Products)),
	}
	for i := range order.Products {
		dto.Products = append(dto.Products, ToOrderProductDTO(&order.Products[i]))
	}
	return dto
}

// ToRawMaterialDTO converts RawMaterial to RawMaterialDTO
func ToRawMaterialDTO(material *domain.RawMaterial) domain.RawMaterialDTO {
	dto := domain.RawMaterialDTO{
		ID:       material.ID,
		Name:     material.Name,
		Unit:     material.Unit,
		Quantity: material.Quantity,
		UnitCost: material.UnitCost,
	}
	if material.Provider != nil {
		provider := ToProviderDTO(material.Provider)
		dto.Provider = &provider
	}
	return dto
}

// ToProviderDTO converts Provider to ProviderDTO
func ToProviderDTO(provider *domain.Provider) domain.ProviderDTO {
	return domain.ProviderDTO{
		ID:   provider.ID,
		Name: provider.Name,
	}
}

// ToMovementDTO converts StockMovement to MovementDTO
func ToMovementDTO(movement *domain.StockMovement) domain.MovementDTO {
	dto := domain.MovementDTO{
		ID:          movement.ID,
		Type:        string(movement.Type),
		Quantity:    movement.Quantity,
		UnitCost:    movement.UnitCost,
		TotalValue:  movement.TotalValue,
		Date:        movement.Date,
		Responsible: movement.Responsible,
		Entity:      movement.Entity,
		Reason:      movement.Reason,
		Observation: movement.Observation,
	}
	if movement.RawMaterial != nil {
		dto.RawMaterial = ToRawMaterialDTO(movement.RawMaterial)
	}
	if movement.Provider != nil {
		provider := ToProviderDTO(movement.Provider)
		dto.Provider = &provider
	}
	return dto
}

// ToDispatchItemDTO converts DispatchItem to DispatchItemDTO
func ToDispatchItemDTO(item *domain.DispatchItem) domain.DispatchItemDTO {
	return domain.DispatchItemDTO{
		ProductName:      item.ProductName,
		QuantitySent:     item.QuantitySent,
		QuantityReceived: item.QuantityReceived,
		ItemStatus:       string(item.ItemStatus),
	}
}

// ToIncomingDispatchDTO converts a Dispatch and its owning Order to the
// POS branch view
func ToIncomingDispatchDTO(dispatch *domain.Dispatch, order *domain.Order) domain.IncomingDispatchDTO {
	dto := domain.IncomingDispatchDTO{
		DispatchID:      dispatch.ID,
		Destination:     dispatch.Destination,
		ReportedAt:      dispatch.ReportedAt,
		ReportedBy:      dispatch.ReportedBy,
		Notes:           dispatch.Notes,
		ReceptionStatus: string(dispatch.ReceptionStatus),
		ReceivedAt:      dispatch.ReceivedAt,
		ReceivedBy:      dispatch.ReceivedBy,
		ReceptionNotes:  dispatch.ReceptionNotes,
		Items:           make([]domain.DispatchItemDTO, 0, len(dispatch.Items)),
	}
	if order != nil {
		dto.OrderID = order.ID
		dto.CustomerName = order.CustomerName
		dto.DeliveryDate = order.DeliveryDate
	}
	for i := range dispatch.Items {
		dto.Items = append(dto.Items, ToDispatchItemDTO(&dispatch.Items[i]))
	}
	return dto
}
