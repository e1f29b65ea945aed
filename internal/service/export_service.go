package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/horno-sanmarino/bakery-api/internal/repository"
	"github.com/horno-sanmarino/bakery-api/internal/storage"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const exportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportService renders order listings as XLSX workbooks. Generated files
// are also archived to storage so exports can be re-downloaded later.
type ExportService struct {
	orderRepo *repository.OrderRepository
	store     storage.Storage
	location  *time.Location
	logger    *zap.Logger
}

func NewExportService(orderRepo *repository.OrderRepository, store storage.Storage, location *time.Location, logger *zap.Logger) *ExportService {
	if location == nil {
		location = time.UTC
	}
	return &ExportService{
		orderRepo: orderRepo,
		store:     store,
		location:  location,
		logger:    logger,
	}
}

// ExportResult carries a rendered workbook and its suggested filename
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

var exportHeaders = []string{
	"Fecha pedido", "Fecha entrega", "Cliente", "Teléfono", "Productos",
	"Total", "Valor envío", "Responsable", "Canal", "Etapa", "Factura",
}

// Orders renders the orders delivered inside [from, to) as an XLSX workbook
func (s *ExportService) Orders(ctx context.Context, from, to *time.Time) (*ExportResult, error) {
	orders, err := s.orderRepo.ListByDeliveryWindow(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Pedidos"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}
	endHeader, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err := f.SetCellStyle(sheet, "A1", endHeader, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i := range orders {
		order := &orders[i]
		row := i + 2

		products := make([]string, 0, len(order.Products))
		for j := range order.Products {
			p := &order.Products[j]
			products = append(products, fmt.Sprintf("%dx %s", p.Quantity, p.Name))
		}

		totalValue, _ := order.TotalValue.Float64()
		deliveryValue, _ := order.DeliveryValue.Float64()

		invoice := "No"
		if order.InvoiceNeeded {
			invoice = string(order.InvoiceStatus)
		}

		values := []interface{}{
			order.OrderDate.In(s.location).Format("02/01/2006"),
			order.DeliveryDate.In(s.location).Format("02/01/2006 15:04"),
			order.CustomerName,
			order.CustomerPhone,
			strings.Join(products, ", "),
			totalValue,
			deliveryValue,
			order.Responsible,
			order.SalesChannel,
			string(order.ProductionStage),
			invoice,
		}
		for j, value := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	filename := fmt.Sprintf("pedidos_%s.xlsx", time.Now().In(s.location).Format("2006-01-02_150405"))

	if s.store != nil {
		storagePath, size, err := s.store.Upload(ctx, filename, exportContentType, bytes.NewReader(buf.Bytes()))
		if err != nil {
			s.logger.Warn("Failed to archive export", zap.Error(err))
		} else {
			s.logger.Info("Export archived",
				zap.String("storage_path", storagePath),
				zap.Int64("size", size),
			)
		}
	}

	s.logger.Info("Orders exported",
		zap.Int("orders", len(orders)),
		zap.String("filename", filename),
	)

	return &ExportResult{
		Filename:    filename,
		ContentType: exportContentType,
		Data:        buf.Bytes(),
	}, nil
}
