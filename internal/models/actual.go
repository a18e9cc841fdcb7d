package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SourceType identifies which expense pipeline produced an actual.
type SourceType string

const (
	SourceTypeMileage         SourceType = "mileage"
	SourceTypeKitRental       SourceType = "kit_rental"
	SourceTypePerDiem         SourceType = "per_diem"
	SourceTypeReceipt         SourceType = "receipt"
	SourceTypePurchaseOrder   SourceType = "purchase_order"
	SourceTypeInvoiceLineItem SourceType = "invoice_line_item"
	SourceTypeManual          SourceType = "manual"
)

// IsValid reports whether s is a known source type.
func (s SourceType) IsValid() bool {
	switch s {
	case SourceTypeMileage, SourceTypeKitRental, SourceTypePerDiem, SourceTypeReceipt,
		SourceTypePurchaseOrder, SourceTypeInvoiceLineItem, SourceTypeManual:
		return true
	}
	return false
}

// KitRentalRateKind describes how a kit rental was billed.
type KitRentalRateKind string

const (
	KitRentalFlat   KitRentalRateKind = "flat"
	KitRentalDaily  KitRentalRateKind = "daily"
	KitRentalWeekly KitRentalRateKind = "weekly"
)

// MileageDetails is the payload for mileage reimbursements.
type MileageDetails struct {
	Origin      string          `json:"origin"`
	Destination string          `json:"destination"`
	Miles       decimal.Decimal `json:"miles"`
}

// KitRentalDetails is the payload for equipment kit rentals.
type KitRentalDetails struct {
	Label    string            `json:"label"`
	RateKind KitRentalRateKind `json:"rate_kind"`
	Rate     decimal.Decimal   `json:"rate"`
	Days     int               `json:"days,omitempty"`
}

// PerDiemDetails is the payload for per-diem payouts.
type PerDiemDetails struct {
	PerDiemType string `json:"per_diem_type"`
	Days        int    `json:"days"`
}

// ReceiptDetails is the payload for scanned receipts.
type ReceiptDetails struct {
	Vendor string `json:"vendor"`
}

// PurchaseOrderDetails is the payload for approved purchase orders.
type PurchaseOrderDetails struct {
	PONumber string `json:"po_number"`
	Vendor   string `json:"vendor"`
}

// InvoiceLineItemDetails is the payload for vendor invoice lines.
type InvoiceLineItemDetails struct {
	InvoiceNumber string `json:"invoice_number"`
	Description   string `json:"description"`
}

// ManualDetails is the payload for manually entered expenses.
type ManualDetails struct {
	Description string `json:"description"`
}

// SourceDetails is a tagged union over the per-source payload shapes.
// Exactly one variant matching the actual's SourceType should be set.
type SourceDetails struct {
	Mileage         *MileageDetails         `json:"mileage,omitempty"`
	KitRental       *KitRentalDetails       `json:"kit_rental,omitempty"`
	PerDiem         *PerDiemDetails         `json:"per_diem,omitempty"`
	Receipt         *ReceiptDetails         `json:"receipt,omitempty"`
	PurchaseOrder   *PurchaseOrderDetails   `json:"purchase_order,omitempty"`
	InvoiceLineItem *InvoiceLineItemDetails `json:"invoice_line_item,omitempty"`
	Manual          *ManualDetails          `json:"manual,omitempty"`
}

// Summary renders the human-readable drill-down line for an actual,
// exhaustive over every source type.
func (d SourceDetails) Summary(sourceType SourceType) string {
	switch sourceType {
	case SourceTypeMileage:
		if d.Mileage == nil {
			return ""
		}
		return fmt.Sprintf("%s → %s (%s mi)", d.Mileage.Origin, d.Mileage.Destination, d.Mileage.Miles.String())
	case SourceTypeKitRental:
		if d.KitRental == nil {
			return ""
		}
		switch d.KitRental.RateKind {
		case KitRentalDaily:
			return fmt.Sprintf("%s (%s/day × %d days)", d.KitRental.Label, d.KitRental.Rate.StringFixed(2), d.KitRental.Days)
		case KitRentalWeekly:
			return fmt.Sprintf("%s (%s/week)", d.KitRental.Label, d.KitRental.Rate.StringFixed(2))
		default:
			return fmt.Sprintf("%s (flat)", d.KitRental.Label)
		}
	case SourceTypePerDiem:
		if d.PerDiem == nil {
			return ""
		}
		return fmt.Sprintf("%s - %d day(s)", d.PerDiem.PerDiemType, d.PerDiem.Days)
	case SourceTypeReceipt:
		if d.Receipt == nil {
			return ""
		}
		return d.Receipt.Vendor
	case SourceTypePurchaseOrder:
		if d.PurchaseOrder == nil {
			return ""
		}
		return fmt.Sprintf("PO %s - %s", d.PurchaseOrder.PONumber, d.PurchaseOrder.Vendor)
	case SourceTypeInvoiceLineItem:
		if d.InvoiceLineItem == nil {
			return ""
		}
		return fmt.Sprintf("%s - %s", d.InvoiceLineItem.InvoiceNumber, d.InvoiceLineItem.Description)
	case SourceTypeManual:
		if d.Manual == nil {
			return ""
		}
		return d.Manual.Description
	}
	return ""
}

// BudgetActual is a recorded real expense reconciled against the budget.
// Immutable once created except for re-categorization.
type BudgetActual struct {
	Base
	BudgetID   uint  `gorm:"not null;index" json:"budget_id"`
	CategoryID *uint `gorm:"index" json:"category_id,omitempty"`
	LineItemID *uint `gorm:"index" json:"line_item_id,omitempty"`

	// CategoryName is denormalized for display and for grouping stability
	// when a category is later renamed or removed.
	CategoryName string `json:"category_name"`

	SourceType SourceType      `gorm:"not null" json:"source_type"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	RecordedAt time.Time       `json:"recorded_at"`

	SubmitterID   uint   `gorm:"not null" json:"submitter_id"`
	SubmitterName string `json:"submitter_name"`

	SourceDetails SourceDetails `gorm:"serializer:json" json:"source_details"`
}
