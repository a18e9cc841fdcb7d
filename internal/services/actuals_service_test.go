package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"topsheet/internal/models"
	"topsheet/internal/testutil"
)

// testDec builds decimal literals for table cases declared outside t.Run.
func testDec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRecordActual(t *testing.T) {
	t.Run("updates_category_subtotal", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		catSvc := NewCategoryService(db)
		actSvc := NewActualsService(db, catSvc)
		budget := testutil.CreateTestBudget(t, db)
		category := testutil.CreateTestCategory(t, db, budget.ID, models.CategoryTypeProduction)

		actual, err := actSvc.RecordActual(budget.ID, RecordActualInput{
			CategoryID:    &category.ID,
			SourceType:    models.SourceTypeMileage,
			Amount:        testutil.Dec(t, "45.60"),
			SubmitterID:   12,
			SubmitterName: "Driver",
			SourceDetails: models.SourceDetails{Mileage: &models.MileageDetails{
				Origin:      "Stage 4",
				Destination: "Location A",
				Miles:       testutil.Dec(t, "76"),
			}},
		})
		testutil.AssertNoError(t, err)

		if actual.CategoryName != category.Name {
			t.Errorf("expected denormalized category name %q, got %q", category.Name, actual.CategoryName)
		}

		reloaded, err := catSvc.GetCategoryByID(category.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, testutil.Dec(t, "45.60"), reloaded.ActualSubtotal, "actual subtotal")
	})

	t.Run("line_item_mapping_accumulates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		catSvc := NewCategoryService(db)
		itemSvc := NewLineItemService(db, catSvc)
		actSvc := NewActualsService(db, catSvc)
		budget := testutil.CreateTestBudget(t, db)
		category := testutil.CreateTestCategory(t, db, budget.ID, models.CategoryTypeProduction)
		item, err := itemSvc.CreateLineItem(category.ID, CreateLineItemInput{
			Description: "Steadicam op",
			RateType:    models.RateTypeDaily,
			RateAmount:  testutil.Dec(t, "900.00"),
			Quantity:    testutil.Dec(t, "3"),
		})
		testutil.AssertNoError(t, err)

		for _, amount := range []string{"900.00", "900.00"} {
			_, err := actSvc.RecordActual(budget.ID, RecordActualInput{
				CategoryID:    &category.ID,
				LineItemID:    &item.ID,
				SourceType:    models.SourceTypeInvoiceLineItem,
				Amount:        testutil.Dec(t, amount),
				SubmitterID:   3,
				SubmitterName: "Coordinator",
				SourceDetails: models.SourceDetails{InvoiceLineItem: &models.InvoiceLineItemDetails{
					InvoiceNumber: "INV-204",
					Description:   "Day rate",
				}},
			})
			testutil.AssertNoError(t, err)
		}

		reloadedItem, err := itemSvc.GetLineItemByID(item.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, testutil.Dec(t, "1800.00"), reloadedItem.ActualTotal, "line item actual total")
	})

	t.Run("line_item_must_belong_to_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		catSvc := NewCategoryService(db)
		actSvc := NewActualsService(db, catSvc)
		budget := testutil.CreateTestBudget(t, db)
		catA := testutil.CreateTestCategory(t, db, budget.ID, models.CategoryTypeProduction)
		catB := testutil.CreateTestCategory(t, db, budget.ID, models.CategoryTypeProduction)
		item := testutil.CreateTestLineItem(t, db, catB.ID, models.RateTypeFlat, testutil.Dec(t, "100.00"), testutil.Dec(t, "1"))

		_, err := actSvc.RecordActual(budget.ID, RecordActualInput{
			CategoryID:    &catA.ID,
			LineItemID:    &item.ID,
			SourceType:    models.SourceTypeManual,
			Amount:        testutil.Dec(t, "10.00"),
			SubmitterID:   1,
			SourceDetails: models.SourceDetails{Manual: &models.ManualDetails{Description: "x"}},
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("uncategorized_receipt", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		catSvc := NewCategoryService(db)
		actSvc := NewActualsService(db, catSvc)
		budget := testutil.CreateTestBudget(t, db)

		actual, err := actSvc.RecordActual(budget.ID, RecordActualInput{
			SourceType:    models.SourceTypeReceipt,
			Amount:        testutil.Dec(t, "23.45"),
			SubmitterID:   5,
			SubmitterName: "PA",
			SourceDetails: models.SourceDetails{Receipt: &models.ReceiptDetails{Vendor: "Gas station"}},
		})
		testutil.AssertNoError(t, err)
		if actual.CategoryID != nil {
			t.Error("expected uncategorized actual")
		}
	})

	t.Run("locked_budget_still_accepts_actuals", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		budgetSvc := NewBudgetService(db)
		catSvc := NewCategoryService(db)
		actSvc := NewActualsService(db, catSvc)
		budget := testutil.CreateTestBudget(t, db)
		category := testutil.CreateTestCategory(t, db, budget.ID, models.CategoryTypeProduction)

		_, err := budgetSvc.LockBudget(budget.ID)
		testutil.AssertNoError(t, err)

		_, err = actSvc.RecordActual(budget.ID, RecordActualInput{
			CategoryID:    &category.ID,
			SourceType:    models.SourceTypeManual,
			Amount:        testutil.Dec(t, "500.00"),
			SubmitterID:   1,
			SourceDetails: models.SourceDetails{Manual: &models.ManualDetails{Description: "post-lock spend"}},
		})
		testutil.AssertNoError(t, err)
	})

	t.Run("archived_budget_rejects_actuals", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		budgetSvc := NewBudgetService(db)
		catSvc := NewCategoryService(db)
		actSvc := NewActualsService(db, catSvc)
		budget := testutil.CreateTestBudget(t, db)

		_, err := budgetSvc.TransitionStatus(budget.ID, models.BudgetStatusArchived)
		testutil.AssertNoError(t, err)

		_, err = actSvc.RecordActual(budget.ID, RecordActualInput{
			SourceType:    models.SourceTypeManual,
			Amount:        testutil.Dec(t, "1.00"),
			SubmitterID:   1,
			SourceDetails: models.SourceDetails{Manual: &models.ManualDetails{Description: "late"}},
		})
		testutil.AssertAppError(t, err, "BUDGET_LOCKED")
	})

	t.Run("non_positive_amount_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		catSvc := NewCategoryService(db)
		actSvc := NewActualsService(db, catSvc)
		budget := testutil.CreateTestBudget(t, db)

		_, err := actSvc.RecordActual(budget.ID, RecordActualInput{
			SourceType:    models.SourceTypeManual,
			Amount:        testutil.Dec(t, "0"),
			SubmitterID:   1,
			SourceDetails: models.SourceDetails{Manual: &models.ManualDetails{Description: "zero"}},
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestReassignActual(t *testing.T) {
	t.Run("moves_between_categories", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		catSvc := NewCategoryService(db)
		itemSvc := NewLineItemService(db, catSvc)
		actSvc := NewActualsService(db, catSvc)
		budget := testutil.CreateTestBudget(t, db)
		catA := testutil.CreateTestCategory(t, db, budget.ID, models.CategoryTypeProduction)
		catB := testutil.CreateTestCategory(t, db, budget.ID, models.CategoryTypeProduction)
		item, err := itemSvc.CreateLineItem(catA.ID, CreateLineItemInput{
			Description: "Set dressing",
			RateType:    models.RateTypeFlat,
			RateAmount:  testutil.Dec(t, "400.00"),
			Quantity:    testutil.Dec(t, "1"),
		})
		testutil.AssertNoError(t, err)

		actual, err := actSvc.RecordActual(budget.ID, RecordActualInput{
			CategoryID:    &catA.ID,
			LineItemID:    &item.ID,
			SourceType:    models.SourceTypeManual,
			Amount:        testutil.Dec(t, "400.00"),
			SubmitterID:   1,
			SourceDetails: models.SourceDetails{Manual: &models.ManualDetails{Description: "props"}},
		})
		testutil.AssertNoError(t, err)

		moved, err := actSvc.ReassignActual(actual.ID, &catB.ID)
		testutil.AssertNoError(t, err)

		if moved.LineItemID != nil {
			t.Error("expected line item mapping cleared on reassign")
		}

		reloadedA, err := catSvc.GetCategoryByID(catA.ID)
		testutil.AssertNoError(t, err)
		reloadedB, err := catSvc.GetCategoryByID(catB.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, testutil.Dec(t, "0"), reloadedA.ActualSubtotal, "old category subtotal")
		testutil.AssertDecimalEqual(t, testutil.Dec(t, "400.00"), reloadedB.ActualSubtotal, "new category subtotal")

		reloadedItem, err := itemSvc.GetLineItemByID(item.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, testutil.Dec(t, "0"), reloadedItem.ActualTotal, "old line item total")
	})

	t.Run("move_to_uncategorized", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		catSvc := NewCategoryService(db)
		actSvc := NewActualsService(db, catSvc)
		budget := testutil.CreateTestBudget(t, db)
		category := testutil.CreateTestCategory(t, db, budget.ID, models.CategoryTypeProduction)
		actual := testutil.CreateTestActual(t, db, budget.ID, &category.ID, testutil.Dec(t, "75.00"))

		moved, err := actSvc.ReassignActual(actual.ID, nil)
		testutil.AssertNoError(t, err)
		if moved.CategoryID != nil {
			t.Error("expected actual moved to uncategorized")
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		catSvc := NewCategoryService(db)
		actSvc := NewActualsService(db, catSvc)

		_, err := actSvc.ReassignActual(99999, nil)
		testutil.AssertAppError(t, err, "ACTUAL_NOT_FOUND")
	})
}

func TestGetBudgetActuals(t *testing.T) {
	t.Run("grouped_drill_down_view", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		catSvc := NewCategoryService(db)
		actSvc := NewActualsService(db, catSvc)
		budget := testutil.CreateTestBudget(t, db)
		category := testutil.CreateTestCategory(t, db, budget.ID, models.CategoryTypeProduction)

		record := func(categoryID *uint, sourceType models.SourceType, amount string, submitterID uint, submitterName string, details models.SourceDetails) {
			_, err := actSvc.RecordActual(budget.ID, RecordActualInput{
				CategoryID:    categoryID,
				SourceType:    sourceType,
				Amount:        testutil.Dec(t, amount),
				SubmitterID:   submitterID,
				SubmitterName: submitterName,
				SourceDetails: details,
			})
			testutil.AssertNoError(t, err)
		}

		// Same submitter, two source kinds: the sub-groups must not merge.
		record(&category.ID, models.SourceTypeMileage, "30.00", 10, "Alex Grip",
			models.SourceDetails{Mileage: &models.MileageDetails{Origin: "A", Destination: "B", Miles: testutil.Dec(t, "50")}})
		record(&category.ID, models.SourceTypeKitRental, "250.00", 10, "Alex Grip",
			models.SourceDetails{KitRental: &models.KitRentalDetails{Label: "Grip kit", RateKind: models.KitRentalDaily, Rate: testutil.Dec(t, "50.00"), Days: 5}})
		record(&category.ID, models.SourceTypeMileage, "20.00", 10, "Alex Grip",
			models.SourceDetails{Mileage: &models.MileageDetails{Origin: "B", Destination: "A", Miles: testutil.Dec(t, "33")}})
		record(nil, models.SourceTypeReceipt, "15.00", 11, "Jamie PA",
			models.SourceDetails{Receipt: &models.ReceiptDetails{Vendor: "Coffee cart"}})

		view, err := actSvc.GetBudgetActuals(budget.ID, false)
		testutil.AssertNoError(t, err)

		testutil.AssertDecimalEqual(t, testutil.Dec(t, "315.00"), view.TotalAmount, "grand total")
		testutil.AssertDecimalEqual(t, testutil.Dec(t, "15.00"), view.UnmappedReceiptTotal, "unmapped receipts")
		if view.UnmappedReceiptCount != 1 {
			t.Errorf("expected 1 unmapped receipt, got %d", view.UnmappedReceiptCount)
		}

		if len(view.Categories) != 2 {
			t.Fatalf("expected 2 category groups, got %d", len(view.Categories))
		}
		// Uncategorized always sorts last.
		if view.Categories[1].CategoryName != "Uncategorized" {
			t.Errorf("expected Uncategorized last, got %q", view.Categories[1].CategoryName)
		}

		catGroup := view.Categories[0]
		testutil.AssertDecimalEqual(t, testutil.Dec(t, "300.00"), catGroup.Total, "category total")
		if len(catGroup.SubGroups) != 2 {
			t.Fatalf("expected 2 sub-groups for one submitter with two source kinds, got %d", len(catGroup.SubGroups))
		}
		for _, sub := range catGroup.SubGroups {
			if sub.SourceType == models.SourceTypeMileage {
				if sub.Count != 2 {
					t.Errorf("expected 2 mileage entries, got %d", sub.Count)
				}
				testutil.AssertDecimalEqual(t, testutil.Dec(t, "50.00"), sub.Total, "mileage sub-group total")
				if sub.Entries[0].Summary != "A → B (50 mi)" {
					t.Errorf("unexpected mileage summary %q", sub.Entries[0].Summary)
				}
				if sub.Entries[0].Details != nil {
					t.Error("expected details omitted without include_details")
				}
			}
		}
	})

	t.Run("include_details_exposes_payload", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		catSvc := NewCategoryService(db)
		actSvc := NewActualsService(db, catSvc)
		budget := testutil.CreateTestBudget(t, db)

		_, err := actSvc.RecordActual(budget.ID, RecordActualInput{
			SourceType:    models.SourceTypePerDiem,
			Amount:        testutil.Dec(t, "180.00"),
			SubmitterID:   4,
			SubmitterName: "Gaffer",
			SourceDetails: models.SourceDetails{PerDiem: &models.PerDiemDetails{PerDiemType: "travel", Days: 3}},
		})
		testutil.AssertNoError(t, err)

		view, err := actSvc.GetBudgetActuals(budget.ID, true)
		testutil.AssertNoError(t, err)

		entry := view.Categories[0].SubGroups[0].Entries[0]
		if entry.Summary != "travel - 3 day(s)" {
			t.Errorf("unexpected per diem summary %q", entry.Summary)
		}
		if entry.Details == nil || entry.Details.PerDiem == nil || entry.Details.PerDiem.Days != 3 {
			t.Errorf("expected per diem details in entry, got %+v", entry.Details)
		}
	})

	t.Run("integrity_violation_on_drifted_subtotals", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		catSvc := NewCategoryService(db)
		actSvc := NewActualsService(db, catSvc)
		budget := testutil.CreateTestBudget(t, db)
		category := testutil.CreateTestCategory(t, db, budget.ID, models.CategoryTypeProduction)
		testutil.CreateTestActual(t, db, budget.ID, &category.ID, testutil.Dec(t, "100.00"))

		// The fixture bypasses the service, so the stored subtotal is
		// still zero while a mapped actual exists.
		_, err := actSvc.GetBudgetActuals(budget.ID, false)
		testutil.AssertAppError(t, err, "INTEGRITY_VIOLATION")
	})
}

func TestSourceDetailsSummary(t *testing.T) {
	cases := []struct {
		name       string
		sourceType models.SourceType
		details    models.SourceDetails
		want       string
	}{
		{
			"kit_rental_flat", models.SourceTypeKitRental,
			models.SourceDetails{KitRental: &models.KitRentalDetails{Label: "Sound kit", RateKind: models.KitRentalFlat, Rate: testDec("300.00")}},
			"Sound kit (flat)",
		},
		{
			"kit_rental_weekly", models.SourceTypeKitRental,
			models.SourceDetails{KitRental: &models.KitRentalDetails{Label: "Camera kit", RateKind: models.KitRentalWeekly, Rate: testDec("1500.00")}},
			"Camera kit (1500.00/week)",
		},
		{
			"purchase_order", models.SourceTypePurchaseOrder,
			models.SourceDetails{PurchaseOrder: &models.PurchaseOrderDetails{PONumber: "PO-1138", Vendor: "Lumber yard"}},
			"PO PO-1138 - Lumber yard",
		},
		{
			"manual", models.SourceTypeManual,
			models.SourceDetails{Manual: &models.ManualDetails{Description: "Petty cash top-up"}},
			"Petty cash top-up",
		},
		{
			"missing_variant", models.SourceTypeMileage,
			models.SourceDetails{},
			"",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.details.Summary(tc.sourceType)
			if got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
