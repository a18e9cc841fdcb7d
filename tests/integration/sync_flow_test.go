package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSyncFlow_CalendarAndDailyDistribution(t *testing.T) {
	app := setupApp(t)
	tok := token(t, 1, "Line Producer")

	budgetID := app.createBudget(t, tok, `{"name":"Short Film"}`)
	gripID := app.createCategory(t, tok, budgetID,
		`{"name":"Grip","code":"2600","category_type":"production"}`)
	app.createLineItem(t, tok, gripID,
		`{"description":"Dolly grip","rate_type":"daily","rate_amount":"400","quantity":"4"}`)

	// Syncing before any calendar exists is a hard error.
	rec := app.request("POST", fmt.Sprintf("/api/v1/budgets/%.0f/sync-to-daily", budgetID), "", tok)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 with no calendar, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := parseJSON(t, rec)["error"].(map[string]interface{})["code"]; got != "CALENDAR_EMPTY" {
		t.Errorf("expected CALENDAR_EMPTY, got %v", got)
	}

	rec = app.request("PUT", fmt.Sprintf("/api/v1/budgets/%.0f/production-days", budgetID),
		`{"days":[
			{"date":"2026-09-07T00:00:00Z","phase":"production"},
			{"date":"2026-09-08T00:00:00Z","phase":"production"},
			{"date":"2026-09-09T00:00:00Z","phase":"production"},
			{"date":"2026-09-10T00:00:00Z","phase":"production"},
			{"date":"2026-09-11T00:00:00Z","phase":"wrap"}
		]}`, tok)
	if rec.Code != http.StatusOK {
		t.Fatalf("set production days failed: %d %s", rec.Code, rec.Body.String())
	}
	days := parseJSON(t, rec)["production_days"].([]interface{})
	if len(days) != 5 {
		t.Fatalf("expected 5 production days, got %d", len(days))
	}
	if days[0].(map[string]interface{})["day_number"].(float64) != 1 {
		t.Errorf("expected day numbering to start at 1")
	}

	rec = app.request("POST", fmt.Sprintf("/api/v1/budgets/%.0f/sync-to-daily", budgetID), "", tok)
	if rec.Code != http.StatusOK {
		t.Fatalf("sync failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)["result"].(map[string]interface{})
	if result["total_items_created"].(float64) != 4 {
		t.Errorf("expected 4 allocations created, got %v", result["total_items_created"])
	}
	if result["total_days_synced"].(float64) != 4 {
		t.Errorf("expected 4 days synced, got %v", result["total_days_synced"])
	}

	// The daily allocations must conserve the line item total exactly.
	rec = app.request("GET", fmt.Sprintf("/api/v1/budgets/%.0f/daily-allocations", budgetID), "", tok)
	if rec.Code != http.StatusOK {
		t.Fatalf("daily allocations failed: %d %s", rec.Code, rec.Body.String())
	}
	allocations := parseJSON(t, rec)["daily_allocations"].([]interface{})
	if len(allocations) != 4 {
		t.Fatalf("expected 4 allocations, got %d", len(allocations))
	}
	total := decimal.Zero
	for _, raw := range allocations {
		amount, err := decimal.NewFromString(raw.(map[string]interface{})["allocated_amount"].(string))
		if err != nil {
			t.Fatalf("bad allocated_amount: %v", err)
		}
		total = total.Add(amount)
	}
	if !total.Equal(decimal.NewFromInt(1600)) {
		t.Errorf("expected allocations to sum to 1600, got %s", total)
	}

	// Re-running the sync with nothing changed touches nothing.
	rec = app.request("POST", fmt.Sprintf("/api/v1/budgets/%.0f/sync-to-daily", budgetID), "", tok)
	if rec.Code != http.StatusOK {
		t.Fatalf("re-sync failed: %d %s", rec.Code, rec.Body.String())
	}
	result = parseJSON(t, rec)["result"].(map[string]interface{})
	if result["total_items_created"].(float64) != 0 ||
		result["total_items_updated"].(float64) != 0 ||
		result["total_items_removed"].(float64) != 0 {
		t.Errorf("expected a no-op re-sync, got %v", result)
	}
}

func TestSyncFlow_EqualSplitViaAPI(t *testing.T) {
	app := setupApp(t)
	tok := token(t, 1, "Line Producer")

	budgetID := app.createBudget(t, tok, `{"name":"Spot"}`)
	catID := app.createCategory(t, tok, budgetID,
		`{"name":"Locations","code":"2700","category_type":"production"}`)
	app.createLineItem(t, tok, catID,
		`{"description":"Permit package","rate_type":"flat","rate_amount":"1000","quantity":"1","is_divisible":true}`)

	rec := app.request("PUT", fmt.Sprintf("/api/v1/budgets/%.0f/production-days", budgetID),
		`{"days":[
			{"date":"2026-10-05T00:00:00Z","phase":"production"},
			{"date":"2026-10-06T00:00:00Z","phase":"production"},
			{"date":"2026-10-07T00:00:00Z","phase":"production"}
		]}`, tok)
	if rec.Code != http.StatusOK {
		t.Fatalf("set production days failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("POST", fmt.Sprintf("/api/v1/budgets/%.0f/sync-to-daily", budgetID),
		`{"split_method":"equal"}`, tok)
	if rec.Code != http.StatusOK {
		t.Fatalf("sync failed: %d %s", rec.Code, rec.Body.String())
	}
	if got := parseJSON(t, rec)["result"].(map[string]interface{})["total_items_created"].(float64); got != 3 {
		t.Fatalf("expected 3 allocations, got %v", got)
	}

	rec = app.request("GET", fmt.Sprintf("/api/v1/budgets/%.0f/daily-allocations", budgetID), "", tok)
	allocations := parseJSON(t, rec)["daily_allocations"].([]interface{})
	// 1000 over 3 days: the first day absorbs the rounding penny.
	first := allocations[0].(map[string]interface{})["allocated_amount"].(string)
	if first != "333.34" {
		t.Errorf("expected 333.34 on the first day, got %s", first)
	}
}
