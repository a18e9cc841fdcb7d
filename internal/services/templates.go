package services

import (
	"github.com/shopspring/decimal"

	"topsheet/internal/models"
)

// categoryTemplate seeds one category when creating a budget from a template.
type categoryTemplate struct {
	Name         string
	Code         string
	CategoryType models.CategoryType
	IsTaxable    bool
	TaxRate      decimal.Decimal
	IsFringe     bool
}

// budgetTemplates are the built-in starting points for new budgets.
var budgetTemplates = map[string][]categoryTemplate{
	"feature_film": {
		{Name: "Story & Rights", Code: "1100", CategoryType: models.CategoryTypeAboveTheLine},
		{Name: "Producers", Code: "1300", CategoryType: models.CategoryTypeAboveTheLine},
		{Name: "Director", Code: "1400", CategoryType: models.CategoryTypeAboveTheLine},
		{Name: "Cast", Code: "1500", CategoryType: models.CategoryTypeAboveTheLine},
		{Name: "Production Staff", Code: "2000", CategoryType: models.CategoryTypeProduction},
		{Name: "Camera", Code: "2300", CategoryType: models.CategoryTypeProduction, IsTaxable: true, TaxRate: decimal.NewFromFloat(0.0825)},
		{Name: "Grip & Electric", Code: "2400", CategoryType: models.CategoryTypeProduction, IsTaxable: true, TaxRate: decimal.NewFromFloat(0.0825)},
		{Name: "Locations", Code: "2600", CategoryType: models.CategoryTypeProduction},
		{Name: "Editorial", Code: "4500", CategoryType: models.CategoryTypePost},
		{Name: "Music", Code: "4600", CategoryType: models.CategoryTypePost},
		{Name: "Insurance", Code: "6700", CategoryType: models.CategoryTypeOther},
		{Name: "Payroll Fringes", Code: "9100", CategoryType: models.CategoryTypeOther, IsFringe: true},
	},
	"commercial": {
		{Name: "Director & Creative", Code: "A", CategoryType: models.CategoryTypeAboveTheLine},
		{Name: "Talent", Code: "B", CategoryType: models.CategoryTypeAboveTheLine},
		{Name: "Crew", Code: "C", CategoryType: models.CategoryTypeProduction},
		{Name: "Equipment", Code: "D", CategoryType: models.CategoryTypeProduction, IsTaxable: true, TaxRate: decimal.NewFromFloat(0.0825)},
		{Name: "Locations & Travel", Code: "E", CategoryType: models.CategoryTypeProduction},
		{Name: "Post Production", Code: "F", CategoryType: models.CategoryTypePost},
		{Name: "Fringes", Code: "G", CategoryType: models.CategoryTypeOther, IsFringe: true},
	},
	"documentary": {
		{Name: "Producers & Director", Code: "100", CategoryType: models.CategoryTypeAboveTheLine},
		{Name: "Field Production", Code: "200", CategoryType: models.CategoryTypeProduction},
		{Name: "Archival & Licensing", Code: "300", CategoryType: models.CategoryTypeOther},
		{Name: "Editorial", Code: "400", CategoryType: models.CategoryTypePost},
		{Name: "Finishing", Code: "500", CategoryType: models.CategoryTypePost},
	},
}
