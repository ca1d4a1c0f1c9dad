package statement

import (
	"github.com/seenimoa/fundlens/pkg/models"
)

// Schema selects the row specs for a company type and statement kind.
// Every configured row always materializes, so table shape is stable
// across companies regardless of which fields the vendor delivered.
func Schema(ct models.CompanyType, st Statement) []RowSpec {
	if ct == models.Banking {
		switch st {
		case BalanceSheet:
			return bankingBalanceSheet
		case ProfitLoss:
			return bankingProfitLoss
		case CashFlow:
			return cashFlowRows
		case Ratios:
			return bankingRatios
		}
	}
	switch st {
	case BalanceSheet:
		return nonBankingBalanceSheet
	case ProfitLoss:
		return nonBankingProfitLoss
	case CashFlow:
		return cashFlowRows
	case Ratios:
		return nonBankingRatios
	}
	return nil
}

// fromRows builds a ComputeFunc over previously evaluated rows.
func fromRows(fn func(rows RowValues) []*float64) ComputeFunc {
	return func(_ *models.FieldMap, rows RowValues) []*float64 {
		return fn(rows)
	}
}

var nonBankingProfitLoss = []RowSpec{
	Field("revenue", "Revenue", "revenue_h", models.TypeCurrency),
	Field("other_income", "Other Income", "other_income_h", models.TypeCurrency),
	Computed("total_income", "Total Income", models.TypeCurrency, fromRows(func(rows RowValues) []*float64 {
		return sumSeries(rows["revenue"], rows["other_income"])
	})).AsSubTotal(),
	Field("expenses", "Total Expenditure", "expenses_h", models.TypeCurrency),
	Computed("ebitda", "EBITDA", models.TypeCurrency, fromRows(func(rows RowValues) []*float64 {
		return subSeries(rows["total_income"], rows["expenses"])
	})).AsSubTotal(),
	Field("interest", "Interest", "interest_h", models.TypeCurrency).Indented(1),
	Field("depreciation", "Depreciation", "depreciation_h", models.TypeCurrency).Indented(1),
	Computed("pbt", "Profit Before Tax", models.TypeCurrency, fromRows(func(rows RowValues) []*float64 {
		return subSeries(rows["ebitda"], rows["interest"], rows["depreciation"])
	})).AsSubTotal(),
	Field("tax", "Tax", "tax_h", models.TypeCurrency).Indented(1),
	Computed("net_profit", "Net Profit", models.TypeCurrency, fromRows(func(rows RowValues) []*float64 {
		return subSeries(rows["pbt"], rows["tax"])
	})).AsTotal(),
	Field("eps", "EPS (₹)", "eps_h", models.TypeNumber),
	Computed("opm", "OPM %", models.TypePercentage, fromRows(func(rows RowValues) []*float64 {
		return pctSeries(rows["ebitda"], rows["revenue"])
	})),
}

var nonBankingBalanceSheet = []RowSpec{
	Section("Equity & Liabilities"),
	Field("share_capital", "Share Capital", "share_capital_h", models.TypeCurrency),
	Field("reserves", "Reserves & Surplus", "reserves_h", models.TypeCurrency),
	Computed("net_worth", "Net Worth", models.TypeCurrency, fromRows(func(rows RowValues) []*float64 {
		return sumSeries(rows["share_capital"], rows["reserves"])
	})).AsSubTotal(),
	Field("borrowings", "Borrowings", "borrowings_h", models.TypeCurrency),
	Field("other_liabilities", "Other Liabilities", "other_liabilities_h", models.TypeCurrency),
	Computed("total_liabilities", "Total Liabilities", models.TypeCurrency, fromRows(func(rows RowValues) []*float64 {
		return sumSeries(rows["net_worth"], rows["borrowings"], rows["other_liabilities"])
	})).AsTotal(),
	Section("Assets"),
	Field("fixed_assets", "Fixed Assets", "fixed_assets_h", models.TypeCurrency),
	Field("cwip", "Capital Work in Progress", "cwip_h", models.TypeCurrency),
	Field("investments", "Investments", "investments_h", models.TypeCurrency),
	Field("other_assets", "Other Assets", "other_assets_h", models.TypeCurrency),
	Computed("total_assets", "Total Assets", models.TypeCurrency, fromRows(func(rows RowValues) []*float64 {
		return sumSeries(rows["fixed_assets"], rows["cwip"], rows["investments"], rows["other_assets"])
	})).AsTotal(),
}

var cashFlowRows = []RowSpec{
	Field("cash_operating", "Cash from Operating Activity", "cash_operating_h", models.TypeCurrency),
	Field("cash_investing", "Cash from Investing Activity", "cash_investing_h", models.TypeCurrency),
	Field("cash_financing", "Cash from Financing Activity", "cash_financing_h", models.TypeCurrency),
	Computed("net_cash_flow", "Net Cash Flow", models.TypeCurrency, fromRows(func(rows RowValues) []*float64 {
		return sumSeries(rows["cash_operating"], rows["cash_investing"], rows["cash_financing"])
	})).AsTotal(),
}

var nonBankingRatios = []RowSpec{
	Field("roe", "ROE %", "roe_h", models.TypePercentage),
	Field("roce", "ROCE %", "roce_h", models.TypePercentage),
	Computed("npm", "Net Profit Margin %", models.TypePercentage, func(fm *models.FieldMap, _ RowValues) []*float64 {
		return pctSeries(subSeries(subSeries(sumSeries(fm.Series("revenue_h"), fm.Series("other_income_h")),
			fm.Series("expenses_h"), fm.Series("interest_h"), fm.Series("depreciation_h")),
			fm.Series("tax_h")), fm.Series("revenue_h"))
	}),
	Field("debt_equity", "Debt to Equity", "debt_equity_h", models.TypeNumber),
	Field("current_ratio", "Current Ratio", "current_ratio_h", models.TypeNumber),
	Field("interest_coverage", "Interest Coverage", "interest_coverage_h", models.TypeNumber),
	Field("dividend_payout", "Dividend Payout %", "dividend_payout_h", models.TypePercentage),
}
