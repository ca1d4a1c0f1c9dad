package statement

import (
	"github.com/seenimoa/fundlens/pkg/models"
)

// Banking statements follow RBI reporting heads: interest earned and
// expended replace revenue and expenditure, and the balance sheet carries
// deposits and advances.

var bankingProfitLoss = []RowSpec{
	Field("interest_earned", "Interest Earned", "interest_earned_h", models.TypeCurrency),
	Field("other_income", "Other Income", "other_income_h", models.TypeCurrency),
	Computed("total_income", "Total Income", models.TypeCurrency, fromRows(func(rows RowValues) []*float64 {
		return sumSeries(rows["interest_earned"], rows["other_income"])
	})).AsSubTotal(),
	Field("interest_expended", "Interest Expended", "interest_expended_h", models.TypeCurrency),
	Field("operating_expenses", "Operating Expenses", "operating_expenses_h", models.TypeCurrency),
	Field("provisions", "Provisions & Contingencies", "provisions_h", models.TypeCurrency),
	Computed("pbt", "Profit Before Tax", models.TypeCurrency, fromRows(func(rows RowValues) []*float64 {
		return subSeries(rows["total_income"], rows["interest_expended"], rows["operating_expenses"], rows["provisions"])
	})).AsSubTotal(),
	Field("tax", "Tax", "tax_h", models.TypeCurrency).Indented(1),
	Computed("net_profit", "Net Profit", models.TypeCurrency, fromRows(func(rows RowValues) []*float64 {
		return subSeries(rows["pbt"], rows["tax"])
	})).AsTotal(),
	Field("eps", "EPS (₹)", "eps_h", models.TypeNumber),
	Field("nim", "Net Interest Margin %", "net_interest_margin_h", models.TypePercentage),
}

var bankingBalanceSheet = []RowSpec{
	Section("Capital & Liabilities"),
	Field("share_capital", "Share Capital", "share_capital_h", models.TypeCurrency),
	Field("reserves", "Reserves & Surplus", "reserves_h", models.TypeCurrency),
	Field("deposits", "Deposits", "deposits_h", models.TypeCurrency),
	Field("borrowings", "Borrowings", "borrowings_h", models.TypeCurrency),
	Field("other_liabilities", "Other Liabilities", "other_liabilities_h", models.TypeCurrency),
	Computed("total_liabilities", "Total Liabilities", models.TypeCurrency, fromRows(func(rows RowValues) []*float64 {
		return sumSeries(rows["share_capital"], rows["reserves"], rows["deposits"],
			rows["borrowings"], rows["other_liabilities"])
	})).AsTotal(),
	Section("Assets"),
	Field("cash_balances", "Cash & Balances with RBI", "cash_balances_h", models.TypeCurrency),
	Field("advances", "Advances", "advances_h", models.TypeCurrency),
	Field("investments", "Investments", "investments_h", models.TypeCurrency),
	Field("fixed_assets", "Fixed Assets", "fixed_assets_h", models.TypeCurrency),
	Field("other_assets", "Other Assets", "other_assets_h", models.TypeCurrency),
	Computed("total_assets", "Total Assets", models.TypeCurrency, fromRows(func(rows RowValues) []*float64 {
		return sumSeries(rows["cash_balances"], rows["advances"], rows["investments"],
			rows["fixed_assets"], rows["other_assets"])
	})).AsTotal(),
}

var bankingRatios = []RowSpec{
	Field("nim", "Net Interest Margin %", "net_interest_margin_h", models.TypePercentage),
	Field("gross_npa", "Gross NPA %", "gross_npa_h", models.TypePercentage),
	Field("net_npa", "Net NPA %", "net_npa_h", models.TypePercentage),
	Field("casa", "CASA Ratio %", "casa_ratio_h", models.TypePercentage),
	Field("roe", "ROE %", "roe_h", models.TypePercentage),
	Field("capital_adequacy", "Capital Adequacy %", "capital_adequacy_h", models.TypePercentage),
	Computed("credit_deposit", "Credit / Deposit %", models.TypePercentage, func(fm *models.FieldMap, _ RowValues) []*float64 {
		return pctSeries(fm.Series("advances_h"), fm.Series("deposits_h"))
	}),
}
