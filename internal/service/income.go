package service

import (
	"sort"
	"strings"
	"time"

	"github.com/saedabdu/tickerproxy/internal/table"
	"github.com/saedabdu/tickerproxy/pkg/models"
)

const annualPrefix = "annual"

// earliest fiscal period requested from the fundamentals timeseries
var incomeStatementStart = time.Date(2016, 12, 31, 0, 0, 0, 0, time.UTC)

// incomeStatementItems lists the income statement line items, in output order
var incomeStatementItems = []string{
	"TaxEffectOfUnusualItems",
	"TaxRateForCalcs",
	"NormalizedEBITDA",
	"NormalizedDilutedEPS",
	"NormalizedBasicEPS",
	"TotalUnusualItems",
	"TotalUnusualItemsExcludingGoodwill",
	"NetIncomeFromContinuingOperationNetMinorityInterest",
	"ReconciledDepreciation",
	"ReconciledCostOfRevenue",
	"EBITDA",
	"EBIT",
	"NetInterestIncome",
	"InterestExpense",
	"InterestIncome",
	"ContinuingAndDiscontinuedDilutedEPS",
	"ContinuingAndDiscontinuedBasicEPS",
	"NormalizedIncome",
	"NetIncomeFromContinuingAndDiscontinuedOperation",
	"TotalExpenses",
	"RentExpenseSupplemental",
	"ReportedNormalizedDilutedEPS",
	"ReportedNormalizedBasicEPS",
	"TotalOperatingIncomeAsReported",
	"DividendPerShare",
	"DilutedAverageShares",
	"BasicAverageShares",
	"DilutedEPS",
	"BasicEPS",
	"DilutedNIAvailtoComStockholders",
	"NetIncomeCommonStockholders",
	"OtherunderPreferredStockDividend",
	"PreferredStockDividends",
	"NetIncome",
	"MinorityInterests",
	"NetIncomeIncludingNoncontrollingInterests",
	"NetIncomeDiscontinuousOperations",
	"NetIncomeContinuousOperations",
	"TaxProvision",
	"PretaxIncome",
	"OtherIncomeExpense",
	"OtherNonOperatingIncomeExpenses",
	"SpecialIncomeCharges",
	"GainOnSaleOfPPE",
	"GainOnSaleOfBusiness",
	"WriteOff",
	"ImpairmentOfCapitalAssets",
	"RestructuringAndMergernAcquisition",
	"GainOnSaleOfSecurity",
	"NetNonOperatingInterestIncomeExpense",
	"TotalOtherFinanceCost",
	"InterestExpenseNonOperating",
	"InterestIncomeNonOperating",
	"OperatingIncome",
	"OperatingExpense",
	"OtherOperatingExpenses",
	"DepreciationAndAmortizationInIncomeStatement",
	"ResearchAndDevelopment",
	"SellingGeneralAndAdministration",
	"GrossProfit",
	"CostOfRevenue",
	"TotalRevenue",
	"OperatingRevenue",
}

// incomeTable pivots fundamentals series into line item rows and one column
// per fiscal period end, newest first. Line items without data are omitted.
func incomeTable(series []models.TimeseriesSeries) (*table.Table, error) {
	values := make(map[string]map[string]*float64, len(series))
	seen := make(map[string]struct{})

	for _, s := range series {
		item := strings.TrimPrefix(s.Type, annualPrefix)
		for _, p := range s.Points {
			if p.AsOfDate == "" {
				continue
			}
			if values[item] == nil {
				values[item] = make(map[string]*float64)
			}
			values[item][p.AsOfDate] = p.Value
			seen[p.AsOfDate] = struct{}{}
		}
	}

	dates := make([]string, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	columns := make([]string, len(dates))
	for i, d := range dates {
		columns[i] = periodColumn(d)
	}

	tbl := table.New([]string{""}, columns...)
	for _, item := range incomeStatementItems {
		byDate, ok := values[item]
		if !ok {
			continue
		}
		row := make([]any, len(dates))
		for i, d := range dates {
			if v := byDate[d]; v != nil {
				row[i] = *v
			}
		}
		if err := tbl.AppendRow([]any{item}, row...); err != nil {
			return nil, err
		}
	}

	return tbl, nil
}

// periodColumn renders a fiscal period end date the way timestamp cells are rendered
func periodColumn(date string) string {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return date
	}
	return t.Format(table.TimestampLayout)
}
