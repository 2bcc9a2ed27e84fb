package registry

import "econ-dashboard/src/models"

// UnknownIndicator is returned by Describe for identifiers the registry does not know.
const UnknownIndicator = "Unknown indicator"

// builtins is the statically registered FRED catalog, in display order.
var builtins = []models.MIndicator{
	{ID: "CPIAUCSL", Description: "Consumer Price Index: All Items (CPIAUCSL)", Title: "Consumer Price Index (CPI)", YLabel: "CPI", Label: "CPI"},
	{ID: "PSAVERT", Description: "Personal Savings Rate (PSAVERT)", Title: "Personal Savings Rate", YLabel: "Savings Rate (%)", Label: "Savings Rate"},
	{ID: "PCEC", Description: "Personal Consumption Expenditures (PCEC)", Title: "Personal Consumption Expenditures", YLabel: "Expenditures (Billions $)", Label: "Consumption"},
	{ID: "GDPC1", Description: "Real Gross Domestic Product (GDPC1)", Title: "Real Gross Domestic Product", YLabel: "Billions of Chained 2017 $", Label: "Real GDP"},
	{ID: "UNRATE", Description: "Civilian Unemployment Rate (UNRATE)", Title: "Civilian Unemployment Rate", YLabel: "Unemployment Rate (%)", Label: "Unemployment"},
	{ID: "FEDFUNDS", Description: "Effective Federal Funds Rate (FEDFUNDS)", Title: "Effective Federal Funds Rate", YLabel: "Rate (%)", Label: "Fed Funds"},
	{ID: "M2SL", Description: "M2 Money Stock (M2SL)", Title: "M2 Money Stock", YLabel: "Billions $", Label: "M2"},
	{ID: "GS10", Description: "10-Year Treasury Rate (GS10)", Title: "10-Year Treasury Rate", YLabel: "Rate (%)", Label: "10Y Treasury"},
	{ID: "INDPRO", Description: "Industrial Production Index (INDPRO)", Title: "Industrial Production Index", YLabel: "Index 2017=100", Label: "Industrial Production"},
	{ID: "CSUSHPINSA", Description: "Case-Shiller Home Price Index (CSUSHPINSA)", Title: "Case-Shiller Home Price Index", YLabel: "Index Jan 2000=100", Label: "Home Prices"},
	{ID: "RRSFS", Description: "Retail and Food Services Sales (RRSFS)", Title: "Retail and Food Services Sales", YLabel: "Millions of 1982-84 $", Label: "Retail Sales"},
	{ID: "UMCSENT", Description: "Consumer Sentiment Index (UMCSENT)", Title: "Consumer Sentiment Index", YLabel: "Index 1966:Q1=100", Label: "Sentiment"},
	{ID: "CPILFESL", Description: "Core Consumer Price Index (CPILFESL)", Title: "Core Consumer Price Index", YLabel: "Core CPI", Label: "Core CPI"},
}

func init() {
	for i := range builtins {
		builtins[i].Origin = models.OriginBuiltin
	}
}
