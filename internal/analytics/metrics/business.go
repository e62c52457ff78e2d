// Package metrics computes laundry business KPIs from aggregate counts.
// Rates are percentages; every ratio returns 0 when its denominator is 0.
package metrics

// CustomerLifetimeValue is the expected revenue from one customer over
// lifespan periods.
func CustomerLifetimeValue(avgOrderValue, purchaseFrequency, lifespan float64) float64 {
	return avgOrderValue * purchaseFrequency * lifespan
}

// ChurnRate is the percentage of customers lost
func ChurnRate(lost, total float64) float64 {
	return percent(lost, total)
}

// RetentionRate is the percentage of customers retained
func RetentionRate(retained, total float64) float64 {
	return percent(retained, total)
}

// ConversionRate is the percentage of visitors or leads that converted
func ConversionRate(converted, total float64) float64 {
	return percent(converted, total)
}

// RevenuePerCustomer is revenue divided by customers
func RevenuePerCustomer(revenue, customers float64) float64 {
	return ratio(revenue, customers)
}

// AverageOrderValue is revenue divided by orders
func AverageOrderValue(revenue, orders float64) float64 {
	return ratio(revenue, orders)
}

// OrderCompletionRate is the percentage of orders completed
func OrderCompletionRate(completed, total float64) float64 {
	return percent(completed, total)
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func percent(part, whole float64) float64 {
	return ratio(part, whole) * 100
}
