package metrics

// Counts are the raw business totals for a reporting period
type Counts struct {
	Revenue           float64 `json:"revenue"`
	Orders            float64 `json:"orders"`
	CompletedOrders   float64 `json:"completed_orders"`
	Customers         float64 `json:"customers"`
	LostCustomers     float64 `json:"lost_customers"`
	RetainedCustomers float64 `json:"retained_customers"`
	Leads             float64 `json:"leads"`
	ConvertedLeads    float64 `json:"converted_leads"`
	PurchaseFrequency float64 `json:"purchase_frequency"` // orders per customer per period
	Lifespan          float64 `json:"lifespan"`           // expected periods a customer stays
}

// KPIs are the derived business metrics for a reporting period
type KPIs struct {
	AverageOrderValue     float64 `json:"average_order_value"`
	RevenuePerCustomer    float64 `json:"revenue_per_customer"`
	CustomerLifetimeValue float64 `json:"customer_lifetime_value"`
	ChurnRate             float64 `json:"churn_rate"`
	RetentionRate         float64 `json:"retention_rate"`
	ConversionRate        float64 `json:"conversion_rate"`
	OrderCompletionRate   float64 `json:"order_completion_rate"`
}

// Compute derives every KPI from c. When PurchaseFrequency is unset it is
// taken as orders per customer.
func Compute(c Counts) KPIs {
	aov := AverageOrderValue(c.Revenue, c.Orders)
	frequency := c.PurchaseFrequency
	if frequency == 0 {
		frequency = ratio(c.Orders, c.Customers)
	}

	return KPIs{
		AverageOrderValue:     aov,
		RevenuePerCustomer:    RevenuePerCustomer(c.Revenue, c.Customers),
		CustomerLifetimeValue: CustomerLifetimeValue(aov, frequency, c.Lifespan),
		ChurnRate:             ChurnRate(c.LostCustomers, c.Customers),
		RetentionRate:         RetentionRate(c.RetainedCustomers, c.Customers),
		ConversionRate:        ConversionRate(c.ConvertedLeads, c.Leads),
		OrderCompletionRate:   OrderCompletionRate(c.CompletedOrders, c.Orders),
	}
}
