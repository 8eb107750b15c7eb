package domain

// KPISummary is the aggregate view over the three canonical record sets.
// BusiestPort and QuietestPort are nil when no booking records exist.
type KPISummary struct {
	TotalOps         int     `json:"total_ops"`
	BusiestPort      *string `json:"busiest_port"`
	QuietestPort     *string `json:"quietest_port"`
	CollectionDelays int     `json:"collection_delays"`
	DeliveryDelays   int     `json:"delivery_delays"`
	Reschedules      int     `json:"reschedules"`
}
