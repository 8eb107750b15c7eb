package domain

// BookingRecord is the canonical output of the booking extractor. One record
// exists per (Period, BookingID) pair; Quantity is the sum over all raw rows
// in that group and the ports come from the group's largest single row.
type BookingRecord struct {
	Period          string `json:"period" validate:"required"`
	BookingID       string `json:"booking_id" validate:"required"`
	OriginPort      string `json:"origin_port"`
	DestinationPort string `json:"destination_port"`
	Quantity        int    `json:"quantity" validate:"min=0"`
	ShipperLabel    string `json:"shipper_label"`
}

// RescheduleRecord is the canonical output of the multimodal extractor.
// One record per qualifying raw row; Flag is always 1 so that summing the
// flags yields the reschedule count.
type RescheduleRecord struct {
	Period        string `json:"period"`
	OperationPort string `json:"operation_port"`
	OperationType string `json:"operation_type"`
	Reason        string `json:"reason" validate:"required"`
	Flag          int    `json:"flag"`
}

// DelayRecord is the canonical output of the transport extractor. Records are
// de-duplicated by full equality of all four fields.
type DelayRecord struct {
	TypeNorm   string `json:"type_norm" validate:"required"`
	Reason     string `json:"reason"`
	Period     string `json:"period"`
	OriginPort string `json:"origin_port"`
}

// Delay type values produced by the transport extractor that the KPI layer
// keys off. Other type values pass through type_norm untouched.
const (
	DelayTypeCollection = "coleta"
	DelayTypeDelivery   = "entrega"
)

// AvailableData is the thin derived view the upload and discovery endpoints
// return: distinct periods and distinct active shipper labels found in a
// booking workbook, both sorted ascending.
type AvailableData struct {
	Periods  []string `json:"periods"`
	Shippers []string `json:"shippers"`
}
