package booking

type CreateBookingReq struct {
	BookID            string  `json:"book_id" validate:"required,uuid"`
	BookingPointID    string  `json:"booking_point_id" validate:"required,uuid"`
	PlannedPickupDate string  `json:"planned_pickup_date" validate:"required,datetime=2006-01-02"`
	PlannedReturnDate string  `json:"planned_return_date" validate:"required,datetime=2006-01-02"`
	Notes             *string `json:"notes,omitempty"`
}

type UpdateStatusReq struct {
	Status string `json:"status" validate:"required"`
}
