package models

// Payloads of the realtime channel. Timestamps stay strings as the socket
// server sends them.

type LocationUpdateEvent struct {
	DriverID  string  `json:"driverId"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	RideID    string  `json:"rideId,omitempty"`
	Timestamp string  `json:"timestamp,omitempty"`
}

type RideStatusEvent struct {
	RideID    string `json:"rideId"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp,omitempty"`
}

type NewRideRequestEvent struct {
	BookingID       string              `json:"bookingId"`
	UserID          string              `json:"userId"`
	UserName        string              `json:"userName"`
	PickupLocation  LocationWithAddress `json:"pickupLocation"`
	DropoffLocation LocationWithAddress `json:"dropoffLocation"`
	Fare            float64             `json:"fare"`
}

type RideAcceptedEvent struct {
	RideID        string  `json:"rideId"`
	DriverID      string  `json:"driverId"`
	DriverName    string  `json:"driverName"`
	VehicleType   string  `json:"vehicleType"`
	VehicleNumber string  `json:"vehicleNumber"`
	ETA           float64 `json:"eta"`
}

type RideStartedEvent struct {
	RideID    string `json:"rideId"`
	StartTime string `json:"startTime"`
}

type RideCompletedEvent struct {
	RideID    string  `json:"rideId"`
	EndTime   string  `json:"endTime"`
	TotalFare float64 `json:"totalFare"`
}

type PoolMatchFoundEvent struct {
	RideID             string  `json:"rideId"`
	MatchedRideID      string  `json:"matchedRideId"`
	DiscountPercentage float64 `json:"discountPercentage"`
}
