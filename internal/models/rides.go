package models

type Driver struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	VehicleType     string    `json:"vehicleType"`
	VehicleNumber   string    `json:"vehicleNumber"`
	LicenseNumber   string    `json:"licenseNumber"`
	CurrentLocation *Location `json:"currentLocation,omitempty"`
	IsAvailable     bool      `json:"isAvailable"`
	Rating          float64   `json:"rating"`
	TotalTrips      int       `json:"totalTrips"`
	CreatedAt       string    `json:"createdAt"`
	UpdatedAt       string    `json:"updatedAt"`
}

type NearbyDriver struct {
	DriverID      string   `json:"driverId"`
	UserID        string   `json:"userId"`
	Name          string   `json:"name"`
	VehicleType   string   `json:"vehicleType"`
	VehicleNumber string   `json:"vehicleNumber"`
	Rating        float64  `json:"rating"`
	TotalTrips    int      `json:"totalTrips"`
	Distance      float64  `json:"distance"`
	Location      Location `json:"location"`
}

// Passenger status is one of pending, picked, dropped.
type Passenger struct {
	UserID          string              `json:"userId"`
	PickupLocation  LocationWithAddress `json:"pickupLocation"`
	DropoffLocation LocationWithAddress `json:"dropoffLocation"`
	Status          string              `json:"status"`
	Fare            float64             `json:"fare"`
}

// Ride statuses: requested, accepted, in-progress, completed, cancelled.
type Ride struct {
	ID         string      `json:"id"`
	DriverID   string      `json:"driverId,omitempty"`
	Passengers []Passenger `json:"passengers"`
	IsPooled   bool        `json:"isPooled"`
	Status     string      `json:"status"`
	Route      []Location  `json:"route"`
	TotalFare  float64     `json:"totalFare"`
	StartTime  string      `json:"startTime,omitempty"`
	EndTime    string      `json:"endTime,omitempty"`
	CreatedAt  string      `json:"createdAt"`
	UpdatedAt  string      `json:"updatedAt"`
	DriverName string      `json:"driverName,omitempty"`
}

type Booking struct {
	ID              string              `json:"id"`
	UserID          string              `json:"userId"`
	RideID          string              `json:"rideId,omitempty"`
	PickupLocation  LocationWithAddress `json:"pickupLocation"`
	DropoffLocation LocationWithAddress `json:"dropoffLocation"`
	WantPooling     bool                `json:"wantPooling"`
	Status          string              `json:"status"`
	Fare            float64             `json:"fare"`
	PaymentStatus   string              `json:"paymentStatus"`
	CreatedAt       string              `json:"createdAt"`
	UpdatedAt       string              `json:"updatedAt"`
}

type BookingCreate struct {
	PickupLocation  LocationWithAddress `json:"pickupLocation" validate:"required"`
	DropoffLocation LocationWithAddress `json:"dropoffLocation" validate:"required"`
	WantPooling     bool                `json:"wantPooling"`
}

// BookingReceipt is what POST /api/user/ride/request answers with.
type BookingReceipt struct {
	BookingID       string              `json:"bookingId"`
	UserID          string              `json:"userId"`
	PickupLocation  LocationWithAddress `json:"pickupLocation"`
	DropoffLocation LocationWithAddress `json:"dropoffLocation"`
	WantPooling     bool                `json:"wantPooling"`
	Status          string              `json:"status"`
	FareInfo        FareInfo            `json:"fareInfo"`
	CreatedAt       string              `json:"createdAt"`
}

type RideRequest struct {
	BookingID       string              `json:"bookingId"`
	UserID          string              `json:"userId"`
	UserName        string              `json:"userName"`
	PickupLocation  LocationWithAddress `json:"pickupLocation"`
	DropoffLocation LocationWithAddress `json:"dropoffLocation"`
	WantPooling     bool                `json:"wantPooling"`
	Fare            float64             `json:"fare"`
	CreatedAt       string              `json:"createdAt"`
}

type PoolDriver struct {
	Name        string  `json:"name"`
	VehicleType string  `json:"vehicleType"`
	Rating      float64 `json:"rating"`
}

// AvailablePool is either a running pooled ride or an open pooled booking.
type AvailablePool struct {
	Type              string              `json:"type"`
	ID                string              `json:"id"`
	PickupLocation    LocationWithAddress `json:"pickupLocation"`
	DropoffLocation   LocationWithAddress `json:"dropoffLocation"`
	CurrentPassengers int                 `json:"currentPassengers"`
	MaxPassengers     int                 `json:"maxPassengers"`
	Status            string              `json:"status"`
	Driver            *PoolDriver         `json:"driver,omitempty"`
	UserName          string              `json:"userName,omitempty"`
	Distance          float64             `json:"distance,omitempty"`
	CreatedAt         string              `json:"createdAt,omitempty"`
}

type PoolMatch struct {
	RideID             string  `json:"rideId"`
	DriverID           string  `json:"driverId,omitempty"`
	CurrentPassengers  int     `json:"currentPassengers"`
	Deviation          float64 `json:"deviation"`
	DiscountPercentage float64 `json:"discountPercentage"`
}

type FareInfo struct {
	Distance     float64 `json:"distance"`
	BaseFare     float64 `json:"baseFare"`
	DistanceFare float64 `json:"distanceFare"`
	Discount     float64 `json:"discount"`
	TotalFare    float64 `json:"totalFare"`
}

type Feedback struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	RideID     string `json:"rideId"`
	DriverID   string `json:"driverId"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment,omitempty"`
	CreatedAt  string `json:"createdAt"`
	UserName   string `json:"userName,omitempty"`
	DriverName string `json:"driverName,omitempty"`
}

type DashboardMetrics struct {
	TotalUsers     int     `json:"totalUsers"`
	TotalDrivers   int     `json:"totalDrivers"`
	TotalRides     int     `json:"totalRides"`
	ActiveRides    int     `json:"activeRides"`
	CompletedRides int     `json:"completedRides"`
	TotalRevenue   float64 `json:"totalRevenue"`
	AverageRating  float64 `json:"averageRating"`
}

type PaymentSummary struct {
	TotalRides     int     `json:"totalRides"`
	CompletedRides int     `json:"completedRides"`
	PooledRides    int     `json:"pooledRides"`
	TotalRevenue   float64 `json:"totalRevenue"`
	AverageFare    float64 `json:"averageFare"`
}

type Payment struct {
	RideID         string  `json:"rideId"`
	TotalFare      float64 `json:"totalFare"`
	IsPooled       bool    `json:"isPooled"`
	PassengerCount int     `json:"passengerCount"`
	CompletedAt    string  `json:"completedAt,omitempty"`
	DriverName     string  `json:"driverName,omitempty"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}
