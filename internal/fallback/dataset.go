package fallback

import (
	"github.com/example/ridepool-client/internal/models"
)

// Dataset is the fixed seed served while the backend is unreachable. It is
// never mutated after Seed returns; every accessor hands out a deep copy.
type Dataset struct {
	users          []models.User
	driverProfile  models.Driver
	userRides      []models.Booking
	rideRequests   []models.RideRequest
	driverRides    []models.Ride
	pools          []models.AvailablePool
	metrics        models.DashboardMetrics
	recentRides    []models.Ride
	nearbyDrivers  []models.NearbyDriver
	feedback       []models.Feedback
	paymentSummary models.PaymentSummary
	payments       []models.Payment
}

func loc(lat, lng float64, address string) models.LocationWithAddress {
	return models.LocationWithAddress{Lat: lat, Lng: lng, Address: address}
}

func Seed() *Dataset {
	const updated = "2024-12-30T12:00:00Z"
	return &Dataset{
		users: []models.User{
			{ID: "user-001", Name: "Ahmed Khan", Email: "user1@ridepool.pk", Phone: "+923001234567", Role: models.RoleRider, CreatedAt: "2024-01-15T10:00:00Z", UpdatedAt: updated},
			{ID: "driver-001", Name: "Ali Raza", Email: "driver1@ridepool.pk", Phone: "+923009876543", Role: models.RoleDriver, CreatedAt: "2024-01-10T08:00:00Z", UpdatedAt: updated},
			{ID: "admin-001", Name: "Usman Ahmed", Email: "admin1@ridepool.pk", Phone: "+923005555555", Role: models.RoleAdmin, CreatedAt: "2024-01-01T00:00:00Z", UpdatedAt: updated},
			{ID: "user-002", Name: "Fatima Ali", Email: "user2@ridepool.pk", Phone: "+923002222222", Role: models.RoleRider, CreatedAt: "2024-02-01T10:00:00Z", UpdatedAt: "2024-12-20T12:00:00Z"},
			{ID: "user-003", Name: "Muhammad Hassan", Email: "user3@ridepool.pk", Phone: "+923003333333", Role: models.RoleRider, CreatedAt: "2024-03-15T10:00:00Z", UpdatedAt: "2024-12-22T12:00:00Z"},
			{ID: "driver-002", Name: "Hamza Iqbal", Email: "driver2@ridepool.pk", Phone: "+923108888888", Role: models.RoleDriver, CreatedAt: "2024-02-10T08:00:00Z", UpdatedAt: "2024-12-25T12:00:00Z"},
		},
		driverProfile: models.Driver{
			ID:              "driver-profile-001",
			UserID:          "driver-001",
			VehicleType:     "Sedan",
			VehicleNumber:   "LEA-5678",
			LicenseNumber:   "DL-123456",
			CurrentLocation: &models.Location{Lat: 33.6844, Lng: 73.0479},
			IsAvailable:     true,
			Rating:          4.7,
			TotalTrips:      127,
			CreatedAt:       "2024-01-10T08:00:00Z",
			UpdatedAt:       updated,
		},
		userRides: []models.Booking{
			{
				ID: "booking-001", UserID: "user-001", RideID: "ride-001",
				PickupLocation:  loc(33.6844, 73.0479, "123 Blue Area, Islamabad"),
				DropoffLocation: loc(33.7294, 73.0931, "456 F-7 Markaz, Islamabad"),
				WantPooling:     true, Status: "completed", Fare: 450, PaymentStatus: "paid",
				CreatedAt: "2024-12-28T14:30:00Z", UpdatedAt: "2024-12-28T15:15:00Z",
			},
			{
				ID: "booking-002", UserID: "user-001", RideID: "ride-002",
				PickupLocation:  loc(33.6501, 73.0156, "789 G-10, Islamabad"),
				DropoffLocation: loc(33.7047, 73.0594, "321 F-6, Islamabad"),
				WantPooling:     false, Status: "completed", Fare: 320, PaymentStatus: "paid",
				CreatedAt: "2024-12-27T09:00:00Z", UpdatedAt: "2024-12-27T09:45:00Z",
			},
			{
				ID: "booking-003", UserID: "user-001",
				PickupLocation:  loc(33.6844, 73.0479, "55 Blue Area, Islamabad"),
				DropoffLocation: loc(33.5651, 73.0169, "Saddar, Rawalpindi"),
				WantPooling:     true, Status: "requested", Fare: 580, PaymentStatus: "pending",
				CreatedAt: "2024-12-30T10:00:00Z", UpdatedAt: "2024-12-30T10:00:00Z",
			},
		},
		rideRequests: []models.RideRequest{
			{
				BookingID: "booking-100", UserID: "user-002", UserName: "Fatima Ali",
				PickupLocation:  loc(33.7294, 73.0931, "123 F-7 Markaz, Islamabad"),
				DropoffLocation: loc(33.6501, 73.0156, "456 G-10 Markaz, Islamabad"),
				WantPooling:     true, Fare: 380, CreatedAt: "2024-12-30T11:00:00Z",
			},
			{
				BookingID: "booking-101", UserID: "user-003", UserName: "Muhammad Hassan",
				PickupLocation:  loc(33.6844, 73.0479, "789 Blue Area, Islamabad"),
				DropoffLocation: loc(33.5651, 73.0169, "Saddar, Rawalpindi"),
				WantPooling:     false, Fare: 650, CreatedAt: "2024-12-30T10:45:00Z",
			},
			{
				BookingID: "booking-102", UserID: "user-004", UserName: "Ayesha Malik",
				PickupLocation:  loc(33.7047, 73.0594, "F-6 Super Market, Islamabad"),
				DropoffLocation: loc(33.6844, 73.0479, "Blue Area, Islamabad"),
				WantPooling:     true, Fare: 290, CreatedAt: "2024-12-30T10:30:00Z",
			},
			{
				BookingID: "booking-103", UserID: "user-005", UserName: "Bilal Ahmad",
				PickupLocation:  loc(33.6501, 73.0156, "G-10/4, Islamabad"),
				DropoffLocation: loc(33.7294, 73.0931, "F-7/3, Islamabad"),
				WantPooling:     false, Fare: 420, CreatedAt: "2024-12-30T09:15:00Z",
			},
		},
		driverRides: []models.Ride{
			{
				ID: "ride-d001", DriverID: "driver-001",
				Passengers: []models.Passenger{
					{UserID: "user-002", PickupLocation: loc(33.6844, 73.0479, "Blue Area, Islamabad"), DropoffLocation: loc(33.7294, 73.0931, "F-7 Markaz, Islamabad"), Status: "dropped", Fare: 350},
				},
				IsPooled: false, Status: "completed", Route: []models.Location{}, TotalFare: 350,
				StartTime: "2024-12-29T10:00:00Z", EndTime: "2024-12-29T10:35:00Z",
				CreatedAt: "2024-12-29T09:55:00Z", UpdatedAt: "2024-12-29T10:35:00Z", DriverName: "Ali Raza",
			},
			{
				ID: "ride-d002", DriverID: "driver-001",
				Passengers: []models.Passenger{
					{UserID: "user-003", PickupLocation: loc(33.6501, 73.0156, "G-10, Islamabad"), DropoffLocation: loc(33.5651, 73.0169, "Saddar, Rawalpindi"), Status: "dropped", Fare: 480},
					{UserID: "user-004", PickupLocation: loc(33.6601, 73.0256, "G-9, Islamabad"), DropoffLocation: loc(33.5751, 73.0269, "Commercial Area, Rawalpindi"), Status: "dropped", Fare: 420},
				},
				IsPooled: true, Status: "completed", Route: []models.Location{}, TotalFare: 900,
				StartTime: "2024-12-28T14:00:00Z", EndTime: "2024-12-28T15:00:00Z",
				CreatedAt: "2024-12-28T13:50:00Z", UpdatedAt: "2024-12-28T15:00:00Z", DriverName: "Ali Raza",
			},
			{
				ID: "ride-d003", DriverID: "driver-001",
				Passengers: []models.Passenger{
					{UserID: "user-005", PickupLocation: loc(33.7047, 73.0594, "F-6, Islamabad"), DropoffLocation: loc(33.6844, 73.0479, "Blue Area, Islamabad"), Status: "dropped", Fare: 250},
				},
				IsPooled: false, Status: "completed", Route: []models.Location{}, TotalFare: 250,
				StartTime: "2024-12-27T18:00:00Z", EndTime: "2024-12-27T18:25:00Z",
				CreatedAt: "2024-12-27T17:55:00Z", UpdatedAt: "2024-12-27T18:25:00Z", DriverName: "Ali Raza",
			},
		},
		pools: []models.AvailablePool{
			{
				Type: "ride", ID: "pool-001",
				PickupLocation:  loc(33.6844, 73.0479, "Blue Area, Islamabad"),
				DropoffLocation: loc(33.5651, 73.0169, "Saddar, Rawalpindi"),
				CurrentPassengers: 2, MaxPassengers: 4, Status: "in-progress",
				Driver:   &models.PoolDriver{Name: "Hamza Iqbal", VehicleType: "SUV", Rating: 4.8},
				Distance: 2.5, CreatedAt: "2024-12-30T09:00:00Z",
			},
			{
				Type: "booking", ID: "pool-002",
				PickupLocation:  loc(33.7294, 73.0931, "F-7, Islamabad"),
				DropoffLocation: loc(33.6501, 73.0156, "G-10, Islamabad"),
				CurrentPassengers: 1, MaxPassengers: 4, Status: "requested",
				UserName: "Sara Khan", Distance: 1.8, CreatedAt: "2024-12-30T10:30:00Z",
			},
			{
				Type: "ride", ID: "pool-003",
				PickupLocation:  loc(33.7047, 73.0594, "F-6, Islamabad"),
				DropoffLocation: loc(33.7294, 73.0931, "F-7, Islamabad"),
				CurrentPassengers: 3, MaxPassengers: 4, Status: "accepted",
				Driver:   &models.PoolDriver{Name: "Faisal Mahmood", VehicleType: "Sedan", Rating: 4.5},
				Distance: 0.8, CreatedAt: "2024-12-30T11:15:00Z",
			},
		},
		metrics: models.DashboardMetrics{
			TotalUsers: 156, TotalDrivers: 42, TotalRides: 1247, ActiveRides: 18,
			CompletedRides: 1185, TotalRevenue: 2456780, AverageRating: 4.6,
		},
		recentRides: []models.Ride{
			{
				ID: "admin-ride-001", DriverID: "driver-001",
				Passengers: []models.Passenger{
					{UserID: "user-001", PickupLocation: loc(33.6844, 73.0479, "Blue Area, Islamabad"), DropoffLocation: loc(33.7294, 73.0931, "F-7, Islamabad"), Status: "dropped", Fare: 380},
				},
				IsPooled: false, Status: "completed", Route: []models.Location{}, TotalFare: 380,
				StartTime: "2024-12-30T09:00:00Z", EndTime: "2024-12-30T09:30:00Z",
				CreatedAt: "2024-12-30T08:55:00Z", UpdatedAt: "2024-12-30T09:30:00Z",
			},
			{
				ID: "admin-ride-002", DriverID: "driver-002",
				Passengers: []models.Passenger{
					{UserID: "user-002", PickupLocation: loc(33.6501, 73.0156, "G-10, Islamabad"), DropoffLocation: loc(33.5651, 73.0169, "Rawalpindi"), Status: "picked", Fare: 520},
				},
				IsPooled: true, Status: "in-progress", Route: []models.Location{}, TotalFare: 520,
				StartTime: "2024-12-30T11:00:00Z",
				CreatedAt: "2024-12-30T10:55:00Z", UpdatedAt: "2024-12-30T11:00:00Z",
			},
			{
				ID: "admin-ride-003",
				Passengers: []models.Passenger{
					{UserID: "user-003", PickupLocation: loc(33.7047, 73.0594, "F-6, Islamabad"), DropoffLocation: loc(33.6844, 73.0479, "Blue Area, Islamabad"), Status: "pending", Fare: 290},
				},
				IsPooled: false, Status: "requested", Route: []models.Location{}, TotalFare: 290,
				CreatedAt: "2024-12-30T11:30:00Z", UpdatedAt: "2024-12-30T11:30:00Z",
			},
		},
		nearbyDrivers: []models.NearbyDriver{
			{DriverID: "driver-001", UserID: "driver-user-001", Name: "Ali Raza", VehicleType: "Sedan", VehicleNumber: "LEA-5678", Rating: 4.7, TotalTrips: 127, Distance: 1.2, Location: models.Location{Lat: 33.6900, Lng: 73.0500}},
			{DriverID: "driver-002", UserID: "driver-user-002", Name: "Hamza Iqbal", VehicleType: "SUV", VehicleNumber: "LEA-1234", Rating: 4.8, TotalTrips: 203, Distance: 2.5, Location: models.Location{Lat: 33.6750, Lng: 73.0400}},
			{DriverID: "driver-003", UserID: "driver-user-003", Name: "Faisal Mahmood", VehicleType: "Mini-Van", VehicleNumber: "LEA-9012", Rating: 4.5, TotalTrips: 89, Distance: 3.1, Location: models.Location{Lat: 33.7000, Lng: 73.0600}},
		},
		feedback: []models.Feedback{
			{ID: "feedback-001", UserID: "user-001", RideID: "ride-d001", DriverID: "driver-001", Rating: 5, Comment: "Excellent service! Driver was very professional.", CreatedAt: "2024-12-29T11:00:00Z", UserName: "Ahmed Khan", DriverName: "Ali Raza"},
			{ID: "feedback-002", UserID: "user-002", RideID: "ride-d002", DriverID: "driver-001", Rating: 4, Comment: "Good ride, arrived on time.", CreatedAt: "2024-12-28T16:00:00Z", UserName: "Fatima Ali", DriverName: "Ali Raza"},
			{ID: "feedback-003", UserID: "user-003", RideID: "ride-d003", DriverID: "driver-002", Rating: 5, Comment: "Very comfortable journey!", CreatedAt: "2024-12-27T19:00:00Z", UserName: "Muhammad Hassan", DriverName: "Hamza Iqbal"},
		},
		paymentSummary: models.PaymentSummary{
			TotalRides: 1247, CompletedRides: 1185, PooledRides: 423, TotalRevenue: 2456780, AverageFare: 2073,
		},
		payments: []models.Payment{
			{RideID: "ride-d001", TotalFare: 350, IsPooled: false, PassengerCount: 1, CompletedAt: "2024-12-29T10:35:00Z", DriverName: "Ali Raza"},
			{RideID: "ride-d002", TotalFare: 900, IsPooled: true, PassengerCount: 2, CompletedAt: "2024-12-28T15:00:00Z", DriverName: "Ali Raza"},
			{RideID: "ride-d003", TotalFare: 250, IsPooled: false, PassengerCount: 1, CompletedAt: "2024-12-27T18:25:00Z", DriverName: "Ali Raza"},
			{RideID: "admin-ride-001", TotalFare: 380, IsPooled: false, PassengerCount: 1, CompletedAt: "2024-12-30T09:30:00Z", DriverName: "Ali Raza"},
		},
	}
}

func (d *Dataset) Users() []models.User { return append([]models.User(nil), d.users...) }

// DemoUsers are the first account of each role, the ones demo login accepts.
func (d *Dataset) DemoUsers() []models.User {
	seen := make(map[models.Role]bool)
	var out []models.User
	for _, u := range d.users {
		if seen[u.Role] {
			continue
		}
		seen[u.Role] = true
		out = append(out, u)
	}
	return out
}

func (d *Dataset) UsersByRole(role models.Role) []models.User {
	var out []models.User
	for _, u := range d.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out
}

func (d *Dataset) User(id string) (models.User, bool) {
	for _, u := range d.users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

func (d *Dataset) DriverProfile() models.Driver { return cloneDriver(d.driverProfile) }

func (d *Dataset) UserRides() []models.Booking { return append([]models.Booking(nil), d.userRides...) }

func (d *Dataset) RideRequests() []models.RideRequest {
	return append([]models.RideRequest(nil), d.rideRequests...)
}

func (d *Dataset) DriverRides() []models.Ride { return cloneRides(d.driverRides) }

func (d *Dataset) Pools() []models.AvailablePool {
	out := make([]models.AvailablePool, len(d.pools))
	for i, p := range d.pools {
		out[i] = clonePool(p)
	}
	return out
}

func (d *Dataset) Metrics() models.DashboardMetrics { return d.metrics }

func (d *Dataset) RecentRides() []models.Ride { return cloneRides(d.recentRides) }

func (d *Dataset) NearbyDrivers() []models.NearbyDriver {
	return append([]models.NearbyDriver(nil), d.nearbyDrivers...)
}

func (d *Dataset) Feedback() []models.Feedback { return append([]models.Feedback(nil), d.feedback...) }

func (d *Dataset) PaymentSummary() models.PaymentSummary { return d.paymentSummary }

func (d *Dataset) Payments() []models.Payment { return append([]models.Payment(nil), d.payments...) }

func cloneDriver(in models.Driver) models.Driver {
	if in.CurrentLocation != nil {
		l := *in.CurrentLocation
		in.CurrentLocation = &l
	}
	return in
}

func cloneRides(in []models.Ride) []models.Ride {
	out := make([]models.Ride, len(in))
	for i, r := range in {
		out[i] = cloneRide(r)
	}
	return out
}

func cloneRide(r models.Ride) models.Ride {
	r.Passengers = append([]models.Passenger(nil), r.Passengers...)
	r.Route = append([]models.Location{}, r.Route...)
	return r
}

func clonePool(p models.AvailablePool) models.AvailablePool {
	if p.Driver != nil {
		d := *p.Driver
		p.Driver = &d
	}
	return p
}
