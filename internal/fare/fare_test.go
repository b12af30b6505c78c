package fare

import (
	"math"
	"testing"

	"github.com/example/ridepool-client/internal/models"
)

var (
	blueArea = models.Location{Lat: 33.6844, Lng: 73.0479}
	f7Markaz = models.Location{Lat: 33.7294, Lng: 73.0931}
)

func TestEstimateSolo(t *testing.T) {
	got := Estimate(blueArea, f7Markaz, false)
	if got.Distance != 6.5 {
		t.Fatalf("expected distance 6.5, got %v", got.Distance)
	}
	if got.BaseFare != 100 {
		t.Fatalf("expected base fare 100, got %v", got.BaseFare)
	}
	if got.DistanceFare != 228 {
		t.Fatalf("expected distance fare 228, got %v", got.DistanceFare)
	}
	if got.Discount != 0 {
		t.Fatalf("expected no discount, got %v", got.Discount)
	}
	if got.TotalFare != 328 {
		t.Fatalf("expected total 328, got %v", got.TotalFare)
	}
}

func TestEstimatePooledIsQuarterOff(t *testing.T) {
	solo := Estimate(blueArea, f7Markaz, false)
	pooled := Estimate(blueArea, f7Markaz, true)

	subtotal := solo.BaseFare + solo.Distance*PerKmRate
	if pooled.Discount != math.Round(subtotal*0.25) {
		t.Fatalf("expected discount %v, got %v", math.Round(subtotal*0.25), pooled.Discount)
	}
	if pooled.TotalFare != 246 {
		t.Fatalf("expected pooled total 246, got %v", pooled.TotalFare)
	}
	if pooled.Distance != solo.Distance || pooled.DistanceFare != solo.DistanceFare {
		t.Fatalf("pooling must not change distance components: %+v vs %+v", pooled, solo)
	}
}

func TestEstimateDeterministic(t *testing.T) {
	a := Estimate(blueArea, f7Markaz, true)
	b := Estimate(blueArea, f7Markaz, true)
	if a != b {
		t.Fatalf("expected identical results, got %+v and %+v", a, b)
	}
}

func TestEstimateSamePoint(t *testing.T) {
	got := Estimate(blueArea, blueArea, false)
	if got.Distance != 0 || got.TotalFare != BaseFare {
		t.Fatalf("expected base fare only, got %+v", got)
	}
}
