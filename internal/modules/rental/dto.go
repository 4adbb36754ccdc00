package rental

import (
	"time"

	"roombooking/internal/domain"
)

const dateLayout = "2006-01-02"

type CreateRentalRequest struct {
	BookingID                  int64   `json:"booking_id" binding:"required"`
	PreviousWaterReading       float64 `json:"previous_water_reading"`
	CurrentWaterReading        float64 `json:"current_water_reading"`
	WaterUnitPrice             float64 `json:"water_unit_price"`
	PreviousElectricityReading float64 `json:"previous_electricity_reading"`
	CurrentElectricityReading  float64 `json:"current_electricity_reading"`
	ElectricityUnitPrice       float64 `json:"electricity_unit_price"`
	// Non-zero bills are taken as given; zero means "compute from readings".
	WaterBill          float64 `json:"water_bill"`
	ElectricityBill    float64 `json:"electricity_bill"`
	BillingPeriodStart string  `json:"billing_period_start" binding:"required,datetime=2006-01-02"`
	BillingPeriodEnd   string  `json:"billing_period_end" binding:"required,datetime=2006-01-02"`
	Notes              string  `json:"notes" binding:"max=2000"`
}

// UpdateRentalRequest is a partial update; bills are always recomputed.
type UpdateRentalRequest struct {
	PreviousWaterReading       *float64 `json:"previous_water_reading"`
	CurrentWaterReading        *float64 `json:"current_water_reading"`
	WaterUnitPrice             *float64 `json:"water_unit_price"`
	PreviousElectricityReading *float64 `json:"previous_electricity_reading"`
	CurrentElectricityReading  *float64 `json:"current_electricity_reading"`
	ElectricityUnitPrice       *float64 `json:"electricity_unit_price"`
	BillingPeriodStart         *string  `json:"billing_period_start" binding:"omitempty,datetime=2006-01-02"`
	BillingPeriodEnd           *string  `json:"billing_period_end" binding:"omitempty,datetime=2006-01-02"`
	Notes                      *string  `json:"notes" binding:"omitempty,max=2000"`
}

type ListFilter struct {
	PaymentStatus domain.PaymentStatus
	BookingID     int64
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, ErrInvalidBillingPeriod
	}
	return t, nil
}
