package domain

import "time"

// MonthlyRental keeps utility readings and bills for a monthly booking.
type MonthlyRental struct {
	ID        int64 `json:"id" gorm:"primaryKey"`
	BookingID int64 `json:"booking_id" gorm:"not null;uniqueIndex"`

	PreviousWaterReading       float64 `json:"previous_water_reading"`
	CurrentWaterReading        float64 `json:"current_water_reading"`
	WaterUnitPrice             float64 `json:"water_unit_price"`
	WaterBill                  float64 `json:"water_bill"`
	PreviousElectricityReading float64 `json:"previous_electricity_reading"`
	CurrentElectricityReading  float64 `json:"current_electricity_reading"`
	ElectricityUnitPrice       float64 `json:"electricity_unit_price"`
	ElectricityBill            float64 `json:"electricity_bill"`

	BillingPeriodStart time.Time     `json:"billing_period_start" gorm:"not null;index"`
	BillingPeriodEnd   time.Time     `json:"billing_period_end" gorm:"not null"`
	PaymentStatus      PaymentStatus `json:"payment_status" gorm:"size:20;not null"`
	PaidDate           *time.Time    `json:"paid_date,omitempty"`
	Notes              string        `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`

	Booking *Booking `json:"booking,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:RESTRICT"`
}

// UtilityBill charges max(0, current-previous) units.
func UtilityBill(previous, current, unitPrice float64) float64 {
	usage := current - previous
	if usage < 0 {
		usage = 0
	}
	return RoundMoney(usage * unitPrice)
}

func (r *MonthlyRental) WaterUsage() float64       { return r.CurrentWaterReading - r.PreviousWaterReading }
func (r *MonthlyRental) ElectricityUsage() float64 { return r.CurrentElectricityReading - r.PreviousElectricityReading }

func (r *MonthlyRental) Recalculate() {
	r.WaterBill = UtilityBill(r.PreviousWaterReading, r.CurrentWaterReading, r.WaterUnitPrice)
	r.ElectricityBill = UtilityBill(r.PreviousElectricityReading, r.CurrentElectricityReading, r.ElectricityUnitPrice)
}

func (r *MonthlyRental) TotalBill() float64 {
	return RoundMoney(r.WaterBill + r.ElectricityBill)
}
