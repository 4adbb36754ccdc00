package domain

import "time"

type Promotion struct {
	ID                 int64     `json:"id" gorm:"primaryKey"`
	Title              string    `json:"title" gorm:"size:200;not null"`
	Description        string    `json:"description,omitempty" gorm:"type:text"`
	PromoCode          string    `json:"promo_code" gorm:"size:50;uniqueIndex;not null"`
	DiscountPercentage *float64  `json:"discount_percentage,omitempty"`
	DiscountAmount     *float64  `json:"discount_amount,omitempty"`
	StartDate          time.Time `json:"start_date" gorm:"not null"`
	EndDate            time.Time `json:"end_date" gorm:"not null"`
	IsActive           bool      `json:"is_active" gorm:"not null"`
	CreatedAt          time.Time `json:"created_at"`
}

// DiscountFor returns the discount the promotion grants on total, capped at total.
// Percentage wins when both kinds are set.
func (p *Promotion) DiscountFor(total float64) float64 {
	if p == nil || total <= 0 {
		return 0
	}
	var d float64
	switch {
	case p.DiscountPercentage != nil:
		d = total * *p.DiscountPercentage / 100
	case p.DiscountAmount != nil:
		d = *p.DiscountAmount
	}
	if d < 0 {
		d = 0
	}
	if d > total {
		d = total
	}
	return RoundMoney(d)
}
