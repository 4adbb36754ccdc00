package domain

import (
	"time"

	"gorm.io/datatypes"
)

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomOccupied    RoomStatus = "occupied"
	RoomMaintenance RoomStatus = "maintenance"
	RoomReserved    RoomStatus = "reserved"
)

// Room is never physically removed. Retired rooms keep IsActive=false so
// that bookings and reports referencing them stay intact.
type Room struct {
	ID          int64          `json:"id" gorm:"primaryKey"`
	RoomNumber  string         `json:"room_number" gorm:"size:20;uniqueIndex;not null"`
	Name        string         `json:"name" gorm:"size:200;not null"`
	Description string         `json:"description,omitempty" gorm:"type:text"`
	RoomType    string         `json:"room_type" gorm:"size:50"`
	Capacity    int            `json:"capacity" gorm:"not null"`
	FloorNumber int            `json:"floor_number"`
	AreaSqm     *float64       `json:"area_sqm,omitempty"`
	DailyRate   float64        `json:"daily_rate" gorm:"not null"`
	MonthlyRate float64        `json:"monthly_rate" gorm:"not null"`
	Status      RoomStatus     `json:"status" gorm:"size:20;not null"`
	Amenities   datatypes.JSON `json:"amenities,omitempty"`
	ImageURL    string         `json:"image_url,omitempty" gorm:"size:500"`
	IsActive    bool           `json:"is_active" gorm:"not null;index"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// BusyRange is an occupied half-open interval [CheckIn, CheckOut) of a room.
type BusyRange struct {
	BookingID int64         `json:"booking_id"`
	CheckIn   time.Time     `json:"check_in_date"`
	CheckOut  time.Time     `json:"check_out_date"`
	Status    BookingStatus `json:"status"`
}
