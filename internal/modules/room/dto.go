package room

import (
	"encoding/json"

	"gorm.io/datatypes"

	"roombooking/internal/domain"
)

type CreateRoomRequest struct {
	RoomNumber  string   `json:"room_number" validate:"required,max=20"`
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description"`
	RoomType    string   `json:"room_type" validate:"max=50"`
	Capacity    int      `json:"capacity" validate:"required,gte=1"`
	FloorNumber int      `json:"floor_number"`
	AreaSqm     *float64 `json:"area_sqm,omitempty" validate:"omitempty,gt=0"`
	DailyRate   float64  `json:"daily_rate" validate:"gte=0"`
	MonthlyRate float64  `json:"monthly_rate" validate:"gte=0"`
	Amenities   []string `json:"amenities,omitempty"`
	ImageURL    string   `json:"image_url,omitempty" validate:"omitempty,url,max=500"`
}

// UpdateRoomRequest is a partial update; nil fields are left untouched.
type UpdateRoomRequest struct {
	Name        *string            `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string            `json:"description,omitempty"`
	RoomType    *string            `json:"room_type,omitempty" validate:"omitempty,max=50"`
	Capacity    *int               `json:"capacity,omitempty" validate:"omitempty,gte=1"`
	FloorNumber *int               `json:"floor_number,omitempty"`
	AreaSqm     *float64           `json:"area_sqm,omitempty" validate:"omitempty,gt=0"`
	DailyRate   *float64           `json:"daily_rate,omitempty" validate:"omitempty,gte=0"`
	MonthlyRate *float64           `json:"monthly_rate,omitempty" validate:"omitempty,gte=0"`
	Status      *domain.RoomStatus `json:"status,omitempty"`
	Amenities   *[]string          `json:"amenities,omitempty"`
	ImageURL    *string            `json:"image_url,omitempty" validate:"omitempty,max=500"`
}

type Filter struct {
	RoomType     string
	MinCapacity  int
	MaxDailyRate float64
	Status       domain.RoomStatus
	Limit        int
	Offset       int
}

func amenitiesJSON(list []string) (datatypes.JSON, error) {
	if list == nil {
		list = []string{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
