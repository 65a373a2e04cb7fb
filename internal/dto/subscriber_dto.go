package dto

type SubscribeRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type NotifyRequest struct {
	ClubName       string `json:"club_name"`
	FoodType       string `json:"food_type"`
	Building       string `json:"building"`
	Room           string `json:"room"`
	AvailableUntil string `json:"available_until"`
}

type NotifyResponse struct {
	Sent    int    `json:"sent"`
	Message string `json:"message"`
}
