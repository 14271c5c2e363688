package domain

type Player struct {
	PlayerID     string  `json:"id" dynamodbav:"player_id"`
	DisplayName  string  `json:"display_name" dynamodbav:"display_name"`
	Email        string  `json:"email" dynamodbav:"email"`
	Score        float64 `json:"score" dynamodbav:"score"`
	Locale       *string `json:"locale" dynamodbav:"locale,omitempty"`
	Unsubscribed bool    `json:"unsubscribed" dynamodbav:"unsubscribed"`
}
