package model

const EventRefreshTokenReuse = "refresh_token_reuse"

// SecurityEvent тело webhook уведомления
type SecurityEvent struct {
	UserUUID       string `json:"user_uuid"`
	RefreshTokenID string `json:"refresh_token_id,omitempty"`
	Event          string `json:"event"`
	TimeStamp      string `json:"timestamp"`
}
