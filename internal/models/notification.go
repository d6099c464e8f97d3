package models

// Notification is the transient value shown on the device. It is computed
// fresh on every resolve and never persisted.
type Notification struct {
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Data    NotificationData `json:"data"`
}

type NotificationData struct {
	URL string `json:"url"`
}
