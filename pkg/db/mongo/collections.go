package mongo

const (
	FacilitiesCollection    = "Facilities"
	SubfacilitiesCollection = "Subfacilities"
	EventsCollection        = "Events"
	NotificationsCollection = "Notifications"
)
