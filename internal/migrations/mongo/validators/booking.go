package validators

import "go.mongodb.org/mongo-driver/bson"

// intType accepts both widths the driver may pick for a Go int.
var intType = bson.A{"int", "long"}

var bookingItem = bson.M{
	"bsonType": "object",
	"required": []string{"id", "date", "time", "status", "attendees", "user_id"},
	"properties": bson.M{
		"id": bson.M{
			"bsonType": "string",
		},
		"date": bson.M{
			"bsonType": "string",
			"pattern":  `^\d{4}-\d{2}-\d{2}$`,
		},
		"time": bson.M{
			"bsonType": "string",
			"enum":     []string{"13:00", "14:00", "15:00", "16:00", "17:00"},
		},
		"status": bson.M{
			"bsonType": "string",
			"enum":     []string{"pending", "approved", "rejected"},
		},
		"attendees": bson.M{
			"bsonType": intType,
			"minimum":  1,
		},
		"user_id": bson.M{
			"bsonType":  "string",
			"minLength": 1,
		},
		"booked_at": bson.M{
			"bsonType": "date",
		},
	},
}

var bookingsArray = bson.M{
	"bsonType": "array",
	"items":    bookingItem,
}
