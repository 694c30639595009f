package validators

import "go.mongodb.org/mongo-driver/bson"

var NotificationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"event_id", "user_id", "type", "message", "read", "created_at"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"event_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"type": bson.M{
				"bsonType": "string",
				"enum":     []string{"booking_created", "booking_status_changed"},
			},
			"message": bson.M{
				"bsonType": "string",
			},
			"booking_id": bson.M{
				"bsonType": "string",
			},
			"facility_id": bson.M{
				"bsonType": "string",
			},
			"subfacility_id": bson.M{
				"bsonType": "string",
			},
			"read": bson.M{
				"bsonType": "bool",
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
