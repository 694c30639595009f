package validators

import "go.mongodb.org/mongo-driver/bson"

// Event start and end are not typed: imported documents carry strings or
// {seconds, nanoseconds} objects next to native dates.
var EventValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"facility_id", "start", "end"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"facility_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"subfacility_id": bson.M{
				"bsonType": "string",
			},
			"title": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
			},
			"start": bson.M{
				"bsonType": bson.A{"date", "string", "object", "timestamp"},
			},
			"end": bson.M{
				"bsonType": bson.A{"date", "string", "object", "timestamp"},
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
