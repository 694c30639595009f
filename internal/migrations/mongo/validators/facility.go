package validators

import "go.mongodb.org/mongo-driver/bson"

var FacilityValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "capacity", "bookings", "created_at"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},
			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
			},
			"capacity": bson.M{
				"bsonType": intType,
				"minimum":  1,
				"maximum":  500,
			},
			"coordinates": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"lat": bson.M{"bsonType": "double", "minimum": -90, "maximum": 90},
					"lng": bson.M{"bsonType": "double", "minimum": -180, "maximum": 180},
				},
			},
			"contact_phone": bson.M{
				"bsonType": "string",
				"pattern":  `^\+[1-9]\d{1,14}$`,
			},
			"website_url": bson.M{
				"bsonType": "string",
				"pattern":  `^https?://`,
			},
			"bookings": bookingsArray,
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var SubfacilityValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"facility_id", "name", "capacity", "bookings", "created_at"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"facility_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},
			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
			},
			"capacity": bson.M{
				"bsonType": intType,
				"minimum":  1,
				"maximum":  500,
			},
			"bookings": bookingsArray,
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
