package validators

import "go.mongodb.org/mongo-driver/bson"

var SpotValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"floor",
			"category",
			"status",
			"distance_m",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 32,
			},

			"floor": bson.M{
				"bsonType": "int",
			},

			"category": bson.M{
				"enum": []string{"motorcycle", "car", "bus"},
			},

			"accessible": bson.M{
				"bsonType": "bool",
			},

			"charging": bson.M{
				"bsonType": "bool",
			},

			"distance_m": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},

			"status": bson.M{
				"enum": []string{"free", "occupied"},
			},

			"vehicle_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"version": bson.M{
				"bsonType": "long",
			},

			"claimed_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
