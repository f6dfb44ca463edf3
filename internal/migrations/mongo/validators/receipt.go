package validators

import "go.mongodb.org/mongo-driver/bson"

var ReceiptValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"session_id",
			"vehicle_id",
			"plate",
			"spot_id",
			"entry_time",
			"exit_time",
			"fee_cents",
			"currency",
			"issued_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"session_id": bson.M{
				"bsonType": "string",
			},

			"vehicle_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"plate": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 12,
			},

			"spot_id": bson.M{
				"bsonType": "string",
			},

			"entry_time": bson.M{
				"bsonType": "date",
			},

			"exit_time": bson.M{
				"bsonType": "date",
			},

			"fee_cents": bson.M{
				"bsonType": "long",
				"minimum":  0,
			},

			"currency": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 3,
			},

			"issued_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var RateValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"per_hour_cents",
			"currency",
			"updated_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"enum": []string{"motorcycle", "car", "bus"},
			},

			"per_hour_cents": bson.M{
				"bsonType": "long",
				"minimum":  0,
			},

			"currency": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 3,
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
