// Package store holds the small query helpers every Mongo repository shares.
package store

import (
	"fmt"
	"regexp"
	"strings"

	"OCLAdmin/internal/apperr"
	"OCLAdmin/pkg/pagination"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ObjectID parses a path id. what names the resource in the error message.
func ObjectID(hex, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation(fmt.Sprintf("Invalid %s ID format.", what))
	}
	return id, nil
}

// Contains matches s as a literal, case-insensitive substring.
func Contains(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(strings.TrimSpace(s)), Options: "i"}
}

// AnyField builds an $or clause matching search in any of fields.
func AnyField(search string, fields ...string) bson.A {
	re := Contains(search)
	clauses := make(bson.A, 0, len(fields))
	for _, f := range fields {
		clauses = append(clauses, bson.M{f: re})
	}
	return clauses
}

// PageOptions returns find options for one page sorted by sort.
func PageOptions(p pagination.Page, sort bson.D) *options.FindOptions {
	return options.Find().
		SetSort(sort).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit))
}

func IsDuplicate(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
