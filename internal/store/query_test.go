package store

import (
	"regexp"
	"testing"

	"OCLAdmin/internal/apperr"

	"go.mongodb.org/mongo-driver/bson"
)

func TestObjectID(t *testing.T) {
	if _, err := ObjectID("64b7f0c2a1b2c3d4e5f60718", "pincode"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := ObjectID("not-an-id", "pincode")
	appErr, ok := apperr.As(err)
	if !ok || appErr.Kind != apperr.KindValidation || appErr.Message != "Invalid pincode ID format." {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestContainsEscapesMetacharacters(t *testing.T) {
	re := Contains("  a.b(c  ")
	if re.Options != "i" {
		t.Fatalf("expected case-insensitive, got %q", re.Options)
	}
	compiled := regexp.MustCompile(re.Pattern)
	if !compiled.MatchString("xa.b(cx") || compiled.MatchString("aXb(c") {
		t.Fatalf("pattern %q must match literally", re.Pattern)
	}
}

func TestAnyField(t *testing.T) {
	clauses := AnyField("ram", "name", "email")
	if len(clauses) != 2 {
		t.Fatalf("expected 2 clauses, got %d", len(clauses))
	}
	first, ok := clauses[0].(bson.M)
	if !ok {
		t.Fatalf("unexpected clause type %T", clauses[0])
	}
	if _, ok := first["name"]; !ok {
		t.Fatalf("expected name clause, got %v", first)
	}
}
