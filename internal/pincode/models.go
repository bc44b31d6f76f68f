package pincode

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PincodeArea is one serviceable-area record. The district key keeps the
// spelling existing documents use.
type PincodeArea struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Pincode      int                `bson:"pincode" json:"pincode"`
	AreaName     string             `bson:"areaname" json:"areaname"`
	CityName     string             `bson:"cityname" json:"cityname"`
	DistrictName string             `bson:"distrcitname" json:"distrcitname"`
	StateName    string             `bson:"statename" json:"statename"`
	Serviceable  bool               `bson:"serviceable" json:"serviceable"`
	CreatedAt    time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt    time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// Number accepts a pincode sent either as a JSON number or a numeric string.
type Number int

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		return n.parse(s)
	}
	return n.parse(string(b))
}

func (n *Number) parse(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("pincode %q is not a number", s)
	}
	*n = Number(v)
	return nil
}

// ParseNumber reports whether s is a whole pincode number.
func ParseNumber(s string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	return v, err == nil
}

type CreateCommand struct {
	Pincode      *Number `json:"pincode"`
	AreaName     string  `json:"areaname"`
	CityName     string  `json:"cityname"`
	DistrictName string  `json:"districtname"`
	StateName    string  `json:"statename"`
	Serviceable  *bool   `json:"serviceable"`
}

// UpdateCommand changes only the fields that are present. Both district
// spellings are accepted.
type UpdateCommand struct {
	Pincode      *Number `json:"pincode"`
	AreaName     *string `json:"areaname"`
	CityName     *string `json:"cityname"`
	DistrictName *string `json:"districtname"`
	Distrcitname *string `json:"distrcitname"`
	StateName    *string `json:"statename"`
	Serviceable  *bool   `json:"serviceable"`
}

// Filter narrows pincode listings and exports.
type Filter struct {
	Search string
	State  string
	City   string
}

type Deleted struct {
	ID       primitive.ObjectID `json:"id"`
	Pincode  int                `json:"pincode"`
	AreaName string             `json:"areaname"`
}

// ImportResult summarises a spreadsheet import.
type ImportResult struct {
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}
