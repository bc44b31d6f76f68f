package addressform

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Form is a submitted sender/receiver address pair.
type Form struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"_id"`

	SenderName         string `bson:"senderName" json:"senderName"`
	SenderEmail        string `bson:"senderEmail" json:"senderEmail"`
	SenderPhone        string `bson:"senderPhone" json:"senderPhone"`
	SenderAddressLine1 string `bson:"senderAddressLine1" json:"senderAddressLine1"`
	SenderAddressLine2 string `bson:"senderAddressLine2,omitempty" json:"senderAddressLine2,omitempty"`
	SenderLandmark     string `bson:"senderLandmark,omitempty" json:"senderLandmark,omitempty"`
	SenderArea         string `bson:"senderArea" json:"senderArea"`
	SenderCity         string `bson:"senderCity" json:"senderCity"`
	SenderDistrict     string `bson:"senderDistrict" json:"senderDistrict"`
	SenderState        string `bson:"senderState" json:"senderState"`
	SenderPincode      string `bson:"senderPincode" json:"senderPincode"`

	ReceiverName         string `bson:"receiverName" json:"receiverName"`
	ReceiverEmail        string `bson:"receiverEmail" json:"receiverEmail"`
	ReceiverPhone        string `bson:"receiverPhone" json:"receiverPhone"`
	ReceiverAddressLine1 string `bson:"receiverAddressLine1" json:"receiverAddressLine1"`
	ReceiverAddressLine2 string `bson:"receiverAddressLine2,omitempty" json:"receiverAddressLine2,omitempty"`
	ReceiverLandmark     string `bson:"receiverLandmark,omitempty" json:"receiverLandmark,omitempty"`
	ReceiverArea         string `bson:"receiverArea" json:"receiverArea"`
	ReceiverCity         string `bson:"receiverCity" json:"receiverCity"`
	ReceiverDistrict     string `bson:"receiverDistrict" json:"receiverDistrict"`
	ReceiverState        string `bson:"receiverState" json:"receiverState"`
	ReceiverPincode      string `bson:"receiverPincode" json:"receiverPincode"`

	FormCompleted bool      `bson:"formCompleted" json:"formCompleted"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Filter narrows the form listing.
type Filter struct {
	Search string
	// Completed is nil when every form should be listed.
	Completed *bool
	State     string
}

// UpdateCommand carries the editable fields of a form. Nil fields are left alone.
type UpdateCommand struct {
	SenderName         *string `json:"senderName" validate:"omitempty,min=1,max=100"`
	SenderEmail        *string `json:"senderEmail" validate:"omitempty,email"`
	SenderPhone        *string `json:"senderPhone" validate:"omitempty,max=20"`
	SenderAddressLine1 *string `json:"senderAddressLine1" validate:"omitempty,max=200"`
	SenderAddressLine2 *string `json:"senderAddressLine2" validate:"omitempty,max=200"`
	SenderLandmark     *string `json:"senderLandmark" validate:"omitempty,max=100"`
	SenderArea         *string `json:"senderArea" validate:"omitempty,max=100"`
	SenderCity         *string `json:"senderCity" validate:"omitempty,max=100"`
	SenderDistrict     *string `json:"senderDistrict" validate:"omitempty,max=100"`
	SenderState        *string `json:"senderState" validate:"omitempty,max=100"`
	SenderPincode      *string `json:"senderPincode" validate:"omitempty,numeric,len=6"`

	ReceiverName         *string `json:"receiverName" validate:"omitempty,min=1,max=100"`
	ReceiverEmail        *string `json:"receiverEmail" validate:"omitempty,email"`
	ReceiverPhone        *string `json:"receiverPhone" validate:"omitempty,max=20"`
	ReceiverAddressLine1 *string `json:"receiverAddressLine1" validate:"omitempty,max=200"`
	ReceiverAddressLine2 *string `json:"receiverAddressLine2" validate:"omitempty,max=200"`
	ReceiverLandmark     *string `json:"receiverLandmark" validate:"omitempty,max=100"`
	ReceiverArea         *string `json:"receiverArea" validate:"omitempty,max=100"`
	ReceiverCity         *string `json:"receiverCity" validate:"omitempty,max=100"`
	ReceiverDistrict     *string `json:"receiverDistrict" validate:"omitempty,max=100"`
	ReceiverState        *string `json:"receiverState" validate:"omitempty,max=100"`
	ReceiverPincode      *string `json:"receiverPincode" validate:"omitempty,numeric,len=6"`

	FormCompleted *bool `json:"formCompleted"`
}

// fields maps the bson key of every set field to its value.
func (u UpdateCommand) fields() map[string]interface{} {
	out := map[string]interface{}{}
	str := func(key string, v *string) {
		if v != nil {
			out[key] = *v
		}
	}
	str("senderName", u.SenderName)
	str("senderEmail", u.SenderEmail)
	str("senderPhone", u.SenderPhone)
	str("senderAddressLine1", u.SenderAddressLine1)
	str("senderAddressLine2", u.SenderAddressLine2)
	str("senderLandmark", u.SenderLandmark)
	str("senderArea", u.SenderArea)
	str("senderCity", u.SenderCity)
	str("senderDistrict", u.SenderDistrict)
	str("senderState", u.SenderState)
	str("senderPincode", u.SenderPincode)
	str("receiverName", u.ReceiverName)
	str("receiverEmail", u.ReceiverEmail)
	str("receiverPhone", u.ReceiverPhone)
	str("receiverAddressLine1", u.ReceiverAddressLine1)
	str("receiverAddressLine2", u.ReceiverAddressLine2)
	str("receiverLandmark", u.ReceiverLandmark)
	str("receiverArea", u.ReceiverArea)
	str("receiverCity", u.ReceiverCity)
	str("receiverDistrict", u.ReceiverDistrict)
	str("receiverState", u.ReceiverState)
	str("receiverPincode", u.ReceiverPincode)
	if u.FormCompleted != nil {
		out["formCompleted"] = *u.FormCompleted
	}
	return out
}

type Deleted struct {
	ID           primitive.ObjectID `json:"id"`
	SenderName   string             `json:"senderName"`
	ReceiverName string             `json:"receiverName"`
}
