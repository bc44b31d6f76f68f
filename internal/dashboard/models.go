package dashboard

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Stats struct {
	Forms    FormStats    `json:"forms"`
	Pincodes PincodeStats `json:"pincodes"`
	Recent   Recent       `json:"recent"`
}

type FormStats struct {
	Total          int64 `json:"total"`
	Completed      int64 `json:"completed"`
	Incomplete     int64 `json:"incomplete"`
	CompletionRate int64 `json:"completionRate"`
}

type PincodeStats struct {
	Total  int64 `json:"total"`
	States int   `json:"states"`
	Cities int   `json:"cities"`
}

type Recent struct {
	Forms     []RecentForm `json:"forms"`
	Stats     []DailyCount `json:"stats"`
	TopStates []StateCount `json:"topStates"`
}

// RecentForm is the summary shown for the latest submissions.
type RecentForm struct {
	ID            primitive.ObjectID `bson:"_id" json:"_id"`
	SenderName    string             `bson:"senderName" json:"senderName"`
	SenderEmail   string             `bson:"senderEmail" json:"senderEmail"`
	ReceiverName  string             `bson:"receiverName" json:"receiverName"`
	ReceiverEmail string             `bson:"receiverEmail" json:"receiverEmail"`
	FormCompleted bool               `bson:"formCompleted" json:"formCompleted"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

type DayKey struct {
	Date      string `bson:"date" json:"date"`
	Completed bool   `bson:"completed" json:"completed"`
}

// DailyCount is the number of forms created on one day with one completion state.
type DailyCount struct {
	ID    DayKey `bson:"_id" json:"_id"`
	Count int64  `bson:"count" json:"count"`
}

type StateCount struct {
	State string `bson:"_id" json:"_id"`
	Count int64  `bson:"count" json:"count"`
}

func completionRate(completed, total int64) int64 {
	if total <= 0 {
		return 0
	}
	return (completed*200 + total) / (total * 2)
}
