package model

import "time"

const (
	CollectionRegistrations = "registrations"
	CollectionUsers         = "users"
	CollectionAdmins        = "admins"

	// OtherInterest is the interests sentinel that makes otherInterest required.
	OtherInterest = "other"

	StatusPending = "pending"

	// TimestampLayout is fixed width so that lexical order is temporal order.
	TimestampLayout = "2006-01-02T15:04:05.000Z"
)

type Registration struct {
	ID            string   `json:"id,omitempty" bson:"_id,omitempty"`
	FullName      string   `json:"fullName" bson:"fullName"`
	Email         string   `json:"email" bson:"email"`
	Company       string   `json:"company,omitempty" bson:"company,omitempty"`
	Position      string   `json:"position,omitempty" bson:"position,omitempty"`
	Phone         string   `json:"phone,omitempty" bson:"phone,omitempty"`
	Country       string   `json:"country,omitempty" bson:"country,omitempty"`
	Interests     []string `json:"interests" bson:"interests"`
	OtherInterest string   `json:"otherInterest,omitempty" bson:"otherInterest,omitempty"`
	CreatorEmail  string   `json:"creatorEmail,omitempty" bson:"creatorEmail,omitempty"`
	UserID        string   `json:"userId,omitempty" bson:"userId,omitempty"`
	TeamMember    string   `json:"teamMember,omitempty" bson:"teamMember,omitempty"`
	Timestamp     string   `json:"timestamp" bson:"timestamp"`
	Status        string   `json:"status,omitempty" bson:"status,omitempty"`
}

// SubmitterLabel is the "registered by" value shown in the dashboard and exports.
func (r Registration) SubmitterLabel() string {
	switch {
	case r.TeamMember != "":
		return r.TeamMember
	case r.CreatorEmail != "":
		return r.CreatorEmail
	default:
		return "N/A"
	}
}

// CreatedAt parses Timestamp; the zero time is returned for malformed values.
func (r Registration) CreatedAt() time.Time {
	t, err := time.Parse(TimestampLayout, r.Timestamp)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, r.Timestamp)
		if err != nil {
			return time.Time{}
		}
	}
	return t
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

type User struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty"`
	FullName     string    `json:"fullName" bson:"fullName"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"passwordHash" bson:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Admin documents are keyed by email; presence grants dashboard access.
type Admin struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	Email     string    `json:"email" bson:"email"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
