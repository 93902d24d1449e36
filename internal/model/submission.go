package model

import (
	"encoding/json"
	"time"
)

// Envelope field names present on every submission.
const (
	FieldID        = "id"
	FieldSiteKey   = "siteKey"
	FieldCreatedAt = "createdAt"
)

// Submission represents one form response.
// Fields holds everything the form sent apart from the envelope.
type Submission struct {
	ID        string
	SiteKey   string
	CreatedAt time.Time
	Fields    Fields
}

// MarshalJSON flattens the submission into a single object.
// Envelope keys take precedence over same-named form fields.
func (s *Submission) MarshalJSON() ([]byte, error) {
	out := make(map[string]Value, len(s.Fields)+3)
	for k, v := range s.Fields {
		out[k] = v
	}
	out[FieldID] = StringValue(s.ID)
	out[FieldSiteKey] = StringValue(s.SiteKey)
	out[FieldCreatedAt] = TimeValue(s.CreatedAt)
	return json.Marshal(out)
}

// NotificationFields returns every field except the site key,
// with createdAt included as a timestamp.
func (s *Submission) NotificationFields() Fields {
	out := make(Fields, len(s.Fields)+1)
	for k, v := range s.Fields {
		if k == FieldSiteKey {
			continue
		}
		out[k] = v
	}
	out[FieldCreatedAt] = TimeValue(s.CreatedAt)
	return out
}
