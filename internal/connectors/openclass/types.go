package openclass

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/custodia-labs/cohort-tracker/internal/core/domain"
)

// envelope is the outer JSON body of every OpenClass response.
type envelope struct {
	Result struct {
		Token   string          `json:"token"`
		Objects json.RawMessage `json:"objects"`
	} `json:"result"`
}

// innerObject returns the JSON document encoded in result.objects.
// The field is either a JSON string or an array whose first element is one.
func (e *envelope) innerObject() ([]byte, error) {
	raw := bytes.TrimSpace(e.Result.Objects)
	if len(raw) == 0 {
		return nil, ErrInvalidEnvelope
	}

	var s string
	switch raw[0] {
	case '"':
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
		}
	case '[':
		var arr []json.RawMessage
		if err := json.Unmarshal(raw, &arr); err != nil || len(arr) == 0 {
			return nil, ErrInvalidEnvelope
		}
		if err := json.Unmarshal(arr[0], &s); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
		}
	default:
		return nil, ErrInvalidEnvelope
	}
	return []byte(s), nil
}

type classList struct {
	Data []struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		FriendlyID string `json:"friendly_id"`
	} `json:"data"`
}

type classDetail struct {
	Data []struct {
		Units []struct {
			Name        *string           `json:"name"`
			Assignments []json.RawMessage `json:"assignments"`
		} `json:"units"`
	} `json:"data"`
}

// unknownSection names units that carry no name.
const unknownSection = "Unknown Section"

// sections flattens the unit list into assignment id -> unit name.
// Non-string assignment entries are skipped.
func (d *classDetail) sections() domain.SectionMap {
	out := make(domain.SectionMap)
	if len(d.Data) == 0 {
		return out
	}
	for _, unit := range d.Data[0].Units {
		name := unknownSection
		if unit.Name != nil {
			name = *unit.Name
		}
		for _, raw := range unit.Assignments {
			var id string
			if err := json.Unmarshal(raw, &id); err != nil {
				continue
			}
			out[id] = name
		}
	}
	return out
}

type progressionList struct {
	Metadata struct {
		Total          int  `json:"total"`
		Page           int  `json:"page"`
		ResultsPerPage int  `json:"results_per_page"`
		CanLoadMore    bool `json:"can_load_more"`
	} `json:"metadata"`
	Data []wireProgression `json:"data"`
}

type wireProgression struct {
	ID   objectID `json:"_id"`
	User struct {
		ID        string `json:"id"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
	} `json:"user"`
	Assignment struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"assignment"`
	Grade       *float64 `json:"grade"`
	StartedAt   *string  `json:"started_assignment_at"`
	CompletedAt *string  `json:"completed_assignment_at"`
	ReviewedAt  *string  `json:"reviewed_at"`
}

// objectID accepts either a plain string or a Mongo extended {"$oid": "..."}.
type objectID string

func (o *objectID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*o = objectID(s)
		return nil
	}
	var ext struct {
		OID string `json:"$oid"`
	}
	if err := json.Unmarshal(b, &ext); err != nil {
		return fmt.Errorf("openclass: unsupported _id %s", string(b))
	}
	*o = objectID(ext.OID)
	return nil
}

// record converts a wire progression to a domain record for classID.
func (p *wireProgression) record(classID string) (domain.ProgressionRecord, error) {
	if p.ID == "" {
		return domain.ProgressionRecord{}, fmt.Errorf("openclass: progression without _id")
	}
	return domain.ProgressionRecord{
		ID: string(p.ID),
		Student: domain.Student{
			ID:        p.User.ID,
			ClassID:   classID,
			FirstName: p.User.FirstName,
			LastName:  p.User.LastName,
			Email:     p.User.Email,
		},
		Assignment: domain.Assignment{
			ID:      p.Assignment.ID,
			ClassID: classID,
			Name:    p.Assignment.Name,
			Type:    p.Assignment.Type,
		},
		Grade:       p.Grade,
		StartedAt:   deref(p.StartedAt),
		CompletedAt: deref(p.CompletedAt),
		ReviewedAt:  p.ReviewedAt,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
