package model

import (
	"net/url"
	"strconv"
	"strings"
)

// TaskFilter holds the optional criteria of GET /api/task/filter. Nil fields
// and an empty tag list are not sent.
type TaskFilter struct {
	Title                   *string     `json:"title,omitempty"`
	MinReward               *int        `json:"minReward,omitempty"`
	MaxReward               *int        `json:"maxReward,omitempty"`
	RatingRequired          *float64    `json:"ratingRequired,omitempty"`
	NumberOfMeetings        *int        `json:"numberOfMeetings,omitempty"`
	NumberOfHuntersRequired *int        `json:"numberOfHuntersRequired,omitempty"`
	Status                  *TaskStatus `json:"status,omitempty"`
	Tags                    []string    `json:"tags,omitempty"`
}

// Query serializes the set fields. Tags are joined with commas.
func (f TaskFilter) Query() url.Values {
	q := url.Values{}
	if f.Title != nil {
		q.Set("title", *f.Title)
	}
	setInt(q, "minReward", f.MinReward)
	setInt(q, "maxReward", f.MaxReward)
	if f.RatingRequired != nil {
		q.Set("ratingRequired", strconv.FormatFloat(*f.RatingRequired, 'f', -1, 64))
	}
	setInt(q, "numberOfMeetings", f.NumberOfMeetings)
	setInt(q, "numberOfHuntersRequired", f.NumberOfHuntersRequired)
	if f.Status != nil {
		q.Set("status", string(*f.Status))
	}
	if len(f.Tags) > 0 {
		q.Set("tags", strings.Join(f.Tags, ","))
	}
	return q
}

func (f TaskFilter) Encode() string {
	return f.Query().Encode()
}

func (f TaskFilter) IsZero() bool {
	return len(f.Query()) == 0
}

func setInt(q url.Values, key string, v *int) {
	if v != nil {
		q.Set(key, strconv.Itoa(*v))
	}
}
