package handler

import (
	"net/url"
	"strconv"
	"strings"
	"taskhunt_web/internal/common"
	"taskhunt_web/internal/domain/model"
)

// parseTaskFilter reads the filter form. Blank fields stay unset so they are
// left out of the marketplace query.
func parseTaskFilter(q url.Values) (model.TaskFilter, error) {
	var f model.TaskFilter
	v := &common.ValidationError{}

	if title := strings.TrimSpace(q.Get("title")); title != "" {
		f.Title = &title
	}
	f.MinReward = intParam(v, q, "minReward")
	f.MaxReward = intParam(v, q, "maxReward")
	f.NumberOfMeetings = intParam(v, q, "numberOfMeetings")
	f.NumberOfHuntersRequired = intParam(v, q, "numberOfHuntersRequired")

	if raw := strings.TrimSpace(q.Get("ratingRequired")); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			v.Add("ratingRequired", "ratingRequired must be a number")
		} else {
			f.RatingRequired = &rating
		}
	}

	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status := model.TaskStatus(strings.ToUpper(raw))
		switch status {
		case model.TaskStatusOpen, model.TaskStatusInProgress, model.TaskStatusDone:
			f.Status = &status
		default:
			v.Add("status", "Unknown status "+raw)
		}
	}

	for _, value := range q["tags"] {
		for _, tag := range strings.Split(value, ",") {
			tag = strings.ToUpper(strings.TrimSpace(tag))
			if tag == "" {
				continue
			}
			if !model.IsKnownTag(tag) {
				v.Add("tags", "Unknown tag "+tag)
				continue
			}
			f.Tags = append(f.Tags, tag)
		}
	}

	if f.MinReward != nil && f.MaxReward != nil && *f.MinReward > *f.MaxReward {
		v.Add("maxReward", "maxReward must not be below minReward")
	}
	if err := v.OrNil(); err != nil {
		return model.TaskFilter{}, err
	}
	return f, nil
}

func intParam(v *common.ValidationError, q url.Values, key string) *int {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		v.Add(key, key+" must be a whole number")
		return nil
	}
	return &n
}
