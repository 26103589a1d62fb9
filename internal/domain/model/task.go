package model

import (
	"slices"
	"strconv"
)

type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "OPEN"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

type Task struct {
	ID                      ID         `json:"id"`
	Title                   string     `json:"title"`
	Description             string     `json:"description"`
	Deadline                string     `json:"deadline"`
	Reward                  int        `json:"reward"`
	NumberOfMeetings        int        `json:"numberOfMeetings"`
	NumberOfHuntersRequired int        `json:"numberOfHuntersRequired"`
	RatingRequired          float64    `json:"ratingRequired"`
	Tags                    []string   `json:"tags"`
	Status                  TaskStatus `json:"status,omitempty"`
	POID                    ID         `json:"po_id,omitempty"`
}

const shownTags = 3

// ShownTags is what a task card has room for.
func (t Task) ShownTags() []string {
	if len(t.Tags) <= shownTags {
		return t.Tags
	}
	return t.Tags[:shownTags]
}

func (t Task) HiddenTagCount() int {
	return max(len(t.Tags)-shownTags, 0)
}

// RewardBRL is the reward in reais; the marketplace counts gold at 10 per real.
func (t Task) RewardBRL() string {
	return strconv.FormatFloat(float64(t.Reward)/10, 'f', -1, 64)
}

func (t Task) Done() bool { return t.Status == TaskStatusDone }

// Applicant is a hunter that applied to a task.
type Applicant struct {
	ID     ID      `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Rating float64 `json:"rating"`
}

// Tags is the tag vocabulary accepted by the marketplace.
var Tags = []string{
	"KOTLIN", "NODE", "TYPESCRIPT", "CRIMINAL_DATA", "FIREBASE", "SQLITE",
	"SPRING", "STATISTICAL_DATA", "GOOGLE_CLOUD", "WEB_DEVELOPMENT",
	"DEEP_LEARNING", "FRONTEND", "CLOUD", "XAMARIN", "ELASTICSEARCH",
	"JAVA", "NATURAL_LANGUAGE_PROCESSING", "SCALA", "SYNCHRONOUS",
	"ACTIVEMQ", "HTML", "SQL", "DATA_SCIENCE", "NO_SQL", "MACHINE_LEARNING",
	"MEDICAL_DATA", "FULLSTACK", "RABBITMQ", "SECURITY", "ANGULAR", "C",
	"ASYNCHRONOUS", "GRAPHQL", "ANDROID", "EXPRESS", "MONGODB", "HASKELL",
	"APACHE_KAFKA", "PHP", "RUBY", "REDIS", "PYTHON", "DATABASE_MODELING",
	"REACT", "CSS", "RUST", "APACHE_CAMEL", "VUE", "GEOGRAPHICAL_DATA",
	"PRIVACY", "JAVASCRIPT", "AZURE", "OTHER", "SWIFT", "SQL_SERVER",
	"CPLUSPLUS", "API", "DATABASE", "FLUTTER", "DEVOPS", "MOBILE_DEVELOPMENT",
	"HISTORICAL_DATA", "MYSQL", "KAFKA", "REINFORCEMENT_LEARNING",
	"ARTIFICIAL_INTELLIGENCE", "BIG_DATA", "POSTGRESQL", "AWS", "CSHARP",
	"GO", "IOS", "BACKEND", "REACT_NATIVE", "APACHE_ACTIVEMQ", "ORACLE",
	"COMPUTER_VISION", "MICROSERVICES", "REST",
}

func IsKnownTag(tag string) bool {
	return slices.Contains(Tags, tag)
}

// TaskDraft is the body of POST /api/task/{poId}.
type TaskDraft struct {
	Title                   string   `json:"title"`
	Description             string   `json:"description"`
	Deadline                string   `json:"deadline"`
	Reward                  int      `json:"reward"`
	NumberOfMeetings        int      `json:"numberOfMeetings"`
	NumberOfHuntersRequired int      `json:"numberOfHuntersRequired"`
	RatingRequired          int      `json:"ratingRequired"`
	Tags                    []string `json:"tags"`
}
