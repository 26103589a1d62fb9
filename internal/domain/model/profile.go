package model

type HunterProfile struct {
	ID           ID       `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email,omitempty"`
	Age          int      `json:"age,omitempty"`
	Experience   string   `json:"experience,omitempty"`
	Bio          string   `json:"bio,omitempty"`
	Levels       int      `json:"levels"`
	Rating       float64  `json:"rating,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
	Tasks        []Task   `json:"tasks,omitempty"`
}

type POProfile struct {
	ID           ID       `json:"id"`
	Name         string   `json:"name"`
	Level        int      `json:"level"`
	Experience   string   `json:"experience,omitempty"`
	Projects     []string `json:"projects,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
	Tasks        []Task   `json:"tasks,omitempty"`
}

// Profile is the page model for either role; exactly one side is set.
type Profile struct {
	Role   Role           `json:"role"`
	Hunter *HunterProfile `json:"hunter,omitempty"`
	PO     *POProfile     `json:"po,omitempty"`
	Tasks  []Task         `json:"tasks"`
}

func (p *Profile) Name() string {
	switch {
	case p.Hunter != nil:
		return p.Hunter.Name
	case p.PO != nil:
		return p.PO.Name
	}
	return ""
}
