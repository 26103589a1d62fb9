package model

import "time"

// Board is the list state of one task view: what was last loaded, and the
// error of the last failed load if any.
type Board struct {
	Tasks    []Task      `json:"tasks"`
	Error    string      `json:"error,omitempty"`
	Filter   *TaskFilter `json:"filter,omitempty"`
	LoadedAt time.Time   `json:"loaded_at,omitempty"`
}

// Replace installs a freshly loaded list and clears the error.
func (b *Board) Replace(tasks []Task, at time.Time) {
	if tasks == nil {
		tasks = []Task{}
	}
	b.Tasks = tasks
	b.Error = ""
	b.LoadedAt = at
}

// Fail records a failed load. The previous list stays.
func (b *Board) Fail(message string) {
	b.Error = message
}

// Remove drops every entry of task id and reports whether there was one.
func (b *Board) Remove(id ID) bool {
	kept := b.Tasks[:0:0]
	for _, t := range b.Tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	removed := len(kept) != len(b.Tasks)
	if removed {
		b.Tasks = kept
	}
	return removed
}

// MarkDone flips task id to DONE and reports whether it was on the board.
func (b *Board) MarkDone(id ID) bool {
	found := false
	for i := range b.Tasks {
		if b.Tasks[i].ID == id {
			b.Tasks[i].Status = TaskStatusDone
			found = true
		}
	}
	return found
}

func (b *Board) Find(id ID) (Task, bool) {
	for _, t := range b.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}
