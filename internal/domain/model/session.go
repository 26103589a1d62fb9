package model

import (
	"slices"
	"time"
)

type View string

const (
	ViewHome    View = "home"
	ViewApply   View = "apply"
	ViewMyTasks View = "mytasks"
)

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Flash is a one-shot notification shown on the next rendered page.
type Flash struct {
	Kind    FlashKind `json:"kind"`
	Title   string    `json:"title"`
	Message string    `json:"message,omitempty"`
}

// Session is the server-side authentication context of one browser.
// ID is never persisted in the record itself; stores key it by digest.
type Session struct {
	ID        string          `json:"-"`
	Token     string          `json:"token"`
	UserID    string          `json:"user_id"`
	Role      Role            `json:"role"`
	Boards    map[View]*Board `json:"boards,omitempty"`
	Flashes   []Flash         `json:"flashes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Anonymous is the session of a browser without a valid cookie.
func Anonymous() *Session {
	return &Session{}
}

func (s *Session) HasToken() bool { return s != nil && s.Token != "" }

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Board returns the list state of view, creating it on first use.
func (s *Session) Board(v View) *Board {
	if s.Boards == nil {
		s.Boards = make(map[View]*Board)
	}
	b, ok := s.Boards[v]
	if !ok {
		b = &Board{}
		s.Boards[v] = b
	}
	return b
}

// EachBoard visits boards in a stable order.
func (s *Session) EachBoard(fn func(View, *Board)) {
	views := make([]View, 0, len(s.Boards))
	for v := range s.Boards {
		views = append(views, v)
	}
	slices.Sort(views)
	for _, v := range views {
		fn(v, s.Boards[v])
	}
}

func (s *Session) AddFlash(kind FlashKind, title, message string) {
	s.Flashes = append(s.Flashes, Flash{Kind: kind, Title: title, Message: message})
}

// PopFlashes returns pending flashes and forgets them.
func (s *Session) PopFlashes() []Flash {
	f := s.Flashes
	s.Flashes = nil
	return f
}
