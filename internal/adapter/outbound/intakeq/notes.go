package intakeq

import (
	"context"
	"net/http"
)

// NoteQuery filters GET /notes/summary. Status is 1 (locked) or 2 (unlocked).
type NoteQuery struct {
	Client       string
	ClientID     *int64
	Status       *int64
	StartDate    string
	EndDate      string
	Page         *int64
	UpdatedSince string
	DeletedOnly  *bool
}

func (q NoteQuery) values() query {
	v := query{}
	v.str("client", q.Client)
	v.int("clientId", q.ClientID)
	v.int("status", q.Status)
	v.str("startDate", q.StartDate)
	v.str("endDate", q.EndDate)
	v.int("page", q.Page)
	v.str("updatedSince", q.UpdatedSince)
	v.bool("deletedOnly", q.DeletedOnly)
	return v
}

// Notes wraps the /notes endpoints.
type Notes struct{ resource }

func (n Notes) ListSummaries(ctx context.Context, key string, q NoteQuery) (any, error) {
	return n.json(ctx, Request{Method: http.MethodGet, Path: "/notes/summary", Credential: key, Query: q.values()})
}

func (n Notes) Get(ctx context.Context, key, id string) (any, error) {
	return n.json(ctx, Request{
		Method: http.MethodGet, Path: pathf("/notes/{id}", id), Template: "/notes/{id}", Credential: key,
	})
}

// PDF returns the note rendered as PDF bytes.
func (n Notes) PDF(ctx context.Context, key, id string) ([]byte, error) {
	return n.raw(ctx, Request{
		Method: http.MethodGet, Path: pathf("/notes/{id}/pdf", id), Template: "/notes/{id}/pdf", Credential: key,
	})
}
