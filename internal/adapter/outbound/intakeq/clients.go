package intakeq

import (
	"context"
	"net/http"
	"strconv"
)

// ClientQuery filters GET /clients.
type ClientQuery struct {
	Search           string
	Page             *int64
	IncludeProfile   *bool
	DateCreatedStart string
	DateCreatedEnd   string
	DateUpdatedStart string
	DateUpdatedEnd   string
	ExternalClientID string
	DeletedOnly      *bool
}

func (q ClientQuery) values() query {
	v := query{}
	v.str("search", q.Search)
	v.int("page", q.Page)
	v.bool("includeProfile", q.IncludeProfile)
	v.str("dateCreatedStart", q.DateCreatedStart)
	v.str("dateCreatedEnd", q.DateCreatedEnd)
	v.str("dateUpdatedStart", q.DateUpdatedStart)
	v.str("dateUpdatedEnd", q.DateUpdatedEnd)
	v.str("externalClientId", q.ExternalClientID)
	v.bool("deletedOnly", q.DeletedOnly)
	return v
}

// ClientTag identifies one tag on one client.
type ClientTag struct {
	ClientID int64  `json:"ClientId"`
	Tag      string `json:"Tag"`
}

// Clients wraps the /clients and /clientTags endpoints.
type Clients struct{ resource }

func (c Clients) List(ctx context.Context, key string, q ClientQuery) (any, error) {
	return c.json(ctx, Request{Method: http.MethodGet, Path: "/clients", Credential: key, Query: q.values()})
}

// Save creates the client, or updates it when the object carries a ClientId.
// A nil object is sent as an empty JSON object.
func (c Clients) Save(ctx context.Context, key string, client map[string]any) (any, error) {
	if client == nil {
		client = map[string]any{}
	}
	return c.json(ctx, Request{Method: http.MethodPost, Path: "/clients", Credential: key, Body: client})
}

func (c Clients) AddTag(ctx context.Context, key string, t ClientTag) (any, error) {
	req := Request{Method: http.MethodPost, Path: "/clientTags", Credential: key, Body: t}
	return c.ack(ctx, req, "Tag added successfully")
}

func (c Clients) RemoveTag(ctx context.Context, key string, t ClientTag) (any, error) {
	req := Request{
		Method: http.MethodDelete, Path: "/clientTags", Credential: key,
		Query: query{"clientId": strconv.FormatInt(t.ClientID, 10), "tag": t.Tag},
	}
	return c.ack(ctx, req, "Tag removed successfully")
}

func (c Clients) Diagnoses(ctx context.Context, key, clientID string) (any, error) {
	return c.json(ctx, Request{
		Method: http.MethodGet, Path: pathf("/client/{clientId}/diagnoses", clientID),
		Template: "/client/{clientId}/diagnoses", Credential: key,
	})
}
