package intakeq

import (
	"context"
	"net/http"
)

// InvoiceQuery filters GET /invoices.
type InvoiceQuery struct {
	ClientID             *int64
	StartDate            string
	EndDate              string
	Status               string
	PractitionerEmail    string
	Number               string
	Page                 *int64
	LastUpdatedStartDate string
	LastUpdatedEndDate   string
}

func (q InvoiceQuery) values() query {
	v := query{}
	v.int("clientId", q.ClientID)
	v.str("startDate", q.StartDate)
	v.str("endDate", q.EndDate)
	v.str("status", q.Status)
	v.str("practitionerEmail", q.PractitionerEmail)
	v.str("number", q.Number)
	v.int("page", q.Page)
	v.str("lastUpdatedStartDate", q.LastUpdatedStartDate)
	v.str("lastUpdatedEndDate", q.LastUpdatedEndDate)
	return v
}

// Invoices wraps the /invoices endpoints.
type Invoices struct{ resource }

func (i Invoices) List(ctx context.Context, key string, q InvoiceQuery) (any, error) {
	return i.json(ctx, Request{Method: http.MethodGet, Path: "/invoices", Credential: key, Query: q.values()})
}

func (i Invoices) Get(ctx context.Context, key, id string) (any, error) {
	return i.json(ctx, Request{
		Method: http.MethodGet, Path: pathf("/invoices/{id}", id), Template: "/invoices/{id}", Credential: key,
	})
}
