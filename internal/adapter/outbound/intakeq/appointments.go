package intakeq

import (
	"context"
	"net/http"

	"github.com/i2y/intakeq-mcp/internal/codec"
)

// AppointmentQuery filters GET /appointments.
type AppointmentQuery struct {
	Client            string
	StartDate         string
	EndDate           string
	Status            string
	PractitionerEmail string
	Page              *int64
	UpdatedSince      string
	DeletedOnly       *bool
}

func (q AppointmentQuery) values() query {
	v := query{}
	v.str("client", q.Client)
	v.str("startDate", q.StartDate)
	v.str("endDate", q.EndDate)
	v.str("status", q.Status)
	v.str("practitionerEmail", q.PractitionerEmail)
	v.int("page", q.Page)
	v.str("updatedSince", q.UpdatedSince)
	v.bool("deletedOnly", q.DeletedOnly)
	return v
}

// Appointment is the body of appointment create and update calls. Pointer and
// empty fields are left out of the JSON.
type Appointment struct {
	ID                          string `json:"Id,omitempty"`
	PractitionerID              string `json:"PractitionerId,omitempty"`
	ClientID                    *int64 `json:"ClientId,omitempty"`
	ServiceID                   string `json:"ServiceId,omitempty"`
	LocationID                  string `json:"LocationId,omitempty"`
	Status                      string `json:"Status,omitempty"`
	UtcDateTime                 *int64 `json:"UtcDateTime,omitempty"`
	SendClientEmailNotification *bool  `json:"SendClientEmailNotification,omitempty"`
	ReminderType                string `json:"ReminderType,omitempty"`
	// Extra holds further appointment fields sent as-is. Typed fields win
	// over an Extra entry of the same name.
	Extra map[string]any `json:"-"`
}

// MarshalJSON flattens Extra into the appointment object.
func (a Appointment) MarshalJSON() ([]byte, error) {
	type plain Appointment
	data, err := codec.Marshal(plain(a))
	if err != nil || len(a.Extra) == 0 {
		return data, err
	}
	fields := make(map[string]any, len(a.Extra))
	if err := codec.Decode(data, &fields); err != nil {
		return nil, err
	}
	for k, v := range a.Extra {
		if _, typed := fields[k]; !typed {
			fields[k] = v
		}
	}
	return codec.Marshal(fields)
}

// Cancellation is the body of POST /appointments/cancellation.
type Cancellation struct {
	AppointmentID string `json:"AppointmentId"`
	Reason        string `json:"Reason,omitempty"`
}

// Appointments wraps the /appointments endpoints.
type Appointments struct{ resource }

func (a Appointments) List(ctx context.Context, key string, q AppointmentQuery) (any, error) {
	return a.json(ctx, Request{Method: http.MethodGet, Path: "/appointments", Credential: key, Query: q.values()})
}

func (a Appointments) Get(ctx context.Context, key, id string) (any, error) {
	return a.json(ctx, Request{
		Method: http.MethodGet, Path: pathf("/appointments/{id}", id), Template: "/appointments/{id}", Credential: key,
	})
}

// Create accepts 201 as well as 200.
func (a Appointments) Create(ctx context.Context, key string, appt Appointment) (any, error) {
	return a.json(ctx, Request{
		Method: http.MethodPost, Path: "/appointments", Credential: key, Body: appt,
		Success: []int{http.StatusOK, http.StatusCreated},
	})
}

func (a Appointments) Update(ctx context.Context, key string, appt Appointment) (any, error) {
	return a.json(ctx, Request{Method: http.MethodPut, Path: "/appointments", Credential: key, Body: appt})
}

func (a Appointments) Cancel(ctx context.Context, key string, c Cancellation) (any, error) {
	req := Request{Method: http.MethodPost, Path: "/appointments/cancellation", Credential: key, Body: c}
	return a.ack(ctx, req, "Appointment canceled successfully")
}

// Settings returns the booking settings (services, locations, practitioners).
func (a Appointments) Settings(ctx context.Context, key string) (any, error) {
	return a.json(ctx, Request{Method: http.MethodGet, Path: "/appointments/settings", Credential: key})
}
