package registry

import (
	"context"
	"net/http"

	"github.com/i2y/intakeq-mcp/internal/adapter/outbound/intakeq"
	"github.com/i2y/intakeq-mcp/internal/domain"
)

var (
	appointmentStatuses = []string{"Confirmed", "Canceled", "WaitingConfirmation", "Declined", "Missed"}
	invoiceStatuses     = []string{"Draft", "Unpaid", "Paid", "PastDue", "Refunded", "Canceled"}
	noteStatuses        = []string{"1", "2"}
	reminderTypes       = []string{"Sms", "Email", "Voice", "OptOut"}
)

func queryParam(name string, t domain.ParamType, desc string, enum ...string) domain.Param {
	return domain.Param{Name: name, Type: t, In: domain.InQuery, Description: desc, Enum: enum}
}

func pathParam(name, desc string) domain.Param {
	return domain.Param{Name: name, Type: domain.TypeString, In: domain.InPath, Required: true, Description: desc}
}

func bodyParam(name, wire string, t domain.ParamType, required bool, desc string, enum ...string) domain.Param {
	return domain.Param{Name: name, Wire: wire, Type: t, In: domain.InBody, Required: required, Description: desc, Enum: enum}
}

func pageParam() domain.Param {
	return queryParam("page", domain.TypeInteger, "Page number; each page holds up to 100 records")
}

func deletedOnlyParam() domain.Param {
	return queryParam("deletedOnly", domain.TypeBoolean, "Only return deleted records")
}

// appointmentBody lists the create/update body fields. The required set
// differs between the two operations.
func appointmentBody(required map[string]bool) []domain.Param {
	p := func(name string, t domain.ParamType, desc string, enum ...string) domain.Param {
		return bodyParam(name, "", t, required[name], desc, enum...)
	}
	return []domain.Param{
		p("PractitionerId", domain.TypeString, "Practitioner ID"),
		p("ClientId", domain.TypeInteger, "Client ID"),
		p("ServiceId", domain.TypeString, "Service ID"),
		p("LocationId", domain.TypeString, "Location ID"),
		p("Status", domain.TypeString, "Appointment status", appointmentStatuses...),
		p("UtcDateTime", domain.TypeInteger, "Start time as Unix milliseconds (UTC)"),
		p("SendClientEmailNotification", domain.TypeBoolean, "Email the client about the appointment"),
		p("ReminderType", domain.TypeString, "Reminder channel", reminderTypes...),
	}
}

func readAppointment(d *decoder) intakeq.Appointment {
	return intakeq.Appointment{
		ID:                          d.str("Id"),
		PractitionerID:              d.str("PractitionerId"),
		ClientID:                    d.int("ClientId"),
		ServiceID:                   d.str("ServiceId"),
		LocationID:                  d.str("LocationId"),
		Status:                      d.str("Status"),
		UtcDateTime:                 d.int("UtcDateTime"),
		SendClientEmailNotification: d.bool("SendClientEmailNotification"),
		ReminderType:                d.str("ReminderType"),
	}
}

// bind wraps a typed call: decode runs first and any coercion error stops the
// call before it reaches the network.
func bind[T any](decode func(d *decoder) T, call func(ctx context.Context, key string, v T) (any, error)) domain.InvokeFunc {
	return func(ctx context.Context, key string, args domain.Args) (any, error) {
		d := &decoder{args: args}
		v := decode(d)
		if d.err != nil {
			return nil, d.err
		}
		return call(ctx, key, v)
	}
}

func byID(name string) func(d *decoder) string {
	return func(d *decoder) string { return d.str(name) }
}

func noArgs(d *decoder) struct{} { return struct{}{} }

func raw(call func(ctx context.Context, key, id string) ([]byte, error)) func(ctx context.Context, key, id string) (any, error) {
	return func(ctx context.Context, key, id string) (any, error) {
		b, err := call(ctx, key, id)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
}

func ignoreArgs(call func(ctx context.Context, key string) (any, error)) func(ctx context.Context, key string, _ struct{}) (any, error) {
	return func(ctx context.Context, key string, _ struct{}) (any, error) { return call(ctx, key) }
}

func operations(svc *intakeq.Service) []domain.Operation {
	ok := []int{http.StatusOK}
	updateParams := append(
		[]domain.Param{bodyParam("Id", "", domain.TypeString, true, "Appointment ID")},
		appointmentBody(map[string]bool{"UtcDateTime": true})...,
	)

	return []domain.Operation{
		// --- Appointments --- //
		{
			Descriptor: domain.OperationDescriptor{
				Name: "list_appointments", Resource: "appointments", Method: http.MethodGet, Path: "/appointments",
				Summary: "Search appointments by client, date range, status or practitioner",
				Params: []domain.Param{
					queryParam("client", domain.TypeString, "Client name or email"),
					queryParam("startDate", domain.TypeString, "Earliest appointment date (yyyy-MM-dd)"),
					queryParam("endDate", domain.TypeString, "Latest appointment date (yyyy-MM-dd)"),
					queryParam("status", domain.TypeString, "Appointment status", appointmentStatuses...),
					queryParam("practitionerEmail", domain.TypeString, "Practitioner email"),
					pageParam(),
					queryParam("updatedSince", domain.TypeString, "Only appointments updated after this date"),
					deletedOnlyParam(),
				},
				Success: ok, Response: domain.ResponseJSON, ReadOnly: true,
			},
			Invoke: bind(func(d *decoder) intakeq.AppointmentQuery {
				return intakeq.AppointmentQuery{
					Client:            d.str("client"),
					StartDate:         d.str("startDate"),
					EndDate:           d.str("endDate"),
					Status:            d.str("status"),
					PractitionerEmail: d.str("practitionerEmail"),
					Page:              d.int("page"),
					UpdatedSince:      d.str("updatedSince"),
					DeletedOnly:       d.bool("deletedOnly"),
				}
			}, svc.Appointments.List),
		},
		{
			Descriptor: domain.OperationDescriptor{
				Name: "get_appointment", Resource: "appointments", Method: http.MethodGet, Path: "/appointments/{id}",
				Summary: "Get one appointment by ID",
				Params:  []domain.Param{pathParam("id", "Appointment ID")},
				Success: ok, Response: domain.ResponseJSON, ReadOnly: true,
			},
			Invoke: bind(byID("id"), svc.Appointments.Get),
		},
		{
			Descriptor: domain.OperationDescriptor{
				Name: "create_appointment", Resource: "appointments", Method: http.MethodPost, Path: "/appointments",
				Summary: "Book a new appointment",
				Params: appointmentBody(map[string]bool{
					"PractitionerId": true, "ClientId": true, "ServiceId": true,
					"LocationId": true, "Status": true, "UtcDateTime": true,
				}),
				Success: []int{http.StatusOK, http.StatusCreated}, Response: domain.ResponseJSON,
			},
			Invoke: bind(readAppointment, svc.Appointments.Create),
		},
		{
			Descriptor: domain.OperationDescriptor{
				Name: "update_appointment", Resource: "appointments", Method: http.MethodPut, Path: "/appointments",
				Summary: "Update an existing appointment",
				Params:  updateParams,
				Success: ok, Response: domain.ResponseJSON, OpenBody: true,
			},
			Invoke: bind(func(d *decoder) intakeq.Appointment {
				appt := readAppointment(d)
				appt.Extra = d.args.Undeclared(updateParams)
				return appt
			}, svc.Appointments.Update),
		},
		{
			Descriptor: domain.OperationDescriptor{
				Name: "cancel_appointment", Resource: "appointments", Method: http.MethodPost, Path: "/appointments/cancellation",
				Summary: "Cancel an appointment",
				Params: []domain.Param{
					bodyParam("appointmentId", "AppointmentId", domain.TypeString, true, "Appointment ID"),
					bodyParam("reason", "Reason", domain.TypeString, false, "Cancellation reason"),
				},
				Success: ok, Response: domain.ResponseAck, Destructive: true,
			},
			Invoke: bind(func(d *decoder) intakeq.Cancellation {
				return intakeq.Cancellation{AppointmentID: d.str("appointmentId"), Reason: d.str("reason")}
			}, svc.Appointments.Cancel),
		},
		{
			Descriptor: domain.OperationDescriptor{
				Name: "get_booking_settings", Resource: "appointments", Method: http.MethodGet, Path: "/appointments/settings",
				Summary: "Get booking settings: services, locations and practitioners",
				Success: ok, Response: domain.ResponseJSON, ReadOnly: true,
			},
			Invoke: bind(noArgs, ignoreArgs(svc.Appointments.Settings)),
		},

		// --- Clients --- //
		{
			Descriptor: domain.OperationDescriptor{
				Name: "list_clients", Resource: "clients", Method: http.MethodGet, Path: "/clients",
				Summary: "Search clients",
				Params: []domain.Param{
					queryParam("search", domain.TypeString, "Name, email or client number"),
					pageParam(),
					queryParam("includeProfile", domain.TypeBoolean, "Return full client profiles"),
					queryParam("dateCreatedStart", domain.TypeString, "Created on or after (yyyy-MM-dd)"),
					queryParam("dateCreatedEnd", domain.TypeString, "Created on or before (yyyy-MM-dd)"),
					queryParam("dateUpdatedStart", domain.TypeString, "Updated on or after (yyyy-MM-dd)"),
					queryParam("dateUpdatedEnd", domain.TypeString, "Updated on or before (yyyy-MM-dd)"),
					queryParam("externalClientId", domain.TypeString, "External client ID"),
					deletedOnlyParam(),
				},
				Success: ok, Response: domain.ResponseJSON, ReadOnly: true,
			},
			Invoke: bind(func(d *decoder) intakeq.ClientQuery {
				return intakeq.ClientQuery{
					Search:           d.str("search"),
					Page:             d.int("page"),
					IncludeProfile:   d.bool("includeProfile"),
					DateCreatedStart: d.str("dateCreatedStart"),
					DateCreatedEnd:   d.str("dateCreatedEnd"),
					DateUpdatedStart: d.str("dateUpdatedStart"),
					DateUpdatedEnd:   d.str("dateUpdatedEnd"),
					ExternalClientID: d.str("externalClientId"),
					DeletedOnly:      d.bool("deletedOnly"),
				}
			}, svc.Clients.List),
		},
		{
			Descriptor: domain.OperationDescriptor{
				Name: "create_or_update_client", Resource: "clients", Method: http.MethodPost, Path: "/clients",
				Summary: "Create a client, or update it when ClientId is set",
				Params: []domain.Param{{
					Name: "client", Type: domain.TypeObject, In: domain.AsBody,
					Description: "Client object in IntakeQ format (Name, Email, Phone, ClientId, ...)",
				}},
				Success: ok, Response: domain.ResponseJSON,
			},
			Invoke: bind(func(d *decoder) map[string]any { return d.object("client") }, svc.Clients.Save),
		},
		{
			Descriptor: domain.OperationDescriptor{
				Name: "add_client_tag", Resource: "clients", Method: http.MethodPost, Path: "/clientTags",
				Summary: "Add a tag to a client",
				Params: []domain.Param{
					bodyParam("clientId", "ClientId", domain.TypeInteger, true, "Client ID"),
					bodyParam("tag", "Tag", domain.TypeString, true, "Tag to add"),
				},
				Success: ok, Response: domain.ResponseAck,
			},
			Invoke: bind(readClientTag, svc.Clients.AddTag),
		},
		{
			Descriptor: domain.OperationDescriptor{
				Name: "remove_client_tag", Resource: "clients", Method: http.MethodDelete, Path: "/clientTags",
				Summary: "Remove a tag from a client",
				Params: []domain.Param{
					{Name: "clientId", Type: domain.TypeInteger, In: domain.InQuery, Required: true, Description: "Client ID"},
					{Name: "tag", Type: domain.TypeString, In: domain.InQuery, Required: true, Description: "Tag to remove"},
				},
				Success: ok, Response: domain.ResponseAck, Destructive: true,
			},
			Invoke: bind(readClientTag, svc.Clients.RemoveTag),
		},
		{
			Descriptor: domain.OperationDescriptor{
				Name: "get_client_diagnoses", Resource: "clients", Method: http.MethodGet, Path: "/client/{clientId}/diagnoses",
				Summary: "List a client's diagnoses",
				Params:  []domain.Param{pathParam("clientId", "Client ID")},
				Success: ok, Response: domain.ResponseJSON, ReadOnly: true,
			},
			Invoke: bind(byID("clientId"), svc.Clients.Diagnoses),
		},

		// --- Invoices --- //
		{
			Descriptor: domain.OperationDescriptor{
				Name: "list_invoices", Resource: "invoices", Method: http.MethodGet, Path: "/invoices",
				Summary: "Search invoices",
				Params: []domain.Param{
					queryParam("clientId", domain.TypeInteger, "Client ID"),
					queryParam("startDate", domain.TypeString, "Issued on or after (yyyy-MM-dd)"),
					queryParam("endDate", domain.TypeString, "Issued on or before (yyyy-MM-dd)"),
					queryParam("status", domain.TypeString, "Invoice status", invoiceStatuses...),
					queryParam("practitionerEmail", domain.TypeString, "Practitioner email"),
					queryParam("number", domain.TypeString, "Invoice number"),
					pageParam(),
					queryParam("lastUpdatedStartDate", domain.TypeString, "Updated on or after (yyyy-MM-dd)"),
					queryParam("lastUpdatedEndDate", domain.TypeString, "Updated on or before (yyyy-MM-dd)"),
				},
				Success: ok, Response: domain.ResponseJSON, ReadOnly: true,
			},
			Invoke: bind(func(d *decoder) intakeq.InvoiceQuery {
				return intakeq.InvoiceQuery{
					ClientID:             d.int("clientId"),
					StartDate:            d.str("startDate"),
					EndDate:              d.str("endDate"),
					Status:               d.str("status"),
					PractitionerEmail:    d.str("practitionerEmail"),
					Number:               d.str("number"),
					Page:                 d.int("page"),
					LastUpdatedStartDate: d.str("lastUpdatedStartDate"),
					LastUpdatedEndDate:   d.str("lastUpdatedEndDate"),
				}
			}, svc.Invoices.List),
		},
		{
			Descriptor: domain.OperationDescriptor{
				Name: "get_invoice", Resource: "invoices", Method: http.MethodGet, Path: "/invoices/{id}",
				Summary: "Get one invoice by ID",
				Params:  []domain.Param{pathParam("id", "Invoice ID")},
				Success: ok, Response: domain.ResponseJSON, ReadOnly: true,
			},
			Invoke: bind(byID("id"), svc.Invoices.Get),
		},

		// --- Notes --- //
		{
			Descriptor: domain.OperationDescriptor{
				Name: "list_note_summaries", Resource: "notes", Method: http.MethodGet, Path: "/notes/summary",
				Summary: "Search treatment note summaries",
				Params: []domain.Param{
					queryParam("client", domain.TypeString, "Client name or email"),
					queryParam("clientId", domain.TypeInteger, "Client ID"),
					queryParam("status", domain.TypeInteger, "Note status: 1 locked, 2 unlocked", noteStatuses...),
					queryParam("startDate", domain.TypeString, "Earliest note date (yyyy-MM-dd)"),
					queryParam("endDate", domain.TypeString, "Latest note date (yyyy-MM-dd)"),
					pageParam(),
					queryParam("updatedSince", domain.TypeString, "Only notes updated after this date"),
					deletedOnlyParam(),
				},
				Success: ok, Response: domain.ResponseJSON, ReadOnly: true,
			},
			Invoke: bind(func(d *decoder) intakeq.NoteQuery {
				return intakeq.NoteQuery{
					Client:       d.str("client"),
					ClientID:     d.int("clientId"),
					Status:       d.int("status"),
					StartDate:    d.str("startDate"),
					EndDate:      d.str("endDate"),
					Page:         d.int("page"),
					UpdatedSince: d.str("updatedSince"),
					DeletedOnly:  d.bool("deletedOnly"),
				}
			}, svc.Notes.ListSummaries),
		},
		{
			Descriptor: domain.OperationDescriptor{
				Name: "get_note", Resource: "notes", Method: http.MethodGet, Path: "/notes/{id}",
				Summary: "Get a full treatment note",
				Params:  []domain.Param{pathParam("id", "Note ID")},
				Success: ok, Response: domain.ResponseJSON, ReadOnly: true,
			},
			Invoke: bind(byID("id"), svc.Notes.Get),
		},
		{
			Descriptor: domain.OperationDescriptor{
				Name: "get_note_pdf", Resource: "notes", Method: http.MethodGet, Path: "/notes/{id}/pdf",
				Summary: "Download a treatment note as PDF",
				Params:  []domain.Param{pathParam("id", "Note ID")},
				Success: ok, Response: domain.ResponseRaw, ReadOnly: true,
			},
			Invoke: bind(byID("id"), raw(svc.Notes.PDF)),
		},

		// --- Questionnaires --- //
		{
			Descriptor: domain.OperationDescriptor{
				Name: "list_intake_summaries", Resource: "questionnaires", Method: http.MethodGet, Path: "/intakes/summary",
				Summary: "Search submitted intake questionnaires",
				Params: []domain.Param{
					queryParam("client", domain.TypeString, "Client name or email"),
					queryParam("startDate", domain.TypeString, "Submitted on or after (yyyy-MM-dd)"),
					queryParam("endDate", domain.TypeString, "Submitted on or before (yyyy-MM-dd)"),
					pageParam(),
					queryParam("all", domain.TypeBoolean, "Include questionnaires that are not submitted yet"),
					queryParam("clientId", domain.TypeInteger, "Client ID"),
					queryParam("externalClientId", domain.TypeString, "External client ID"),
					queryParam("updatedSince", domain.TypeString, "Only intakes updated after this date"),
					deletedOnlyParam(),
				},
				Success: ok, Response: domain.ResponseJSON, ReadOnly: true,
			},
			Invoke: bind(func(d *decoder) intakeq.IntakeQuery {
				return intakeq.IntakeQuery{
					Client:           d.str("client"),
					StartDate:        d.str("startDate"),
					EndDate:          d.str("endDate"),
					Page:             d.int("page"),
					All:              d.bool("all"),
					ClientID:         d.int("clientId"),
					ExternalClientID: d.str("externalClientId"),
					UpdatedSince:     d.str("updatedSince"),
					DeletedOnly:      d.bool("deletedOnly"),
				}
			}, svc.Questionnaires.ListIntakeSummaries),
		},
		{
			Descriptor: domain.OperationDescriptor{
				Name: "get_intake", Resource: "questionnaires", Method: http.MethodGet, Path: "/intakes/{id}",
				Summary: "Get a full intake questionnaire with answers",
				Params:  []domain.Param{pathParam("id", "Intake ID")},
				Success: ok, Response: domain.ResponseJSON, ReadOnly: true,
			},
			Invoke: bind(byID("id"), svc.Questionnaires.GetIntake),
		},
		{
			Descriptor: domain.OperationDescriptor{
				Name: "send_questionnaire", Resource: "questionnaires", Method: http.MethodPost, Path: "/intakes/send",
				Summary: "Send a questionnaire to a client",
				Params: []domain.Param{
					bodyParam("QuestionnaireId", "", domain.TypeString, true, "Questionnaire template ID"),
					bodyParam("ClientId", "", domain.TypeInteger, false, "Existing client ID"),
					bodyParam("ClientName", "", domain.TypeString, false, "Client name, for new clients"),
					bodyParam("ClientEmail", "", domain.TypeString, false, "Client email, for new clients"),
					bodyParam("PractitionerId", "", domain.TypeString, false, "Practitioner ID"),
				},
				Success: ok, Response: domain.ResponseJSON,
			},
			Invoke: bind(func(d *decoder) intakeq.QuestionnaireSend {
				return intakeq.QuestionnaireSend{
					QuestionnaireID: d.str("QuestionnaireId"),
					ClientID:        d.int("ClientId"),
					ClientName:      d.str("ClientName"),
					ClientEmail:     d.str("ClientEmail"),
					PractitionerID:  d.str("PractitionerId"),
				}
			}, svc.Questionnaires.Send),
		},
		{
			Descriptor: domain.OperationDescriptor{
				Name: "resend_questionnaire", Resource: "questionnaires", Method: http.MethodPost, Path: "/intakes/resend",
				Summary: "Resend a pending questionnaire",
				Params:  []domain.Param{bodyParam("IntakeId", "", domain.TypeString, true, "Intake ID")},
				Success: ok, Response: domain.ResponseJSON,
			},
			Invoke: bind(func(d *decoder) intakeq.QuestionnaireResend {
				return intakeq.QuestionnaireResend{IntakeID: d.str("IntakeId")}
			}, svc.Questionnaires.Resend),
		},
		{
			Descriptor: domain.OperationDescriptor{
				Name: "list_questionnaire_templates", Resource: "questionnaires", Method: http.MethodGet, Path: "/questionnaires",
				Summary: "List questionnaire templates",
				Success: ok, Response: domain.ResponseJSON, ReadOnly: true,
			},
			Invoke: bind(noArgs, ignoreArgs(svc.Questionnaires.ListTemplates)),
		},
		{
			Descriptor: domain.OperationDescriptor{
				Name: "list_practitioners", Resource: "questionnaires", Method: http.MethodGet, Path: "/practitioners",
				Summary: "List practitioners",
				Success: ok, Response: domain.ResponseJSON, ReadOnly: true,
			},
			Invoke: bind(noArgs, ignoreArgs(svc.Questionnaires.ListPractitioners)),
		},
		{
			Descriptor: domain.OperationDescriptor{
				Name: "get_intake_pdf", Resource: "questionnaires", Method: http.MethodGet, Path: "/intakes/{id}/pdf",
				Summary: "Download an intake questionnaire as PDF",
				Params:  []domain.Param{pathParam("id", "Intake ID")},
				Success: ok, Response: domain.ResponseRaw, ReadOnly: true,
			},
			Invoke: bind(byID("id"), raw(svc.Questionnaires.IntakePDF)),
		},
		{
			Descriptor: domain.OperationDescriptor{
				Name: "update_office_use_answers", Resource: "questionnaires", Method: http.MethodPost, Path: "/intakes",
				Summary: "Update the office-use answers of an intake",
				Params: []domain.Param{{
					Name: "intake", Type: domain.TypeObject, In: domain.AsBody,
					Description: "Intake object with Id and the office-use Questions",
				}},
				Success: ok, Response: domain.ResponseJSON,
			},
			Invoke: bind(func(d *decoder) map[string]any { return d.object("intake") }, svc.Questionnaires.UpdateOfficeUse),
		},
	}
}

func readClientTag(d *decoder) intakeq.ClientTag {
	return intakeq.ClientTag{ClientID: d.intValue("clientId"), Tag: d.str("tag")}
}
