package webapi

import (
	"net/http"
	"strings"
)

// route maps one HTTP pattern onto a registry operation.
type route struct {
	method    string
	path      string
	operation string
	bind      binder
}

func (rt route) pattern() string { return rt.method + " " + rt.path }

// wildcards returns the {name} segments of the route path.
func (rt route) wildcards() []string {
	var names []string
	for _, seg := range strings.Split(rt.path, "/") {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			names = append(names, strings.TrimSuffix(strings.TrimPrefix(seg, "{"), "}"))
		}
	}
	return names
}

var operationRoutes = []route{
	{http.MethodGet, "/appointments", "list_appointments", fromQuery},
	{http.MethodGet, "/appointments/settings", "get_booking_settings", fromQuery},
	{http.MethodGet, "/appointments/{id}", "get_appointment", fromQuery},
	{http.MethodPost, "/appointments", "create_appointment", fromBody},
	{http.MethodPut, "/appointments", "update_appointment", fromBody},
	{http.MethodPost, "/appointments/cancel", "cancel_appointment", cancellationBody},

	{http.MethodGet, "/clients", "list_clients", fromQuery},
	{http.MethodPost, "/clients", "create_or_update_client", bodyAs("client")},
	{http.MethodPost, "/clients/{clientId}/tags", "add_client_tag", fromBody},
	{http.MethodDelete, "/clients/{clientId}/tags/{tag}", "remove_client_tag", fromQuery},
	{http.MethodGet, "/clients/{clientId}/diagnoses", "get_client_diagnoses", fromQuery},

	{http.MethodGet, "/invoices", "list_invoices", fromQuery},
	{http.MethodGet, "/invoices/{id}", "get_invoice", fromQuery},

	{http.MethodGet, "/notes", "list_note_summaries", fromQuery},
	{http.MethodGet, "/notes/{id}", "get_note", fromQuery},
	{http.MethodGet, "/notes/{id}/pdf", "get_note_pdf", fromQuery},

	{http.MethodGet, "/questionnaires/templates", "list_questionnaire_templates", fromQuery},
	{http.MethodGet, "/questionnaires/practitioners", "list_practitioners", fromQuery},
	{http.MethodGet, "/questionnaires/intakes", "list_intake_summaries", fromQuery},
	{http.MethodGet, "/questionnaires/intakes/{id}", "get_intake", fromQuery},
	{http.MethodGet, "/questionnaires/intakes/{id}/pdf", "get_intake_pdf", fromQuery},
	{http.MethodPost, "/questionnaires/send", "send_questionnaire", fromBody},
	{http.MethodPost, "/questionnaires/resend", "resend_questionnaire", fromBody},
	{http.MethodPost, "/questionnaires/intakes/office-use", "update_office_use_answers", bodyAs("intake")},
}
