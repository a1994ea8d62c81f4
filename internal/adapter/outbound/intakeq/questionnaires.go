package intakeq

import (
	"context"
	"net/http"
)

// IntakeQuery filters GET /intakes/summary.
type IntakeQuery struct {
	Client           string
	StartDate        string
	EndDate          string
	Page             *int64
	All              *bool
	ClientID         *int64
	ExternalClientID string
	UpdatedSince     string
	DeletedOnly      *bool
}

func (q IntakeQuery) values() query {
	v := query{}
	v.str("client", q.Client)
	v.str("startDate", q.StartDate)
	v.str("endDate", q.EndDate)
	v.int("page", q.Page)
	v.bool("all", q.All)
	v.int("clientId", q.ClientID)
	v.str("externalClientId", q.ExternalClientID)
	v.str("updatedSince", q.UpdatedSince)
	v.bool("deletedOnly", q.DeletedOnly)
	return v
}

// QuestionnaireSend is the body of POST /intakes/send.
type QuestionnaireSend struct {
	QuestionnaireID string `json:"QuestionnaireId"`
	ClientID        *int64 `json:"ClientId,omitempty"`
	ClientName      string `json:"ClientName,omitempty"`
	ClientEmail     string `json:"ClientEmail,omitempty"`
	PractitionerID  string `json:"PractitionerId,omitempty"`
}

// QuestionnaireResend is the body of POST /intakes/resend.
type QuestionnaireResend struct {
	IntakeID string `json:"IntakeId"`
}

// Questionnaires wraps the /intakes, /questionnaires and /practitioners
// endpoints.
type Questionnaires struct{ resource }

func (q Questionnaires) ListIntakeSummaries(ctx context.Context, key string, iq IntakeQuery) (any, error) {
	return q.json(ctx, Request{Method: http.MethodGet, Path: "/intakes/summary", Credential: key, Query: iq.values()})
}

func (q Questionnaires) GetIntake(ctx context.Context, key, id string) (any, error) {
	return q.json(ctx, Request{
		Method: http.MethodGet, Path: pathf("/intakes/{id}", id), Template: "/intakes/{id}", Credential: key,
	})
}

func (q Questionnaires) Send(ctx context.Context, key string, s QuestionnaireSend) (any, error) {
	return q.json(ctx, Request{Method: http.MethodPost, Path: "/intakes/send", Credential: key, Body: s})
}

func (q Questionnaires) Resend(ctx context.Context, key string, r QuestionnaireResend) (any, error) {
	return q.json(ctx, Request{Method: http.MethodPost, Path: "/intakes/resend", Credential: key, Body: r})
}

func (q Questionnaires) ListTemplates(ctx context.Context, key string) (any, error) {
	return q.json(ctx, Request{Method: http.MethodGet, Path: "/questionnaires", Credential: key})
}

func (q Questionnaires) ListPractitioners(ctx context.Context, key string) (any, error) {
	return q.json(ctx, Request{Method: http.MethodGet, Path: "/practitioners", Credential: key})
}

// IntakePDF returns the filled questionnaire as PDF bytes.
func (q Questionnaires) IntakePDF(ctx context.Context, key, id string) ([]byte, error) {
	return q.raw(ctx, Request{
		Method: http.MethodGet, Path: pathf("/intakes/{id}/pdf", id), Template: "/intakes/{id}/pdf", Credential: key,
	})
}

// UpdateOfficeUse posts an intake object carrying office-use answers.
func (q Questionnaires) UpdateOfficeUse(ctx context.Context, key string, intake map[string]any) (any, error) {
	if intake == nil {
		intake = map[string]any{}
	}
	return q.json(ctx, Request{Method: http.MethodPost, Path: "/intakes", Credential: key, Body: intake})
}
