package intakeq

// Service groups the resource handlers around one Invoker.
type Service struct {
	Appointments   Appointments
	Clients        Clients
	Invoices       Invoices
	Notes          Notes
	Questionnaires Questionnaires
}

// NewService builds all handlers on top of api.
func NewService(api Invoker) *Service {
	r := resource{api: api}
	return &Service{
		Appointments:   Appointments{r},
		Clients:        Clients{r},
		Invoices:       Invoices{r},
		Notes:          Notes{r},
		Questionnaires: Questionnaires{r},
	}
}
