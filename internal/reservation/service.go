// Package reservation is the reservation dialog's call site: on a valid
// membership it hands back the external booking URL.
package reservation

import (
	"context"
	"fmt"

	"club-la-victoria/internal/common/errors"
	"club-la-victoria/internal/common/logger"
	"club-la-victoria/internal/membership"
	"club-la-victoria/internal/notify"
)

const (
	MsgVerifyFailed = "Ocurrió un error al verificar el DNI"
	MsgNotMember    = "El DNI ingresado no está registrado como socio"
)

type Config struct {
	RedirectURL string
}

func (c *Config) Validate() error {
	if c.RedirectURL == "" {
		return fmt.Errorf("redirect_url is required")
	}
	return nil
}

type Request struct {
	DNI      string `json:"dni"`
	Activity string `json:"activity"`
}

// Decision tells the dialog what to do next. RedirectURL is set only for a
// valid membership; Message is the inline text under the input otherwise.
type Decision struct {
	Outcome     string `json:"outcome"`
	RedirectURL string `json:"redirectUrl,omitempty"`
	Message     string `json:"message,omitempty"`
}

type Service struct {
	config *Config
	logger logger.Logger
}

func NewService(config *Config, log logger.Logger) *Service {
	return &Service{
		config: config,
		logger: log.WithFields(map[string]interface{}{"component": "reservation"}),
	}
}

// Reserve verifies req.DNI through form and reports notifications to n. The
// error is nil only for a valid membership.
func (s *Service) Reserve(ctx context.Context, form membership.Submitter, req Request, n notify.Notifier) (*Decision, error) {
	result, err := form.Submit(ctx, req.DNI)
	if err != nil {
		if membership.IsBusy(err) {
			return &Decision{Outcome: "busy", Message: errors.Normalize(err).Message}, err
		}
		return &Decision{Outcome: "format_error", Message: errors.Normalize(err).Message}, err
	}

	switch result.Outcome {
	case membership.OutcomeValid:
		n.Notify(notify.Success(fmt.Sprintf("Reserva iniciada para %s. DNI: %s", req.Activity, result.ID), ""))
		s.logger.Info("reservation started", map[string]interface{}{
			"activity": req.Activity,
			"id":       result.ID,
		})
		return &Decision{Outcome: string(result.Outcome), RedirectURL: s.config.RedirectURL}, nil

	case membership.OutcomeInvalid:
		n.Notify(notify.Failure("Error", MsgNotMember))
		return &Decision{Outcome: string(result.Outcome), Message: result.Message}, result.Error()

	default:
		n.Notify(notify.Failure("Error", membership.MsgNetworkFailure))
		return &Decision{Outcome: string(result.Outcome), Message: MsgVerifyFailed}, result.Error()
	}
}
