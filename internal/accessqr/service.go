// Package accessqr is the QR dialog's call site: a verified member gets a QR
// code encoding "dni:{id}", served by a third party QR endpoint.
package accessqr

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"club-la-victoria/internal/common/errors"
	commonhttp "club-la-victoria/internal/common/http"
	"club-la-victoria/internal/common/logger"
	"club-la-victoria/internal/membership"
	"club-la-victoria/internal/notify"
)

const (
	MsgVerifyFailed   = "Ocurrió un error al verificar el DNI"
	MsgNotMember      = "El DNI ingresado no está registrado como socio"
	MsgDownloadFailed = "No se pudo descargar el código QR"
)

// MaxImageBytes caps a downloaded QR image.
const MaxImageBytes int64 = 8 << 20

// Code is a generated access QR.
type Code struct {
	ID       string `json:"id"`
	QRURL    string `json:"qrUrl"`
	Filename string `json:"filename"`
}

// Download is the QR image offered as a file.
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Fetcher interface {
	Get(ctx context.Context, url, accept string) (*commonhttp.Response, error)
}

type ServiceDependencies struct {
	HTTPClient Fetcher
	Logger     logger.Logger
}

type Service struct {
	config *Config
	client Fetcher
	logger logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	client := deps.HTTPClient
	if client == nil {
		client = commonhttp.NewClient(config.Timeout).WithMaxBodyBytes(MaxImageBytes)
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		config: config,
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": "accessqr"}),
	}
}

// URL builds the QR endpoint URL for an already validated id.
func (s *Service) URL(id string) string {
	var b strings.Builder
	b.WriteString(s.config.BaseURL)
	if strings.Contains(s.config.BaseURL, "?") {
		b.WriteByte('&')
	} else {
		b.WriteByte('?')
	}
	fmt.Fprintf(&b, "size=%dx%d", s.config.Size, s.config.Size)
	b.WriteString("&data=" + url.QueryEscape("dni:"+id))
	if s.config.LogoURL != "" {
		b.WriteString("&logo=" + url.QueryEscape(s.config.LogoURL))
		fmt.Fprintf(&b, "&logo_size=%dx%d", s.config.LogoSize, s.config.LogoSize)
	}
	return b.String()
}

// Filename is the download name for id.
func Filename(id string) string {
	return "qr-acceso-" + id + ".png"
}

// Issue verifies raw and returns the QR code URL.
func (s *Service) Issue(ctx context.Context, form membership.Submitter, raw string, n notify.Notifier) (*Code, error) {
	id, err := s.verify(ctx, form, raw, n)
	if err != nil {
		return nil, err
	}

	code := &Code{ID: id, QRURL: s.URL(id), Filename: Filename(id)}
	n.Notify(notify.Success("QR generado con éxito", "Tu código QR está listo para usar"))
	s.logger.Info("access QR issued", map[string]interface{}{"id": id})
	return code, nil
}

// Download verifies raw, then fetches the QR image bytes.
func (s *Service) Download(ctx context.Context, form membership.Submitter, raw string, n notify.Notifier) (*Download, error) {
	id, err := s.verify(ctx, form, raw, n)
	if err != nil {
		return nil, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	resp, err := s.client.Get(fetchCtx, s.URL(id), "image/png")
	if err == nil && (resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices) {
		err = fmt.Errorf("qr endpoint status %d", resp.StatusCode)
	}
	if err == nil && len(resp.Body) == 0 {
		err = fmt.Errorf("qr endpoint returned an empty image")
	}
	if err != nil {
		s.logger.Warn("access QR download failed", map[string]interface{}{
			"id":    id,
			"error": err.Error(),
		})
		n.Notify(notify.Failure("Error", MsgDownloadFailed))
		return nil, errors.NewQRGenerationFailedError(MsgDownloadFailed, err)
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = "image/png"
	}

	n.Notify(notify.Success("QR descargado", "El código QR se ha descargado correctamente"))
	return &Download{Filename: Filename(id), ContentType: contentType, Data: resp.Body}, nil
}

func (s *Service) verify(ctx context.Context, form membership.Submitter, raw string, n notify.Notifier) (string, error) {
	result, err := form.Submit(ctx, raw)
	if err != nil {
		return "", err
	}

	switch result.Outcome {
	case membership.OutcomeValid:
		return result.ID, nil
	case membership.OutcomeInvalid:
		n.Notify(notify.Failure("Error", MsgNotMember))
	default:
		n.Notify(notify.Failure("Error", membership.MsgNetworkFailure))
	}
	return "", result.Error()
}

// InlineMessage is the text shown under the input for err.
func InlineMessage(err error) string {
	stdErr := errors.Normalize(err)
	if stdErr == nil {
		return ""
	}
	switch stdErr.Code {
	case errors.ErrCodeMembershipCheckFailed, errors.ErrCodeMembershipUnexpectedShape:
		return MsgVerifyFailed
	default:
		return stdErr.Message
	}
}
