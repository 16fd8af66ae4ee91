package gateway

import (
	"encoding/json"
	"net/http"
	"net/url"

	"club-la-victoria/internal/accessqr"
	"club-la-victoria/internal/common/errors"
	"club-la-victoria/internal/common/validation"
	"club-la-victoria/internal/membership"
	"club-la-victoria/internal/notify"
	"club-la-victoria/internal/reservation"

	"github.com/gin-gonic/gin"
)

var (
	reservationSchema = membership.GetInputSchema(true)
	accessQRSchema    = membership.GetInputSchema(false)
)

type accessQRRequest struct {
	DNI string `json:"dni"`
}

// bindBody validates the raw body against schema before decoding it into out.
func (r *Router) bindBody(c *gin.Context, schema validation.JSONSchema, out interface{}) bool {
	raw, err := c.GetRawData()
	if err != nil {
		r.errors.HandleRequestError(c, errors.NewRequestValidationFailedError(err.Error()), nil)
		return false
	}

	result, err := validation.ValidateJSON(raw, schema)
	if err != nil {
		r.errors.HandleRequestError(c, err, nil)
		return false
	}
	if !result.Valid {
		r.errors.HandleRequestError(c, errors.NewRequestValidationFailedError(result.Summary()), map[string]interface{}{
			"errors": result.Errors,
		})
		return false
	}

	if err := json.Unmarshal(raw, out); err != nil {
		r.errors.HandleRequestError(c, errors.NewRequestValidationFailedError(err.Error()), nil)
		return false
	}
	return true
}

func (r *Router) listActivities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"activities": r.deps.Activities.Activities})
}

func (r *Router) createReservation(c *gin.Context) {
	var req reservation.Request
	if !r.bindBody(c, reservationSchema, &req) {
		return
	}

	activity, ok := r.deps.Activities.Lookup(req.Activity)
	if !ok {
		r.errors.HandleRequestError(c, errors.NewRequestValidationFailedError("unknown activity: "+req.Activity), nil)
		return
	}
	req.Activity = activity.DisplayName

	rec := notify.NewRecorder()
	n := notify.Tee(rec, notify.NewLogNotifier(r.logger))
	form := r.deps.ReservationForms.For(clientKey(c))

	decision, err := r.deps.Reservation.Reserve(c.Request.Context(), form, req, n)
	if err != nil {
		r.errors.HandleRequestError(c, err, map[string]interface{}{
			"outcome":       decision.Outcome,
			"message":       decision.Message,
			"notifications": rec.Items(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"outcome":       decision.Outcome,
		"redirectUrl":   decision.RedirectURL,
		"notifications": rec.Items(),
	})
}

func (r *Router) issueAccessQR(c *gin.Context) {
	var req accessQRRequest
	if !r.bindBody(c, accessQRSchema, &req) {
		return
	}

	rec := notify.NewRecorder()
	n := notify.Tee(rec, notify.NewLogNotifier(r.logger))
	form := r.deps.QRForms.For(clientKey(c))

	code, err := r.deps.AccessQR.Issue(c.Request.Context(), form, req.DNI, n)
	if err != nil {
		r.errors.HandleRequestError(c, err, map[string]interface{}{
			"message":       accessqr.InlineMessage(err),
			"notifications": rec.Items(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":            code.ID,
		"qrUrl":         code.QRURL,
		"filename":      code.Filename,
		"downloadUrl":   "/api/v1/access-qr/" + url.PathEscape(code.ID) + "/download",
		"notifications": rec.Items(),
	})
}

func (r *Router) downloadAccessQR(c *gin.Context) {
	rec := notify.NewRecorder()
	n := notify.Tee(rec, notify.NewLogNotifier(r.logger))
	form := r.deps.QRForms.For(clientKey(c))

	dl, err := r.deps.AccessQR.Download(c.Request.Context(), form, c.Param("dni"), n)
	if err != nil {
		r.errors.HandleRequestError(c, err, map[string]interface{}{
			"message":       accessqr.InlineMessage(err),
			"notifications": rec.Items(),
		})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+dl.Filename+`"`)
	c.Data(http.StatusOK, dl.ContentType, dl.Data)
}
