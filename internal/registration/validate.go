package registration

import (
	"context"
	"errors"
	"strings"

	"ms-registration/internal/apperr"
	"ms-registration/internal/models"

	"github.com/go-playground/validator/v10"
)

const MsgMissingFields = "請填寫必要資料"

var validate = validator.New()

// normalize trims every free-text field so whitespace-only input counts as missing.
func normalize(req *models.RegistrationRequest) {
	req.EventCode = strings.TrimSpace(req.EventCode)
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.InstagramID = strings.TrimSpace(req.InstagramID)
	req.PaymentType = strings.TrimSpace(req.PaymentType)
	req.TransferAmount = strings.TrimSpace(req.TransferAmount)
	req.TransferLastFive = strings.TrimSpace(req.TransferLastFive)
	req.Notes = strings.TrimSpace(req.Notes)
}

// validateRequest reports the first failing rule as a validation error.
func validateRequest(ctx context.Context, req *models.RegistrationRequest) error {
	err := validate.StructCtx(ctx, req)
	if err == nil {
		return nil
	}

	var vErrors validator.ValidationErrors
	if !errors.As(err, &vErrors) || len(vErrors) == 0 {
		return apperr.Validation(MsgMissingFields)
	}

	ve := vErrors[0]
	switch {
	case ve.Tag() == "required":
		return apperr.Validation(MsgMissingFields)
	case ve.Field() == "Email":
		return apperr.Validation("Email 格式不正確")
	case ve.Field() == "TransferAmount":
		return apperr.Validation("轉帳金額格式不正確")
	case ve.Field() == "TransferLastFive":
		return apperr.Validation("帳號後五碼最多 5 碼")
	case ve.Field() == "ParticipantCount":
		return apperr.Validation("參加人數不正確")
	default:
		return apperr.Validation("欄位格式不正確: " + ve.Field())
	}
}
