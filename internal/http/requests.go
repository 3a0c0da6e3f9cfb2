package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

// JoinRequest is the body of POST /api/verify-paystack.
type JoinRequest struct {
	TournamentID      string `json:"tournamentId" validate:"required,max=64"`
	ProfileID         string `json:"profileId" validate:"required,max=64"`
	PaymentMethod     string `json:"paymentMethod" validate:"required,oneof=wallet paystack gateway"`
	PaystackReference string `json:"paystackReference" validate:"omitempty,max=200"`
}

// WithdrawRequest is the body of POST /api/wallet/withdraw. Amount is in kobo.
type WithdrawRequest struct {
	ProfileID     string `json:"profileId" validate:"required,max=64"`
	Amount        int64  `json:"amount" validate:"required,gt=0"`
	BankCode      string `json:"bankCode" validate:"required,max=20"`
	AccountNumber string `json:"accountNumber" validate:"required,numeric,len=10"`
	AccountName   string `json:"accountName" validate:"required,max=200"`
}

// VerifyAccountRequest is the body of POST /api/wallet/verify-account.
type VerifyAccountRequest struct {
	AccountNumber string `json:"accountNumber" validate:"required,numeric,len=10"`
	BankCode      string `json:"bankCode" validate:"required,max=20"`
}

// CreateTournamentRequest is the body of POST /api/tournaments/create.
// EntryFee is in kobo.
type CreateTournamentRequest struct {
	Title           string     `json:"title" validate:"required,max=200"`
	Description     string     `json:"description" validate:"max=5000"`
	EntryFee        int64      `json:"entryFee" validate:"gte=0"`
	Currency        string     `json:"currency" validate:"omitempty,len=3,uppercase"`
	MaxParticipants *int       `json:"maxParticipants" validate:"omitempty,gte=2"`
	StartDate       *time.Time `json:"startDate"`
	EndDate         *time.Time `json:"endDate"`
	Platform        string     `json:"platform" validate:"omitempty,max=50"`
	ExternalLink    string     `json:"externalLink" validate:"omitempty,url"`
	Status          string     `json:"status" validate:"omitempty,oneof=draft published"`
}

// ValidationError lists the fields that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s is %s", field, e.Fields[field]))
	}
	return "Invalid request: " + strings.Join(parts, ", ")
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate reads a JSON body into dst and validates it before any
// business logic runs.
func (s *Server) decodeAndValidate(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return &ValidationError{Fields: map[string]string{"body": "not valid JSON"}}
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = describeRule(fe)
			}
			return &ValidationError{Fields: fields}
		}
		return err
	}
	return nil
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "oneof":
		return "one of " + fe.Param()
	case "len":
		return "exactly " + fe.Param() + " characters"
	case "max":
		return "at most " + fe.Param()
	case "gt":
		return "greater than " + fe.Param()
	case "gte":
		return "at least " + fe.Param()
	default:
		return "invalid"
	}
}
