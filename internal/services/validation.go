package services

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// AnswerInput is one submitted answer as it arrives from the caller.
type AnswerInput struct {
	TopicID           uuid.UUID `json:"topic_id" validate:"required"`
	Level             int       `json:"level" validate:"min=1,max=6"`
	QuestionID        string    `json:"question_id" validate:"required,max=200"`
	Dimension         string    `json:"dimension" validate:"omitempty,max=64"`
	IsCorrect         bool      `json:"is_correct"`
	Confidence        int       `json:"confidence" validate:"min=1,max=3"`
	RecognitionMethod string    `json:"recognition_method" validate:"required,oneof=memory recognition educated_guess random_guess"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func inputValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// validateStruct reports the first failing field as ErrInvalidInput.
func validateStruct(v any) error {
	err := inputValidator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Param() != "" {
			return invalidField(fe.Field(), "failed "+fe.Tag()+"="+fe.Param())
		}
		return invalidField(fe.Field(), "failed "+fe.Tag())
	}
	return invalidField("input", err.Error())
}

func (in *AnswerInput) normalize() {
	in.QuestionID = strings.TrimSpace(in.QuestionID)
	in.Dimension = strings.ToLower(strings.TrimSpace(in.Dimension))
	in.RecognitionMethod = strings.ToLower(strings.TrimSpace(in.RecognitionMethod))
}
