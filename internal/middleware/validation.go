package middleware

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/puskesmas-merdeka/simpus-api/internal/dateutil"
	"github.com/puskesmas-merdeka/simpus-api/internal/model"
)

// ValidationConfig represents validation middleware configuration
type ValidationConfig struct {
	CustomValidators map[string]validator.Func
}

// DefaultValidationConfig registers the domain enums used in binding tags.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		CustomValidators: map[string]validator.Func{
			"sex": oneOf(model.SexMale, model.SexFemale),
			"patient_status": oneOf(
				string(model.PatientStatusActive),
				string(model.PatientStatusInactive),
			),
			"encounter_status": oneOf(
				string(model.EncounterStatusPlanned),
				string(model.EncounterStatusArrived),
				string(model.EncounterStatusInProgress),
				string(model.EncounterStatusFinished),
				string(model.EncounterStatusCancelled),
			),
			"lab_status": oneOf(
				string(model.LabOrderPending),
				string(model.LabOrderInProgress),
				string(model.LabOrderCompleted),
				string(model.LabOrderCancelled),
			),
			"diagnosis_role": oneOf(
				string(model.DiagnosisPrincipal),
				string(model.DiagnosisSecondary),
				string(model.DiagnosisComplication),
			),
			"role": func(fl validator.FieldLevel) bool {
				return model.Role(fl.Field().String()).Valid()
			},
			"isodate": func(fl validator.FieldLevel) bool {
				_, err := time.Parse(dateutil.DateLayout, fl.Field().String())
				return err == nil
			},
		},
	}
}

func oneOf(values ...string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		for _, allowed := range values {
			if v == allowed {
				return true
			}
		}
		return false
	}
}

var registerOnce sync.Once

// RegisterValidators installs the custom tags on gin's validator and makes
// field errors report json (or form) names. Safe to call more than once.
func RegisterValidators(config ValidationConfig) error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		for tag, fn := range config.CustomValidators {
			if err = v.RegisterValidation(tag, fn); err != nil {
				return
			}
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return fld.Name
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
	})
	return err
}
