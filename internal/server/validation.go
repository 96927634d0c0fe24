package server

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"techcorp/internal/models"
)

var (
	validatorsOnce sync.Once
	validatorsErr  error
)

// registerValidators adds the domain specific tags used by the request types.
func registerValidators() error {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			validatorsErr = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		rules := map[string]validator.Func{
			"storypoints": func(fl validator.FieldLevel) bool {
				return models.ValidStoryPoints(int(fl.Field().Int()))
			},
			"isodate": func(fl validator.FieldLevel) bool {
				return models.ValidDate(fl.Field().String())
			},
			"skill": func(fl validator.FieldLevel) bool {
				return models.Contains(models.SkillOptions, fl.Field().String())
			},
			"experience": func(fl validator.FieldLevel) bool {
				return models.Contains(models.ExperienceOptions, fl.Field().String())
			},
			"availability": func(fl validator.FieldLevel) bool {
				return models.Contains(models.AvailabilityOptions, fl.Field().String())
			},
		}
		for tag, fn := range rules {
			if err := v.RegisterValidation(tag, fn); err != nil {
				validatorsErr = fmt.Errorf("register %s: %w", tag, err)
				return
			}
		}
	})
	return validatorsErr
}
