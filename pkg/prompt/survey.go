package prompt

import (
	"context"

	"github.com/AlecAivazis/survey/v2"
)

// SurveyDriver runs prompts on the attached terminal.
type SurveyDriver struct{}

// NewSurveyDriver constructs the terminal driver.
func NewSurveyDriver() *SurveyDriver {
	return &SurveyDriver{}
}

func (d *SurveyDriver) Input(ctx context.Context, label, help, defaultValue string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var answer string
	err := survey.AskOne(&survey.Input{
		Message: label,
		Help:    help,
		Default: defaultValue,
	}, &answer)
	return answer, err
}

func (d *SurveyDriver) Confirm(ctx context.Context, label string, defaultValue bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var answer bool
	err := survey.AskOne(&survey.Confirm{
		Message: label,
		Default: defaultValue,
	}, &answer)
	return answer, err
}

func (d *SurveyDriver) Select(ctx context.Context, label string, options []string, defaultValue string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	prompt := &survey.Select{
		Message: label,
		Options: options,
	}
	if defaultValue != "" {
		prompt.Default = defaultValue
	}
	var answer string
	err := survey.AskOne(prompt, &answer)
	return answer, err
}
