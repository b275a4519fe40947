package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/adamancini/alfredwf/updater"
)

// repoPattern validates GitHub project names in the format "owner/name".
var repoPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)

// ValidationError represents a config validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the config for well-formed values. Every field is optional;
// only values that are present are checked. Any interval is accepted: zero or
// negative means check on every run.
func Validate(c *Config) error {
	var errors []string

	if err := validateRepo(c.Update.Repo); err != nil {
		errors = append(errors, err.Error())
	}

	if err := validateAPIURL(c.Update.APIURL); err != nil {
		errors = append(errors, err.Error())
	}

	if err := validateWorkflow(c.Workflow); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func validateRepo(repo string) error {
	if repo != "" && !repoPattern.MatchString(repo) {
		return ValidationError{
			Field:   "update.repo",
			Message: fmt.Sprintf("invalid repo %q, expected owner/name", repo),
		}
	}
	return nil
}

func validateAPIURL(apiURL string) error {
	if apiURL == "" {
		return nil
	}
	parsed, err := url.Parse(apiURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return ValidationError{
			Field:   "update.api_url",
			Message: fmt.Sprintf("invalid URL %q, must be http or https", apiURL),
		}
	}
	return nil
}

func validateWorkflow(w WorkflowConfig) error {
	if w.Version != "" {
		if _, err := updater.ParseVersion(w.Version); err != nil {
			return ValidationError{
				Field:   "workflow.version",
				Message: err.Error(),
			}
		}
	}

	return nil
}
