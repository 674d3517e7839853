package appleads

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DefaultEnvFile is read when present; the process environment wins over it.
const DefaultEnvFile = ".env"

type Credentials struct {
	ClientID       string `env:"ASA_CLIENT_ID" validate:"required"`
	TeamID         string `env:"ASA_TEAM_ID" validate:"required"`
	KeyID          string `env:"ASA_KEY_ID" validate:"required"`
	OrgID          string `env:"ASA_ORG_ID" validate:"required,numeric"`
	PrivateKeyPath string `env:"ASA_PRIVATE_KEY_PATH" validate:"required_without=PrivateKey"`
	PrivateKey     string `env:"ASA_PRIVATE_KEY" validate:"required_without=PrivateKeyPath"`
}

// SettingNames lists every ASA_* variable in display order.
var SettingNames = []string{
	"ASA_CLIENT_ID",
	"ASA_TEAM_ID",
	"ASA_KEY_ID",
	"ASA_ORG_ID",
	"ASA_PRIVATE_KEY_PATH",
	"ASA_PRIVATE_KEY",
}

var settingsValidator = newSettingsValidator()

func newSettingsValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return field.Tag.Get("env")
	})
	return v
}

// ReadSettings merges the optional env file with the process environment
// without validating anything.
func ReadSettings(envFile string) (Credentials, error) {
	environment := map[string]string{}
	if envFile != "" {
		fromFile, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			for k, v := range fromFile {
				environment[k] = v
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return Credentials{}, &ConfigurationError{Err: fmt.Errorf("read %s: %w", envFile, err)}
		}
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			environment[k] = v
		}
	}

	var creds Credentials
	if err := env.ParseWithOptions(&creds, env.Options{Environment: environment}); err != nil {
		return Credentials{}, &ConfigurationError{Err: err}
	}
	creds.ClientID = strings.TrimSpace(creds.ClientID)
	creds.TeamID = strings.TrimSpace(creds.TeamID)
	creds.KeyID = strings.TrimSpace(creds.KeyID)
	creds.OrgID = strings.TrimSpace(creds.OrgID)
	creds.PrivateKeyPath = strings.TrimSpace(creds.PrivateKeyPath)
	return creds, nil
}

// LoadCredentials reads and validates the ASA_* settings.
func LoadCredentials(envFile string) (*Credentials, error) {
	creds, err := ReadSettings(envFile)
	if err != nil {
		return nil, err
	}
	if problems := creds.Problems(); len(problems) > 0 {
		cfgErr := &ConfigurationError{}
		var invalid []string
		for _, name := range SettingNames {
			problem, ok := problems[name]
			if !ok {
				continue
			}
			if problem == "missing" {
				cfgErr.Missing = append(cfgErr.Missing, name)
			} else {
				invalid = append(invalid, name+" "+problem)
			}
		}
		if len(invalid) > 0 {
			cfgErr.Err = errors.New(strings.Join(invalid, "; "))
		}
		return nil, cfgErr
	}
	return &creds, nil
}

// Problems maps setting names to "missing" or a short description of why the
// value is unusable.
func (c Credentials) Problems() map[string]string {
	problems := map[string]string{}
	if err := settingsValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			problems["ASA_*"] = err.Error()
			return problems
		}
		for _, fe := range verrs {
			switch fe.Tag() {
			case "required", "required_without":
				problems[fe.Field()] = "missing"
			case "numeric":
				problems[fe.Field()] = "must be numeric"
			default:
				problems[fe.Field()] = "failed " + fe.Tag()
			}
		}
		return problems
	}
	if c.PrivateKey == "" && c.PrivateKeyPath != "" {
		if _, err := os.Stat(c.PrivateKeyPath); err != nil {
			problems["ASA_PRIVATE_KEY_PATH"] = "file not found"
		}
	}
	return problems
}

// PrivateKeyPEM returns the inline key, or reads it from ASA_PRIVATE_KEY_PATH.
func (c Credentials) PrivateKeyPEM() (string, error) {
	if strings.TrimSpace(c.PrivateKey) != "" {
		return c.PrivateKey, nil
	}
	data, err := os.ReadFile(c.PrivateKeyPath)
	if err != nil {
		return "", &ConfigurationError{Err: fmt.Errorf("read ASA_PRIVATE_KEY_PATH: %w", err)}
	}
	return string(data), nil
}

// MaskedClientID shows the first 20 characters of the client id.
func (c Credentials) MaskedClientID() string {
	runes := []rune(c.ClientID)
	if len(runes) <= 20 {
		return c.ClientID
	}
	return string(runes[:20]) + "..."
}
