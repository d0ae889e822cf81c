package cli

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/aish/internal/app"
	"github.com/doeshing/aish/internal/domain"
)

type healthCheck struct {
	name    string
	status  string
	details string
}

const (
	checkOK   = "OK"
	checkWarn = "WARN"
	checkFail = "FAIL"
)

func newDoctorCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose environment setup",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := buildContainer(cmd, opts)
			if err != nil {
				return err
			}
			checks := runDiagnostics(container)
			renderChecks(cmd.OutOrStdout(), checks)
			for _, check := range checks {
				if check.status == checkFail {
					return fmt.Errorf("diagnostics found problems")
				}
			}
			return nil
		},
	}
}

func runDiagnostics(container *app.Container) []healthCheck {
	checks := []healthCheck{
		{name: "config", status: checkOK, details: container.ConfigLoader.Path()},
	}

	model, ok := container.Config.DefaultModel()
	if !ok {
		checks = append(checks, healthCheck{"model", checkFail, "no models configured"})
	} else {
		checks = append(checks, healthCheck{"model", checkOK, fmt.Sprintf("%s (%s)", model.Name, model.ModelID)})
		checks = append(checks, apiKeyCheck(model))
		checks = append(checks, ollamaCheck(model))
	}

	if container.Config.Logging.Enabled() {
		checks = append(checks, healthCheck{"audit log", checkOK, container.Audit.Path()})
	} else {
		checks = append(checks, healthCheck{"audit log", checkWarn, "audit logging disabled"})
	}
	if !container.Config.Security.ConfirmationRequired() {
		checks = append(checks, healthCheck{"confirmation", checkWarn, "require_confirmation is off"})
	} else {
		checks = append(checks, healthCheck{"confirmation", checkOK, "commands require explicit approval"})
	}
	return checks
}

func apiKeyCheck(model domain.ModelDefinition) healthCheck {
	if model.AuthEnvVar == "" {
		return healthCheck{"api key", checkOK, "model requires no API key"}
	}
	if os.Getenv(model.AuthEnvVar) == "" {
		return healthCheck{"api key", checkFail, fmt.Sprintf("%s is not set", model.AuthEnvVar)}
	}
	return healthCheck{"api key", checkOK, model.AuthEnvVar + " is set"}
}

func ollamaCheck(model domain.ModelDefinition) healthCheck {
	if !strings.Contains(model.Endpoint, "11434") && !strings.Contains(model.Endpoint, "/api/chat") {
		return healthCheck{"ollama", checkOK, "not using a local model"}
	}
	if _, err := exec.LookPath("ollama"); err != nil {
		return healthCheck{"ollama", checkWarn, "ollama binary not found in PATH"}
	}
	return healthCheck{"ollama", checkOK, "ollama binary found"}
}

func renderChecks(out io.Writer, checks []healthCheck) {
	for _, check := range checks {
		fmt.Fprintf(out, "[%s] %s - %s\n", check.status, check.name, check.details)
	}
}
