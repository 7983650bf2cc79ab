package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"talentscout/interview/internal/config"
	"talentscout/interview/internal/engine"
	"talentscout/interview/internal/prompts"
	"talentscout/interview/internal/scoring"
	"talentscout/interview/internal/utils"
)

const (
	serviceName  = "interview"
	pingTimeout  = 2 * time.Second
	statusOK     = "ok"
	statusFailed = "failed"
)

// Pinger is a dependency that can report its own reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type ReadinessCheck struct {
	Status  string `json:"status"` // "ok" | "failed"
	Message string `json:"message,omitempty"`
}

type ReadinessResponse struct {
	Status  string                    `json:"status"`  // "ready" | "not_ready"
	Service string                    `json:"service"` // Service name
	Checks  map[string]ReadinessCheck `json:"checks"`  // Individual check results
}

type HealthHandler struct {
	interviewer   engine.Interviewer
	judge         scoring.Judge
	promptManager prompts.PromptProvider
	config        *config.Config
	dependencies  map[string]Pinger
}

// NewHealthHandler wires readiness checks. dependencies are pinged by name,
// e.g. "store" or "redis".
func NewHealthHandler(interviewer engine.Interviewer, judge scoring.Judge, promptManager prompts.PromptProvider, cfg *config.Config, dependencies map[string]Pinger) *HealthHandler {
	return &HealthHandler{
		interviewer:   interviewer,
		judge:         judge,
		promptManager: promptManager,
		config:        cfg,
		dependencies:  dependencies,
	}
}

func (handler *HealthHandler) HealthzHandler(writer http.ResponseWriter, request *http.Request) {
	utils.JSON(writer, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": serviceName,
		"version": "1.0.0",
	})
}

func (handler *HealthHandler) ReadyzHandler(writer http.ResponseWriter, request *http.Request) {
	checks := make(map[string]ReadinessCheck)
	allChecksPass := true
	fail := func(name, message string) {
		checks[name] = ReadinessCheck{Status: statusFailed, Message: message}
		allChecksPass = false
	}

	if handler.interviewer == nil {
		fail("interviewer", "Interviewer not initialized")
	} else {
		checks["interviewer"] = ReadinessCheck{Status: statusOK, Message: handler.interviewer.Name()}
	}

	if handler.judge == nil {
		fail("judge", "Judge not initialized")
	} else {
		checks["judge"] = ReadinessCheck{Status: statusOK, Message: handler.judge.Name()}
	}

	if handler.promptManager == nil {
		fail("prompt_manager", "Prompt manager not initialized")
	} else if len(handler.promptManager.GetTemplates()) == 0 {
		fail("prompt_manager", "No prompt templates loaded")
	} else {
		checks["prompt_manager"] = ReadinessCheck{Status: statusOK}
	}

	if handler.config == nil {
		fail("configuration", "Configuration not loaded")
	} else {
		checks["configuration"] = ReadinessCheck{Status: statusOK}
	}

	names := make([]string, 0, len(handler.dependencies))
	for name := range handler.dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		dep := handler.dependencies[name]
		if dep == nil {
			fail(name, "not initialized")
			continue
		}
		ctx, cancel := context.WithTimeout(request.Context(), pingTimeout)
		err := dep.Ping(ctx)
		cancel()
		if err != nil {
			fail(name, err.Error())
			continue
		}
		checks[name] = ReadinessCheck{Status: statusOK}
	}

	response := ReadinessResponse{
		Service: serviceName,
		Checks:  checks,
	}

	if allChecksPass {
		response.Status = "ready"
		utils.JSON(writer, http.StatusOK, response)
	} else {
		response.Status = "not_ready"
		utils.JSON(writer, http.StatusServiceUnavailable, response)
	}
}
