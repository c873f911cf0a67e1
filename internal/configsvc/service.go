// Package configsvc applies natural-language editing instructions to
// conversion configs, locally when the instruction is a recognized
// numbering request and through the LLM otherwise.
package configsvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/draftmill/draftmill/internal/config"
	"github.com/draftmill/draftmill/internal/llm"
)

// ErrLLMDisabled is returned for instructions that need the LLM when no
// API key was configured.
var ErrLLMDisabled = errors.New("llm config editing not configured: ANTHROPIC_API_KEY is not set")

// maxEditAttempts bounds LLM round trips per instruction. A result that
// fails validation feeds the error back into the next attempt.
const maxEditAttempts = 3

// Service turns editing instructions into validated configs.
type Service struct {
	client *llm.Client // nil disables the LLM path
	log    *slog.Logger
}

func New(client *llm.Client, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{client: client, log: log}
}

// ApplyInstruction rewrites cfg according to the instruction and returns
// the updated config. Every result has passed config validation; cfg
// itself is never modified.
func (s *Service) ApplyInstruction(ctx context.Context, cfg *config.Conversion, instruction string) (*config.Conversion, error) {
	if req, ok := ParseNumberingRequest(instruction); ok {
		updated := ApplyNumbering(cfg, req)
		if err := updated.Validate(); err != nil {
			return nil, fmt.Errorf("numbering update: %w", err)
		}
		s.log.Debug("numbering instruction handled without llm",
			"level", req.Level, "remove", req.Remove, "template", req.Template)
		return updated, nil
	}
	return s.editLoop(ctx, cfg, instruction)
}

// Preview is ApplyInstruction returning the updated config as YAML
// instead of applying it anywhere.
func (s *Service) Preview(ctx context.Context, cfg *config.Conversion, instruction string) (string, error) {
	updated, err := s.ApplyInstruction(ctx, cfg, instruction)
	if err != nil {
		return "", err
	}
	b, err := updated.YAML()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *Service) editLoop(ctx context.Context, cfg *config.Conversion, instruction string) (*config.Conversion, error) {
	if s.client == nil {
		return nil, ErrLLMDisabled
	}
	current, err := cfg.YAML()
	if err != nil {
		return nil, fmt.Errorf("serialize config: %w", err)
	}

	ask := instruction
	var lastErr error
	for attempt := 1; attempt <= maxEditAttempts; attempt++ {
		edited, err := s.client.EditConfig(ctx, string(current), ask)
		if err != nil {
			// Transport retries already happened inside the client.
			return nil, err
		}
		updated, err := config.ParseConversion([]byte(edited))
		if err == nil {
			return updated, nil
		}
		lastErr = err
		s.log.Warn("generated config rejected", "attempt", attempt, "error", err)
		ask = fmt.Sprintf(
			"%s\n\nThe previous attempt produced configuration that failed validation with: %v\nFix the problem and apply the request again.",
			instruction, err)
	}
	return nil, fmt.Errorf("config editing failed after %d attempts: %w", maxEditAttempts, lastErr)
}
