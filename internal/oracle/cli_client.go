package oracle

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CLIClient drives a locally installed claude CLI instead of the API.
// Intended for development machines where an interactive plan already
// exists and no API key is configured.
type CLIClient struct {
	cliPath string
}

func NewCLIClient(cliPath string) *CLIClient {
	return &CLIClient{cliPath: cliPath}
}

func (c *CLIClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*Response, error) {
	cmd := exec.CommandContext(ctx,
		c.cliPath,
		"--print",
		"--output-format", "text",
		"--max-turns", "1",
		"--system-prompt", systemPrompt,
	)
	cmd.Stdin = strings.NewReader(userPrompt)

	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("claude CLI exited: %w, stderr: %s", err, exitErr.Stderr)
		}
		return nil, fmt.Errorf("claude CLI run: %w", err)
	}

	content := strings.TrimSpace(string(out))
	if content == "" {
		return nil, fmt.Errorf("claude CLI produced no output")
	}

	// The CLI does not report token usage.
	return &Response{Content: content}, nil
}
