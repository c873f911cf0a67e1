package main

import (
	"context"
	"fmt"
	"os"

	"github.com/draftmill/draftmill/internal/config"
	"github.com/draftmill/draftmill/internal/configsvc"
	"github.com/draftmill/draftmill/internal/llm"
	"github.com/spf13/cobra"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Validate, update and scaffold configuration files",
	}
	cmd.AddCommand(configValidateCmd())
	cmd.AddCommand(configUpdateCmd())
	cmd.AddCommand(configInitCmd())
	return cmd
}

func configValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			if path == "" {
				return fmt.Errorf("--file flag is required")
			}
			if _, err := config.LoadConversion(path); err != nil {
				return err
			}
			fmt.Printf("✓ Configuration file is valid: %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "", "configuration file path to validate")
	return cmd
}

func configUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update a configuration file with a natural language prompt",
		Long: `Update a configuration file with a natural language prompt.

Example:
  draftmill config update -f style.yaml --prompt "add numbering to h1 headings with format 1."
  draftmill config update -f style.yaml --prompt "use a serif font" --preview`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			prompt, _ := cmd.Flags().GetString("prompt")
			preview, _ := cmd.Flags().GetBool("preview")

			if path == "" {
				return fmt.Errorf("--file flag is required")
			}
			if prompt == "" {
				return fmt.Errorf("--prompt flag is required")
			}

			cfg, err := config.LoadConversion(path)
			if err != nil {
				return err
			}

			fmt.Println("Updating configuration with natural language prompt...")
			updated, err := applyConfigPrompt(cmd.Context(), cfg, prompt)
			if err != nil {
				return err
			}
			out, err := updated.YAML()
			if err != nil {
				return err
			}

			if preview {
				fmt.Println("\nUpdated configuration preview:")
				fmt.Print(string(out))
				return nil
			}
			if err := os.WriteFile(path, out, 0o644); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			fmt.Printf("✓ Configuration updated and saved to %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "", "configuration file path")
	cmd.Flags().String("prompt", "", "natural language prompt to modify configuration")
	cmd.Flags().Bool("preview", false, "print the updated configuration without saving")
	return cmd
}

func configInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			if path == "" {
				return fmt.Errorf("--file flag is required")
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("refusing to overwrite existing file: %s", path)
			}
			if _, err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Printf("✓ Default configuration written to %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "", "path for the new configuration file")
	return cmd
}

// applyConfigPrompt edits cfg according to a natural language
// instruction, reaching for the LLM when the instruction is not a
// recognized numbering request.
func applyConfigPrompt(ctx context.Context, cfg *config.Conversion, prompt string) (*config.Conversion, error) {
	svcCfg := config.LoadService()
	var client *llm.Client
	if svcCfg.LLMEnabled() {
		client = llm.NewClient(llm.Options{
			APIKey:  svcCfg.AnthropicAPIKey,
			Model:   svcCfg.AnthropicModel,
			BaseURL: svcCfg.AnthropicBaseURL,
			Timeout: svcCfg.LLMTimeout,
		}, log)
		defer client.Close()
	}
	return configsvc.New(client, log).ApplyInstruction(ctx, cfg, prompt)
}
