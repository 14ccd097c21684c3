package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sufield/trustgate/internal/adapters/secondary/config"
)

var validateConfigCmd = &cobra.Command{
	Use:   "validate-config <config.yaml>",
	Short: "Validate a policy configuration file",
	Long: `Load and validate a policy configuration file, including any pin file it
references, and summarize the policy it would produce. Exits non-zero when
the configuration would be refused at startup.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidateConfig,
}

func runValidateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Mode: %s\n", cfg.Policy.Mode)

	if cfg.Policy.Mode == config.ModeStrict {
		if cfg.Roots.BundleFile != "" {
			if _, err := cfg.RootPool(); err != nil {
				return fmt.Errorf("root bundle invalid: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Roots: %s\n", cfg.Roots.BundleFile)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Roots: system store")
		}

		pins, err := cfg.PinSet()
		if err != nil {
			return fmt.Errorf("inline pins invalid: %w", err)
		}
		if cfg.Pinning.File != "" {
			pins, err = config.LoadPinFile(cfg.Pinning.File)
			if err != nil {
				return fmt.Errorf("pin file invalid: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pin file: %s\n", cfg.Pinning.File)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Pins: %s\n", pins)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid.")
	return nil
}
