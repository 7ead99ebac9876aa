package cli

import (
	"fmt"

	"github.com/imgajeed76/pinvite/internal/config"
	"github.com/imgajeed76/pinvite/internal/ui/styles"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Get and set pinvite options",
		Long: `Get and set options in the pinvite config file.

Every key can also be set through the environment as PINVITE_<KEY>, for
example PINVITE_DATABASE_URL, or in a .env file in the working directory.
The environment wins over the file.

Keys:
` + config.HelpText() + `
Examples:
  pinvite config set database.driver sqlite
  pinvite config get list.page_size
  pinvite config list`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print one option",
			Args:  cobra.ExactArgs(1),
			RunE:  runConfigGet,
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Write one option to the config file",
			Args:  cobra.ExactArgs(2),
			RunE:  runConfigSet,
		},
		&cobra.Command{
			Use:   "list",
			Short: "Print every option with its effective value",
			Args:  cobra.NoArgs,
			RunE:  runConfigList,
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file location",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), config.Path())
			},
		},
	)
	return cmd
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	value, ok := a.cfg.GetValue(args[0])
	if !ok {
		return fmt.Errorf("unknown config key: %s", args[0])
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	// Write to the file as it is, not to the env-merged view.
	cfg, err := config.LoadFile(config.Path())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.SetValue(args[0], args[1]); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	appFrom(cmd).log.Debug("config updated")
	return nil
}

func runConfigList(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	out := cmd.OutOrStdout()
	for _, f := range config.Fields() {
		value, _ := a.cfg.GetValue(f.Key)
		switch {
		case f.Secret && value != "":
			value = "********"
		case value == "":
			value = styles.Mute("(unset)")
		}
		fmt.Fprintf(out, "%s=%s\n", f.Key, value)
	}
	return nil
}
