package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/wslkit/wslkit/pkg/commands/ansible"
	"github.com/wslkit/wslkit/pkg/config"
	"github.com/wslkit/wslkit/pkg/executor"
	"github.com/wslkit/wslkit/pkg/filesystem"
	"github.com/wslkit/wslkit/pkg/logging"
	"github.com/wslkit/wslkit/pkg/style"
)

var (
	ansibleUser    string
	ansiblePath    string
	ansibleSkipApt bool
)

var ansibleCmd = &cobra.Command{
	Use:   "ansible",
	Short: MsgAnsibleShort,
	Long: `Sets up an Ansible control node for network automation: installs the
apt prerequisites, creates the project directory layout, writes baseline
config, inventory and playbook files (never overwriting existing ones),
builds a Python virtualenv with the automation stack, and installs the
Ansible Galaxy collections.

Safe to re-run: every step checks before it acts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("cmd.ansible")
		logger.Info().
			Bool("dryRun", dryRun).
			Str("user", ansibleUser).
			Msg("Starting ansible bootstrap")

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		printer := style.NewPrinter(os.Stdout)
		result, err := ansible.Bootstrap(ansible.Options{
			User:    ansibleUser,
			Path:    ansiblePath,
			SkipApt: ansibleSkipApt,
			DryRun:  dryRun,
			FS:      filesystem.NewOS(),
			Runner:  executor.NewOSRunner(),
			Printer: printer,
			Config:  cfg,
		})
		if err != nil {
			return err
		}

		printer.Plain("")
		printer.Plain("Activate with: source %s/bin/activate", result.VenvDir)
		printer.Plain("Further reading: wslkit guide next-steps")
		return nil
	},
}

func init() {
	ansibleCmd.Flags().StringVar(&ansibleUser, "user", "", MsgFlagUser)
	ansibleCmd.Flags().StringVar(&ansiblePath, "path", "", "Project directory (default: <target-home>/ansible-control-node)")
	ansibleCmd.Flags().BoolVar(&ansibleSkipApt, "skip-apt", false, "Skip the apt install step")
}
