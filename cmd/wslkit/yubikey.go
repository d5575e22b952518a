package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/wslkit/wslkit/pkg/commands/yubikey"
	"github.com/wslkit/wslkit/pkg/config"
	"github.com/wslkit/wslkit/pkg/executor"
	"github.com/wslkit/wslkit/pkg/filesystem"
	"github.com/wslkit/wslkit/pkg/logging"
	"github.com/wslkit/wslkit/pkg/style"
)

var (
	yubikeyUser     string
	yubikeyReEnroll bool
)

var yubikeyCmd = &cobra.Command{
	Use:   "yubikey",
	Short: MsgYubikeyShort,
	Long: `Requires a YubiKey touch for every sudo invocation. The flow installs
the FIDO2 tooling, writes a udev rule so the key's hidraw interface is
accessible, enrolls the key with pamu2fcfg as the target user, and adds a
pam_u2f auth line to /etc/pam.d/sudo after backing it up.

Run with sudo. The YubiKey must be attached to this distro first; on WSL
that means usbipd on the Windows side (see: wslkit guide windows).

If sudo ever locks you out, restore the backup from a root shell:
  cp /etc/pam.d/sudo.bak /etc/pam.d/sudo
(see: wslkit guide recovery)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("cmd.yubikey")
		logger.Info().
			Bool("dryRun", dryRun).
			Bool("reEnroll", yubikeyReEnroll).
			Str("user", yubikeyUser).
			Msg("Starting sudo hardening")

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		printer := style.NewPrinter(os.Stdout)
		result, err := yubikey.Harden(yubikey.Options{
			User:     yubikeyUser,
			ReEnroll: yubikeyReEnroll,
			DryRun:   dryRun,
			FS:       filesystem.NewOS(),
			Runner:   executor.NewOSRunner(),
			Printer:  printer,
			Config:   cfg,
		})
		if err != nil {
			return err
		}

		if result.Pam.Written {
			printer.Plain("")
			printer.OK("sudo now requires a YubiKey touch")
			printer.Plain("Test it from a NEW terminal before closing this one:")
			printer.Plain("  sudo -k && sudo true")
			printer.Plain("")
			printer.Plain("Further reading: wslkit guide recovery, wslkit guide next-steps")
		}
		return nil
	},
}

func init() {
	yubikeyCmd.Flags().StringVar(&yubikeyUser, "user", "", MsgFlagUser)
	yubikeyCmd.Flags().BoolVar(&yubikeyReEnroll, "re-enroll", false, "Re-run pamu2fcfg even if an enrollment file exists")
}
