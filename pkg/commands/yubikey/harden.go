// Package yubikey hardens local privilege escalation: after a run, sudo
// requires a hardware-token touch via pam_u2f.
//
// The flow enrolls as early as possible and edits the PAM stack last, so a
// failure anywhere leaves sudo untouched. The PAM edit itself is guarded by
// a one-time pristine backup.
package yubikey

import (
	"path/filepath"
	"strings"

	"github.com/wslkit/wslkit/pkg/backup"
	"github.com/wslkit/wslkit/pkg/config"
	"github.com/wslkit/wslkit/pkg/errors"
	"github.com/wslkit/wslkit/pkg/identity"
	"github.com/wslkit/wslkit/pkg/logging"
	"github.com/wslkit/wslkit/pkg/pam"
	"github.com/wslkit/wslkit/pkg/platform"
	"github.com/wslkit/wslkit/pkg/resource"
	"github.com/wslkit/wslkit/pkg/style"
	"github.com/wslkit/wslkit/pkg/types"
)

// Options configures a harden run.
type Options struct {
	// User is the explicit account to enroll; empty means auto-resolve.
	User string

	// ReEnroll overwrites an existing enrollment file by re-running
	// pamu2fcfg.
	ReEnroll bool

	DryRun bool

	FS      types.FS
	Runner  types.Runner
	Printer *style.Printer
	Config  *config.Config

	// Resolver overrides identity resolution, for tests.
	Resolver *identity.Resolver
}

// Result reports what a harden run did.
type Result struct {
	Identity  *identity.Identity
	Authfile  string
	UdevState resource.State
	Enrolled  bool
	Pam       pam.Result
}

// Harden runs the sudo hardening flow end to end.
func Harden(opts Options) (*Result, error) {
	logger := logging.GetLogger("yubikey")
	p := opts.Printer
	cfg := opts.Config

	resolver := opts.Resolver
	if resolver == nil {
		resolver = identity.NewResolver(opts.FS)
	}
	if resolver.Euid != 0 {
		return nil, errors.New(errors.ErrInvalidInput,
			"this command edits /etc and installs packages; run it with sudo")
	}

	if !platform.IsWSL(opts.FS) {
		p.Warn("this does not look like WSL; proceeding anyway")
	}

	id, err := resolver.Resolve(opts.User)
	if err != nil {
		return nil, err
	}
	if id.AutoSelected {
		p.Notice("auto-selected target user %q from /home", id.Name)
	}
	p.Plain("Target user: %s", id.Name)
	p.Plain("Target home: %s", id.Home)

	result := &Result{
		Identity: id,
		Authfile: filepath.Join(id.Home, cfg.Yubikey.AuthfileRelpath),
	}

	p.Plain("")
	p.Plain("The YubiKey must already be attached to this distro (Windows side: usbipd).")
	p.Plain("See: wslkit guide windows")

	// Fail early, before any package or system change, if the token isn't
	// visible at all.
	if err := checkHidraw(opts, "before any changes"); err != nil {
		return nil, err
	}

	if err := aptInstall(opts, cfg.Yubikey.EnrollPackages, "enrollment prerequisites"); err != nil {
		return nil, err
	}

	state, err := ensureUdevRule(opts)
	if err != nil {
		return nil, err
	}
	result.UdevState = state

	// The udev rule change can fix device permissions; re-check before the
	// interactive enrollment step.
	if err := checkHidraw(opts, "after udev rule update"); err != nil {
		return nil, err
	}

	enrolled, err := enroll(opts, id, result.Authfile)
	if err != nil {
		return nil, err
	}
	result.Enrolled = enrolled

	if err := aptInstall(opts, cfg.Yubikey.PostEnrollPackages, "post-enrollment PAM integration packages"); err != nil {
		return nil, err
	}

	p.Plain("")
	p.Plain("Updating %s to require YubiKey touch for sudo...", cfg.Yubikey.PamSudoPath)
	guard := backup.NewGuard(opts.FS, cfg.Backup.Suffix, opts.DryRun, p)
	mutator := pam.NewMutator(opts.FS, guard, opts.DryRun, p)
	pamResult, err := mutator.Apply(cfg.Yubikey.PamSudoPath, result.Authfile)
	if err != nil {
		return nil, err
	}
	result.Pam = pamResult

	logger.Info().
		Str("user", id.Name).
		Str("authfile", result.Authfile).
		Bool("dryRun", opts.DryRun).
		Msg("Harden complete")
	return result, nil
}

func checkHidraw(opts Options, when string) error {
	devices, err := platform.RequireHidraw(opts.FS)
	if err != nil {
		opts.Printer.Error("no /dev/hidraw* devices found (%s)", when)
		opts.Printer.Plain("Attach the YubiKey to this distro with usbipd and re-run.")
		opts.Printer.Plain("See: wslkit guide windows")
		return err
	}
	opts.Printer.OK("found hidraw devices: %s", strings.Join(devices, ", "))
	return nil
}

func aptInstall(opts Options, pkgs []string, title string) error {
	p := opts.Printer
	p.Plain("")
	p.Plain("Installing %s...", title)
	p.Plain("Packages: %s", strings.Join(pkgs, " "))
	if opts.DryRun {
		p.DryRun("skipping apt operations")
		return nil
	}
	if _, err := opts.Runner.Run("apt-get", "update"); err != nil {
		return err
	}
	_, err := opts.Runner.Run("apt-get", append([]string{"install", "-y"}, pkgs...)...)
	return err
}

func ensureUdevRule(opts Options) (resource.State, error) {
	cfg := opts.Config
	writer := resource.NewWriter(opts.FS, opts.DryRun, opts.Printer)
	return writer.Ensure(resource.Resource{
		Name:    "udev rule",
		Path:    cfg.Yubikey.UdevRulePath,
		Content: cfg.Yubikey.UdevRule + "\n",
		Reload: func() error {
			if _, err := opts.Runner.Run("udevadm", "control", "--reload-rules"); err != nil {
				return err
			}
			_, err := opts.Runner.Run("udevadm", "trigger")
			return err
		},
	})
}

// enroll runs pamu2fcfg as the target user so the mapping file ends up with
// the right ownership. Returns true when a new enrollment was written.
func enroll(opts Options, id *identity.Identity, authfile string) (bool, error) {
	p := opts.Printer
	p.Plain("")
	p.Plain("Enrolling YubiKey with pamu2fcfg (interactive: may ask for FIDO2 PIN + touch)...")

	if _, err := opts.FS.Stat(authfile); err == nil && !opts.ReEnroll {
		p.OK("%s already exists (use --re-enroll to overwrite)", authfile)
		return false, nil
	}

	p.Plain("Will write mapping file: %s", authfile)
	if opts.DryRun {
		p.DryRun("skipping pamu2fcfg enrollment")
		return false, nil
	}

	yubicoDir := filepath.Dir(authfile)
	configDir := filepath.Dir(yubicoDir)

	// Create and chown the directories up front; a root-owned ~/.config
	// breaks enrollment running as the target user.
	for _, dir := range []string{configDir, yubicoDir} {
		if err := opts.FS.MkdirAll(dir, 0755); err != nil {
			return false, errors.Wrapf(err, errors.ErrDirCreate, "creating %s", dir)
		}
		if err := opts.FS.Chown(dir, id.UID, id.GID); err != nil {
			return false, errors.Wrapf(err, errors.ErrFileWrite, "changing ownership of %s", dir)
		}
	}

	tmpPath := authfile + ".tmp"
	_ = opts.FS.Remove(tmpPath)

	p.Plain("If prompted for a PIN: set/enter your YubiKey FIDO2 PIN, then touch the key.")
	err := opts.Runner.RunInteractive("sudo", "-u", id.Name, "bash", "-lc",
		"pamu2fcfg > "+shellQuote(tmpPath))
	if err != nil {
		// Never leave a half-written mapping file behind.
		_ = opts.FS.Remove(tmpPath)
		p.Error("pamu2fcfg failed. Common causes:")
		p.Plain("- YubiKey not attached to this distro")
		p.Plain("- /dev/hidraw* not present/accessible")
		p.Plain("- FIDO2 app disabled on the key")
		p.Plain("- PIN/touch not provided in time")
		p.Plain("- %s is not writable by the target user", yubicoDir)
		return false, err
	}

	if err := opts.FS.Rename(tmpPath, authfile); err != nil {
		return false, errors.Wrapf(err, errors.ErrFileWrite, "moving enrollment into place at %s", authfile)
	}
	if err := opts.FS.Chmod(authfile, 0600); err != nil {
		return false, errors.Wrapf(err, errors.ErrFileWrite, "setting permissions on %s", authfile)
	}
	if err := opts.FS.Chown(authfile, id.UID, id.GID); err != nil {
		return false, errors.Wrapf(err, errors.ErrFileWrite, "changing ownership of %s", authfile)
	}

	validateEnrollment(opts, id, authfile)
	return true, nil
}

// validateEnrollment warns when the mapping file doesn't start with the
// expected "user:" prefix; PAM silently skips non-matching lines, which
// presents as an inexplicable auth failure later.
func validateEnrollment(opts Options, id *identity.Identity, authfile string) {
	content, err := opts.FS.ReadFile(authfile)
	if err != nil {
		opts.Printer.Warn("could not read back %s: %v", authfile, err)
		return
	}
	if !strings.HasPrefix(string(content), id.Name+":") {
		opts.Printer.Warn("%s does not start with the expected %q prefix; you may need to re-enroll as the correct user", authfile, id.Name+":")
		return
	}
	opts.Printer.OK("enrollment file created and matches username prefix")
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
