// Package ansible bootstraps an Ansible control node on Debian/WSL:
// apt prerequisites, project tree, Python venv, pip libraries, Galaxy
// collections, and baseline config files. Every step is idempotent;
// re-running converges without clobbering operator edits.
package ansible

import (
	"path/filepath"
	"strings"

	"github.com/wslkit/wslkit/pkg/config"
	"github.com/wslkit/wslkit/pkg/errors"
	"github.com/wslkit/wslkit/pkg/identity"
	"github.com/wslkit/wslkit/pkg/logging"
	"github.com/wslkit/wslkit/pkg/paths"
	"github.com/wslkit/wslkit/pkg/platform"
	"github.com/wslkit/wslkit/pkg/style"
	"github.com/wslkit/wslkit/pkg/types"
)

const totalSteps = 7

// Options configures a bootstrap run.
type Options struct {
	// User is the explicit target account; empty means auto-resolve.
	User string

	// Path is the project base directory expression; empty means
	// <target-home>/<project_dirname> from config.
	Path string

	// SkipApt skips the apt install step for hosts that already have the
	// prerequisites.
	SkipApt bool

	DryRun bool

	FS      types.FS
	Runner  types.Runner
	Printer *style.Printer
	Config  *config.Config

	// Resolver overrides identity resolution, for tests. Defaults to a
	// resolver bound to the real process environment.
	Resolver *identity.Resolver
}

// Result reports what a bootstrap run did.
type Result struct {
	Identity *identity.Identity
	Base     string
	VenvDir  string

	// FilesWritten lists baseline files created this run (never files that
	// already existed).
	FilesWritten []string
}

// Bootstrap runs the control-node setup end to end.
func Bootstrap(opts Options) (*Result, error) {
	logger := logging.GetLogger("ansible")
	p := opts.Printer
	cfg := opts.Config

	if !platform.IsWSL(opts.FS) {
		p.Warn("this does not look like WSL; continuing anyway")
	}

	resolver := opts.Resolver
	if resolver == nil {
		resolver = identity.NewResolver(opts.FS)
	}
	id, err := resolver.Resolve(opts.User)
	if err != nil {
		return nil, err
	}
	if id.AutoSelected {
		p.Notice("auto-selected target user %q from /home", id.Name)
	}
	p.Plain("Target user: %s", id.Name)

	base, err := resolveBase(opts, id, cfg)
	if err != nil {
		return nil, err
	}
	p.Plain("Project base: %s", base)

	result := &Result{Identity: id, Base: base, VenvDir: filepath.Join(base, "venv")}

	if err := ensureDir(opts, base); err != nil {
		return nil, err
	}

	if err := aptStep(opts, id); err != nil {
		return nil, err
	}

	p.Step(2, totalSteps, "Creating project structure...")
	for _, sub := range cfg.Ansible.ProjectSubdirs {
		if err := ensureDir(opts, filepath.Join(base, sub)); err != nil {
			return nil, err
		}
	}

	p.Step(3, totalSteps, "Writing baseline config files...")
	for _, f := range baselineFiles() {
		written, err := writeIfAbsent(opts, filepath.Join(base, f.relPath), f.content)
		if err != nil {
			return nil, err
		}
		if written {
			result.FilesWritten = append(result.FilesWritten, f.relPath)
		}
	}

	if err := venvStep(opts, result); err != nil {
		return nil, err
	}

	if err := galaxyStep(opts, result.VenvDir); err != nil {
		return nil, err
	}

	if id.Elevated {
		if err := chownStep(opts, base, id); err != nil {
			return nil, err
		}
	}

	logger.Info().Str("base", base).Bool("dryRun", opts.DryRun).Msg("Bootstrap complete")
	p.Step(totalSteps, totalSteps, "Done")
	return result, nil
}

// resolveBase materializes the project base path against the target home.
func resolveBase(opts Options, id *identity.Identity, cfg *config.Config) (string, error) {
	if opts.Path != "" {
		return paths.ExpandForTarget(opts.Path, id.Home)
	}
	return filepath.Join(id.Home, cfg.Ansible.ProjectDirname), nil
}

func ensureDir(opts Options, dir string) error {
	if opts.DryRun {
		if _, err := opts.FS.Stat(dir); err != nil {
			opts.Printer.DryRun("would create directory %s", dir)
		}
		return nil
	}
	return paths.EnsureDir(opts.FS, dir, 0755)
}

// writeIfAbsent writes a baseline file only when missing, reporting the
// branch taken.
func writeIfAbsent(opts Options, path, content string) (bool, error) {
	if _, err := opts.FS.Stat(path); err == nil {
		opts.Printer.Plain("  exists %s (leaving as-is)", path)
		return false, nil
	}
	if opts.DryRun {
		opts.Printer.DryRun("would write %s", path)
		return false, nil
	}
	if err := opts.FS.WriteFile(path, []byte(content), 0644); err != nil {
		return false, errors.Wrapf(err, errors.ErrFileWrite, "writing %s", path)
	}
	opts.Printer.Plain("  wrote %s", path)
	return true, nil
}

func aptStep(opts Options, id *identity.Identity) error {
	p := opts.Printer
	if opts.SkipApt {
		p.Plain("[SKIP] apt install step skipped (--skip-apt).")
		return nil
	}

	p.Step(1, totalSteps, "Installing system prerequisites via apt...")
	pkgs := opts.Config.Ansible.AptPackages
	p.Plain("Packages: %s", strings.Join(pkgs, " "))
	if opts.DryRun {
		p.DryRun("skipping apt operations")
		return nil
	}

	if id.Elevated {
		if _, err := opts.Runner.Run("apt-get", "update"); err != nil {
			return err
		}
		_, err := opts.Runner.Run("apt-get", append([]string{"install", "-y"}, pkgs...)...)
		return err
	}

	// Not elevated: go through sudo, which may prompt for a password.
	p.Plain("NOTE: apt install requires sudo. You may be prompted.")
	if err := opts.Runner.RunInteractive("sudo", "apt-get", "update"); err != nil {
		return err
	}
	return opts.Runner.RunInteractive("sudo", append([]string{"apt-get", "install", "-y"}, pkgs...)...)
}

func venvStep(opts Options, result *Result) error {
	p := opts.Printer
	venvDir := result.VenvDir

	p.Step(4, totalSteps, "Creating Python virtual environment...")
	if _, err := opts.FS.Stat(venvDir); err == nil {
		p.Plain("  exists %s (leaving as-is)", venvDir)
	} else if opts.DryRun {
		p.DryRun("would create venv at %s", venvDir)
	} else {
		if _, err := opts.Runner.Run("python3", "-m", "venv", venvDir); err != nil {
			return err
		}
		p.Plain("  created %s", venvDir)
	}

	p.Step(5, totalSteps, "Installing Ansible + libraries into venv...")
	if opts.DryRun {
		p.DryRun("skipping pip install of: %s", strings.Join(opts.Config.Ansible.PipPackages, " "))
		return nil
	}

	pip := venvBin(venvDir, "pip")
	if _, err := opts.Runner.Run(pip, append([]string{"install", "--upgrade"}, opts.Config.Ansible.PipPackages...)...); err != nil {
		return err
	}

	out, err := opts.Runner.Run(venvBin(venvDir, "ansible"), "--version")
	if err != nil {
		return err
	}
	p.Plain("  ansible version:")
	for i, line := range strings.Split(strings.TrimSpace(out.Stdout), "\n") {
		if i >= 3 {
			break
		}
		p.Plain("  %s", line)
	}
	return nil
}

func galaxyStep(opts Options, venvDir string) error {
	p := opts.Printer
	p.Step(6, totalSteps, "Installing Ansible Galaxy collections...")
	for _, coll := range opts.Config.Ansible.GalaxyCollections {
		p.Plain("  installing %s ...", coll)
		if opts.DryRun {
			p.DryRun("skipping collection install of %s", coll)
			continue
		}
		if _, err := opts.Runner.Run(venvBin(venvDir, "ansible-galaxy"), "collection", "install", coll); err != nil {
			return err
		}
	}
	return nil
}

// chownStep hands the whole tree to the target user. Elevated runs create
// files as root; leaving them that way breaks every later unprivileged use.
func chownStep(opts Options, base string, id *identity.Identity) error {
	if opts.DryRun {
		opts.Printer.DryRun("would chown %s to %s", base, id.Name)
		return nil
	}
	if err := chownTree(opts.FS, base, id.UID, id.GID); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "changing ownership of %s", base)
	}
	return nil
}

func chownTree(fsys types.FS, root string, uid, gid int) error {
	if err := fsys.Chown(root, uid, gid); err != nil {
		return err
	}
	entries, err := fsys.ReadDir(root)
	if err != nil {
		return err
	}
	for _, e := range entries {
		child := filepath.Join(root, e.Name())
		if e.IsDir() {
			if err := chownTree(fsys, child, uid, gid); err != nil {
				return err
			}
			continue
		}
		if err := fsys.Chown(child, uid, gid); err != nil {
			return err
		}
	}
	return nil
}

func venvBin(venvDir, exe string) string {
	return filepath.Join(venvDir, "bin", exe)
}
