// Package identity resolves which non-privileged account a run acts on.
//
// wslkit is usually invoked under sudo (package installs, /etc edits) but
// must leave artifacts owned by a human operator account. Guessing wrong
// means root-owned files in a user's home, so resolution is a strict
// fallback chain and refuses to pick among multiple candidates.
package identity

import (
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wslkit/wslkit/pkg/errors"
	"github.com/wslkit/wslkit/pkg/logging"
	"github.com/wslkit/wslkit/pkg/types"
)

// Identity is the resolved target account. Immutable once resolved.
type Identity struct {
	Name string
	UID  int
	GID  int
	Home string

	// Elevated reports whether the resolving process itself runs as root.
	Elevated bool

	// AutoSelected reports that the account was picked by scanning /home
	// rather than named explicitly or via the environment. Callers should
	// surface a notice when set.
	AutoSelected bool
}

// Resolver resolves target identities. The zero dependencies (euid, env)
// are injectable so the fallback chain is testable without root.
type Resolver struct {
	FS types.FS

	// Euid is the resolving process's effective uid.
	Euid int

	// LookupEnv reads an environment variable; defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)

	// PasswdPath overrides the account database location, for tests.
	PasswdPath string

	logger zerolog.Logger
}

// NewResolver creates a Resolver bound to the real process environment.
func NewResolver(fsys types.FS) *Resolver {
	return &Resolver{
		FS:         fsys,
		Euid:       os.Geteuid(),
		LookupEnv:  os.LookupEnv,
		PasswdPath: PasswdPath,
		logger:     logging.GetLogger("identity"),
	}
}

// envHints are consulted in order when no explicit user is given. SUDO_USER
// carries the pre-elevation caller; USER and LOGNAME are generic fallbacks.
var envHints = []string{"SUDO_USER", "USER", "LOGNAME"}

// Resolve produces the target identity for this run.
//
// Order: explicit name, environment hints (skipping root and unknown
// accounts), the current effective account when not elevated, and finally a
// scan of /home when elevated. The scan succeeds only when exactly one
// eligible account exists.
func (r *Resolver) Resolve(explicit string) (*Identity, error) {
	accounts, err := loadAccounts(r.FS, r.passwdPath())
	if err != nil {
		return nil, err
	}
	elevated := r.Euid == 0

	if explicit != "" {
		acct, ok := findAccount(accounts, explicit)
		if !ok {
			return nil, errors.Newf(errors.ErrUnknownIdentity, "user %q does not exist on this system", explicit).
				WithDetail("user", explicit)
		}
		return r.finish(acct, elevated, false)
	}

	for _, hint := range envHints {
		name, ok := r.lookupEnv(hint)
		if !ok || name == "" || name == "root" {
			continue
		}
		acct, ok := findAccount(accounts, name)
		if !ok {
			r.logger.Debug().Str("hint", hint).Str("user", name).Msg("Environment hint does not resolve to an account")
			continue
		}
		return r.finish(acct, elevated, false)
	}

	if !elevated {
		acct, ok := findAccountByUID(accounts, r.Euid)
		if !ok {
			return nil, errors.Newf(errors.ErrUnknownIdentity, "effective uid %d has no account database entry", r.Euid)
		}
		return r.finish(acct, elevated, false)
	}

	// Elevated with no hints: auto-select only when unambiguous.
	candidates := r.homeAccounts(accounts)
	switch len(candidates) {
	case 1:
		return r.finish(candidates[0], elevated, true)
	case 0:
		return nil, errors.New(errors.ErrAmbiguousIdentity,
			"running as root and no non-root account with a home under /home was found; pass --user")
	default:
		names := make([]string, 0, len(candidates))
		for _, c := range candidates {
			names = append(names, c.Name)
		}
		return nil, errors.Newf(errors.ErrAmbiguousIdentity,
			"running as root and multiple accounts are eligible (%s); pass --user", strings.Join(names, ", ")).
			WithDetail("candidates", names)
	}
}

// homeAccounts filters the database down to auto-selection candidates:
// non-root, non-system accounts whose home lies under /home and exists.
func (r *Resolver) homeAccounts(accounts []Account) []Account {
	var out []Account
	for _, a := range accounts {
		if a.Name == "root" || a.UID < 1000 {
			continue
		}
		if !strings.HasPrefix(a.Home, "/home/") {
			continue
		}
		if _, err := r.FS.Stat(a.Home); err != nil {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (r *Resolver) finish(acct Account, elevated, autoSelected bool) (*Identity, error) {
	if _, err := r.FS.Stat(acct.Home); err != nil {
		return nil, errors.Wrapf(err, errors.ErrUnknownIdentity,
			"home directory %s for user %q does not exist", acct.Home, acct.Name)
	}
	id := &Identity{
		Name:         acct.Name,
		UID:          acct.UID,
		GID:          acct.GID,
		Home:         acct.Home,
		Elevated:     elevated,
		AutoSelected: autoSelected,
	}
	r.logger.Debug().
		Str("user", id.Name).
		Str("home", id.Home).
		Bool("elevated", id.Elevated).
		Bool("autoSelected", id.AutoSelected).
		Msg("Resolved target identity")
	return id, nil
}

func (r *Resolver) passwdPath() string {
	if r.PasswdPath != "" {
		return r.PasswdPath
	}
	return PasswdPath
}

func (r *Resolver) lookupEnv(key string) (string, bool) {
	if r.LookupEnv != nil {
		return r.LookupEnv(key)
	}
	return os.LookupEnv(key)
}
