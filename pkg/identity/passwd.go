package identity

import (
	"strconv"
	"strings"

	"github.com/wslkit/wslkit/pkg/errors"
	"github.com/wslkit/wslkit/pkg/types"
)

// PasswdPath is the account database consulted during resolution.
const PasswdPath = "/etc/passwd"

// Account is one entry of the system account database.
type Account struct {
	Name  string
	UID   int
	GID   int
	Home  string
	Shell string
}

// loadAccounts parses a passwd-format file through the FS abstraction.
// Malformed lines and comments are skipped rather than failing the run: a
// host's passwd file is not ours to police, we only need the valid entries.
func loadAccounts(fsys types.FS, path string) ([]Account, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileRead, "reading account database %s", path)
	}

	var accounts []Account
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) < 7 {
			continue
		}
		uid, err := strconv.Atoi(fields[2])
		if err != nil {
			continue
		}
		gid, err := strconv.Atoi(fields[3])
		if err != nil {
			continue
		}
		accounts = append(accounts, Account{
			Name:  fields[0],
			UID:   uid,
			GID:   gid,
			Home:  fields[5],
			Shell: fields[6],
		})
	}
	return accounts, nil
}

func findAccount(accounts []Account, name string) (Account, bool) {
	for _, a := range accounts {
		if a.Name == name {
			return a, true
		}
	}
	return Account{}, false
}

func findAccountByUID(accounts []Account, uid int) (Account, bool) {
	for _, a := range accounts {
		if a.UID == uid {
			return a, true
		}
	}
	return Account{}, false
}
