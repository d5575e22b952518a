package ansible

import (
	_ "embed"
)

// Baseline files written into a fresh project. Existing files are never
// overwritten: the operator's edits to inventory and config win.

//go:embed embedded/ansible.cfg
var ansibleCfg string

//go:embed embedded/hosts.yml
var hostsYml string

//go:embed embedded/test_ios_facts.yml
var testPlaybook string

// baselineFile pairs a project-relative path with its template content.
type baselineFile struct {
	relPath string
	content string
}

func baselineFiles() []baselineFile {
	return []baselineFile{
		{relPath: "ansible.cfg", content: ansibleCfg},
		{relPath: "inventory/hosts.yml", content: hostsYml},
		{relPath: "playbooks/test_ios_facts.yml", content: testPlaybook},
	}
}
