package main

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort    = "Bootstrap a WSL distro into an engineering workstation"
	MsgAnsibleShort = "Set up an Ansible control node for network automation"
	MsgYubikeyShort = "Require a YubiKey touch for sudo via pam_u2f"
	MsgGuideShort   = "Show a built-in guide"
	MsgConfigShort  = "Print the effective configuration as TOML"

	// Flag descriptions
	MsgFlagUser = "Target user account (default: auto-detect via SUDO_USER/USER or /home scan)"
)
