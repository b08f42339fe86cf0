package config

// Defaults applied by ApplyDefaults when a field is left empty.
const (
	DefaultRegion        = "fra1"
	DefaultSize          = "c-2"
	DefaultUsername      = "julian"
	DefaultArchiveRegion = "fra1"
	DefaultTimezone      = "Europe/London"
)

// RemoteScriptPath is where the bootstrap script is copied on the droplet.
const RemoteScriptPath = "/tmp/bootstrap.sh"

// RemoteUser is the droplet's default administrative identity.
const RemoteUser = "root"

// SSHPort is the port opened in the droplet firewall and used for bootstrap.
const SSHPort = 22

// FixedTags are attached to every droplet ahead of caller-supplied tags.
var FixedTags = []string{"dropkit", "automation"}
