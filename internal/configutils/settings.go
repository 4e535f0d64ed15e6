package configutils

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	KeyToken            = "bitbucket.token"
	KeyUsername         = "bitbucket.username"
	KeyPassword         = "bitbucket.password"
	KeyAPIURL           = "bitbucket.api_url"
	KeyHost             = "bitbucket.host"
	KeyDefaultReviewers = "bitbucket.default_reviewers"
	KeyCloseBranch      = "bitbucket.close_source_branch"
	KeyGitName          = "git.name"
	KeyGitEmail         = "git.email"
	KeyGitTransport     = "git.transport"
	KeyGitSSHKey        = "git.ssh_key"
	KeyGitSSHPassphrase = "git.ssh_key_passphrase"
	KeyWorkdir          = "workdir"
	KeyTimeout          = "timeout"
	KeyDestination      = "destination"
)

type Bitbucket struct {
	Token             string `mapstructure:"token"`
	Username          string `mapstructure:"username"`
	Password          string `mapstructure:"password"`
	APIURL            string `mapstructure:"api_url"`
	Host              string `mapstructure:"host"`
	DefaultReviewers  bool   `mapstructure:"default_reviewers"`
	CloseSourceBranch bool   `mapstructure:"close_source_branch"`
}

type Git struct {
	Name             string `mapstructure:"name"`
	Email            string `mapstructure:"email"`
	Transport        string `mapstructure:"transport"`
	SSHKey           string `mapstructure:"ssh_key"`
	SSHKeyPassphrase string `mapstructure:"ssh_key_passphrase"`
}

type Config struct {
	Bitbucket   Bitbucket     `mapstructure:"bitbucket"`
	Git         Git           `mapstructure:"git"`
	Workdir     string        `mapstructure:"workdir"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Destination string        `mapstructure:"destination"`
}

// SetDefaults registers every key so that environment variables are picked
// up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyToken, "")
	v.SetDefault(KeyUsername, "")
	v.SetDefault(KeyPassword, "")
	v.SetDefault(KeyAPIURL, "https://api.bitbucket.org/2.0")
	v.SetDefault(KeyHost, "bitbucket.org")
	v.SetDefault(KeyDefaultReviewers, false)
	v.SetDefault(KeyCloseBranch, false)
	v.SetDefault(KeyGitName, "")
	v.SetDefault(KeyGitEmail, "")
	v.SetDefault(KeyGitTransport, "ssh")
	v.SetDefault(KeyGitSSHKey, "")
	v.SetDefault(KeyGitSSHPassphrase, "")
	v.SetDefault(KeyWorkdir, filepath.Join(os.TempDir(), AppName))
	v.SetDefault(KeyTimeout, 2*time.Minute)
	v.SetDefault(KeyDestination, "")
}

func Load(v *viper.Viper) (*Config, error) {
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, err
	}

	return c, nil
}
