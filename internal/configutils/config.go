package configutils

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"pkgbump/internal/pkg/fs"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	AppName         = "pkgbump"
	LocalConfigFile = ".pkgbumpcfg"
	EnvFile         = ".env"
	EnvPrefix       = "PKGBUMP"
	globalConfigDir = "~/.config/" + AppName
)

type configMerger interface {
	MergeConfig(io.Reader) error
}

var (
	ErrHomeDirNotFound = errors.New("unable to determine the home directory")
	ErrConfigFileIsDir = errors.New("configuration file is a directory")
)

var filetypes = []string{"yaml", "json", "toml"}

var osFs = fs.OS()

var mergeConfig = func(in io.Reader, cm configMerger) error {
	err := cm.MergeConfig(in)
	if err != nil {
		return err
	}

	return nil
}

var fileExists = func(filename string, fsys afero.Fs) error {
	info, err := fsys.Stat(filename)
	if err != nil {
		return err
	}

	if info.IsDir() {
		return ErrConfigFileIsDir
	}

	return nil
}

var loadFile = func(filename string, fsys afero.Fs) (io.ReadCloser, error) {
	err := fileExists(filename, fsys)
	if err != nil {
		return nil, err
	}

	f, err := fsys.Open(filename)
	if err != nil {
		return nil, err
	}

	return f, nil
}

var loadConfig = func(filename string, v *viper.Viper) error {
	f, err := loadFile(filename, osFs)
	if err != nil {
		return err
	}
	defer f.Close()

	return mergeConfig(f, v)
}

var getGlobalConfigDir = func() (string, error) {
	return homedir.Expand(globalConfigDir)
}

// mergeAnyType merges filename trying every supported format in turn.
func mergeAnyType(v *viper.Viper, filename string) error {
	var err error
	for _, ft := range filetypes {
		v.SetConfigType(ft)
		err = loadConfig(filename, v)
		if err == nil {
			return nil
		}
		log.Debug().Err(err).Str("file", filename).
			Msgf("config loading failed for type %s, skipping to next filetype", ft)
	}

	return err
}

func MergeLocalConfig(v *viper.Viper, path string) error {
	f := filepath.Join(path, LocalConfigFile)
	if err := fileExists(f, osFs); err != nil {
		return nil
	}

	return errors.Wrap(mergeAnyType(v, f), f)
}

// MergeConfigFile merges an explicitly named config file. Its extension
// decides the format.
func MergeConfigFile(v *viper.Viper, filename string) error {
	p, err := homedir.Expand(filename)
	if err != nil {
		return err
	}

	v.SetConfigFile(p)
	return errors.Wrap(v.MergeInConfig(), p)
}

// DefaultConfig returns a viper instance holding the defaults, the global
// config file when one exists and the PKGBUMP_ environment.
func DefaultConfig() (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfgDir, err := getGlobalConfigDir()
	if err != nil {
		return nil, ErrHomeDirNotFound
	}

	for _, ft := range filetypes {
		f := filepath.Join(cfgDir, fmt.Sprintf("config.%s", ft))
		if fileExists(f, osFs) != nil {
			continue
		}

		v.SetConfigType(ft)
		if err := loadConfig(f, v); err != nil {
			return nil, errors.Wrap(err, "could not load config")
		}
		log.Debug().Str("file", f).Msg("global config loaded")
	}

	return v, nil
}

var loadDotEnv = func(filename string) error {
	return godotenv.Load(filename)
}

// LoadDotEnv exports the variables of the .env file in path, if any.
// Variables already set in the environment win.
func LoadDotEnv(path string) error {
	f := filepath.Join(path, EnvFile)
	if fileExists(f, osFs) != nil {
		return nil
	}

	return errors.Wrap(loadDotEnv(f), f)
}

func LoadConfigForPath(path string) (*viper.Viper, error) {
	if err := LoadDotEnv(path); err != nil {
		return nil, err
	}

	v, err := DefaultConfig()
	if err != nil {
		return nil, err
	}

	err = MergeLocalConfig(v, path)
	if err != nil {
		return nil, err
	}

	return v, nil
}
