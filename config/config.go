package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"sigs.k8s.io/yaml"

	"github.com/bkryza/luma-user-setup-example/rest"
	"github.com/bkryza/luma-user-setup-example/util"
)

// Config is the full, read-only configuration of a provisioning run. It is
// assembled once before the pipeline starts and passed by value.
type Config struct {
	// API roots, e.g. https://zone.example.com:9443/api/v3/onepanel.
	OnepanelURL string `json:"onepanelURL"`
	OnezoneURL  string `json:"onezoneURL"`
	LumaURL     string `json:"lumaURL"`

	PanelAuth rest.BasicAuth `json:"panelAuth"`
	AdminAuth rest.BasicAuth `json:"adminAuth"`

	// UserPassword is shared by all provisioned accounts. The users never
	// have to log in to any platform service themselves.
	UserPassword string `json:"userPassword"`

	SpaceID         string `json:"spaceId"`
	DefaultSpaceGID uint   `json:"defaultSpaceGid"`
	StorageName     string `json:"storageName"`
	StorageType     string `json:"storageType"`

	// Accounts are generated for UIDs in [LowUID, HighUID).
	LowUID      uint   `json:"lowUid"`
	HighUID     uint   `json:"highUid"`
	LoginPrefix string `json:"loginPrefix"`

	OutputDir    string `json:"outputDir"`
	DatabasePath string `json:"database"`

	InsecureSkipVerify bool `json:"insecureSkipVerify"`
}

const (
	DefaultConfigFile   = "luma-user-setup.yaml"
	DefaultDatabasePath = "luma-user-setup.db"
	DefaultStorageType  = "posix"
	DefaultLoginPrefix  = "user"
)

func LoadConfig(fileName string) (Config, error) {
	if fileName == "" {
		fileName = DefaultConfigFile
	}
	cfg, err := LoadConfigFromFile(fileName)

	if err != nil {
		return Config{}, fmt.Errorf("load config '%s': %v", fileName, err)
	}

	if cfg == nil {
		cfg = &Config{}
	}

	cfg.PanelAuth.Password = util.FirstNonEmptyString(cfg.PanelAuth.Password, os.Getenv("ONEPANEL_PASSWORD"))
	cfg.AdminAuth.Password = util.FirstNonEmptyString(cfg.AdminAuth.Password, os.Getenv("ONEZONE_PASSWORD"))
	cfg.UserPassword = util.FirstNonEmptyString(cfg.UserPassword, os.Getenv("USER_PASSWORD"))
	cfg.StorageType = util.FirstNonEmptyString(cfg.StorageType, DefaultStorageType)
	cfg.LoginPrefix = util.FirstNonEmptyString(cfg.LoginPrefix, DefaultLoginPrefix)
	cfg.DatabasePath = util.FirstNonEmptyString(cfg.DatabasePath, os.Getenv("DATABASE"), DefaultDatabasePath)

	return *cfg, nil
}

func LoadConfigFromFile(fileName string) (*Config, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %s", fileName, err)
	}
	defer f.Close()

	return LoadConfigFromReader(f)
}

func LoadConfigFromReader(r io.Reader) (*Config, error) {
	var buf bytes.Buffer
	_, err := buf.ReadFrom(r)
	if err != nil {
		return nil, err
	}
	if buf.Len() == 0 {
		return nil, nil
	}

	cfg := new(Config)

	err = yaml.Unmarshal(buf.Bytes(), cfg)
	if err != nil {
		return nil, fmt.Errorf("config unmarshal: %v", err)
	}

	return cfg, nil
}

// Validate reports every missing required field at once. An empty UID range
// is valid: the pipeline then only produces an empty accounts file.
func (c Config) Validate() error {
	var result *multierror.Error

	required := []struct {
		name  string
		value string
	}{
		{"onepanelURL", c.OnepanelURL},
		{"onezoneURL", c.OnezoneURL},
		{"lumaURL", c.LumaURL},
		{"panelAuth.username", c.PanelAuth.Username},
		{"panelAuth.password", c.PanelAuth.Password},
		{"adminAuth.username", c.AdminAuth.Username},
		{"adminAuth.password", c.AdminAuth.Password},
		{"userPassword", c.UserPassword},
		{"spaceId", c.SpaceID},
		{"storageName", c.StorageName},
	}

	for _, field := range required {
		if field.value == "" {
			result = multierror.Append(result, fmt.Errorf("%s is required", field.name))
		}
	}

	return result.ErrorOrNil()
}
