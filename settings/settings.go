package settings

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// DefaultFileName is looked up in the working directory when no path is given
const DefaultFileName = "settings.json"

type Settings struct {
	TenantID        string `json:"tenant_id"`
	ClientID        string `json:"client_id"`
	ClientSecret    string `json:"client_secret"`
	AccessToken     string `json:"access_token"`
	GraphURL        string `json:"graph_url"`
	LogDir          string `json:"log_dir"`
	AuditDatabase   string `json:"audit_database"`
	MetricsTextfile string `json:"metrics_textfile"`
}

// LoadSettings reads the settings file. An explicitly named file must exist;
// a missing default file yields empty settings.
func LoadSettings(path string) (*Settings, error) {
	var settings Settings

	explicit := path != ""
	if !explicit {
		cwd, err := os.Getwd()
		if err != nil {
			return &settings, errors.Wrap(err, "LoadSettings:Getwd")
		}
		path = filepath.Join(cwd, DefaultFileName)
	}

	byteValue, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return &settings, nil
		}
		return &settings, errors.Wrapf(err, "LoadSettings:ReadFile %v", path)
	}

	if err := json.Unmarshal(byteValue, &settings); err != nil {
		return &settings, errors.Wrapf(err, "LoadSettings:Unmarshal %v", path)
	}
	return &settings, nil
}
