package config

import "github.com/spf13/viper"

type Archive struct {
	// Path of the pebble archive. Empty disables archiving.
	Path string
}

const (
	Cfg_archive_path = "archive.path"
)

func init() {
	viper.SetDefault(Cfg_archive_path, "")
}

func buildArchiveConfig() *Archive {
	return &Archive{Path: viper.GetString(Cfg_archive_path)}
}

func (a *Archive) Enabled() bool {
	return a.Path != ""
}
