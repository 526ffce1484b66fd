package config

import "github.com/spf13/viper"

type API struct {
	Listen      string
	CORSOrigins []string
}

const (
	Cfg_api_listen      = "api.listen"
	Cfg_api_corsOrigins = "api.corsOrigins"
)

var (
	apiDefaults = map[string]interface{}{
		Cfg_api_listen:      ":8080",
		Cfg_api_corsOrigins: []string{"*"},
	}
)

func init() {
	for k, v := range apiDefaults {
		viper.SetDefault(k, v)
	}
}

func buildAPIConfig() *API {
	return &API{
		Listen:      viper.GetString(Cfg_api_listen),
		CORSOrigins: viper.GetStringSlice(Cfg_api_corsOrigins),
	}
}
