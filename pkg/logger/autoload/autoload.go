// Package autoload initializes the global logger from LOG_* environment
// variables. Blank-import it from a main package.
package autoload

import (
	"github.com/kelseyhightower/envconfig"

	logx "github.com/vaiulabs/bistro-host/pkg/logger"
)

func init() {
	var conf logx.Config
	if err := envconfig.Process("LOG", &conf); err != nil {
		conf = *logx.DefaultConfig
	}
	logx.Init(conf)
}
