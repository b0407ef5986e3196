// Package autoload initializes the global logger from LOG_* environment
// variables as an import side effect:
//
//	import _ "github.com/avamind/ava-core/pkg/logger/autoload"
package autoload

import (
	configx "github.com/avamind/ava-core/pkg/config"
	logx "github.com/avamind/ava-core/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
