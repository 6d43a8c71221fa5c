package main

import (
	"github.com/loykin/apiscript/internal/common"
	"github.com/loykin/apiscript/internal/engine"
	"github.com/loykin/apiscript/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose script execution over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadConfig()
		if err != nil {
			return err
		}

		timeout, err := doc.ScriptTimeoutDuration()
		if err != nil {
			return err
		}
		e := engine.New()
		if timeout > 0 {
			e = &engine.Engine{Timeout: timeout}
		}

		addr := viper.GetString("addr")
		logger := common.GetLogger().WithComponent("server")
		logger.Info("starting script execution API", "addr", addr)
		return server.New(e).Router().Run(addr)
	},
}
