package main

import (
	"fmt"
	"os"

	"github.com/loykin/apiscript/cmd/apiscript/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:           "apiscript",
	Short:         "Run pre-request and test scripts around HTTP requests defined in YAML files",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// loadConfig reads the config document named by the config flag and
// installs its logging setup.
func loadConfig() (*config.ConfigDoc, error) {
	doc := &config.ConfigDoc{}
	if err := doc.LoadFromFile(viper.GetString("config")); err != nil {
		return nil, err
	}
	if ws := viper.GetString("workspace"); ws != "" {
		doc.Workspace = ws
	}
	if err := doc.ApplyLogging(); err != nil {
		return nil, err
	}
	return doc, nil
}

func init() {
	v := viper.GetViper()
	v.SetDefault("config", "./config.yaml")
	v.SetDefault("workspace", "")
	v.SetDefault("parallel", 1)
	v.SetDefault("addr", ":8085")

	// Environment variables support: APISCRIPT_CONFIG, APISCRIPT_WORKSPACE, ...
	v.SetEnvPrefix("APISCRIPT")
	v.AutomaticEnv()

	rootCmd.PersistentFlags().String("config", v.GetString("config"), "path to a config yaml")
	rootCmd.PersistentFlags().String("workspace", v.GetString("workspace"), "workspace whose stored scopes the run uses")
	runCmd.Flags().Int("parallel", v.GetInt("parallel"), "number of request files to run concurrently (1 = sequential)")
	runCmd.Flags().Bool("insecure", false, "skip TLS certificate verification")
	runCmd.Flags().String("env-file", "", "yaml file of name/value pairs layered over the stored environment")
	serveCmd.Flags().String("addr", v.GetString("addr"), "listen address for the script execution API")

	_ = v.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = v.BindPFlag("parallel", runCmd.Flags().Lookup("parallel"))
	_ = v.BindPFlag("insecure", runCmd.Flags().Lookup("insecure"))
	_ = v.BindPFlag("env_file", runCmd.Flags().Lookup("env-file"))
	_ = v.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(envCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
