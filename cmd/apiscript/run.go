package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/loykin/apiscript/cmd/apiscript/config"
	"github.com/loykin/apiscript/internal/engine"
	"github.com/loykin/apiscript/internal/httpc"
	"github.com/loykin/apiscript/internal/state"
	"github.com/loykin/apiscript/internal/store"
	"github.com/loykin/apiscript/pkg/runner"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var (
	passMark = color.New(color.FgGreen).SprintFunc()
	failMark = color.New(color.FgRed).SprintFunc()
	dimText  = color.New(color.Faint).SprintFunc()
)

var runCmd = &cobra.Command{
	Use:   "run [files or directories]",
	Short: "Execute request files with their pre-request and test scripts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		doc, err := loadConfig()
		if err != nil {
			return err
		}

		paths, err := collectPaths(args)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no request files found in %v", args)
		}

		r, err := buildRunner(doc)
		if err != nil {
			return err
		}

		st, err := doc.OpenStore()
		if err != nil {
			return err
		}
		workspace := doc.WorkspaceName()
		if st != nil {
			defer func() { _ = st.Close() }()
			if r.Env, err = st.LoadScope(ctx, workspace, store.ScopeEnvironment); err != nil {
				return err
			}
			if r.Vars, err = st.LoadScope(ctx, workspace, store.ScopeVariables); err != nil {
				return err
			}
		}

		// Values from an env file layer over the stored scope.
		if envFile := viper.GetString("env_file"); envFile != "" {
			if err := loadEnvFile(envFile, r.Env); err != nil {
				return err
			}
		}

		results, runErr := r.ExecuteAll(ctx, paths, viper.GetInt("parallel"))
		failed := renderResults(results)

		if st != nil {
			if err := st.SaveScope(ctx, workspace, store.ScopeEnvironment, r.Env); err != nil {
				return err
			}
			if err := st.SaveScope(ctx, workspace, store.ScopeVariables, r.Vars); err != nil {
				return err
			}
		}

		if runErr != nil {
			return runErr
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d request files failed", failed, len(results))
		}
		return nil
	},
}

func buildRunner(doc *config.ConfigDoc) (*runner.Runner, error) {
	timeout, err := doc.ScriptTimeoutDuration()
	if err != nil {
		return nil, err
	}

	r := runner.New()
	if timeout > 0 {
		r.Engine = &engine.Engine{Timeout: timeout}
	}

	h := &httpc.Httpc{Insecure: viper.GetBool("insecure") || doc.Client.Insecure}
	if doc.Client.Timeout != "" {
		if h.Timeout, err = time.ParseDuration(doc.Client.Timeout); err != nil {
			return nil, fmt.Errorf("invalid client timeout: %w", err)
		}
	}
	r.Client = h.New()
	return r, nil
}

// loadEnvFile merges a flat yaml map of name/value pairs into env.
func loadEnvFile(path string, env state.Map) error {
	// #nosec G304 -- path comes from the --env-file flag
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("failed to decode env file %s: %w", path, err)
	}
	for k, v := range values {
		env.Set(k, v)
	}
	return nil
}

func collectPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			listed, err := runner.ListCollection(arg)
			if err != nil {
				return nil, err
			}
			paths = append(paths, listed...)
			continue
		}
		paths = append(paths, arg)
	}
	return paths, nil
}

// renderResults prints a per-file summary and returns the failed count.
func renderResults(results []*runner.RunResult) int {
	failed := 0
	for _, res := range results {
		if res == nil {
			failed++
			continue
		}
		if res.Passed() {
			fmt.Printf("%s %s %s\n", passMark("PASS"), res.Name, dimText(fmt.Sprintf("(%d)", res.StatusCode)))
		} else {
			failed++
			fmt.Printf("%s %s %s\n", failMark("FAIL"), res.Name, dimText(fmt.Sprintf("(%d)", res.StatusCode)))
		}
		renderScript("pre-request", res.PreRequest)
		renderScript("tests", res.Tests)
	}
	return failed
}

func renderScript(label string, res *state.Result) {
	if res == nil {
		return
	}
	if !res.Succeeded {
		fmt.Printf("  %s %s script: %s (%s)\n", failMark("x"), label, res.FatalError, res.ErrorKind)
	}
	for _, outcome := range res.TestOutcomes {
		if outcome.Passed {
			fmt.Printf("  %s %s\n", passMark("+"), outcome.Name)
		} else {
			fmt.Printf("  %s %s: %s\n", failMark("x"), outcome.Name, outcome.FailureMessage)
		}
	}
	for _, entry := range res.Logs {
		fmt.Printf("  %s", dimText("console."+entry.Channel+":"))
		for _, v := range entry.Values {
			fmt.Printf(" %v", v)
		}
		fmt.Println()
	}
}
