package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/loykin/apiscript/cmd/apiscript/config"
	"github.com/loykin/apiscript/internal/store"
	"github.com/spf13/cobra"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Inspect and edit the stored environment of a workspace",
}

// withStore opens the configured store and runs fn against it.
func withStore(fn func(ctx context.Context, st *store.Store, doc *config.ConfigDoc) error) error {
	doc, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := doc.OpenStore()
	if err != nil {
		return err
	}
	if st == nil {
		return fmt.Errorf("no store configured; set store.driver in the config file")
	}
	defer func() { _ = st.Close() }()
	return fn(context.Background(), st, doc)
}

var envListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the stored environment of the workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, st *store.Store, doc *config.ConfigDoc) error {
			env, err := st.LoadScope(ctx, doc.WorkspaceName(), store.ScopeEnvironment)
			if err != nil {
				return err
			}
			names := make([]string, 0, len(env))
			for name := range env {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("%s=%s\n", name, env[name])
			}
			return nil
		})
	},
}

var envGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print one stored environment value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, st *store.Store, doc *config.ConfigDoc) error {
			env, err := st.LoadScope(ctx, doc.WorkspaceName(), store.ScopeEnvironment)
			if err != nil {
				return err
			}
			v, ok := env.Get(args[0])
			if !ok {
				return fmt.Errorf("%s is not set", args[0])
			}
			fmt.Println(v)
			return nil
		})
	},
}

var envSetCmd = &cobra.Command{
	Use:   "set <name> <value>",
	Short: "Set one stored environment value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, st *store.Store, doc *config.ConfigDoc) error {
			ws := doc.WorkspaceName()
			env, err := st.LoadScope(ctx, ws, store.ScopeEnvironment)
			if err != nil {
				return err
			}
			env.Set(args[0], args[1])
			return st.SaveScope(ctx, ws, store.ScopeEnvironment, env)
		})
	},
}

var envUnsetCmd = &cobra.Command{
	Use:   "unset <name>",
	Short: "Remove one stored environment value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, st *store.Store, doc *config.ConfigDoc) error {
			ws := doc.WorkspaceName()
			env, err := st.LoadScope(ctx, ws, store.ScopeEnvironment)
			if err != nil {
				return err
			}
			env.Unset(args[0])
			return st.SaveScope(ctx, ws, store.ScopeEnvironment, env)
		})
	},
}

var envClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every stored scope of the workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, st *store.Store, doc *config.ConfigDoc) error {
			return st.ClearWorkspace(ctx, doc.WorkspaceName())
		})
	},
}

func init() {
	envCmd.AddCommand(envListCmd)
	envCmd.AddCommand(envGetCmd)
	envCmd.AddCommand(envSetCmd)
	envCmd.AddCommand(envUnsetCmd)
	envCmd.AddCommand(envClearCmd)
}
