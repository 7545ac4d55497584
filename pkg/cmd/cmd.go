// Package cmd contains the command line applications for the project.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/soumik183/instavault/pkg/api"
	"github.com/soumik183/instavault/pkg/app"
)

var (
	// configPath 配置文件路径，可通过 --config 覆盖.
	configPath string
	// debug 输出 viper 内部状态.
	debug bool

	rootCmd = &cobra.Command{
		Use:   "instavault",
		Short: "A personal vault that pools multiple storage accounts behind one API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app.NewApp(configPath)
			api.RegisterGroup(a.Engine)

			return a.Run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "print internal config state")

	rootCmd.AddCommand(serveCmd)
	registerConfigsCommands()
	registerDBCommands()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
